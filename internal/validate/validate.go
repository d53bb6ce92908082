// Package validate checks user-supplied forms before they reach the backend.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/me/newsletter/pkg/model"
)

// SignInForm is the sign-in form.
type SignInForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=6,max=100"`
}

// SignUpForm is the account creation form.
type SignUpForm struct {
	Name            string `form:"name" validate:"required,min=2,max=100"`
	Email           string `form:"email" validate:"required,email"`
	Password        string `form:"password" validate:"required,min=6,max=100"`
	ConfirmPassword string `form:"confirmPassword" validate:"required,eqfield=Password"`
}

// ProfileForm is the profile name form.
type ProfileForm struct {
	Name string `form:"name" validate:"required,min=2,max=100"`
}

// PreferencesForm carries the selected category ids.
type PreferencesForm struct {
	CategoryIDs []int `form:"categoryIds" validate:"unique,dive,gt=0"`
}

var (
	once     sync.Once
	instance *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
		instance.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
	})
	return instance
}

// Struct validates form and returns a *model.ValidationError listing every
// failing field, or nil. Leading and trailing blanks are trimmed from
// string fields first.
func Struct(form any) error {
	trimStrings(form)

	err := get().Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate form: %w", err)
	}

	out := &model.ValidationError{}
	seen := make(map[string]bool)
	for _, fe := range verrs {
		field := fieldName(fe)
		if seen[field] {
			continue
		}
		seen[field] = true
		out.Fields = append(out.Fields, model.FieldError{Field: field, Message: message(fe)})
	}
	return out
}

// fieldName drops the array index from dive errors so "categoryIds[2]"
// reports against "categoryIds".
func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if i := strings.IndexByte(name, '['); i > 0 {
		name = name[:i]
	}
	return name
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "eqfield":
		return "passwords do not match"
	case "unique":
		return "must not repeat"
	case "gt":
		return "must be a valid category"
	default:
		return "is invalid"
	}
}

func trimStrings(form any) {
	v := reflect.ValueOf(form)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return
	}
	v = v.Elem()
	if v.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		if f.Kind() == reflect.String && f.CanSet() && !strings.Contains(strings.ToLower(v.Type().Field(i).Name), "password") {
			f.SetString(strings.TrimSpace(f.String()))
		}
	}
}
