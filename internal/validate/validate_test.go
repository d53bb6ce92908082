package validate

import (
	"errors"
	"testing"

	"github.com/me/newsletter/pkg/model"
)

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	if err == nil {
		return nil
	}
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error %v is not a *model.ValidationError", err)
	}
	out := make(map[string]string)
	for _, f := range verr.Fields {
		out[f.Field] = f.Message
	}
	return out
}

func TestSignInForm(t *testing.T) {
	tests := []struct {
		name  string
		form  SignInForm
		wants []string
	}{
		{"valid", SignInForm{Email: "ana@example.com", Password: "secret1"}, nil},
		{"empty", SignInForm{}, []string{"email", "password"}},
		{"bad email", SignInForm{Email: "ana", Password: "secret1"}, []string{"email"}},
		{"short password", SignInForm{Email: "ana@example.com", Password: "123"}, []string{"password"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fieldErrors(t, Struct(&tt.form))
			if len(got) != len(tt.wants) {
				t.Fatalf("errors = %v, want fields %v", got, tt.wants)
			}
			for _, f := range tt.wants {
				if got[f] == "" {
					t.Errorf("missing error for %q in %v", f, got)
				}
			}
		})
	}
}

func TestSignUpForm_PasswordsMustMatch(t *testing.T) {
	form := SignUpForm{Name: "Ana", Email: "ana@example.com", Password: "secret1", ConfirmPassword: "secret2"}
	got := fieldErrors(t, Struct(&form))
	if got["confirmPassword"] != "passwords do not match" {
		t.Errorf("errors = %v", got)
	}

	form.ConfirmPassword = "secret1"
	if err := Struct(&form); err != nil {
		t.Errorf("valid form: %v", err)
	}
}

func TestProfileForm_TrimsName(t *testing.T) {
	form := ProfileForm{Name: "  A "}
	got := fieldErrors(t, Struct(&form))
	if got["name"] != "must be at least 2 characters" {
		t.Errorf("errors = %v", got)
	}
	if form.Name != "A" {
		t.Errorf("name not trimmed: %q", form.Name)
	}
}

func TestPreferencesForm(t *testing.T) {
	if err := Struct(&PreferencesForm{}); err != nil {
		t.Errorf("empty selection should be valid: %v", err)
	}
	if err := Struct(&PreferencesForm{CategoryIDs: []int{1, 3}}); err != nil {
		t.Errorf("valid ids: %v", err)
	}
	if got := fieldErrors(t, Struct(&PreferencesForm{CategoryIDs: []int{1, 1}})); got["categoryIds"] == "" {
		t.Errorf("duplicates should fail: %v", got)
	}
	if got := fieldErrors(t, Struct(&PreferencesForm{CategoryIDs: []int{2, 0}})); got["categoryIds"] == "" {
		t.Errorf("zero id should fail: %v", got)
	}
}
