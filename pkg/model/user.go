package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// User is the authenticated reader as returned by the backend.
// A cached copy is kept next to the token for display only; the backend
// stays the source of truth for profile fields.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UnmarshalJSON accepts both string and numeric ids.
func (u *User) UnmarshalJSON(data []byte) error {
	type alias struct {
		ID    json.RawMessage `json:"id"`
		Name  string          `json:"name"`
		Email string          `json:"email"`
	}
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	id, err := decodeID(a.ID)
	if err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	u.ID = id
	u.Name = a.Name
	u.Email = a.Email
	return nil
}

// DisplayName returns the name, falling back to the email.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if strings.TrimSpace(u.Name) != "" {
		return u.Name
	}
	return u.Email
}

func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// SignInRequest is the body of POST /auth/login.
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInResponse is returned by POST /auth/login. User is optional.
type SignInResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}

// SignUpRequest is the body of POST /users.
type SignUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
