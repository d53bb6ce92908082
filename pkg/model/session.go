package model

// Session is the client-side authentication state.
// User is only meaningful when Token is present.
type Session struct {
	Token string `json:"-"`
	User  *User  `json:"user,omitempty"`
}

// Authenticated reports whether a credential is present. A cached user
// without a token never counts.
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != ""
}

// DisplayUser returns the cached user only when a token is present.
func (s *Session) DisplayUser() *User {
	if !s.Authenticated() {
		return nil
	}
	return s.User
}
