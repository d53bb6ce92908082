package session

import (
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("not-our-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

// rawToken assembles an unsigned token from arbitrary header and claims.
func rawToken(t *testing.T, header map[string]any, claims jwt.MapClaims) string {
	t.Helper()
	seg := func(v any) string {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		return base64.RawURLEncoding.EncodeToString(data)
	}
	return seg(header) + "." + seg(claims) + ".c2ln"
}

func TestExpiryClaim(t *testing.T) {
	exp := time.Now().Add(-time.Hour).Truncate(time.Second)

	tests := []struct {
		name   string
		token  string
		wantOK bool
	}{
		{"jwt with exp", signedToken(t, jwt.MapClaims{"exp": exp.Unix(), "sub": "1"}), true},
		{"jwt without exp", signedToken(t, jwt.MapClaims{"sub": "1"}), false},
		{"three opaque segments", "abc.def.ghi", false},
		{"opaque", "opaque-token", false},
		{"empty", "", false},
		{"bad payload", "eyJhbGciOiJIUzI1NiJ9.!!!.sig", false},
		{"non-numeric exp", signedToken(t, jwt.MapClaims{"exp": "tomorrow"}), false},
		{"unknown alg", rawToken(t, map[string]any{"alg": "ES256K"}, jwt.MapClaims{"exp": exp.Unix()}), true},
		{"header without alg", rawToken(t, map[string]any{"typ": "JWT"}, jwt.MapClaims{"exp": exp.Unix()}), true},
		{"unknown alg without exp", rawToken(t, map[string]any{"alg": "ES256K"}, jwt.MapClaims{"sub": "1"}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExpiryClaim(tt.token)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && !got.Equal(exp) {
				t.Errorf("exp = %v, want %v", got, exp)
			}
		})
	}
}
