package session

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpiryClaim decodes the "exp" claim of a JWT-shaped token without
// verifying its signature. Tokens that are not JWTs, carry malformed
// segments or have no exp report ok=false.
//
// The header is not consulted: a payload with a readable exp counts even
// when the signing algorithm is missing or unknown to the jwt package.
func ExpiryClaim(token string) (exp time.Time, ok bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		claims, ok = payloadClaims(token)
		if !ok {
			return time.Time{}, false
		}
	}
	date, err := claims.GetExpirationTime()
	if err != nil || date == nil {
		return time.Time{}, false
	}
	return date.Time, true
}

// payloadClaims decodes the middle segment of a three-part token.
func payloadClaims(token string) (jwt.MapClaims, bool) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, false
	}
	data, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return nil, false
	}
	claims := jwt.MapClaims{}
	if err := json.Unmarshal(data, &claims); err != nil {
		return nil, false
	}
	return claims, true
}
