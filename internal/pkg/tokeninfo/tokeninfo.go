// Package tokeninfo reads claims out of a bearer token without verifying it.
// The result is for diagnostics only; identity always comes from the backend.
package tokeninfo

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of registered claims the client cares about.
type Claims struct {
	Subject   string
	Username  string
	Role      string
	ExpiresAt time.Time
	// Opaque is true when the token is not a parseable JWT.
	Opaque bool
}

// Expired reports whether the token carries an exp claim in the past.
func (c Claims) Expired() bool {
	return !c.ExpiresAt.IsZero() && time.Now().After(c.ExpiresAt)
}

// Peek decodes a JWT payload without checking its signature.
func Peek(token string) Claims {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Claims{Opaque: true}
	}

	var out Claims
	out.Subject, _ = claims.GetSubject()
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	out.Username, _ = claims["username"].(string)
	out.Role, _ = claims["role"].(string)
	return out
}
