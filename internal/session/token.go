package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the parts of an API token the web layer reads. The signature is
// not checked here; the API checks it on every call.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// Expired reports whether the token carries an expiry at or before now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// ErrOpaqueToken is returned for tokens that are not JWTs.
var ErrOpaqueToken = errors.New("token is not a JWT")

// InspectToken decodes the claims of a JWT without verifying it.
func InspectToken(token string) (Claims, error) {
	parser := jwt.NewParser()
	var rc jwt.RegisteredClaims
	if _, _, err := parser.ParseUnverified(token, &rc); err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return Claims{}, ErrOpaqueToken
		}
		return Claims{}, fmt.Errorf("inspect token: %w", err)
	}

	c := Claims{Subject: rc.Subject}
	if rc.ExpiresAt != nil {
		c.ExpiresAt = rc.ExpiresAt.Time
	}
	return c, nil
}
