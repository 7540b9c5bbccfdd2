package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenPayload captures the identity minted into a JWT.
type AccessTokenPayload struct {
	UID   string
	Email string
	JTI   string
}

// AccessTokenClaims carries the identity provider uid in "sub".
type AccessTokenClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// UID returns the subject of the token.
func (c *AccessTokenClaims) UID() string {
	if c == nil {
		return ""
	}
	return c.Subject
}
