package models

import "github.com/golang-jwt/jwt/v5"

// Claims are the JWT claims the upload endpoint understands.
type Claims struct {
	jwt.RegisteredClaims        // Standard JWT claims (sub, iss, aud, exp, iat, etc.)
	Email                string `json:"email,omitempty"`
	Role                 string `json:"role,omitempty"`
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *Claims) GetUserID() string {
	return c.Subject
}
