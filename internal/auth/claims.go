package auth

import (
	"time"
)

// AccessClaims are the claims carried in a PASETO access token. Tokens
// are v4.local, so claims are encrypted and unreadable without the key.
type AccessClaims struct {
	AuthorID  string `json:"author_id"`
	Pseudonym string `json:"pseudonym"`

	// Standard PASETO claims
	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}
