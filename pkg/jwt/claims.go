package jwt

import (
	"strings"
	"time"
)

// TrialClaims are the claims of a trial access token.
type TrialClaims struct {
	Email     string `json:"email"`
	ExpiresAt int64  `json:"exp"`
	IssuedAt  int64  `json:"iat,omitempty"`
}

// Valid rejects tokens without an email and tokens past their exp.
func (c TrialClaims) Valid() error {
	if strings.TrimSpace(c.Email) == "" {
		return ErrInvalidToken
	}
	if c.ExpiresAt > 0 && time.Now().Unix() > c.ExpiresAt {
		return ErrExpiredToken
	}
	return nil
}

// Expiry returns exp as a time. Zero if unset.
func (c TrialClaims) Expiry() time.Time {
	if c.ExpiresAt == 0 {
		return time.Time{}
	}
	return time.Unix(c.ExpiresAt, 0)
}
