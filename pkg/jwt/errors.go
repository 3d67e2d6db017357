package jwt

import "errors"

var (
	ErrMissingSigningKey = errors.New("jwt: signing key is empty")
	ErrMissingClaims     = errors.New("jwt: claims are nil")
	ErrMissingToken      = errors.New("jwt: no bearer token")

	// Parse failures. ErrExpiredToken is the only one a visitor can fix by
	// starting a new trial.
	ErrInvalidToken            = errors.New("jwt: malformed token")
	ErrInvalidSignature        = errors.New("jwt: signature mismatch")
	ErrUnexpectedSigningMethod = errors.New("jwt: algorithm is not HS256")
	ErrExpiredToken            = errors.New("jwt: trial token expired")
)
