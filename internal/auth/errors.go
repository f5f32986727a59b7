package auth

import "errors"

var (
	ErrInvalidCredentialShape = errors.New("invalid email, display name or password")
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrUnauthorized           = errors.New("unauthorized")
)

// Token errors. Callers outside this package only ever see them wrapped in ErrUnauthorized.
var (
	ErrExpiredToken      = errors.New("token has expired")
	ErrMalformedToken    = errors.New("malformed token")
	ErrSignatureMismatch = errors.New("token signature mismatch")
	ErrSigningKey        = errors.New("token signing key is not configured")
)

var ErrInvalidHashFormat = errors.New("invalid password hash format")
