package domain

import "errors"

// ErrValidation marks malformed or missing input rejected before any
// persistence call. Handlers map it to a 400, never a 500.
var ErrValidation = errors.New("validation failed")

// Account errors
var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
)

// Video errors
var (
	ErrVideoNotFound = errors.New("video not found")
)
