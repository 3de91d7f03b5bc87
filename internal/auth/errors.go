package auth

import "errors"

// Authentication errors surfaced by the middleware.
var (
	errMissingToken    = errors.New("missing authorization token")
	errMalformedHeader = errors.New("authorization header must use the Bearer scheme")
	errInvalidToken    = errors.New("invalid or expired token")
)
