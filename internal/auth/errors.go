package auth

import "errors"

var (
	// ErrMissingAPIKey is returned when no Authorization header is present.
	ErrMissingAPIKey = errors.New("missing Authorization header")

	// ErrInvalidAPIKey is returned when the API key is unknown.
	ErrInvalidAPIKey = errors.New("invalid API key")

	// ErrForbidden is returned when the actor lacks the required capability.
	ErrForbidden = errors.New("capability not granted")

	// ErrInvalidToken is returned when a mutation token fails validation.
	ErrInvalidToken = errors.New("invalid mutation token")
)
