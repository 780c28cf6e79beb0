package studio

import "errors"

var (
	// ErrMissingCredential is a configuration error; retrying will not help.
	ErrMissingCredential = errors.New("missing text generation credential")

	ErrInvalidRequest = errors.New("invalid generation request")

	// ErrGenerationFailed fails the whole request; no partial result is returned.
	ErrGenerationFailed = errors.New("generation failed")
)
