package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a record or payload violates the task
	// or user schema. It is usually wrapped by a *ValidationError carrying
	// per-field detail.
	ErrValidation = errors.New("validation failed")

	// ErrMalformedInput is returned when an upload cannot be parsed at all,
	// as opposed to parsing fine but containing invalid rows.
	ErrMalformedInput = errors.New("malformed input")

	// ErrUnauthorized is returned when a request carries no usable identity
	// or the supplied credentials do not match.
	ErrUnauthorized = errors.New("unauthorized operation")

	// ErrInvalidID is returned when a record id is missing or not a positive integer.
	ErrInvalidID = errors.New("invalid ID")
)
