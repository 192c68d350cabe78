package core

import "errors"

// Error kinds recognized at the HTTP boundary. Every error returned by an
// orchestrator wraps exactly one of these so handlers can map it to a status
// code with errors.Is.
var (
	// ErrValidation indicates a missing or empty required field.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound indicates a referenced document, translation, or audio
	// artifact does not exist.
	ErrNotFound = errors.New("not found")
	// ErrProvider indicates a translation or speech-synthesis backend call
	// failed or returned malformed output.
	ErrProvider = errors.New("provider request failed")
	// ErrConfiguration indicates a provider requires credentials that are
	// absent.
	ErrConfiguration = errors.New("provider not configured")
	// ErrNotImplemented indicates a provider is known but has no
	// implementation yet.
	ErrNotImplemented = errors.New("not yet implemented")
)
