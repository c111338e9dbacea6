// Package errors defines sentinel errors shared across features.
// Repositories wrap these with fmt.Errorf("%w: ...") and handlers pick the
// HTTP status with errors.Is.
package errors

import "errors"

var (
	// ErrNotFound maps to 404.
	ErrNotFound = errors.New("resource not found")

	// ErrBadRequest maps to 400, for malformed identifiers and payloads.
	ErrBadRequest = errors.New("bad request")

	// ErrDuplicate maps to 409, surfaced from unique-index violations.
	ErrDuplicate = errors.New("resource already exists")
)
