// Package apperr holds the error taxonomy shared by services and mapped to
// HTTP status codes at the transport edge.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrValidation          = errors.New("validation error")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrNotFound            = errors.New("not found")
	ErrUnsupportedReaction = errors.New("unsupported reaction")
	ErrUpload              = errors.New("upload failed")
	ErrConflict            = errors.New("already exists")
)

// Status maps err to the HTTP status the handlers respond with.
// Errors outside the taxonomy are 500.
func Status(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrUnsupportedReaction),
		errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Public reports whether err's message may be shown to clients.
// Upload failures are user-visible even though they map to 500.
func Public(err error) bool {
	for _, e := range []error{ErrValidation, ErrUnauthorized, ErrNotFound, ErrUnsupportedReaction, ErrUpload, ErrConflict} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
