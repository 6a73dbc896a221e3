// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user's role does
// not allow arranging or saving a class's seating, while ErrConflict
// signals that a write raced with a newer one.
package repository

import "errors"

// ErrForbidden is returned when the caller's role does not permit the
// operation, such as a read-only viewer saving a layout. Handlers should
// translate this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update cannot be performed because of
// conflicting state, such as a save based on a stale layout version.
// Handlers should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")
