// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrForbidden indicates that the current user is not
// authorized to perform an operation on a resource owned by
// someone else, while ErrSlotTaken signals that a booking cannot
// proceed because another booking already occupies one of the
// requested slots.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot be
// performed because of conflicting state, such as attempting to
// delete a price rule that is being edited concurrently or to
// verify a turf twice. Handlers should translate this into an
// HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrSlotTaken is returned by the booking repository when the
// availability re-check inside the insert transaction finds one of
// the requested slots already occupied. Handlers should translate
// this into an HTTP 409 response carrying the conflicting slot ids
// so the client can refresh its grid.
var ErrSlotTaken = errors.New("slot already taken")

// ErrTurfNotFound is returned when a turf lookup matches no row.
var ErrTurfNotFound = errors.New("turf not found")

// ErrBookingNotFound is returned when a booking lookup matches no
// row visible to the caller.
var ErrBookingNotFound = errors.New("booking not found")

// ErrRuleNotFound is returned when a price rule lookup matches no
// row visible to the caller.
var ErrRuleNotFound = errors.New("price rule not found")
