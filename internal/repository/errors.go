// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios with errors.Is instead of string matching. For example,
// ErrRoomNotFound maps to an HTTP 404 while ErrForbidden maps to 403.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrRoomNotFound indicates that no room with the requested id exists.
var ErrRoomNotFound = errors.New("room not found")

// ErrBookingNotFound indicates that no booking with the requested id exists.
var ErrBookingNotFound = errors.New("booking not found")

// ErrReviewNotFound indicates that no review with the requested id exists.
var ErrReviewNotFound = errors.New("review not found")

// ErrRoomNameExists is returned when creating or renaming a room would
// violate the unique name constraint.
var ErrRoomNameExists = errors.New("room name already exists")
