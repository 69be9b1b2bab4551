package services

import "errors"

// Service errors. Controllers translate these into HTTP statuses and
// the websocket layer into error events; none of them ever crash a
// connection.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrNotAuthorized   = errors.New("you are not a participant of this conversation")
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrConflict        = errors.New("conflict")
)
