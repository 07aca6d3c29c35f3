package session

import "errors"

// Recognition cannot proceed without a usable event. All three are
// surfaced to the caller before any camera resource is acquired.
var (
	ErrEventNotFound  = errors.New("session: event not found")
	ErrEventNotActive = errors.New("session: event is not active")
	ErrNoActiveEvent  = errors.New("session: no active event available")
)
