package domain

import "errors"

var (
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidPayload     = errors.New("invalid_payload")
	ErrInvalidCoordinates = errors.New("invalid_coordinates")
	ErrInvalidAccuracy    = errors.New("invalid_accuracy")
	ErrEventNotFound      = errors.New("scan_event_not_found")

	// ErrPairingConflict signals that an event's pairing state changed
	// underneath a concurrent matcher. It is resolved inside the matcher and
	// never surfaces to callers.
	ErrPairingConflict = errors.New("pairing_conflict")
)
