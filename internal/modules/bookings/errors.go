package bookings

import "errors"

var (
	// ErrNotFound covers missing event types, bookings and attendees
	// referenced by a request.
	ErrNotFound = errors.New("not found")

	// ErrValidation covers malformed responses blobs, unknown time zones
	// and unsupported recurrence frequencies.
	ErrValidation = errors.New("validation error")

	// ErrDataIntegrity marks invariant violations in upstream data, like a
	// validated booking whose attendee list does not contain the responses
	// email. Not retryable.
	ErrDataIntegrity = errors.New("data integrity error")

	// ErrConflict is returned when a booking insert trips a uniqueness
	// constraint.
	ErrConflict = errors.New("booking conflict")
)
