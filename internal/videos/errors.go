package videos

import "errors"

// Failure kinds surfaced by the video service. Handlers map these to HTTP
// statuses; nothing matches on message strings.
var (
	// ErrInvalidInput indicates caller-supplied data failed a required-field check.
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnauthenticated indicates no caller identity was attached to the request.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden indicates the caller does not own the target video.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound indicates the target video does not exist.
	ErrNotFound = errors.New("video not found")
	// ErrOwnerNotFound indicates the caller's identity is not present in the user
	// store even though a session vouched for it. An integrity anomaly, not a
	// plain client error.
	ErrOwnerNotFound = errors.New("owner not found")
)
