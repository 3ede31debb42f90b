package service

import "errors"

// Validation errors surfaced to the invoking user. The operation aborts
// and no partial state is committed.
var (
	ErrLogChannelRequired = errors.New("a log channel must be selected before saving")
	ErrDetailRequired     = errors.New("details text must not be empty")
	ErrTargetRoleRequired = errors.New("a target role is required")
)

// Session and token errors.
var (
	// ErrUnauthorized is returned when someone other than the owning
	// admin tries to touch a setup session.
	ErrUnauthorized = errors.New("setup panel is locked to the admin who opened it")

	// ErrSessionNotFound covers expired, cancelled and never-existing
	// setup sessions. A stale action against it has no side effects.
	ErrSessionNotFound = errors.New("setup session expired or not found")

	// ErrTokenNotFound covers expired, consumed and unknown correlation
	// tokens. Treating consumed tokens as gone makes every modal
	// submission single-use even under at-least-once event delivery.
	ErrTokenNotFound = errors.New("submission expired or was already processed")
)

// ErrLogChannelUnavailable is a non-fatal secondary failure: the primary
// action already succeeded and is never rolled back because of it.
var ErrLogChannelUnavailable = errors.New("log channel unavailable")
