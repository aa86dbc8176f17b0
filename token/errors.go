package token

import "errors"

// Sentinel errors for the registry, grouped the way the teacher's
// shared/errors.go groups its error vars by concern.
var (
	// ErrTokenTooLong is returned by Register when a token exceeds
	// spec.md §6's 64-byte limit.
	ErrTokenTooLong = errors.New("token: token exceeds 64 bytes")

	// ErrTokenAlreadyRegistered guards the registry's "built once at
	// startup, immutable thereafter" invariant (spec.md §4.1).
	ErrTokenAlreadyRegistered = errors.New("token: token already registered")

	// ErrRegistryFrozen is returned by Register once Freeze has been
	// called; registration may only happen during startup.
	ErrRegistryFrozen = errors.New("token: registry is frozen")

	// ErrUnknownToken names a token with no registered entry. The registry's
	// lookups do not return it; they report a miss with ok == false, and
	// the wire-decode path logs and skips such a frame (spec.md §4.1)
	// rather than treating it as fatal.
	ErrUnknownToken = errors.New("token: unknown token")
)
