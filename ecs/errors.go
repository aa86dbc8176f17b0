package ecs

import "errors"

var (
	// ErrEntityNotFound is returned when an EntityKey no longer names a
	// live entity (its generation has moved on, or the index was never
	// allocated).
	ErrEntityNotFound = errors.New("ecs: entity not found")

	// ErrForeignOwnedWrite is returned when local code tries to mutate a
	// component on an entity whose ownership is ForeignOwned — spec.md
	// §3.1's "local writes are rejected (logged as a protocol violation,
	// not applied)." The original Rust source logs-and-still-broadcasts
	// this case; spec.md corrects it to reject-and-drop, which is what
	// this package implements.
	ErrForeignOwnedWrite = errors.New("ecs: write to foreign-owned entity rejected")

	// ErrUnknownToken names an inbound change whose token the registry has
	// never seen. ApplyInbound does not return it: per spec.md §4.1 ("Unknown
	// tokens on the wire are logged and skipped") it logs a warning and
	// returns nil.
	ErrUnknownToken = errors.New("ecs: unknown token")
)
