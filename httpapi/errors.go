package httpapi

import "errors"

var (
	// ErrCommandQueueFull is returned when the arm/disarm command channel
	// has no room left for another request (spec.md §5's "full queue is
	// reported" policy, applied to the HTTP control surface).
	ErrCommandQueueFull = errors.New("httpapi: command queue full")

	// ErrNoSnapshot is returned by Snapshot when the scheduler hasn't
	// published one yet (server just started, before the first tick's
	// PostUpdate stage runs).
	ErrNoSnapshot = errors.New("httpapi: no snapshot published yet")
)
