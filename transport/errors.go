package transport

import "errors"

var (
	// ErrOversizedPacket is returned by encodeFrame when a payload exceeds
	// config.MaxFrameLength; the reactor delivers it as an EvError event
	// for that peer (Send/Broadcast themselves only report whether the
	// command was queued).
	ErrOversizedPacket = errors.New("transport: packet exceeds maximum frame length")

	// ErrQueueFull names spec.md §5's "Net channel full" condition. No
	// function returns it: Enqueue and the Transport methods report a full
	// command queue by returning false.
	ErrQueueFull = errors.New("transport: command queue full")

	// ErrUnknownPeer names a PeerToken the reactor does not recognize. No
	// function returns it: commands for an unknown token are ignored.
	ErrUnknownPeer = errors.New("transport: unknown peer token")

	// ErrReactorClosed names a call made after Shutdown. No function
	// returns it.
	ErrReactorClosed = errors.New("transport: reactor is shut down")
)
