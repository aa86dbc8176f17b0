package transport

import "rovmesh/ids"

// CommandKind selects which Command variant is populated. Mirrors
// spec.md §4.2's accepted-commands list exactly.
type CommandKind int

const (
	CmdConnect CommandKind = iota
	CmdBind
	CmdDisconnect
	CmdPacket
	CmdBroadcast
	CmdShutdown
)

// Command is one entry in the reactor's bounded command queue (spec.md §4.2,
// ~200 slots).
type Command struct {
	Kind    CommandKind
	Addr    string        // Connect, Bind
	Token   ids.PeerToken // Disconnect, Packet
	Payload []byte        // Packet, Broadcast
}

// EventKind selects which Event variant is populated.
type EventKind int

const (
	EvConnected EventKind = iota
	EvAccepted
	EvData
	EvDisconnect
	EvError
)

// Event is one entry the reactor delivers upward (spec.md §4.2).
type Event struct {
	Kind EventKind

	Token ids.PeerToken // Connected, Accepted, Data, Disconnect, Error (if applicable)
	Addr  string         // Connected, Accepted

	Payload []byte // Data

	HasToken bool  // Error: whether Token is meaningful
	Err      error // Error
}
