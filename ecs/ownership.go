package ecs

import "rovmesh/ids"

// Ownership marks which side of a connection is authoritative for an
// entity's replicated components (spec.md §3.1). LocalMutable entities are
// ours to write and broadcast; ForeignOwned entities mirror another peer
// and reject local writes.
type Ownership struct {
	foreign bool
	peer    ids.PeerToken
}

// LocalMutable is the ownership value for entities this process created
// and is authoritative for.
var LocalMutable = Ownership{}

// ForeignOwned marks an entity as mirrored from peer.
func ForeignOwned(peer ids.PeerToken) Ownership {
	return Ownership{foreign: true, peer: peer}
}

// IsForeign reports whether o is a ForeignOwned value.
func (o Ownership) IsForeign() bool { return o.foreign }

// Peer returns the owning peer token; only meaningful when IsForeign is
// true.
func (o Ownership) Peer() ids.PeerToken { return o.peer }
