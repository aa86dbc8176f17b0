// Package ids defines the identity types shared across the whole system —
// NetId, PeerToken, EntityKey — kept in their own package because token,
// ecs, protocol, transport, and sync all need them without importing each
// other.
package ids

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
)

// NetId is spec.md §3.1's 128-bit random identifier for every replicated
// entity. The zero value is the reserved SINGLETON id (spec.md §3.1, §6).
type NetId struct {
	Lo, Hi uint64
}

// Singleton is the one reserved NetId value, used for the per-process root
// entity (spec.md §3.1).
var Singleton = NetId{}

// IsSingleton reports whether id is the reserved singleton value.
func (id NetId) IsSingleton() bool { return id == Singleton }

// NewNetId draws a fresh id from a cryptographically uniform distribution,
// as spec.md §6 requires ("must be drawn from a cryptographically uniform
// distribution to keep collision probability negligible"). It is vanishingly
// unlikely, but not impossible, to return Singleton; callers that assign
// ids to newly observed entities should treat that single collision as a
// retry condition rather than assume it away.
func NewNetId() (NetId, error) {
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return NetId{}, fmt.Errorf("ids: generate NetId: %w", err)
	}
	return NetId{
		Lo: binary.LittleEndian.Uint64(buf[0:8]),
		Hi: binary.LittleEndian.Uint64(buf[8:16]),
	}, nil
}

// MustNewNetId panics on entropy-source failure, which should never happen
// in practice; used at world-construction sites where there is no
// meaningful way to recover from a broken CSPRNG.
func MustNewNetId() NetId {
	id, err := NewNetId()
	if err != nil {
		panic(err)
	}
	return id
}

func (id NetId) String() string {
	return fmt.Sprintf("%016x%016x", id.Hi, id.Lo)
}

// PeerToken is the transport's opaque per-connection handle: monotonically
// assigned, and meaningful only for the lifetime of that connection
// (spec.md §3.1).
type PeerToken uint64

func (t PeerToken) String() string { return fmt.Sprintf("peer#%d", uint64(t)) }

// EntityKey is the local handle for an entity: a generation counter plus an
// index, as spec.md §3.1 describes. Generations let a reused index be
// distinguished from a prior occupant without the world needing to scan for
// dangling references.
type EntityKey struct {
	Index      uint32
	Generation uint32
}

func (k EntityKey) String() string { return fmt.Sprintf("entity#%d.%d", k.Index, k.Generation) }
