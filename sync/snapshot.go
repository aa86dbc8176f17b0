// Package sync bridges ecs, protocol, and transport, implementing spec.md
// §4.4's sync engine: peer lifecycle, the delta snapshot used to replay
// state to newly connected peers, and the ping/pong heartbeat.
//
// Grounded on original_source/networking/src/{lib,worker,peer}.rs's peer
// bookkeeping and common/src/sync.rs's snapshot/replay logic.
package sync

import (
	"rovmesh/ids"
	"rovmesh/protocol"
)

// Snapshot is spec.md §4.4's delta snapshot: a replayable image of every
// currently live replicated entity and component, rebuilt incrementally
// from outbound change-tracker events only (spec.md §9's correction of the
// original's flatten_deltas, which conflated inbound and outbound changes —
// DESIGN.md Open Question 3).
type Snapshot struct {
	spawnOrder []uint64 // NetId.Lo/Hi pairs packed via spawnKey, in spawn order
	spawnSeen  map[spawnKey]bool

	// components[spawnKey] holds every currently-live token->bytes pair
	// for that entity.
	components map[spawnKey]map[string][]byte

	// resources holds every currently-live (non-entity) token->bytes pair.
	resources map[string][]byte
}

type spawnKey struct{ lo, hi uint64 }

// NewSnapshot returns an empty Snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		spawnSeen:  make(map[spawnKey]bool),
		components: make(map[spawnKey]map[string][]byte),
		resources:  make(map[string][]byte),
	}
}

// Fold applies one outbound SerializedChange to the snapshot. Only
// outbound (locally originated) events are ever folded — the sync engine
// never folds an event it received from a peer, since doing so would
// replay a peer's own state back to it (or to a third peer it doesn't
// belong to).
func (s *Snapshot) Fold(change protocol.SerializedChange) {
	switch change.Kind {
	case protocol.EntitySpawned:
		key := spawnKey{change.NetId.Lo, change.NetId.Hi}
		if s.spawnSeen[key] {
			return
		}
		s.spawnSeen[key] = true
		s.spawnOrder = append(s.spawnOrder, key.lo, key.hi)
		s.components[key] = make(map[string][]byte)

	case protocol.EntityDespawned:
		key := spawnKey{change.NetId.Lo, change.NetId.Hi}
		delete(s.spawnSeen, key)
		delete(s.components, key)
		s.pruneSpawnOrder(key)

	case protocol.ComponentUpdated:
		key := spawnKey{change.NetId.Lo, change.NetId.Hi}
		comps, ok := s.components[key]
		if !ok {
			comps = make(map[string][]byte)
			s.components[key] = comps
		}
		if change.Data == nil {
			delete(comps, change.Token)
		} else {
			comps[change.Token] = change.Data
		}

	case protocol.ResourceUpdated:
		if change.Data == nil {
			delete(s.resources, change.Token)
		} else {
			s.resources[change.Token] = change.Data
		}

	case protocol.EventEmitted:
		// Transient; never part of a replayable snapshot.
	}
}

func (s *Snapshot) pruneSpawnOrder(key spawnKey) {
	for i := 0; i+1 < len(s.spawnOrder); i += 2 {
		if s.spawnOrder[i] == key.lo && s.spawnOrder[i+1] == key.hi {
			s.spawnOrder = append(s.spawnOrder[:i], s.spawnOrder[i+2:]...)
			return
		}
	}
}

// Replay returns every change needed to bring a fresh peer up to date:
// spec.md §4.4's "send the entire current delta snapshot (every spawn,
// then every component) to that peer in order."
func (s *Snapshot) Replay() []protocol.SerializedChange {
	var out []protocol.SerializedChange

	var order []spawnKey
	for i := 0; i+1 < len(s.spawnOrder); i += 2 {
		order = append(order, spawnKey{s.spawnOrder[i], s.spawnOrder[i+1]})
	}

	for _, key := range order {
		out = append(out, protocol.NewEntitySpawned(ids.NetId{Lo: key.lo, Hi: key.hi}))
	}
	for _, key := range order {
		for tok, data := range s.components[key] {
			out = append(out, protocol.NewComponentUpdated(ids.NetId{Lo: key.lo, Hi: key.hi}, tok, data))
		}
	}
	for tok, data := range s.resources {
		out = append(out, protocol.NewResourceUpdated(tok, data))
	}

	return out
}
