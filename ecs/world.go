// Package ecs is the typed entity-component world spec.md §4.3 describes:
// spawn/despawn entities, insert/remove components by type, query by
// component, and a monotonic per-tick change counter the change tracker
// (change_tracker.go) walks once per tick to produce outbound
// SerializedChange events and apply inbound ones.
//
// Grounded on original_source/common/src/ecs_sync/detect_changes.rs and
// apply_changes.rs, which build the same thing on top of Bevy's ECS
// internals (archetypes, storage types, ComponentId). None of that is
// expressible — or needed — in Go: this package is a plain reflect.Type-
// keyed component table instead of a column-oriented archetype store,
// since rovmesh has a few dozen component types and a few hundred
// entities, not the millions of entities a game engine's ECS is built for.
package ecs

import (
	"reflect"

	"rovmesh/ids"
	"rovmesh/token"
)

// EntityKey is ids.EntityKey, re-exported so callers only need to import
// one package for both entity handles and component operations.
type EntityKey = ids.EntityKey

type removalEvent struct {
	entity EntityKey
	tick   uint64
}

// World owns every entity, component, and resource for one process (robot
// or surface side). It is not safe for concurrent use; spec.md §5 runs all
// world mutation from the single main-loop goroutine.
type World struct {
	registry *token.Registry

	entities *entityTable
	owner    map[EntityKey]Ownership

	components map[reflect.Type]*componentStore
	removals   map[reflect.Type][]removalEvent

	resources        map[reflect.Type]resourceRecord
	resourceRemovals []resourceRemoval

	tick uint64
}

// NewWorld constructs an empty World bound to a frozen token registry.
func NewWorld(registry *token.Registry) *World {
	return &World{
		registry:   registry,
		entities:   newEntityTable(),
		owner:      make(map[EntityKey]Ownership),
		components: make(map[reflect.Type]*componentStore),
		removals:   make(map[reflect.Type][]removalEvent),
		resources:  make(map[reflect.Type]resourceRecord),
	}
}

// Spawn creates a new local entity with LocalMutable ownership.
func (w *World) Spawn() EntityKey {
	key := w.entities.spawn()
	w.owner[key] = LocalMutable
	return key
}

// SpawnForeign creates a new entity mirroring one owned by peer.
func (w *World) SpawnForeign(peer ids.PeerToken) EntityKey {
	key := w.entities.spawn()
	w.owner[key] = ForeignOwned(peer)
	return key
}

// Despawn removes an entity and every component attached to it. For each
// component type the entity carried, a removal event is recorded so the
// change tracker's removal pass (ecs/change_tracker.go) can observe it and,
// once it has drained every component removal for this entity, emit a
// single EntityDespawned (spec.md §4.3 step 3).
func (w *World) Despawn(key EntityKey) {
	if !w.entities.despawn(key) {
		return
	}
	delete(w.owner, key)
	packed := packEntity(key.Index, key.Generation)
	for t, store := range w.components {
		if _, ok := store.byEntity[packed]; !ok {
			continue
		}
		delete(store.byEntity, packed)
		w.removals[t] = append(w.removals[t], removalEvent{entity: key, tick: w.tick})
	}
}

// IsAlive reports whether key still names a live entity.
func (w *World) IsAlive(key EntityKey) bool { return w.entities.isAlive(key) }

// Owner returns key's current ownership value.
func (w *World) Owner(key EntityKey) (Ownership, bool) {
	o, ok := w.owner[key]
	return o, ok
}

// SetOwner updates key's ownership (used when ownership transfer completes
// explicitly, per spec.md §3.1's invariant).
func (w *World) SetOwner(key EntityKey, owner Ownership) {
	w.owner[key] = owner
}

// Entities returns every live entity.
func (w *World) Entities() []EntityKey { return w.entities.all() }

// ForeignOwnedBy returns every entity currently owned by peer — used on
// Disconnect to despawn a departed peer's mirrors (spec.md §3.6).
func (w *World) ForeignOwnedBy(peer ids.PeerToken) []EntityKey {
	var out []EntityKey
	for key, o := range w.owner {
		if o.IsForeign() && o.Peer() == peer {
			out = append(out, key)
		}
	}
	return out
}

// Tick returns the world's current change-tick.
func (w *World) Tick() uint64 { return w.tick }

// Advance increments the world's change-tick; called once per main-loop
// iteration, before running systems, so every write this tick is
// observably "newer" than the previous tick's synced state.
func (w *World) Advance() uint64 {
	w.tick++
	return w.tick
}

// Registry returns the token registry this world was built with.
func (w *World) Registry() *token.Registry { return w.registry }
