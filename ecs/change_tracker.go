package ecs

import (
	"reflect"

	"rovmesh/ids"
	"rovmesh/logging"
	"rovmesh/protocol"
	"rovmesh/token"
)

// Tracker is spec.md §4.3/§9's change tracker: the second of the two
// duplicated Rust modules the source carried (change_detection.rs vs
// ecs_sync/detect_changes.rs), built here as the sole, authoritative
// implementation per spec.md §9's resolution of that Open Question.
//
// It walks a World's registered component/resource types once per tick,
// comparing each entity's per-type changed-tick against a per-(entity,
// type) last-synced-tick it owns, and emits the outbound
// protocol.SerializedChange events the sync engine broadcasts. The apply
// path (ApplyInbound) runs the same bookkeeping in reverse for inbound
// events, always setting last-synced one tick ahead so an applied value is
// never immediately re-emitted back to its origin (spec.md §5).
type Tracker struct {
	world    *World
	registry *token.Registry

	// localNetIds maps an entity this process created to the NetId it
	// was assigned once first observed (spec.md §3.1's "local" table).
	localNetIds map[EntityKey]ids.NetId

	// foreignNetIds maps a mirrored NetId to its local entity handle
	// (spec.md §3.1's "foreign" table), used to resolve inbound events.
	foreignNetIds map[ids.NetId]EntityKey

	lastSynced         map[reflect.Type]map[entityIndex]uint64
	resourceLastSynced map[reflect.Type]uint64

	warnedUnknownTokens map[string]bool
}

// NewTracker builds a Tracker bound to w's frozen registry. Call once per
// World (one per process side).
func NewTracker(w *World) *Tracker {
	return &Tracker{
		world:               w,
		registry:            w.registry,
		localNetIds:         make(map[EntityKey]ids.NetId),
		foreignNetIds:       make(map[ids.NetId]EntityKey),
		lastSynced:          make(map[reflect.Type]map[entityIndex]uint64),
		resourceLastSynced:  make(map[reflect.Type]uint64),
		warnedUnknownTokens: make(map[string]bool),
	}
}

// NetIdOf returns the NetId assigned to a local (LocalMutable) entity, if
// any.
func (t *Tracker) NetIdOf(key EntityKey) (ids.NetId, bool) {
	id, ok := t.localNetIds[key]
	return id, ok
}

// EntityOf returns the local mirror entity for a foreign NetId, if any.
func (t *Tracker) EntityOf(id ids.NetId) (EntityKey, bool) {
	key, ok := t.foreignNetIds[id]
	return key, ok
}

func (t *Tracker) syncTickFor(typ reflect.Type, packed entityIndex) uint64 {
	m, ok := t.lastSynced[typ]
	if !ok {
		return 0
	}
	return m[packed]
}

func (t *Tracker) setSyncTick(typ reflect.Type, packed entityIndex, tick uint64) {
	m, ok := t.lastSynced[typ]
	if !ok {
		m = make(map[entityIndex]uint64)
		t.lastSynced[typ] = m
	}
	m[packed] = tick
}

func (t *Tracker) clearSyncTick(packed entityIndex) {
	for _, m := range t.lastSynced {
		delete(m, packed)
	}
}

// DetectChanges runs spec.md §4.3's four detection steps for the current
// tick (w.Tick(), advanced by the scheduler before PostUpdate runs this)
// and returns every outbound event to broadcast, in spawn-then-update
// order per entity.
func (t *Tracker) DetectChanges() []protocol.SerializedChange {
	thisRun := t.world.tick
	var events []protocol.SerializedChange

	events = append(events, t.detectSpawns(thisRun)...)
	events = append(events, t.detectComponentChanges(thisRun)...)
	events = append(events, t.detectRemovals(thisRun)...)
	events = append(events, t.detectResourceChanges(thisRun)...)
	events = append(events, t.detectResourceRemovals()...)

	return events
}

func (t *Tracker) detectSpawns(thisRun uint64) []protocol.SerializedChange {
	var events []protocol.SerializedChange

	for _, key := range t.world.Entities() {
		if owner, ok := t.world.owner[key]; ok && owner.IsForeign() {
			continue // mirrors get their NetId from ApplyInbound's EntitySpawned
		}
		if _, known := t.localNetIds[key]; known {
			continue
		}

		packed := packEntity(key.Index, key.Generation)
		var present []*token.Entry
		for _, entry := range t.registry.Entries() {
			store, ok := t.world.components[entry.Type]
			if !ok {
				continue
			}
			if _, ok := store.byEntity[packed]; ok {
				present = append(present, entry)
			}
		}
		if len(present) == 0 {
			continue
		}

		id := ids.MustNewNetId()
		t.localNetIds[key] = id

		events = append(events, protocol.NewEntitySpawned(id))

		for _, entry := range present {
			rec := t.world.components[entry.Type].byEntity[packed]
			data, err := entry.Serialize(rec.value)
			if err != nil {
				logging.Warn("ecs: serialize %q on spawn: %v", entry.Token, err)
				continue
			}
			events = append(events, protocol.NewComponentUpdated(id, entry.Token, data))
			t.setSyncTick(entry.Type, packed, thisRun)
		}
	}

	return events
}

func (t *Tracker) detectComponentChanges(thisRun uint64) []protocol.SerializedChange {
	var events []protocol.SerializedChange

	for _, entry := range t.registry.Entries() {
		store, ok := t.world.components[entry.Type]
		if !ok {
			continue
		}

		for packed, rec := range store.byEntity {
			key := unpackEntity(packed)
			if !t.world.IsAlive(key) {
				continue
			}

			last := t.syncTickFor(entry.Type, packed)
			if !(rec.changedTick > last && (thisRun == 0 || rec.changedTick > thisRun-1)) {
				continue
			}

			id, ok := t.localNetIds[key]
			if !ok {
				continue // not yet spawned, or a foreign mirror suppressed by last-synced
			}

			data, err := entry.Serialize(rec.value)
			if err != nil {
				logging.Warn("ecs: serialize %q: %v", entry.Token, err)
				continue
			}
			events = append(events, protocol.NewComponentUpdated(id, entry.Token, data))
			t.setSyncTick(entry.Type, packed, thisRun)
		}
	}

	return events
}

func (t *Tracker) detectRemovals(thisRun uint64) []protocol.SerializedChange {
	var events []protocol.SerializedChange
	emittedDespawn := make(map[EntityKey]bool)

	for _, entry := range t.registry.Entries() {
		buf := t.world.removals[entry.Type]
		if len(buf) == 0 {
			continue
		}

		for _, rem := range buf {
			key := rem.entity
			packed := packEntity(key.Index, key.Generation)

			if t.world.IsAlive(key) {
				id, ok := t.localNetIds[key]
				if !ok {
					continue
				}
				events = append(events, protocol.NewComponentUpdated(id, entry.Token, nil))
				t.setSyncTick(entry.Type, packed, thisRun)
				continue
			}

			id, ok := t.localNetIds[key]
			if !ok {
				continue
			}
			if !emittedDespawn[key] {
				events = append(events, protocol.NewEntityDespawned(id))
				emittedDespawn[key] = true
			}
		}

		t.world.removals[entry.Type] = t.world.removals[entry.Type][:0]
	}

	for key := range emittedDespawn {
		delete(t.localNetIds, key)
		t.clearSyncTick(packEntity(key.Index, key.Generation))
	}

	return events
}

func (t *Tracker) detectResourceChanges(thisRun uint64) []protocol.SerializedChange {
	var events []protocol.SerializedChange

	for _, entry := range t.registry.Entries() {
		rec, ok := t.world.resources[entry.Type]
		if !ok {
			continue
		}
		last := t.resourceLastSynced[entry.Type]
		if !(rec.changedTick > last && (thisRun == 0 || rec.changedTick > thisRun-1)) {
			continue
		}

		data, err := entry.Serialize(rec.value)
		if err != nil {
			logging.Warn("ecs: serialize resource %q: %v", entry.Token, err)
			continue
		}
		events = append(events, protocol.NewResourceUpdated(entry.Token, data))
		t.resourceLastSynced[entry.Type] = thisRun
	}

	return events
}

func (t *Tracker) detectResourceRemovals() []protocol.SerializedChange {
	if len(t.world.resourceRemovals) == 0 {
		return nil
	}
	var events []protocol.SerializedChange
	for _, rem := range t.world.resourceRemovals {
		entry, ok := t.registry.LookupByType(reflect.New(rem.typ).Elem().Interface())
		if !ok {
			continue
		}
		events = append(events, protocol.NewResourceUpdated(entry.Token, nil))
	}
	t.world.resourceRemovals = t.world.resourceRemovals[:0]
	return events
}

// ApplyInbound applies one inbound SerializedChange to the world, as
// described by spec.md §4.3's "Apply path". origin identifies the peer an
// EntitySpawned should be attributed to for newly created mirrors.
//
// Unknown tokens are logged once and skipped (spec.md §4.1's
// forward-compatibility rule), not treated as fatal.
func (t *Tracker) ApplyInbound(change protocol.SerializedChange, origin ids.PeerToken) error {
	thisRun := t.world.tick

	switch change.Kind {
	case protocol.EntitySpawned:
		if _, ok := t.foreignNetIds[change.NetId]; ok {
			return nil
		}
		key := t.world.SpawnForeign(origin)
		t.foreignNetIds[change.NetId] = key
		return nil

	case protocol.EntityDespawned:
		key, ok := t.foreignNetIds[change.NetId]
		if !ok {
			return nil
		}
		t.world.Despawn(key)
		delete(t.foreignNetIds, change.NetId)
		t.clearSyncTick(packEntity(key.Index, key.Generation))
		return nil

	case protocol.ComponentUpdated:
		key, ok := t.foreignNetIds[change.NetId]
		if !ok {
			return ErrEntityNotFound
		}
		entry, ok := t.registry.LookupByToken(change.Token)
		if !ok {
			t.warnUnknownToken(change.Token)
			return nil
		}
		packed := packEntity(key.Index, key.Generation)
		if change.Data == nil {
			entry.Remove(key)
		} else {
			value, err := entry.Deserialize(change.Data)
			if err != nil {
				return err
			}
			t.world.setRaw(entry.Type, key, value)
		}
		t.setSyncTick(entry.Type, packed, thisRun+1)
		return nil

	case protocol.ResourceUpdated:
		entry, ok := t.registry.LookupByToken(change.Token)
		if !ok {
			t.warnUnknownToken(change.Token)
			return nil
		}
		if change.Data == nil {
			t.world.removeResourceRaw(entry.Type)
		} else {
			value, err := entry.Deserialize(change.Data)
			if err != nil {
				return err
			}
			t.world.setResourceRaw(entry.Type, value)
		}
		t.resourceLastSynced[entry.Type] = thisRun + 1
		return nil

	case protocol.EventEmitted:
		// No world state corresponds to a bare event; spec.md §6 reserves
		// the wire tag but names no consumer within this core's scope.
		if _, ok := t.registry.LookupByToken(change.Token); !ok {
			t.warnUnknownToken(change.Token)
		}
		return nil

	default:
		return nil
	}
}

func (t *Tracker) warnUnknownToken(tok string) {
	if t.warnedUnknownTokens[tok] {
		return
	}
	t.warnedUnknownTokens[tok] = true
	logging.Warn("ecs: unknown token %q on the wire, dropping", tok)
}

// DespawnForeignOwnedBy removes every entity currently mirrored from peer,
// used on Disconnect (spec.md §3.6/§4.4).
func (t *Tracker) DespawnForeignOwnedBy(peer ids.PeerToken) {
	for _, key := range t.world.ForeignOwnedBy(peer) {
		for id, mapped := range t.foreignNetIds {
			if mapped == key {
				delete(t.foreignNetIds, id)
				break
			}
		}
		t.world.Despawn(key)
		t.clearSyncTick(packEntity(key.Index, key.Generation))
	}
}
