// Package token implements the type registry spec.md §3.2/§4.1 describes:
// every replicable component or event type gets a short, stable dotted
// token string plus a (serialize, deserialize, remove) triple. The registry
// is built once at startup via Register/MustRegister and is read-only
// thereafter — spec.md §9's one piece of intentional global state,
// mirroring the teacher's shared/state.go ROBOT_FACTORY global map and its
// AddRobotType panic-on-duplicate registration helper.
package token

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"rovmesh/ids"
	"rovmesh/logging"
)

// Remover detaches a component's value from an entity. Registered by
// whatever owns the entity/component storage (ecs.World); the token
// registry itself doesn't know what a "remove" means beyond invoking this
// closure.
type Remover func(key ids.EntityKey)

// Entry is everything the registry knows about one registered type.
type Entry struct {
	Token       string
	Type        reflect.Type
	Serialize   func(value any) ([]byte, error)
	Deserialize func(data []byte) (any, error)
	Remove      Remover
}

// Registry maps tokens to entries in both directions. Safe for concurrent
// lookups; Register is expected to run single-threaded during startup.
type Registry struct {
	mu      sync.RWMutex
	byToken map[string]*Entry
	byType  map[reflect.Type]*Entry
	frozen  bool
}

// New constructs an empty, unfrozen Registry.
func New() *Registry {
	return &Registry{
		byToken: make(map[string]*Entry),
		byType:  make(map[reflect.Type]*Entry),
	}
}

func validateToken(tok string) error {
	if len(tok) == 0 || len(tok) > 64 {
		return ErrTokenTooLong
	}
	for _, r := range tok {
		if r > 127 {
			return fmt.Errorf("token: %q is not ASCII", tok)
		}
	}
	return nil
}

// Register adds a new entry for type T under tok. Returns
// ErrRegistryFrozen once Freeze has been called, and ErrTokenAlreadyRegistered
// for a duplicate token or type.
func Register[T any](r *Registry, tok string, serialize func(T) ([]byte, error), deserialize func([]byte) (T, error), remove Remover) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return ErrRegistryFrozen
	}
	if err := validateToken(tok); err != nil {
		return err
	}
	if !HasReservedPrefix(tok) {
		return fmt.Errorf("token: %q is outside the reserved namespaces (robot., robot.sensors., robot.system., robot.camera)", tok)
	}

	typ := reflect.TypeOf((*T)(nil)).Elem()

	if _, ok := r.byToken[tok]; ok {
		return fmt.Errorf("%w: %q", ErrTokenAlreadyRegistered, tok)
	}
	if _, ok := r.byType[typ]; ok {
		return fmt.Errorf("%w: type %s already bound to a token", ErrTokenAlreadyRegistered, typ)
	}

	entry := &Entry{
		Token: tok,
		Type:  typ,
		Serialize: func(value any) ([]byte, error) {
			v, ok := value.(T)
			if !ok {
				return nil, fmt.Errorf("token: value for %q has wrong type %T", tok, value)
			}
			return serialize(v)
		},
		Deserialize: func(data []byte) (any, error) {
			return deserialize(data)
		},
		Remove: remove,
	}

	r.byToken[tok] = entry
	r.byType[typ] = entry
	return nil
}

// MustRegister panics on failure, for use in package init() blocks where a
// registration collision is a programmer error, not a runtime condition —
// the same shape as the teacher's AddRobotType/DebugPanic pairing.
func MustRegister[T any](r *Registry, tok string, serialize func(T) ([]byte, error), deserialize func([]byte) (T, error), remove Remover) {
	if err := Register[T](r, tok, serialize, deserialize, remove); err != nil {
		logging.DebugPanic("token: MustRegister(%q): %v", tok, err)
	}
}

// Freeze marks the registry read-only. Called once, after every package's
// init() has had a chance to register its types, and before any world
// operation runs (spec.md §9).
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// LookupByToken implements lookup_by_token(token) -> Option<(type_id, ser,
// de, remove)> (spec.md §4.1).
func (r *Registry) LookupByToken(tok string) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byToken[tok]
	return e, ok
}

// LookupByType implements lookup_by_type(type_id) -> Option<(token, ser,
// de)> (spec.md §4.1), keyed by the reflect.Type of a sample value.
func (r *Registry) LookupByType(value any) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byType[reflect.TypeOf(value)]
	return e, ok
}

// Entries returns every registered entry. Used by the change tracker to
// walk the tracked-component set once per tick (spec.md §4.3); safe to call
// only after Freeze, since the returned slice is a point-in-time snapshot.
func (r *Registry) Entries() []*Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Entry, 0, len(r.byToken))
	for _, e := range r.byToken {
		out = append(out, e)
	}
	return out
}

// HasReservedPrefix reports whether tok starts with one of spec.md §6's
// reserved namespaces (robot., robot.sensors., robot.system., robot.camera).
func HasReservedPrefix(tok string) bool {
	for _, prefix := range []string{"robot.sensors.", "robot.system.", "robot.camera", "robot."} {
		if strings.HasPrefix(tok, prefix) {
			return true
		}
	}
	return false
}
