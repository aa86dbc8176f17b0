package ecs

import "reflect"

type resourceRecord struct {
	value       any
	changedTick uint64
}

// SetResource installs or updates the single global value of type T
// (spec.md §4.3.4's "globally shared values keyed by type" — the binaries
// keep the local robot's RobotId here rather than on an entity).
func SetResource[T any](w *World, value T) {
	w.resources[typeOf[T]()] = resourceRecord{value: value, changedTick: w.tick}
}

// GetResource returns T's current value, if one has been set.
func GetResource[T any](w *World) (T, bool) {
	var zero T
	rec, ok := w.resources[typeOf[T]()]
	if !ok {
		return zero, false
	}
	return rec.value.(T), true
}

// RemoveResource deletes T's global value, if present.
func RemoveResource[T any](w *World) {
	t := typeOf[T]()
	if _, ok := w.resources[t]; !ok {
		return
	}
	delete(w.resources, t)
	w.resourceRemovals = append(w.resourceRemovals, resourceRemoval{typ: t, tick: w.tick})
}

type resourceRemoval struct {
	typ  reflect.Type
	tick uint64
}

// setResourceRaw is the reflect.Type-keyed counterpart of SetResource,
// used by the change tracker's apply path (ecs/change_tracker.go) where
// only a token-registry Entry, not a compile-time T, is available.
func (w *World) setResourceRaw(t reflect.Type, value any) {
	w.resources[t] = resourceRecord{value: value, changedTick: w.tick}
}

// removeResourceRaw is the reflect.Type-keyed counterpart of RemoveResource.
func (w *World) removeResourceRaw(t reflect.Type) {
	if _, ok := w.resources[t]; !ok {
		return
	}
	delete(w.resources, t)
	w.resourceRemovals = append(w.resourceRemovals, resourceRemoval{typ: t, tick: w.tick})
}
