package collections

import (
	"sync"
	"testing"
)

func TestSafeMapSetGet(t *testing.T) {
	m := NewSafeMap[string, int]()
	m.Set("a", 1)

	v, ok := m.Get("a")
	if !ok || v != 1 {
		t.Fatalf("Get(a) = %d, %v; want 1, true", v, ok)
	}

	if _, ok := m.Get("missing"); ok {
		t.Fatalf("Get(missing) found a value, want not found")
	}
}

func TestSafeMapPop(t *testing.T) {
	m := NewSafeMap[string, int]()
	m.Set("a", 1)

	v, ok := m.Pop("a")
	if !ok || v != 1 {
		t.Fatalf("Pop(a) = %d, %v; want 1, true", v, ok)
	}

	if _, ok := m.Get("a"); ok {
		t.Fatalf("key survived Pop")
	}
}

func TestSafeMapGetOrDefault(t *testing.T) {
	m := NewSafeMap[string, int]()

	v := m.GetOrDefault("a", 42)
	if v != 42 {
		t.Fatalf("GetOrDefault = %d, want 42", v)
	}

	v = m.GetOrDefault("a", 99)
	if v != 42 {
		t.Fatalf("GetOrDefault second call = %d, want stored 42", v)
	}
}

func TestSafeMapConcurrentAccess(t *testing.T) {
	m := NewSafeMap[int, int]()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.Set(i, i*i)
		}(i)
	}
	wg.Wait()

	if m.Len() != 100 {
		t.Fatalf("Len() = %d, want 100", m.Len())
	}
	v, ok := m.Get(10)
	if !ok || v != 100 {
		t.Fatalf("Get(10) = %d, %v; want 100, true", v, ok)
	}
}
