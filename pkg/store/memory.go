// Package store provides collection stores that destinations of a csv.Reader
// live in: an in-memory store and a SQLite-backed store that keeps
// variables across process runs.
//
// Stores are safe for concurrent use; every call takes the store lock for
// its own duration only.
package store

import (
	"sync"
)

// Memory is an in-memory collection store.
type Memory struct {
	mu      sync.Mutex
	scalars map[string]string
	arrays  map[string]map[int]string
	assocs  map[string]map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		scalars: make(map[string]string),
		arrays:  make(map[string]map[int]string),
		assocs:  make(map[string]map[string]string),
	}
}

// Bind sets the scalar name. It implements csv.ScalarSink.
func (m *Memory) Bind(name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scalars[name] = value
	return nil
}

// Scalar returns the scalar name.
func (m *Memory) Scalar(name string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.scalars[name]
	return v, ok, nil
}

// Array returns a handle to the indexed collection name.
func (m *Memory) Array(name string) *Array {
	return &Array{m: m, name: name}
}

// Assoc returns a handle to the keyed collection name.
func (m *Memory) Assoc(name string) *Assoc {
	return &Assoc{m: m, name: name}
}

// Snapshot copies the store contents.
func (m *Memory) Snapshot() (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := newSnapshot()
	for k, v := range m.scalars {
		snap.Scalars[k] = v
	}
	for name, arr := range m.arrays {
		cp := make(map[int]string, len(arr))
		for i, v := range arr {
			cp[i] = v
		}
		snap.Arrays[name] = cp
	}
	for name, assoc := range m.assocs {
		cp := make(map[string]string, len(assoc))
		for k, v := range assoc {
			cp[k] = v
		}
		snap.Assocs[name] = cp
	}
	return snap, nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}

// Array is an indexed collection in a Memory store.
type Array struct {
	m    *Memory
	name string
}

// Name returns the collection name.
func (a *Array) Name() string {
	return a.name
}

// Flush removes every element.
func (a *Array) Flush() error {
	a.m.mu.Lock()
	defer a.m.mu.Unlock()
	delete(a.m.arrays, a.name)
	return nil
}

// Get returns the element at index.
func (a *Array) Get(index int) (string, bool, error) {
	a.m.mu.Lock()
	defer a.m.mu.Unlock()
	v, ok := a.m.arrays[a.name][index]
	return v, ok, nil
}

// Set stores value at index.
func (a *Array) Set(index int, value string) error {
	if index < 0 {
		return &IndexError{Name: a.name, Index: index}
	}
	a.m.mu.Lock()
	defer a.m.mu.Unlock()
	arr, ok := a.m.arrays[a.name]
	if !ok {
		arr = make(map[int]string)
		a.m.arrays[a.name] = arr
	}
	arr[index] = value
	return nil
}

// IsEmpty reports whether the collection has no elements.
func (a *Array) IsEmpty() (bool, error) {
	a.m.mu.Lock()
	defer a.m.mu.Unlock()
	return len(a.m.arrays[a.name]) == 0, nil
}

// MaxIndex returns the highest index set, or -1.
func (a *Array) MaxIndex() (int, error) {
	a.m.mu.Lock()
	defer a.m.mu.Unlock()
	max := -1
	for i := range a.m.arrays[a.name] {
		if i > max {
			max = i
		}
	}
	return max, nil
}

// Assoc is a keyed collection in a Memory store.
type Assoc struct {
	m    *Memory
	name string
}

// Name returns the collection name.
func (a *Assoc) Name() string {
	return a.name
}

// Flush removes every element.
func (a *Assoc) Flush() error {
	a.m.mu.Lock()
	defer a.m.mu.Unlock()
	delete(a.m.assocs, a.name)
	return nil
}

// Get returns the element under key.
func (a *Assoc) Get(key string) (string, bool, error) {
	a.m.mu.Lock()
	defer a.m.mu.Unlock()
	v, ok := a.m.assocs[a.name][key]
	return v, ok, nil
}

// Set stores value under key.
func (a *Assoc) Set(key, value string) error {
	a.m.mu.Lock()
	defer a.m.mu.Unlock()
	assoc, ok := a.m.assocs[a.name]
	if !ok {
		assoc = make(map[string]string)
		a.m.assocs[a.name] = assoc
	}
	assoc[key] = value
	return nil
}

// IsEmpty reports whether the collection has no elements.
func (a *Assoc) IsEmpty() (bool, error) {
	a.m.mu.Lock()
	defer a.m.mu.Unlock()
	return len(a.m.assocs[a.name]) == 0, nil
}

// Keys returns the keys in unspecified order.
func (a *Assoc) Keys() ([]string, error) {
	a.m.mu.Lock()
	defer a.m.mu.Unlock()
	keys := make([]string, 0, len(a.m.assocs[a.name]))
	for k := range a.m.assocs[a.name] {
		keys = append(keys, k)
	}
	return keys, nil
}
