package core

import "sync"

// Store keeps per-scope values by Kind. Lookups never fall back to a parent
// scope. It is safe for concurrent use; reads take a shared lock so that
// parallel cases of a Shared suite do not serialize on each other.
type Store struct {
	mu      sync.RWMutex
	entries map[string]map[Kind]any
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{entries: make(map[string]map[Kind]any)}
}

// Put stores v under (s, k), replacing any previous value.
func (st *Store) Put(s *Scope, k Kind, v any) {
	st.mu.Lock()
	defer st.mu.Unlock()

	m, ok := st.entries[s.id]
	if !ok {
		m = make(map[Kind]any)
		st.entries[s.id] = m
	}
	m[k] = v
}

// Get returns the value under (s, k).
func (st *Store) Get(s *Scope, k Kind) (any, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	v, ok := st.entries[s.id][k]
	return v, ok
}

// Remove evicts and returns the value under (s, k). Removing an absent key
// returns (nil, false).
func (st *Store) Remove(s *Scope, k Kind) (any, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	m, ok := st.entries[s.id]
	if !ok {
		return nil, false
	}
	v, ok := m[k]
	if !ok {
		return nil, false
	}
	delete(m, k)
	if len(m) == 0 {
		delete(st.entries, s.id)
	}
	return v, true
}

// Clear drops every entry of s.
func (st *Store) Clear(s *Scope) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.entries, s.id)
}

// Len returns the number of entries held for s.
func (st *Store) Len(s *Scope) int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.entries[s.id])
}

// Scopes returns the number of scopes holding at least one entry.
func (st *Store) Scopes() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.entries)
}

// Lookup returns the value under (s, k) as a T. A value of another type
// reports false.
func Lookup[T any](st *Store, s *Scope, k Kind) (T, bool) {
	v, ok := st.Get(s, k)
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}
