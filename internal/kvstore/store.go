// Package kvstore is a minimal per-node {string -> string} mapping,
// the external collaborator the overlay resolves ownership for but
// does not itself implement (replication, rebalancing on churn, and
// persistence are explicitly out of scope for the ring).
package kvstore

import (
	"sync"

	"chordring/internal/logger"
)

// Store is a goroutine-safe in-memory key/value map scoped to a
// single node.
type Store struct {
	mu   sync.RWMutex
	data map[string]string
	lgr  logger.Logger
}

// New builds an empty store.
func New(lgr logger.Logger) *Store {
	if lgr == nil {
		lgr = &logger.NopLogger{}
	}
	return &Store{data: make(map[string]string), lgr: lgr}
}

// Put stores value under key, overwriting any existing value.
func (s *Store) Put(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	s.lgr.Debug("put", logger.F("key", key), logger.F("total_keys", len(s.data)))
}

// Get retrieves the value stored under key.
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

// Delete removes key, reporting whether it was present.
func (s *Store) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return false
	}
	delete(s.data, key)
	s.lgr.Debug("delete", logger.F("key", key), logger.F("total_keys", len(s.data)))
	return true
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
