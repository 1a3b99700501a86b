package history

import (
	"context"
	"sync"

	"github.com/finsight/finsight"
)

type memorySession struct {
	meta    Meta
	records []Record
}

// memoryStore implements Store using an in-memory map.
type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*memorySession
}

// Create implements Store.
func (s *memoryStore) Create(ctx context.Context, id string, meta Meta, preamble []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[id] = &memorySession{
		meta:    meta,
		records: append([]Record(nil), preamble...),
	}
	return nil
}

// Append implements Store.
func (s *memoryStore) Append(ctx context.Context, id string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return finsight.ErrSessionNotFound
	}
	sess.records = append(sess.records, rec)
	return nil
}

// Window implements Store.
func (s *memoryStore) Window(ctx context.Context, id string, n int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, finsight.ErrSessionNotFound
	}
	records := sess.records
	if n > 0 && len(records) > n {
		records = records[len(records)-n:]
	}
	return append([]Record(nil), records...), nil
}

// Meta implements Store.
func (s *memoryStore) Meta(ctx context.Context, id string) (Meta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Meta{}, finsight.ErrSessionNotFound
	}
	return sess.meta, nil
}

// Close implements Store.
func (s *memoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = nil
	return nil
}
