package request

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	ErrNotFound = errors.New("request not found")
	ErrExists   = errors.New("request already exists")
)

// Reader provides read operations for request records
type Reader interface {
	Get(ctx context.Context, id string) (Record, error)
	Counts(ctx context.Context) map[Status]int
}

// Writer provides write operations for request records
type Writer interface {
	Create(ctx context.Context, rec Record) error
	// Update applies fn to the stored record atomically; an error from fn leaves it unchanged
	Update(ctx context.Context, id string, fn func(*Record) error) (Record, error)
	Delete(ctx context.Context, id string) error
}

type Store interface {
	Reader
	Writer
}

/* MemoryStore is a mutex-guarded map of records
 * Callers only ever see copies, the map itself never escapes
 */
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Create(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[rec.ID]; ok {
		return fmt.Errorf("creating %s: %w", rec.ID, ErrExists)
	}
	s.records[rec.ID] = rec.clone()
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec.clone(), nil
}

func (s *MemoryStore) Update(ctx context.Context, id string, fn func(*Record) error) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	rec = rec.clone()
	if err := fn(&rec); err != nil {
		return Record{}, err
	}
	s.records[id] = rec
	return rec.clone(), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, id)
	return nil
}

// Counts returns the number of records per status
func (s *MemoryStore) Counts(ctx context.Context) map[Status]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[Status]int, 4)
	for _, rec := range s.records {
		counts[rec.Status]++
	}
	return counts
}
