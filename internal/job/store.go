package job

import (
	"sort"
	"sync"

	"github.com/baixafy/baixafy-api/internal/apperror"
)

// Store is the in-memory table of job records and the sole state shared
// between the submission path, the workers and the pollers. All durable
// state lives elsewhere; records survive only for the process lifetime and
// the retention window.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*Record
}

func NewStore() *Store {
	return &Store{jobs: make(map[string]*Record)}
}

// Create inserts a new record. Ids are generated from a CSPRNG and never
// reused, so a collision here indicates a caller bug.
func (s *Store) Create(r *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[r.ID]; ok {
		return apperror.New(apperror.Conflict, "job id already exists")
	}
	cp := *r
	s.jobs[r.ID] = &cp
	return nil
}

// Get returns a snapshot of the record, so pollers never observe a
// partially written update.
func (s *Store) Get(id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.jobs[id]
	if !ok {
		return Record{}, false
	}
	return *r, true
}

// Update applies fn as an atomic read-modify-write. It enforces two record
// invariants regardless of what fn does: a terminal record is never mutated
// again, and progress never decreases.
func (s *Store) Update(id string, fn func(*Record)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.jobs[id]
	if !ok || r.Status.Terminal() {
		return
	}
	prev := r.Progress
	fn(r)
	if r.Progress < prev {
		r.Progress = prev
	}
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, id)
}

// List returns snapshots of all records, newest first.
func (s *Store) List() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, 0, len(s.jobs))
	for _, r := range s.jobs {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
