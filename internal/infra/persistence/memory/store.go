// Package memory holds the document blob in process memory. It is the
// adapter used by tests and by ephemeral tooling runs.
package memory

import (
	"context"
	"sync"

	"farmcore/pkg/domain"
)

var _ domain.Adapter = (*Store)(nil)

// Store is a mutex-guarded byte slot. The failure hooks let tests inject
// faults on specific calls.
type Store struct {
	mu     sync.Mutex
	data   []byte
	loaded bool

	// LoadErr and SaveErr, when set, are returned by the next matching
	// call before any state changes.
	LoadErr error
	SaveErr error
}

// New returns an empty in-memory adapter.
func New() *Store { return &Store{} }

func (s *Store) Load(_ context.Context) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.LoadErr != nil {
		return nil, false, s.LoadErr
	}
	if !s.loaded {
		return nil, false, nil
	}
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out, true, nil
}

func (s *Store) Save(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.data = make([]byte, len(data))
	copy(s.data, data)
	s.loaded = true
	return nil
}

// Bytes returns a copy of the stored blob, or nil when nothing was saved.
func (s *Store) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		return nil
	}
	out := make([]byte, len(s.data))
	copy(out, s.data)
	return out
}
