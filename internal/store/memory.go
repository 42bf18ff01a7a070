package store

import (
	"context"
	"sync"
)

// MemoryBackend keeps the encoded document in memory. It goes through the
// same Encode/Decode path as the file backend, so a round trip exercises
// schema validation too. Used by the scenario harness and tests.
type MemoryBackend struct {
	mu      sync.Mutex
	data    []byte
	saves   int
	saveErr error
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

// NewMemoryBackendWith returns a backend preloaded with a raw document.
func NewMemoryBackendWith(data []byte) *MemoryBackend {
	return &MemoryBackend{data: append([]byte(nil), data...)}
}

// Load decodes the stored document, or returns an empty state if nothing
// was saved.
func (b *MemoryBackend) Load(ctx context.Context) (*State, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.data == nil {
		return NewState(), nil
	}
	s, err := Decode(b.data)
	if err != nil {
		return nil, &PersistenceError{Op: "load", Backend: "memory", Err: err}
	}
	return s, nil
}

// Save encodes s, unless a failure was injected with FailSaves.
func (b *MemoryBackend) Save(ctx context.Context, s *State) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.saveErr != nil {
		return &PersistenceError{Op: "save", Backend: "memory", Err: b.saveErr}
	}
	data, err := Encode(s)
	if err != nil {
		return &PersistenceError{Op: "save", Backend: "memory", Err: err}
	}
	b.data = data
	b.saves++
	return nil
}

// Close is a no-op.
func (b *MemoryBackend) Close() error {
	return nil
}

// FailSaves makes every subsequent Save return err. Pass nil to recover.
func (b *MemoryBackend) FailSaves(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.saveErr = err
}

// Bytes returns a copy of the last saved document.
func (b *MemoryBackend) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.data...)
}

// Saves returns the number of successful saves.
func (b *MemoryBackend) Saves() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saves
}
