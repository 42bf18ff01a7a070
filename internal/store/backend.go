package store

import "context"

// Backend persists the complete State as one unit.
//
// Save must be atomic from a reader's perspective: a concurrent Load sees
// either the previous document or the new one, never a mix. Load returns
// an empty State when nothing has been saved yet and a *PersistenceError
// when stored data is unreadable or corrupt.
type Backend interface {
	Load(ctx context.Context) (*State, error)
	Save(ctx context.Context, s *State) error
	Close() error
}
