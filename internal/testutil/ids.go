package testutil

import (
	"fmt"
	"sync"
)

// SequenceIDs generates predictable submission IDs: "sub-0001", "sub-0002", ...
//
// This enables deterministic test execution and golden snapshot comparison.
// The same scenario with a fresh SequenceIDs produces byte-identical
// documents.
//
// Thread-safety: SequenceIDs is safe for concurrent use via internal mutex.
type SequenceIDs struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequenceIDs creates a generator with the given prefix.
// If prefix is empty, "sub" is used.
func NewSequenceIDs(prefix string) *SequenceIDs {
	if prefix == "" {
		prefix = "sub"
	}
	return &SequenceIDs{prefix: prefix}
}

// Generate returns the next ID.
//
// Implements engine.IDGenerator interface.
func (g *SequenceIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
