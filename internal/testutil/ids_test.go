package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequenceIDs_Increments(t *testing.T) {
	gen := NewSequenceIDs("")

	assert.Equal(t, "sub-0001", gen.Generate())
	assert.Equal(t, "sub-0002", gen.Generate())
	assert.Equal(t, "sub-0003", gen.Generate())
}

func TestSequenceIDs_CustomPrefix(t *testing.T) {
	gen := NewSequenceIDs("scenario")
	assert.Equal(t, "scenario-0001", gen.Generate())
}

func TestSequenceIDs_ThreadSafe(t *testing.T) {
	gen := NewSequenceIDs("")

	var mu sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				id := gen.Generate()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 1000)
}
