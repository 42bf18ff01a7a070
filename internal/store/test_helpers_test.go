package store

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/roach88/toothdex/internal/pattern"
)

// createTestSQLite creates a new SQLite backend in a temp dir.
func createTestSQLite(t *testing.T) *SQLiteBackend {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	b, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() failed: %v", err)
	}
	t.Cleanup(func() { b.Close() })
	return b
}

// mustPattern builds a pattern with the given 1-based slots missing.
func mustPattern(t *testing.T, missing ...int) pattern.Pattern {
	t.Helper()
	p, err := pattern.FromMissingSlots(missing)
	if err != nil {
		t.Fatalf("FromMissingSlots(%v) failed: %v", missing, err)
	}
	return p
}

func ptr(f float64) *float64 { return &f }

// sampleState builds a small consistent state:
// full pattern submitted twice, slot 3 missing once, and one rare entry.
func sampleState(t *testing.T) *State {
	t.Helper()
	s := NewState()

	full := mustPattern(t)
	gap := mustPattern(t, 3)

	s.Upsert(pattern.Encode(full), Submission{Name: "Alice", Age: ptr(34), Timestamp: "2024-05-01 10:00:00"}, 0, full)
	s.Upsert(pattern.Encode(gap), Submission{Name: "ハナコ", Timestamp: "2024-05-01 10:05:00"}, 1, gap)
	s.Upsert(pattern.Encode(full), Submission{Name: "Bob", Age: ptr(61.5), Timestamp: "2024-05-01 11:00:00"}, 0, full)

	s.RarePatterns = append(s.RarePatterns,
		RareEntry{PatternKey: pattern.Encode(full), RarityScore: 100, DiscoveredBy: "Alice", Timestamp: "2024-05-01 10:00:00"},
	)
	return s
}

var fullKey = pattern.Key(strings.Repeat("1", pattern.Size))
