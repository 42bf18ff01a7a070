package store

import (
	"fmt"
	"sort"

	"github.com/roach88/toothdex/internal/pattern"
)

// Check verifies the per-record invariants that cannot be repaired.
// A record whose pattern disagrees with its key, whose count differs from
// its submission log, or whose missing count is not derived from its
// pattern means the document is corrupt.
func Check(s *State) error {
	if s.Patterns == nil {
		return fmt.Errorf("patterns map is missing")
	}

	keys := make([]string, 0, len(s.Patterns))
	for k := range s.Patterns {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	for _, k := range keys {
		key := pattern.Key(k)
		rec := s.Patterns[key]
		if rec == nil {
			return fmt.Errorf("pattern %s: null record", k)
		}

		p, err := pattern.Decode(key)
		if err != nil {
			return fmt.Errorf("pattern %s: %w", k, err)
		}
		if !pattern.Equal(p, rec.Pattern) {
			return fmt.Errorf("pattern %s: stored pattern does not match key", k)
		}
		if rec.MissingCount != p.Missing() {
			return fmt.Errorf("pattern %s: missing_count %d, derived %d", k, rec.MissingCount, p.Missing())
		}
		if rec.Count < 1 {
			return fmt.Errorf("pattern %s: count %d < 1", k, rec.Count)
		}
		if rec.Count != len(rec.Submissions) {
			return fmt.Errorf("pattern %s: count %d but %d submissions", k, rec.Count, len(rec.Submissions))
		}
	}
	return nil
}

// Repair restores the invariants that are derivable from the records:
// the submission total and leaderboard membership, order and uniqueness.
// Returns one note per fix applied; an empty result means s was consistent.
func Repair(s *State) []string {
	var notes []string

	total := 0
	for _, rec := range s.Patterns {
		total += rec.Count
	}
	if total != s.TotalSubmissions {
		notes = append(notes, fmt.Sprintf("total_submissions %d recomputed as %d", s.TotalSubmissions, total))
		s.TotalSubmissions = total
	}

	if s.RarePatterns == nil {
		s.RarePatterns = []RareEntry{}
	}

	seen := make(map[pattern.Key]bool, len(s.RarePatterns))
	kept := s.RarePatterns[:0]
	for _, e := range s.RarePatterns {
		switch {
		case s.Patterns[e.PatternKey] == nil:
			notes = append(notes, fmt.Sprintf("rare pattern %s dropped: unknown key", e.PatternKey))
		case seen[e.PatternKey]:
			notes = append(notes, fmt.Sprintf("rare pattern %s dropped: duplicate", e.PatternKey))
		default:
			seen[e.PatternKey] = true
			kept = append(kept, e)
		}
	}
	s.RarePatterns = kept

	if !sort.SliceIsSorted(s.RarePatterns, func(i, j int) bool {
		return s.RarePatterns[i].RarityScore > s.RarePatterns[j].RarityScore
	}) {
		sort.SliceStable(s.RarePatterns, func(i, j int) bool {
			return s.RarePatterns[i].RarityScore > s.RarePatterns[j].RarityScore
		})
		notes = append(notes, "rare patterns re-sorted by score")
	}

	return notes
}
