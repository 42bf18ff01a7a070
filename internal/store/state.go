package store

import (
	"github.com/roach88/toothdex/internal/pattern"
)

// TimestampLayout is the local-time format of every persisted timestamp.
const TimestampLayout = "2006-01-02 15:04:05"

// Submission is one observation of a pattern.
type Submission struct {
	ID        string   `json:"id,omitempty"`
	Name      string   `json:"name"`
	Age       *float64 `json:"age"`
	Timestamp string   `json:"timestamp"`
}

// PatternRecord aggregates every submission of one distinct pattern.
//
// INVARIANTS:
//   - Count == len(Submissions)
//   - MissingCount is derived from Pattern once, at creation
//   - Pattern never changes after creation
type PatternRecord struct {
	Count        int             `json:"count"`
	MissingCount int             `json:"missing_count"`
	Pattern      pattern.Pattern `json:"pattern"`
	Submissions  []Submission    `json:"submissions"`
}

// RareEntry is one leaderboard row as persisted.
type RareEntry struct {
	PatternKey   pattern.Key `json:"pattern_key"`
	RarityScore  int         `json:"rarity_score"`
	DiscoveredBy string      `json:"discovered_by"`
	Timestamp    string      `json:"timestamp"`
}

// State is the complete aggregate store.
//
// INVARIANTS:
//   - TotalSubmissions == sum of Patterns[*].Count
//   - RarePatterns is sorted descending by RarityScore, holds at most one
//     entry per key, and every key resolves in Patterns
type State struct {
	Patterns         map[pattern.Key]*PatternRecord `json:"patterns"`
	TotalSubmissions int                            `json:"total_submissions"`
	RarePatterns     []RareEntry                    `json:"rare_patterns"`
}

// NewState returns an empty state with all invariants satisfied.
func NewState() *State {
	return &State{
		Patterns:     make(map[pattern.Key]*PatternRecord),
		RarePatterns: []RareEntry{},
	}
}

// Upsert records one submission of p under key.
//
// An existing record gets the submission appended and its count
// incremented; otherwise a record with Count 1 is created. The total is
// incremented in both cases. Returns true if the pattern was new.
func (s *State) Upsert(key pattern.Key, sub Submission, missingCount int, p pattern.Pattern) bool {
	s.TotalSubmissions++

	if rec, ok := s.Patterns[key]; ok {
		rec.Count++
		rec.Submissions = append(rec.Submissions, sub)
		return false
	}

	s.Patterns[key] = &PatternRecord{
		Count:        1,
		MissingCount: missingCount,
		Pattern:      p.Clone(),
		Submissions:  []Submission{sub},
	}
	return true
}

// Record returns the record for key, or nil.
func (s *State) Record(key pattern.Key) *PatternRecord {
	return s.Patterns[key]
}

// UniquePatterns returns the number of distinct patterns.
func (s *State) UniquePatterns() int {
	return len(s.Patterns)
}

// Clone returns a deep copy of s that shares no mutable memory with it.
func (s *State) Clone() *State {
	out := &State{
		Patterns:         make(map[pattern.Key]*PatternRecord, len(s.Patterns)),
		TotalSubmissions: s.TotalSubmissions,
		RarePatterns:     make([]RareEntry, len(s.RarePatterns)),
	}
	copy(out.RarePatterns, s.RarePatterns)

	for k, rec := range s.Patterns {
		subs := make([]Submission, len(rec.Submissions))
		for i, sub := range rec.Submissions {
			subs[i] = sub
			if sub.Age != nil {
				age := *sub.Age
				subs[i].Age = &age
			}
		}
		out.Patterns[k] = &PatternRecord{
			Count:        rec.Count,
			MissingCount: rec.MissingCount,
			Pattern:      rec.Pattern.Clone(),
			Submissions:  subs,
		}
	}
	return out
}
