// Package leaderboard keeps the bounded ranking of the rarest distinct
// pattern discoveries.
package leaderboard

import (
	"fmt"
	"sort"

	"github.com/roach88/toothdex/internal/pattern"
	"github.com/roach88/toothdex/internal/store"
)

const (
	// DefaultSize is the number of entries kept.
	DefaultSize = 10

	// DefaultThreshold is the score an entry must exceed to qualify.
	DefaultThreshold = 90
)

// Policy controls admission to the leaderboard.
type Policy struct {
	Size      int
	Threshold int
}

// DefaultPolicy returns the top-10, score > 90 policy.
func DefaultPolicy() Policy {
	return Policy{Size: DefaultSize, Threshold: DefaultThreshold}
}

// Validate checks that p keeps the board within the stored document's
// bounds: at most DefaultSize entries, each scoring above at least
// DefaultThreshold.
func (p Policy) Validate() error {
	if p.Size < 1 || p.Size > DefaultSize {
		return fmt.Errorf("size %d: must be in [1,%d]", p.Size, DefaultSize)
	}
	if p.Threshold < DefaultThreshold || p.Threshold > 100 {
		return fmt.Errorf("threshold %d: must be in [%d,100]", p.Threshold, DefaultThreshold)
	}
	return nil
}

// Qualifies reports whether score is high enough to be ranked.
func (p Policy) Qualifies(score int) bool {
	return score > p.Threshold
}

// MaybeInsert returns entries with e added, re-sorted descending by score
// and truncated to p.Size, and true. It returns entries unchanged and false
// if e does not qualify, its key is already ranked (the first discovery of
// a pattern keeps its place), or it falls off a full board.
//
// The input slice is never modified. Ties keep insertion order.
func (p Policy) MaybeInsert(entries []store.RareEntry, e store.RareEntry) ([]store.RareEntry, bool) {
	if !p.Qualifies(e.RarityScore) || Contains(entries, e.PatternKey) {
		return entries, false
	}

	out := make([]store.RareEntry, 0, len(entries)+1)
	out = append(out, entries...)
	out = append(out, e)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RarityScore > out[j].RarityScore
	})
	out = p.Trim(out)
	if !Contains(out, e.PatternKey) {
		return entries, false
	}
	return out, true
}

// Trim truncates entries to p.Size.
func (p Policy) Trim(entries []store.RareEntry) []store.RareEntry {
	if p.Size >= 0 && len(entries) > p.Size {
		return entries[:p.Size]
	}
	return entries
}

// Contains reports whether key is ranked in entries.
func Contains(entries []store.RareEntry, key pattern.Key) bool {
	for _, e := range entries {
		if e.PatternKey == key {
			return true
		}
	}
	return false
}

// Row is a display row: a ranked entry joined with its pattern record.
type Row struct {
	Rank         int         `json:"rank"`
	PatternKey   pattern.Key `json:"pattern_key"`
	DiscoveredBy string      `json:"discovered_by"`
	RarityScore  int         `json:"rarity_score"`
	MissingCount int         `json:"missing_count"`
	Timestamp    string      `json:"timestamp"`
}

// Rows renders the ranking of s. MissingCount is -1 for an entry whose key
// does not resolve, which a repaired state never contains.
func Rows(s *store.State) []Row {
	rows := make([]Row, 0, len(s.RarePatterns))
	for i, e := range s.RarePatterns {
		missing := -1
		if rec := s.Record(e.PatternKey); rec != nil {
			missing = rec.MissingCount
		}
		rows = append(rows, Row{
			Rank:         i + 1,
			PatternKey:   e.PatternKey,
			DiscoveredBy: e.DiscoveredBy,
			RarityScore:  e.RarityScore,
			MissingCount: missing,
			Timestamp:    e.Timestamp,
		})
	}
	return rows
}
