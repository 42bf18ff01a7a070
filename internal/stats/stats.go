// Package stats derives population statistics from a store snapshot.
package stats

import (
	"fmt"
	"math/big"

	"github.com/roach88/toothdex/internal/combin"
	"github.com/roach88/toothdex/internal/pattern"
	"github.com/roach88/toothdex/internal/store"
)

// Buckets is the number of distinct missing counts, 0 through pattern.Size.
const Buckets = pattern.Size + 1

// Summary is the aggregate view of a State. Index m of each array refers
// to patterns with m missing teeth.
type Summary struct {
	TotalSubmissions int `json:"total_submissions"`
	UniquePatterns   int `json:"unique_patterns"`

	SubmissionsByMissingCount        [Buckets]int     `json:"submissions_by_missing_count"`
	DiscoveredPatternsByMissingCount [Buckets]int     `json:"discovered_patterns_by_missing_count"`
	TheoreticalByMissingCount        [Buckets]int64   `json:"theoretical_by_missing_count"`
	DiscoveryRate                    [Buckets]float64 `json:"discovery_rate"`

	OverallDiscoveryRate float64  `json:"overall_discovery_rate"`
	TheoreticalSpace     *big.Int `json:"theoretical_space"`
}

// Aggregate scans s and computes the Summary. It only reads s; callers
// must hold whatever lock protects s for the duration of the call.
func Aggregate(s *store.State) (Summary, error) {
	var sum Summary

	for key, rec := range s.Patterns {
		m := rec.MissingCount
		if m < 0 || m >= Buckets {
			return Summary{}, fmt.Errorf("aggregate: pattern %s: %w", key, &combin.RangeError{N: pattern.Size, K: m})
		}
		sum.SubmissionsByMissingCount[m] += rec.Count
		sum.DiscoveredPatternsByMissingCount[m]++
	}

	for m := 0; m < Buckets; m++ {
		c, err := combin.Binomial(pattern.Size, m)
		if err != nil {
			return Summary{}, fmt.Errorf("aggregate: %w", err)
		}
		sum.TheoreticalByMissingCount[m] = c.Int64()
		sum.DiscoveryRate[m] = combin.Percent(sum.DiscoveredPatternsByMissingCount[m], c)
	}

	sum.TotalSubmissions = s.TotalSubmissions
	sum.UniquePatterns = len(s.Patterns)
	sum.TheoreticalSpace = combin.SpaceSize(pattern.Size)
	sum.OverallDiscoveryRate = combin.Percent(sum.UniquePatterns, sum.TheoreticalSpace)

	return sum, nil
}
