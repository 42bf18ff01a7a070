// Package rarity scores how unusual a pattern is relative to every
// observation recorded so far.
package rarity

import (
	"math"

	"github.com/roach88/toothdex/internal/store"
)

// MaxScore is the score of a pattern seen for the first time.
const MaxScore = 100

// Score returns an integer rarity in [0, MaxScore] for rec, given the
// submission total. Both must already include the submission being scored.
//
// A record seen once (or a nil record) scores MaxScore. Otherwise the score
// is floor(100 * (1 - sqrt(count/total))), clamped to [0, MaxScore].
func Score(rec *store.PatternRecord, total int) int {
	if rec == nil || rec.Count <= 1 || total <= 0 {
		return MaxScore
	}

	ratio := float64(rec.Count) / float64(total)
	score := int(math.Floor(MaxScore * (1 - math.Sqrt(ratio))))
	return clamp(score)
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// Tier is a coarse label for a score.
type Tier string

const (
	// TierRare marks scores that qualify for the leaderboard.
	TierRare Tier = "rare"

	// TierUncommon marks scores above 70.
	TierUncommon Tier = "uncommon"

	// TierCommon is everything else.
	TierCommon Tier = "common"
)

// Classify maps a score to its Tier.
func Classify(score int) Tier {
	switch {
	case score > 90:
		return TierRare
	case score > 70:
		return TierUncommon
	default:
		return TierCommon
	}
}
