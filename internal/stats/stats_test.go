package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/toothdex/internal/combin"
	"github.com/roach88/toothdex/internal/pattern"
	"github.com/roach88/toothdex/internal/store"
)

func submit(t *testing.T, s *store.State, name string, missing ...int) {
	t.Helper()
	p, err := pattern.FromMissingSlots(missing)
	require.NoError(t, err)
	s.Upsert(pattern.Encode(p), store.Submission{Name: name}, p.Missing(), p)
}

func TestAggregate_Empty(t *testing.T) {
	sum, err := Aggregate(store.NewState())
	require.NoError(t, err)

	assert.Equal(t, 0, sum.TotalSubmissions)
	assert.Equal(t, 0, sum.UniquePatterns)
	assert.Equal(t, 0.0, sum.OverallDiscoveryRate)
	assert.Equal(t, int64(268435456), sum.TheoreticalSpace.Int64())
	for m := 0; m < Buckets; m++ {
		assert.Zero(t, sum.SubmissionsByMissingCount[m])
		assert.Zero(t, sum.DiscoveryRate[m])
	}
	assert.Equal(t, int64(40116600), sum.TheoreticalByMissingCount[14])
}

func TestAggregate_CountsSubmissionsAndDistinctPatterns(t *testing.T) {
	s := store.NewState()
	submit(t, s, "a")
	submit(t, s, "b")
	submit(t, s, "c", 1)
	submit(t, s, "d", 2)
	submit(t, s, "e", 2)
	submit(t, s, "f", 5, 6)

	sum, err := Aggregate(s)
	require.NoError(t, err)

	assert.Equal(t, 6, sum.TotalSubmissions)
	assert.Equal(t, 4, sum.UniquePatterns)

	assert.Equal(t, 2, sum.SubmissionsByMissingCount[0])
	assert.Equal(t, 3, sum.SubmissionsByMissingCount[1])
	assert.Equal(t, 1, sum.SubmissionsByMissingCount[2])

	assert.Equal(t, 1, sum.DiscoveredPatternsByMissingCount[0])
	assert.Equal(t, 2, sum.DiscoveredPatternsByMissingCount[1])
	assert.Equal(t, 1, sum.DiscoveredPatternsByMissingCount[2])

	assert.Equal(t, 100.0, sum.DiscoveryRate[0])
	assert.InDelta(t, 2.0/28.0*100, sum.DiscoveryRate[1], 1e-9)
	assert.InDelta(t, 1.0/378.0*100, sum.DiscoveryRate[2], 1e-9)
	assert.Zero(t, sum.DiscoveryRate[3])
	assert.InDelta(t, 4.0/268435456.0*100, sum.OverallDiscoveryRate, 1e-15)
}

func TestAggregate_SubmissionTotalsMatchState(t *testing.T) {
	s := store.NewState()
	for i := 1; i <= pattern.Size; i++ {
		submit(t, s, "x", i)
		submit(t, s, "y", 1, i)
	}

	sum, err := Aggregate(s)
	require.NoError(t, err)

	total := 0
	distinct := 0
	for m := 0; m < Buckets; m++ {
		total += sum.SubmissionsByMissingCount[m]
		distinct += sum.DiscoveredPatternsByMissingCount[m]
	}
	assert.Equal(t, s.TotalSubmissions, total)
	assert.Equal(t, s.UniquePatterns(), distinct)
}

func TestAggregate_Idempotent(t *testing.T) {
	s := store.NewState()
	submit(t, s, "a", 3)
	submit(t, s, "b", 3)
	before := s.Clone()

	first, err := Aggregate(s)
	require.NoError(t, err)
	second, err := Aggregate(s)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, before, s)
}

func TestAggregate_OutOfRangeMissingCount(t *testing.T) {
	s := store.NewState()
	submit(t, s, "a")
	for _, rec := range s.Patterns {
		rec.MissingCount = 40
	}

	_, err := Aggregate(s)
	require.Error(t, err)
	assert.True(t, combin.IsOutOfRange(err))
}
