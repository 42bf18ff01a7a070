package leaderboard

import (
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/toothdex/internal/pattern"
	"github.com/roach88/toothdex/internal/store"
)

// keyN returns a distinct valid key for n in [0, 2^28).
func keyN(n int) pattern.Key {
	return pattern.Key(fmt.Sprintf("%028b", n))
}

func entry(n, score int) store.RareEntry {
	return store.RareEntry{
		PatternKey:   keyN(n),
		RarityScore:  score,
		DiscoveredBy: fmt.Sprintf("user-%d", n),
		Timestamp:    "2024-01-01 00:00:00",
	}
}

func isSortedDesc(entries []store.RareEntry) bool {
	return sort.SliceIsSorted(entries, func(i, j int) bool {
		return entries[i].RarityScore > entries[j].RarityScore
	})
}

func TestMaybeInsert_BelowThresholdIgnored(t *testing.T) {
	p := DefaultPolicy()

	out, changed := p.MaybeInsert(nil, entry(1, 90))
	assert.False(t, changed)
	assert.Empty(t, out)
}

func TestMaybeInsert_QualifyingEntryAdded(t *testing.T) {
	p := DefaultPolicy()

	out, changed := p.MaybeInsert(nil, entry(1, 91))
	assert.True(t, changed)
	require.Len(t, out, 1)
	assert.Equal(t, keyN(1), out[0].PatternKey)
}

func TestMaybeInsert_DuplicateKeyKeepsFirstDiscovery(t *testing.T) {
	p := DefaultPolicy()
	entries, _ := p.MaybeInsert(nil, entry(1, 95))
	entries, _ = p.MaybeInsert(entries, entry(2, 93))

	again := entry(1, 100)
	again.DiscoveredBy = "late"
	out, changed := p.MaybeInsert(entries, again)

	assert.False(t, changed)
	require.Len(t, out, 2)
	assert.Equal(t, keyN(1), out[0].PatternKey)
	assert.Equal(t, 95, out[0].RarityScore)
	assert.Equal(t, "user-1", out[0].DiscoveredBy)
}

func TestMaybeInsert_BoundedAndSorted(t *testing.T) {
	p := DefaultPolicy()
	var entries []store.RareEntry

	scores := []int{91, 99, 92, 100, 95, 93, 97, 94, 96, 98, 100, 91, 99, 92}
	for i, s := range scores {
		entries, _ = p.MaybeInsert(entries, entry(i, s))
		assert.LessOrEqual(t, len(entries), DefaultSize)
		assert.True(t, isSortedDesc(entries), "unsorted after insert %d", i)
	}

	require.Len(t, entries, DefaultSize)
	assert.Equal(t, 100, entries[0].RarityScore)
	assert.Equal(t, 93, entries[DefaultSize-1].RarityScore)
}

func TestMaybeInsert_LowScoreFallsOffFullBoard(t *testing.T) {
	p := Policy{Size: 2, Threshold: 90}
	entries := []store.RareEntry{entry(1, 99), entry(2, 98)}

	out, changed := p.MaybeInsert(entries, entry(3, 91))

	assert.False(t, changed)
	assert.Equal(t, entries, out)
}

func TestPolicy_Validate(t *testing.T) {
	assert.NoError(t, DefaultPolicy().Validate())
	assert.NoError(t, Policy{Size: 1, Threshold: 100}.Validate())

	err := Policy{Size: 11, Threshold: 90}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "size 11")

	assert.Error(t, Policy{Size: 0, Threshold: 90}.Validate())

	err = Policy{Size: 10, Threshold: 89}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "threshold 89")
}

func TestMaybeInsert_TiesKeepInsertionOrder(t *testing.T) {
	p := DefaultPolicy()
	var entries []store.RareEntry
	for i := 0; i < 3; i++ {
		entries, _ = p.MaybeInsert(entries, entry(i, 100))
	}

	require.Len(t, entries, 3)
	for i := range entries {
		assert.Equal(t, keyN(i), entries[i].PatternKey)
	}
}

func TestMaybeInsert_DoesNotMutateInput(t *testing.T) {
	p := DefaultPolicy()
	entries := []store.RareEntry{entry(1, 92), entry(2, 91)}
	orig := append([]store.RareEntry(nil), entries...)

	_, changed := p.MaybeInsert(entries, entry(3, 100))

	assert.True(t, changed)
	assert.Equal(t, orig, entries)
}

func TestRows_JoinsMissingCount(t *testing.T) {
	s := store.NewState()
	full := pattern.Full()
	gap, err := pattern.FromMissingSlots([]int{4, 5})
	require.NoError(t, err)

	s.Upsert(pattern.Encode(full), store.Submission{Name: "a"}, 0, full)
	s.Upsert(pattern.Encode(gap), store.Submission{Name: "b"}, 2, gap)
	s.RarePatterns = []store.RareEntry{
		{PatternKey: pattern.Encode(gap), RarityScore: 100, DiscoveredBy: "b"},
		{PatternKey: pattern.Encode(full), RarityScore: 99, DiscoveredBy: "a"},
		{PatternKey: pattern.Key(strings.Repeat("0", pattern.Size)), RarityScore: 92, DiscoveredBy: "ghost"},
	}

	rows := Rows(s)

	require.Len(t, rows, 3)
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, 2, rows[0].MissingCount)
	assert.Equal(t, 0, rows[1].MissingCount)
	assert.Equal(t, -1, rows[2].MissingCount)
	assert.Equal(t, 3, rows[2].Rank)
}
