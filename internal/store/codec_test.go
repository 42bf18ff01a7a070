package store

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_DocumentLayout(t *testing.T) {
	data, err := Encode(sampleState(t))
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "sample_document", data)
}

func TestEncode_EmptyState(t *testing.T) {
	data, err := Encode(NewState())
	require.NoError(t, err)
	assert.JSONEq(t, `{"patterns":{},"total_submissions":0,"rare_patterns":[]}`, string(data))
}

func TestDecode_RoundTrip(t *testing.T) {
	s := sampleState(t)
	data, err := Encode(s)
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestDecode_AcceptsDocumentWithoutIDs(t *testing.T) {
	doc := `{
	  "patterns": {
	    "` + string(fullKey) + `": {
	      "count": 1, "missing_count": 0,
	      "pattern": [` + strings.TrimSuffix(strings.Repeat("true,", 28), ",") + `],
	      "submissions": [{"name": "Alice", "age": null, "timestamp": "2024-01-02 03:04:05"}]
	    }
	  },
	  "total_submissions": 1,
	  "rare_patterns": []
	}`

	s, err := Decode([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, 1, s.TotalSubmissions)
	assert.Nil(t, s.Patterns[fullKey].Submissions[0].Age)
}

func TestDecode_RejectsCorruptDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ``},
		{"truncated", `{"patterns": {`},
		{"not an object", `[1, 2, 3]`},
		{"negative total", `{"patterns": {}, "total_submissions": -1, "rare_patterns": []}`},
		{"bad key", `{"patterns": {"12": {"count": 1, "missing_count": 0, "pattern": [], "submissions": []}}, "total_submissions": 1, "rare_patterns": []}`},
		{"unknown field", `{"patterns": {}, "total_submissions": 0, "rare_patterns": [], "extra": true}`},
		{"score above 100", `{"patterns": {}, "total_submissions": 0, "rare_patterns": [{"pattern_key": "` + string(fullKey) + `", "rarity_score": 101, "discovered_by": "x", "timestamp": "2024-01-02 03:04:05"}]}`},
		{"bad timestamp", `{"patterns": {}, "total_submissions": 0, "rare_patterns": [{"pattern_key": "` + string(fullKey) + `", "rarity_score": 95, "discovered_by": "x", "timestamp": "yesterday"}]}`},
		{"missing total", `{"patterns": {}, "rare_patterns": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestDecode_RejectsInvariantViolation(t *testing.T) {
	s := sampleState(t)
	s.Patterns[fullKey].Count = 3
	data, err := Encode(s)
	require.NoError(t, err)

	_, err = Decode(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invariant violation")
}
