package refine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewRecord tests construction defaults.
func TestNewRecord(t *testing.T) {
	rec := NewRecord("what are quantum dots", 3)

	assert.Equal(t, "what are quantum dots", rec.Query)
	assert.Equal(t, 3, rec.MaxIterations)
	assert.Equal(t, 0, rec.Iteration)
	assert.Empty(t, rec.Notes)
	assert.False(t, rec.NeedsMore)
	assert.Empty(t, rec.FinalOutput)
}

// TestLatestNotes tests the newest-block accessor.
func TestLatestNotes(t *testing.T) {
	rec := NewRecord("q", 3)
	assert.Equal(t, "", rec.LatestNotes())

	rec.Notes = []string{"first"}
	assert.Equal(t, "first", rec.LatestNotes())

	rec.Notes = append(rec.Notes, "second")
	assert.Equal(t, "second", rec.LatestNotes())
}

// TestRecord_JSONRoundTrip tests the wire shape of a finished record.
func TestRecord_JSONRoundTrip(t *testing.T) {
	rec := Record{
		Query:         "q",
		Notes:         []string{"a", "b"},
		Iteration:     2,
		MaxIterations: 3,
		NeedsMore:     false,
		FinalOutput:   "done",
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"query": "q",
		"notes": ["a", "b"],
		"iteration": 2,
		"max_iterations": 3,
		"needs_more": false,
		"final_output": "done"
	}`, string(data))

	var decoded Record
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, rec, decoded)
}
