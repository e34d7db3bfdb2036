package agent

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmurphy/refine/pkg/refine"
)

// TestResearcher_Produce tests a well-formed reply.
func TestResearcher_Produce(t *testing.T) {
	client := &fakeClient{replies: []string{
		`{"notes": ["finding one", "finding two"], "needs_more": true}`,
	}}
	researcher := NewResearcher(client)

	res, err := researcher.Produce(testCtx(), refine.NewRecord("quantum dots", 3))

	require.NoError(t, err)
	assert.Equal(t, []string{"finding one\nfinding two"}, res.Notes)
	assert.True(t, res.NeedsMore)
}

// TestResearcher_PromptContents tests what the model is asked.
func TestResearcher_PromptContents(t *testing.T) {
	client := &fakeClient{replies: []string{`{"notes": ["f"], "needs_more": false}`}}
	researcher := NewResearcher(client)

	rec := refine.NewRecord("quantum dots", 3)
	rec.Notes = []string{"earlier block"}
	rec.Iteration = 1

	_, err := researcher.Produce(testCtx(), rec)

	require.NoError(t, err)
	require.Len(t, client.calls, 1)
	prompt := client.calls[0].Messages[0].Content
	assert.Contains(t, prompt, "quantum dots")
	assert.Contains(t, prompt, "Research pass: 2 of 3")
	assert.Contains(t, prompt, "earlier block")
	assert.NotContains(t, prompt, "${") // all placeholders resolved
}

// TestResearcher_NoPriorNotes tests the first-pass placeholder.
func TestResearcher_NoPriorNotes(t *testing.T) {
	client := &fakeClient{replies: []string{`{"notes": ["f"], "needs_more": false}`}}
	researcher := NewResearcher(client)

	_, err := researcher.Produce(testCtx(), refine.NewRecord("q", 3))

	require.NoError(t, err)
	assert.Contains(t, client.calls[0].Messages[0].Content, "(none)")
}

// TestResearcher_FencedReply tests markdown fence stripping.
func TestResearcher_FencedReply(t *testing.T) {
	client := &fakeClient{replies: []string{
		"```json\n{\"notes\": [\"f\"], \"needs_more\": false}\n```",
	}}
	researcher := NewResearcher(client)

	res, err := researcher.Produce(testCtx(), refine.NewRecord("q", 3))

	require.NoError(t, err)
	assert.Equal(t, []string{"f"}, res.Notes)
}

// TestResearcher_ProseReply tests that a non-JSON reply fails the step.
func TestResearcher_ProseReply(t *testing.T) {
	client := &fakeClient{replies: []string{"Here are my findings: ..."}}
	researcher := NewResearcher(client)

	_, err := researcher.Produce(testCtx(), refine.NewRecord("q", 3))

	assert.ErrorContains(t, err, "not the expected JSON object")
}

// TestResearcher_EmptyNotes tests that a reply with no findings fails.
func TestResearcher_EmptyNotes(t *testing.T) {
	client := &fakeClient{replies: []string{`{"notes": [], "needs_more": false}`}}
	researcher := NewResearcher(client)

	_, err := researcher.Produce(testCtx(), refine.NewRecord("q", 3))

	assert.ErrorContains(t, err, "no notes")
}

// TestResearcher_ClientError tests transport failure propagation.
func TestResearcher_ClientError(t *testing.T) {
	boom := errors.New("connection refused")
	researcher := NewResearcher(&fakeClient{err: boom})

	_, err := researcher.Produce(testCtx(), refine.NewRecord("q", 3))

	assert.ErrorIs(t, err, boom)
}

// TestResearcher_ModelOverride tests WithResearchModel.
func TestResearcher_ModelOverride(t *testing.T) {
	client := &fakeClient{replies: []string{`{"notes": ["f"], "needs_more": false}`}}
	researcher := NewResearcher(client, WithResearchModel("llama-3.1-8b-instant"))

	_, err := researcher.Produce(testCtx(), refine.NewRecord("q", 3))

	require.NoError(t, err)
	assert.Equal(t, "llama-3.1-8b-instant", client.calls[0].Model)
}
