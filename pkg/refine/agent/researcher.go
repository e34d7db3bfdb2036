package agent

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rmurphy/refine/pkg/refine"
	"github.com/rmurphy/refine/pkg/refine/llm"
	"github.com/rmurphy/refine/pkg/refine/template"
)

// Researcher is the producer step: it queries the LLM for factual findings
// about the record's query and proposes whether another pass is needed.
type Researcher struct {
	client llm.Client
	model  string
}

// ResearcherOption configures a Researcher.
type ResearcherOption func(*Researcher)

// WithResearchModel overrides the client's default model.
func WithResearchModel(model string) ResearcherOption {
	return func(r *Researcher) { r.model = model }
}

// NewResearcher creates a researcher over the given client.
func NewResearcher(client llm.Client, opts ...ResearcherOption) *Researcher {
	r := &Researcher{client: client}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// researchReply is the strict schema of a researcher model reply.
type researchReply struct {
	Notes     []string `json:"notes"`
	NeedsMore bool     `json:"needs_more"`
}

// Produce implements refine.ProducerFunc.
//
// The findings of one pass are joined into a single notes block, so the
// record grows by one block per refinement step.
func (r *Researcher) Produce(ctx refine.Context, rec refine.Record) (refine.StepResult, error) {
	prior := "(none)"
	if len(rec.Notes) > 0 {
		prior = strings.Join(rec.Notes, "\n---\n")
	}

	prompt := template.Expand(researcherPrompt, map[string]any{
		"query":          rec.Query,
		"iteration":      rec.Iteration + 1,
		"max_iterations": rec.MaxIterations,
		"prior_notes":    prior,
	})

	resp, err := r.client.Complete(ctx, llm.CompletionRequest{
		Model: r.model,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: prompt},
		},
	})
	if err != nil {
		return refine.StepResult{}, err
	}

	var reply researchReply
	if err := decodeReply(resp.Content, &reply); err != nil {
		return refine.StepResult{}, fmt.Errorf("researcher: %w", err)
	}
	if len(reply.Notes) == 0 {
		return refine.StepResult{}, errors.New("researcher: reply contained no notes")
	}

	return refine.StepResult{
		Notes:     []string{strings.Join(reply.Notes, "\n")},
		NeedsMore: reply.NeedsMore,
	}, nil
}
