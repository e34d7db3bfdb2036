package agent

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rmurphy/refine/pkg/refine"
	"github.com/rmurphy/refine/pkg/refine/llm"
	"github.com/rmurphy/refine/pkg/refine/template"
)

// Executor is the finalizer step: it has the LLM format the accumulated
// notes into one structured final summary.
//
// Decode failures propagate so the controller substitutes its fallback
// output; the notes are never discarded.
type Executor struct {
	client llm.Client
	model  string
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithFinalizeModel overrides the client's default model.
// A smaller, faster model is usually enough for formatting.
func WithFinalizeModel(model string) ExecutorOption {
	return func(e *Executor) { e.model = model }
}

// NewExecutor creates an executor over the given client.
func NewExecutor(client llm.Client, opts ...ExecutorOption) *Executor {
	e := &Executor{client: client}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// executorReply is the strict schema of an executor model reply.
type executorReply struct {
	FinalNote string `json:"final_note"`
}

// Finalize implements refine.FinalizerFunc.
// An empty notes sequence is valid input: the model is told to say so.
func (e *Executor) Finalize(ctx refine.Context, rec refine.Record) (string, error) {
	notes := "(no notes were collected)"
	if len(rec.Notes) > 0 {
		notes = "- " + strings.Join(rec.Notes, "\n- ")
	}

	prompt := template.Expand(executorPrompt, map[string]any{
		"query": rec.Query,
		"notes": notes,
	})

	resp, err := e.client.Complete(ctx, llm.CompletionRequest{
		Model: e.model,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}

	var reply executorReply
	if err := decodeReply(resp.Content, &reply); err != nil {
		return "", fmt.Errorf("executor: %w", err)
	}
	if reply.FinalNote == "" {
		return "", errors.New("executor: reply contained no final note")
	}

	return reply.FinalNote, nil
}
