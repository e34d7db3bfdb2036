package agent

import (
	"context"

	"github.com/rmurphy/refine/pkg/refine"
	"github.com/rmurphy/refine/pkg/refine/llm"
)

// fakeClient replays scripted replies and records every request.
type fakeClient struct {
	replies []string
	err     error
	calls   []llm.CompletionRequest
}

func (f *fakeClient) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}

	reply := ""
	if len(f.replies) > 0 {
		reply = f.replies[0]
		f.replies = f.replies[1:]
	}
	return &llm.CompletionResponse{Content: reply}, nil
}

// testCtx returns a fresh execution context for agent tests.
func testCtx() refine.Context {
	return refine.NewContext(context.Background())
}
