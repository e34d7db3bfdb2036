package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// completionFixture is a minimal valid chat completions reply.
const completionFixture = `{
	"model": "llama-3.3-70b-versatile",
	"choices": [{
		"message": {"content": "  hello  "},
		"finish_reason": "stop"
	}],
	"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
}`

// newTestServer returns a Groq client wired to a local server running fn.
func newTestServer(t *testing.T, fn http.HandlerFunc) *Groq {
	t.Helper()
	server := httptest.NewServer(fn)
	t.Cleanup(server.Close)
	return NewGroq("test-key", WithBaseURL(server.URL))
}

// TestGroq_Complete tests a successful call end to end.
func TestGroq_Complete(t *testing.T) {
	var captured chatRequest
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(completionFixture))
	})

	resp, err := client.Complete(context.Background(), CompletionRequest{
		SystemPrompt: "be terse",
		Messages:     []Message{{Role: RoleUser, Content: "hi"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Content) // whitespace trimmed
	assert.Equal(t, "stop", resp.FinishReason)
	assert.Equal(t, "llama-3.3-70b-versatile", resp.Model)
	assert.Equal(t, TokenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}, resp.Usage)
	assert.Greater(t, resp.Duration, time.Duration(0))

	// System prompt is prepended as the first message.
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	assert.Equal(t, "be terse", captured.Messages[0].Content)
	assert.Equal(t, "user", captured.Messages[1].Role)
	assert.Equal(t, DefaultGroqModel, captured.Model)
}

// TestGroq_ModelPriority tests request > client default model selection.
func TestGroq_ModelPriority(t *testing.T) {
	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(completionFixture))
	}))
	defer server.Close()

	client := NewGroq("k", WithBaseURL(server.URL), WithModel("client-default"))

	_, err := client.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "client-default", captured.Model)

	_, err = client.Complete(context.Background(), CompletionRequest{
		Model:    "per-request",
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "per-request", captured.Model)
}

// TestGroq_MaxTokensFallthrough tests the client-level token cap.
func TestGroq_MaxTokensFallthrough(t *testing.T) {
	var captured chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte(completionFixture))
	}))
	defer server.Close()

	client := NewGroq("k", WithBaseURL(server.URL), WithMaxTokens(512))

	_, err := client.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 512, captured.MaxTokens)

	_, err = client.Complete(context.Background(), CompletionRequest{
		MaxTokens: 64,
		Messages:  []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 64, captured.MaxTokens)
}

// TestGroq_RateLimited tests that 429 is surfaced as retryable.
func TestGroq_RateLimited(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "rate limit exceeded", "type": "tokens"}}`))
	})

	_, err := client.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})

	var llmErr *Error
	require.ErrorAs(t, err, &llmErr)
	assert.True(t, llmErr.Retryable)
	assert.Contains(t, llmErr.Error(), "rate limit exceeded")
}

// TestGroq_ServerError tests that 5xx is retryable.
func TestGroq_ServerError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("upstream down"))
	})

	_, err := client.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})

	var llmErr *Error
	require.ErrorAs(t, err, &llmErr)
	assert.True(t, llmErr.Retryable)
}

// TestGroq_BadRequest tests that 4xx (other than 429) is not retryable.
func TestGroq_BadRequest(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": {"message": "invalid api key"}}`))
	})

	_, err := client.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})

	var llmErr *Error
	require.ErrorAs(t, err, &llmErr)
	assert.False(t, llmErr.Retryable)
	assert.Contains(t, llmErr.Error(), "invalid api key")
}

// TestGroq_NoChoices tests an empty choices array.
func TestGroq_NoChoices(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"model": "m", "choices": []}`))
	})

	_, err := client.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})

	var llmErr *Error
	require.ErrorAs(t, err, &llmErr)
	assert.False(t, llmErr.Retryable)
	assert.Contains(t, llmErr.Error(), "no choices")
}

// TestGroq_MalformedBody tests an unparsable success reply.
func TestGroq_MalformedBody(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})

	_, err := client.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})

	var llmErr *Error
	require.ErrorAs(t, err, &llmErr)
	assert.False(t, llmErr.Retryable)
}

// TestGroq_ContextCancelled tests that caller cancellation is retryable
// and wraps context.Canceled.
func TestGroq_ContextCancelled(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
		w.Write([]byte(completionFixture))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Complete(ctx, CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})

	var llmErr *Error
	require.ErrorAs(t, err, &llmErr)
	assert.True(t, llmErr.Retryable)
	assert.ErrorIs(t, err, context.Canceled)
}

// TestError_Unwrap tests errors.Is through the wrapper.
func TestError_Unwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := NewError("complete", cause, true)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "llm complete: underlying", err.Error())
}

// TestTokenUsage_Add tests usage accumulation.
func TestTokenUsage_Add(t *testing.T) {
	total := TokenUsage{InputTokens: 1, OutputTokens: 2, TotalTokens: 3}
	total.Add(TokenUsage{InputTokens: 10, OutputTokens: 20, TotalTokens: 30})

	assert.Equal(t, TokenUsage{InputTokens: 11, OutputTokens: 22, TotalTokens: 33}, total)
}
