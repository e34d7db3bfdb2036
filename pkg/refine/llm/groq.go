package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultGroqBaseURL is the OpenAI-compatible Groq API endpoint.
const DefaultGroqBaseURL = "https://api.groq.com/openai/v1"

// DefaultGroqModel is used when neither the client nor the request names one.
const DefaultGroqModel = "llama-3.3-70b-versatile"

// Groq implements Client against Groq's chat completions API.
type Groq struct {
	apiKey     string
	model      string
	baseURL    string
	timeout    time.Duration
	maxTokens  int
	httpClient *http.Client
}

// GroqOption configures Groq.
type GroqOption func(*Groq)

// NewGroq creates a new Groq client.
// The API key is required; everything else has sensible defaults.
func NewGroq(apiKey string, opts ...GroqOption) *Groq {
	g := &Groq{
		apiKey:     apiKey,
		model:      DefaultGroqModel,
		baseURL:    DefaultGroqBaseURL,
		timeout:    2 * time.Minute,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// WithModel sets the default model.
func WithModel(model string) GroqOption {
	return func(g *Groq) { g.model = model }
}

// WithBaseURL overrides the API endpoint. Useful for tests and proxies.
func WithBaseURL(url string) GroqOption {
	return func(g *Groq) { g.baseURL = strings.TrimRight(url, "/") }
}

// WithTimeout sets the per-call timeout. Zero disables the client-side bound.
func WithTimeout(d time.Duration) GroqOption {
	return func(g *Groq) { g.timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) GroqOption {
	return func(g *Groq) { g.httpClient = c }
}

// WithMaxTokens caps reply length for requests that don't set their own.
func WithMaxTokens(n int) GroqOption {
	return func(g *Groq) { g.maxTokens = n }
}

// chatRequest is the wire format of a chat completions call.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the wire format of a chat completions reply.
type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// apiError is the wire format of an error reply.
type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete implements Client.
func (g *Groq) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	body, err := json.Marshal(g.buildRequest(req))
	if err != nil {
		return nil, NewError("complete", fmt.Errorf("encode request: %w", err), false)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, NewError("complete", fmt.Errorf("build request: %w", err), false)
	}
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := g.httpClient.Do(httpReq)
	if err != nil {
		// Context expiry (caller timeout per the resource model) is
		// reported as a retryable transport failure.
		if ctx.Err() != nil {
			return nil, NewError("complete", ctx.Err(), true)
		}
		return nil, NewError("complete", err, true)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, NewError("complete", fmt.Errorf("read response: %w", err), true)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, g.statusError(httpResp.StatusCode, data)
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, NewError("complete", fmt.Errorf("decode response: %w", err), false)
	}
	if len(parsed.Choices) == 0 {
		return nil, NewError("complete", fmt.Errorf("response contained no choices"), false)
	}

	return &CompletionResponse{
		Content:      strings.TrimSpace(parsed.Choices[0].Message.Content),
		Model:        parsed.Model,
		FinishReason: parsed.Choices[0].FinishReason,
		Usage: TokenUsage{
			InputTokens:  parsed.Usage.PromptTokens,
			OutputTokens: parsed.Usage.CompletionTokens,
			TotalTokens:  parsed.Usage.TotalTokens,
		},
		Duration: time.Since(start),
	}, nil
}

// buildRequest maps a CompletionRequest onto the wire format.
func (g *Groq) buildRequest(req CompletionRequest) chatRequest {
	// Model priority: request > client default
	model := g.model
	if req.Model != "" {
		model = req.Model
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = g.maxTokens
	}

	messages := make([]chatMessage, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: string(RoleSystem), Content: req.SystemPrompt})
	}
	for _, m := range req.Messages {
		messages = append(messages, chatMessage{Role: string(m.Role), Content: m.Content})
	}

	return chatRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
	}
}

// statusError converts a non-200 reply into an *Error.
func (g *Groq) statusError(status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	var parsed apiError
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		msg = parsed.Error.Message
	}

	retryable := status == http.StatusTooManyRequests || status >= 500 || isRetryableMessage(msg)
	return NewError("complete", fmt.Errorf("status %d: %s", status, msg), retryable)
}

// isRetryableMessage checks if an error message indicates a transient failure.
func isRetryableMessage(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "rate limit") ||
		strings.Contains(lower, "timeout") ||
		strings.Contains(lower, "overloaded")
}
