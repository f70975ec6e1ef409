// cmd/newsloom/aiclient.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// GenerateRequest is one call to the text-generation backend
type GenerateRequest struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float32
	// Model overrides the backend default when non-empty
	Model string
}

// Generator is the pluggable text-generation backend. The production
// implementation talks to an OpenAI-compatible API; the stub echoes input
// deterministically and exists for offline runs and tests.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// NewGenerator selects a backend from configuration
func NewGenerator(c *Config) (Generator, error) {
	switch c.AIProvider {
	case "openai":
		return NewOpenAIGenerator(c), nil
	case "stub":
		return &StubGenerator{}, nil
	}
	return nil, NewConfigError(ErrConfigValidation, fmt.Sprintf("unknown ai_provider %q", c.AIProvider), nil)
}

// OpenAIGenerator calls an OpenAI-compatible chat completion endpoint
type OpenAIGenerator struct {
	client  *openai.Client
	limiter *rate.Limiter
	model   string
	timeout time.Duration
}

// NewOpenAIGenerator builds the production backend, honoring a base URL
// override for compatible third-party providers
func NewOpenAIGenerator(c *Config) *OpenAIGenerator {
	clientConfig := openai.DefaultConfig(c.AIAPIKey)
	if c.AIBaseURL != "" {
		clientConfig.BaseURL = c.AIBaseURL
	}

	perMin := c.AIRatePerMin
	if perMin <= 0 {
		perMin = 30
	}

	return &OpenAIGenerator{
		client:  openai.NewClientWithConfig(clientConfig),
		limiter: rate.NewLimiter(rate.Limit(float64(perMin)/60.0), perMin),
		model:   c.AIModel,
		timeout: DefaultAITimeout,
	}
}

// Generate performs one chat completion, mapping quota/auth failures to
// typed errors the callers treat as recoverable
func (g *OpenAIGenerator) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", NewAIError(ErrAIRequest, "rate limiter interrupted", err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	model := req.Model
	if model == "" {
		model = g.model
	}

	messages := []openai.ChatCompletionMessage{}
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", classifyAIError(err)
	}

	if len(resp.Choices) == 0 {
		return "", NewAIError(ErrAIResponse, "empty completion response", nil)
	}
	return resp.Choices[0].Message.Content, nil
}

// classifyAIError maps provider failures onto the error taxonomy
func classifyAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests, http.StatusPaymentRequired:
			return NewAIError(ErrAIQuota, "quota exceeded", err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return NewAIError(ErrAIRequest, "authentication failed", err)
		}
	}
	return NewAIError(ErrAIRequest, "generation request failed", err)
}

// StubGenerator is the deterministic test/offline double. It echoes a
// bounded slice of the prompt, so output depends only on input.
type StubGenerator struct {
	mu sync.Mutex
	// Responses are returned in order when set; after they run out the
	// echo behavior applies
	Responses []string
	// Err, when set, is returned by every call
	Err error

	calls int
}

// Generate implements Generator
func (s *StubGenerator) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", NewAIError(ErrAIRequest, "context cancelled", err)
	}

	s.calls++
	if s.Err != nil {
		return "", s.Err
	}
	if len(s.Responses) > 0 {
		resp := s.Responses[0]
		s.Responses = s.Responses[1:]
		return resp, nil
	}

	echo := req.Prompt
	if len(echo) > 512 {
		echo = echo[:512]
	}
	return strings.TrimSpace(echo), nil
}

// Calls reports how many times Generate ran
func (s *StubGenerator) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
