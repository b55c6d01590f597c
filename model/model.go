package model

import (
	"context"
	"fmt"
	"sync"
)

// Request captures the normalized model input assembled by an agent: one
// fully built prompt. The Agent field carries the requesting agent's name so
// providers and mocks can attribute calls without parsing prompt text.
type Request struct {
	Agent  string `json:"agent"`
	Prompt string `json:"prompt"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the final completion returned by a model.
type Response struct {
	Text         string      `json:"text"`
	FinishReason string      `json:"finish_reason"` // "stop", "length", etc.
	Usage        *TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Model is the minimal interface required by agents to drive completion.
type Model interface {
	// Complete performs a single blocking completion call.
	Complete(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// Mock is a lightweight in-memory Model useful for tests & examples. Canned
// completions and failures are keyed by the requesting agent's name, and
// every request is recorded for later inspection. Safe for concurrent use.
type Mock struct {
	info      Info
	mu        sync.Mutex
	responses map[string]string
	failures  map[string]error
	requests  []Request
}

// NewMock constructs a Mock model.
func NewMock(name, provider string) *Mock {
	return &Mock{
		info:      Info{Name: name, Provider: provider},
		responses: make(map[string]string),
		failures:  make(map[string]error),
	}
}

// AddResponse registers a deterministic canned completion for an agent.
func (m *Mock) AddResponse(agent, response string) { m.responses[agent] = response }

// AddFailure makes every call from the named agent fail with err.
func (m *Mock) AddFailure(agent string, err error) { m.failures[agent] = err }

// Complete implements Model; returns the canned completion or failure for
// the requesting agent, or a generic echo when nothing was registered.
func (m *Mock) Complete(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.requests = append(m.requests, req)
	err := m.failures[req.Agent]
	text := m.responses[req.Agent]
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if text == "" {
		text = fmt.Sprintf("Mock response for agent: %s", req.Agent)
	}

	return &Response{Text: text, FinishReason: "stop"}, nil
}

// Requests returns a copy of every request observed so far, in call order
// for sequential callers. Order between concurrent callers is arbitrary.
func (m *Mock) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Request, len(m.requests))
	copy(out, m.requests)

	return out
}

// RequestFor returns the last recorded request issued by the named agent.
func (m *Mock) RequestFor(agent string) (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := len(m.requests) - 1; i >= 0; i-- {
		if m.requests[i].Agent == agent {
			return m.requests[i], true
		}
	}

	return Request{}, false
}

// Info implements Model interface.
func (m *Mock) Info() Info { return m.info }
