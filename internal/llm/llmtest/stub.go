// Package llmtest provides a scripted llm.Client for tests.
package llmtest

import (
	"context"
	"iter"
	"sync"

	"github.com/jonathan/interview-coach/internal/llm"
)

// Stub is an llm.Client that returns canned output and records every call.
type Stub struct {
	// JSON is returned by GenerateContent and GenerateJSON unless JSONFunc is set.
	JSON     string
	JSONErr  error
	JSONFunc func(ctx context.Context, prompt string) (string, error)

	// Chunks are streamed by StreamChat, followed by StreamErr when non-nil.
	Chunks    []string
	StreamErr error
	// BeforeStream runs when a StreamChat sequence starts to be consumed.
	BeforeStream func(ctx context.Context, req llm.ChatRequest)

	mu       sync.Mutex
	prompts  []string
	requests []llm.ChatRequest
	closed   bool
}

var _ llm.Client = (*Stub)(nil)

// GenerateContent implements llm.Client.
func (s *Stub) GenerateContent(ctx context.Context, prompt string, _ llm.ModelTier) (string, error) {
	return s.generate(ctx, prompt)
}

// GenerateJSON implements llm.Client.
func (s *Stub) GenerateJSON(ctx context.Context, prompt string, _ llm.ModelTier) (string, error) {
	return s.generate(ctx, prompt)
}

func (s *Stub) generate(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()

	if s.JSONFunc != nil {
		return s.JSONFunc(ctx, prompt)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.JSON, s.JSONErr
}

// StreamChat implements llm.Client. The request is recorded when iteration starts.
func (s *Stub) StreamChat(ctx context.Context, req llm.ChatRequest) iter.Seq2[string, error] {
	var once sync.Once
	return func(yield func(string, error) bool) {
		used := true
		once.Do(func() { used = false })
		if used {
			yield("", llm.ErrStreamConsumed)
			return
		}

		s.mu.Lock()
		s.requests = append(s.requests, req)
		s.mu.Unlock()

		if s.BeforeStream != nil {
			s.BeforeStream(ctx, req)
		}
		for _, chunk := range s.Chunks {
			if err := ctx.Err(); err != nil {
				yield("", err)
				return
			}
			if !yield(chunk, nil) {
				return
			}
		}
		if s.StreamErr != nil {
			yield("", s.StreamErr)
		}
	}
}

// GetModel implements llm.Client.
func (s *Stub) GetModel(tier llm.ModelTier) string {
	return "stub-" + string(tier)
}

// Provider implements llm.Client.
func (s *Stub) Provider() llm.Provider {
	return llm.ProviderGemini
}

// Close implements llm.Client.
func (s *Stub) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Prompts returns the prompts passed to GenerateContent and GenerateJSON.
func (s *Stub) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}

// Requests returns the chat requests whose streams were consumed.
func (s *Stub) Requests() []llm.ChatRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]llm.ChatRequest(nil), s.requests...)
}

// Closed reports whether Close was called.
func (s *Stub) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
