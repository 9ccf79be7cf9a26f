package llm

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync/atomic"

	"github.com/jonathan/interview-coach/internal/tools"
	"github.com/jonathan/interview-coach/internal/types"
)

var (
	// ErrStreamConsumed is yielded when a single-pass chat stream is iterated twice.
	ErrStreamConsumed = errors.New("chat stream already consumed")
	// ErrToolRoundsExceeded is yielded when the model keeps requesting tools past the round limit.
	ErrToolRoundsExceeded = errors.New("too many tool-call rounds")
	// ErrEmptyResponse is returned when the model produced no text.
	ErrEmptyResponse = errors.New("empty model response")
)

// Client is an abstraction over LLM providers
type Client interface {
	// GenerateContent generates text content using the specified model tier
	GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GenerateJSON generates JSON content using the specified model tier
	GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// StreamChat runs one conversational turn, yielding text chunks in arrival
	// order. Tool calls requested by the model are executed automatically.
	StreamChat(ctx context.Context, req ChatRequest) iter.Seq2[string, error]
	// GetModel returns the underlying provider model for a tier
	GetModel(tier ModelTier) string
	// Provider reports which backend serves this client
	Provider() Provider
	// Close releases any resources held by the client
	Close() error
}

// ChatRequest is the input to one streamed conversational turn.
type ChatRequest struct {
	System  string
	History []types.ChatMessage
	Input   string
	// Opening is the user text that started the conversation. Providers
	// that require history to begin with a user turn replay it when
	// History opens with an assistant message.
	Opening string
	Tools   tools.Toolset
	Tier    ModelTier
	// MaxToolRounds overrides the client's configured bound when positive.
	MaxToolRounds int
}

func (r ChatRequest) tier() ModelTier {
	if r.Tier == "" {
		return TierStandard
	}
	return r.Tier
}

// NewClient creates a new LLM client based on configuration
func NewClient(ctx context.Context, config *Config) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderOpenAI:
		return NewOpenAIClient(config)
	case ProviderGemini:
		return NewGeminiClient(ctx, config)
	}
	return nil, fmt.Errorf("unsupported provider %q", config.Provider)
}

// SingleUse wraps seq so a second range over it yields ErrStreamConsumed.
func SingleUse(seq iter.Seq2[string, error]) iter.Seq2[string, error] {
	var used atomic.Bool
	return func(yield func(string, error) bool) {
		if used.Swap(true) {
			yield("", ErrStreamConsumed)
			return
		}
		seq(yield)
	}
}

// Collect drains a chat stream into one string.
func Collect(seq iter.Seq2[string, error]) (string, error) {
	var out []byte
	for chunk, err := range seq {
		if err != nil {
			return string(out), err
		}
		out = append(out, chunk...)
	}
	return string(out), nil
}
