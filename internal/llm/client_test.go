package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chunks(parts ...string) func(yield func(string, error) bool) {
	return func(yield func(string, error) bool) {
		for _, p := range parts {
			if !yield(p, nil) {
				return
			}
		}
	}
}

func TestSingleUse_SecondRangeFails(t *testing.T) {
	seq := SingleUse(chunks("a", "b"))

	out, err := Collect(seq)
	require.NoError(t, err)
	assert.Equal(t, "ab", out)

	_, err = Collect(seq)
	assert.ErrorIs(t, err, ErrStreamConsumed)
}

func TestSingleUse_EarlyBreakStillConsumes(t *testing.T) {
	seq := SingleUse(chunks("a", "b", "c"))
	for range seq {
		break
	}
	_, err := Collect(seq)
	assert.ErrorIs(t, err, ErrStreamConsumed)
}

func TestCollect_ReturnsPartialOnError(t *testing.T) {
	boom := errors.New("boom")
	seq := func(yield func(string, error) bool) {
		if !yield("partial ", nil) {
			return
		}
		yield("", boom)
	}

	out, err := Collect(seq)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "partial ", out)
}

func TestChatRequest_DefaultTier(t *testing.T) {
	assert.Equal(t, TierStandard, ChatRequest{}.tier())
	assert.Equal(t, TierLite, ChatRequest{Tier: TierLite}.tier())
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClient(context.Background(), DefaultOpenAIConfig())
	assert.Error(t, err)

	_, err = NewClient(context.Background(), DefaultGeminiConfig())
	assert.Error(t, err)
}

func TestNewClient_UnsupportedProvider(t *testing.T) {
	_, err := NewClient(context.Background(), &Config{Provider: "anthropic", APIKey: "k"})
	assert.Error(t, err)
}
