package llm

import (
	"context"
	"fmt"
	"iter"
	"strings"

	openaigo "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
	"github.com/openai/openai-go/v3/shared"

	"github.com/jonathan/interview-coach/internal/tools"
	"github.com/jonathan/interview-coach/internal/types"
)

// DefaultOpenAIMaxRetries bounds SDK-level retries on transient failures.
const DefaultOpenAIMaxRetries = 2

// OpenAIClient implements Client for OpenAI-compatible chat completion APIs
type OpenAIClient struct {
	client openaigo.Client
	config *Config
}

// NewOpenAIClient creates a new OpenAI client. BaseURL may point at any
// OpenAI-compatible endpoint.
func NewOpenAIClient(config *Config, opts ...option.RequestOption) (*OpenAIClient, error) {
	if strings.TrimSpace(config.APIKey) == "" {
		return nil, fmt.Errorf("API key is required")
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(config.APIKey)),
		option.WithMaxRetries(DefaultOpenAIMaxRetries),
	}
	if config.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(config.BaseURL))
	}
	reqOpts = append(reqOpts, opts...)

	return &OpenAIClient{
		client: openaigo.NewClient(reqOpts...),
		config: config,
	}, nil
}

// GenerateContent generates text content using the specified model tier
func (c *OpenAIClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.complete(ctx, prompt, tier, false)
}

// GenerateJSON generates JSON content using the specified model tier
func (c *OpenAIClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.complete(ctx, prompt, tier, true)
}

func (c *OpenAIClient) complete(ctx context.Context, prompt string, tier ModelTier, jsonMode bool) (string, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}

	params := openaigo.ChatCompletionNewParams{
		Model:       openaigo.ChatModel(modelName),
		Messages:    []openaigo.ChatCompletionMessageParamUnion{openaigo.UserMessage(prompt)},
		Temperature: param.NewOpt(0.1),
	}
	if jsonMode {
		params.ResponseFormat = openaigo.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

// StreamChat streams one interview turn, answering tool calls from req.Tools.
func (c *OpenAIClient) StreamChat(ctx context.Context, req ChatRequest) iter.Seq2[string, error] {
	return SingleUse(func(yield func(string, error) bool) {
		modelName := c.config.GetModel(req.tier())
		if modelName == "" {
			yield("", fmt.Errorf("no model configured for tier %s", req.tier()))
			return
		}

		params := openaigo.ChatCompletionNewParams{
			Model:       openaigo.ChatModel(modelName),
			Messages:    openAIMessages(req.System, req.History, req.Input),
			Temperature: param.NewOpt(float64(c.config.Temperature)),
		}
		if req.Tools != nil {
			params.Tools = openAITools(req.Tools.Definitions())
		}

		maxRounds := c.config.maxToolRounds(req.MaxToolRounds)
		for round := 0; ; round++ {
			msg, ok := c.streamRound(ctx, params, yield)
			if !ok || len(msg.ToolCalls) == 0 {
				return
			}
			if round >= maxRounds {
				yield("", ErrToolRoundsExceeded)
				return
			}

			params.Messages = append(params.Messages, msg.ToParam())
			for _, tc := range msg.ToolCalls {
				params.Messages = append(params.Messages, openaigo.ToolMessage(callTool(ctx, req.Tools, tc), tc.ID))
			}
		}
	})
}

// streamRound runs one streamed completion, yielding content deltas. The
// accumulated assistant message is returned so tool calls can be answered.
func (c *OpenAIClient) streamRound(ctx context.Context, params openaigo.ChatCompletionNewParams, yield func(string, error) bool) (openaigo.ChatCompletionMessage, bool) {
	stream := c.client.Chat.Completions.NewStreaming(ctx, params)
	defer func() { _ = stream.Close() }()

	acc := openaigo.ChatCompletionAccumulator{}
	for stream.Next() {
		chunk := stream.Current()
		acc.AddChunk(chunk)
		if len(chunk.Choices) == 0 {
			continue
		}
		if delta := chunk.Choices[0].Delta.Content; delta != "" {
			if !yield(delta, nil) {
				return openaigo.ChatCompletionMessage{}, false
			}
		}
	}
	if err := stream.Err(); err != nil {
		yield("", fmt.Errorf("openai stream: %w", err))
		return openaigo.ChatCompletionMessage{}, false
	}
	if len(acc.Choices) == 0 {
		return openaigo.ChatCompletionMessage{}, true
	}
	return acc.Choices[0].Message, true
}

func callTool(ctx context.Context, ts tools.Toolset, tc openaigo.ChatCompletionMessageToolCallUnion) string {
	if ts == nil {
		return `{"error":"no tools available"}`
	}
	if strings.TrimSpace(tc.Type) != "function" {
		return fmt.Sprintf(`{"error":"unsupported tool call type %q"}`, tc.Type)
	}
	call := tc.AsFunction()
	out, err := ts.Call(ctx, call.Function.Name, call.Function.Arguments)
	if err != nil {
		return "error: " + err.Error()
	}
	return out
}

func openAIMessages(system string, history []types.ChatMessage, input string) []openaigo.ChatCompletionMessageParamUnion {
	messages := make([]openaigo.ChatCompletionMessageParamUnion, 0, len(history)+2)
	if strings.TrimSpace(system) != "" {
		messages = append(messages, openaigo.SystemMessage(system))
	}
	for _, msg := range history {
		if strings.TrimSpace(msg.Content) == "" {
			continue
		}
		switch msg.Role {
		case types.RoleSystem:
			messages = append(messages, openaigo.SystemMessage(msg.Content))
		case types.RoleAssistant:
			messages = append(messages, openaigo.AssistantMessage(msg.Content))
		case types.RoleTool:
			messages = append(messages, openaigo.UserMessage("Tool result:\n"+msg.Content))
		default:
			messages = append(messages, openaigo.UserMessage(msg.Content))
		}
	}
	return append(messages, openaigo.UserMessage(input))
}

func openAITools(defs []tools.Definition) []openaigo.ChatCompletionToolUnionParam {
	out := make([]openaigo.ChatCompletionToolUnionParam, 0, len(defs))
	for _, def := range defs {
		fn := shared.FunctionDefinitionParam{Name: def.Name}
		if def.Description != "" {
			fn.Description = param.NewOpt(def.Description)
		}
		if len(def.Parameters) > 0 {
			fn.Parameters = shared.FunctionParameters(def.Parameters)
		}
		out = append(out, openaigo.ChatCompletionFunctionTool(fn))
	}
	return out
}

// GetModel returns the model name for a tier
func (c *OpenAIClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Provider reports ProviderOpenAI.
func (c *OpenAIClient) Provider() Provider {
	return ProviderOpenAI
}

// Close is a no-op; the SDK client holds no long-lived resources.
func (c *OpenAIClient) Close() error {
	return nil
}
