package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/jonathan/interview-coach/internal/tools"
	"github.com/jonathan/interview-coach/internal/types"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, config *Config) (*GeminiClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	opts := []option.ClientOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(config.BaseURL))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		config: config,
	}, nil
}

// GenerateContent generates text content using the specified model tier
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	model, err := c.model(tier)
	if err != nil {
		return "", err
	}
	model.SetTemperature(0.1)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractTextFromResponse(resp)
}

// GenerateJSON generates JSON content using the specified model tier
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	model, err := c.model(tier)
	if err != nil {
		return "", err
	}
	model.SetTemperature(0.1)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractTextFromResponse(resp)
}

// StreamChat streams one interview turn, answering function calls from req.Tools.
func (c *GeminiClient) StreamChat(ctx context.Context, req ChatRequest) iter.Seq2[string, error] {
	return SingleUse(func(yield func(string, error) bool) {
		model, err := c.model(req.tier())
		if err != nil {
			yield("", err)
			return
		}
		model.SetTemperature(c.config.Temperature)

		system, history := geminiHistory(req.System, req.Opening, req.History)
		if system != "" {
			model.SystemInstruction = genai.NewUserContent(genai.Text(system))
		}
		if req.Tools != nil {
			decls, err := geminiFunctions(req.Tools.Definitions())
			if err != nil {
				yield("", err)
				return
			}
			if len(decls) > 0 {
				model.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
			}
		}

		cs := model.StartChat()
		cs.History = history

		parts := []genai.Part{genai.Text(req.Input)}
		maxRounds := c.config.maxToolRounds(req.MaxToolRounds)
		for round := 0; ; round++ {
			calls, ok := c.streamRound(ctx, cs, parts, yield)
			if !ok || len(calls) == 0 {
				return
			}
			if round >= maxRounds {
				yield("", ErrToolRoundsExceeded)
				return
			}
			parts = answerFunctionCalls(ctx, req.Tools, calls)
		}
	})
}

// streamRound sends parts and yields text as it arrives. It returns the
// function calls the model requested, and false if iteration should stop.
func (c *GeminiClient) streamRound(ctx context.Context, cs *genai.ChatSession, parts []genai.Part, yield func(string, error) bool) ([]genai.FunctionCall, bool) {
	it := cs.SendMessageStream(ctx, parts...)
	var calls []genai.FunctionCall
	for {
		resp, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return calls, true
		}
		if err != nil {
			yield("", fmt.Errorf("gemini stream: %w", err))
			return nil, false
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			continue
		}
		for _, part := range resp.Candidates[0].Content.Parts {
			switch p := part.(type) {
			case genai.Text:
				if p == "" {
					continue
				}
				if !yield(string(p), nil) {
					return nil, false
				}
			case genai.FunctionCall:
				calls = append(calls, p)
			}
		}
	}
}

func answerFunctionCalls(ctx context.Context, ts tools.Toolset, calls []genai.FunctionCall) []genai.Part {
	parts := make([]genai.Part, 0, len(calls))
	for _, call := range calls {
		response := map[string]any{}
		if ts == nil {
			response["error"] = "no tools available"
		} else {
			args, _ := json.Marshal(call.Args)
			out, err := ts.Call(ctx, call.Name, string(args))
			if err != nil {
				response["error"] = err.Error()
			} else {
				response["result"] = out
			}
		}
		parts = append(parts, genai.FunctionResponse{Name: call.Name, Response: response})
	}
	return parts
}

// geminiHistory maps a transcript onto Gemini contents. System messages are
// folded into the system instruction; tool output is replayed as user text.
// Gemini rejects contents that begin with a model turn, so opening is
// replayed first when the history starts with the assistant.
func geminiHistory(system, opening string, history []types.ChatMessage) (string, []*genai.Content) {
	systemParts := []string{}
	if strings.TrimSpace(system) != "" {
		systemParts = append(systemParts, system)
	}

	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		if strings.TrimSpace(msg.Content) == "" {
			continue
		}
		switch msg.Role {
		case types.RoleSystem:
			systemParts = append(systemParts, msg.Content)
		case types.RoleAssistant:
			contents = append(contents, &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(msg.Content)}})
		case types.RoleTool:
			contents = append(contents, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text("Tool result:\n" + msg.Content)}})
		default:
			contents = append(contents, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(msg.Content)}})
		}
	}
	if len(contents) > 0 && contents[0].Role == "model" {
		if strings.TrimSpace(opening) == "" {
			opening = "Hello."
		}
		lead := &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(opening)}}
		contents = append([]*genai.Content{lead}, contents...)
	}
	return strings.Join(systemParts, "\n\n"), contents
}

func (c *GeminiClient) model(tier ModelTier) (*genai.GenerativeModel, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return nil, fmt.Errorf("no model configured for tier %s", tier)
	}
	return c.client.GenerativeModel(modelName), nil
}

// GetModel returns the model name for a tier
func (c *GeminiClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Provider reports ProviderGemini.
func (c *GeminiClient) Provider() Provider {
	return ProviderGemini
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractTextFromResponse extracts text from Gemini API response
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", ErrEmptyResponse
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", ErrEmptyResponse
	}

	return strings.Join(parts, ""), nil
}
