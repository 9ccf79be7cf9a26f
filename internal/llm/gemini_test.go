package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-coach/internal/tools"
	"github.com/jonathan/interview-coach/internal/types"
)

func TestGeminiHistory_MapsRoles(t *testing.T) {
	system, contents := geminiHistory("Be an interviewer.", "Start the interview.", []types.ChatMessage{
		{Role: types.RoleUser, Content: "Hi"},
		{Role: types.RoleAssistant, Content: "Tell me about yourself."},
		{Role: types.RoleSystem, Content: "Keep questions short."},
		{Role: types.RoleTool, Content: "# Resume"},
		{Role: types.RoleUser, Content: "   "},
	})

	assert.Equal(t, "Be an interviewer.\n\nKeep questions short.", system)
	require.Len(t, contents, 3)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, "model", contents[1].Role)
	assert.Equal(t, "user", contents[2].Role)
	assert.Equal(t, genai.Text("Tool result:\n# Resume"), contents[2].Parts[0])
}

func TestGeminiHistory_LeadsWithUserTurn(t *testing.T) {
	history := []types.ChatMessage{
		{Role: types.RoleAssistant, Content: "Tell me about yourself."},
		{Role: types.RoleUser, Content: "I build payment systems."},
		{Role: types.RoleAssistant, Content: "Which database did you use?"},
	}

	_, contents := geminiHistory("", "Start the interview.", history)
	require.Len(t, contents, 4)
	assert.Equal(t, "user", contents[0].Role)
	assert.Equal(t, genai.Text("Start the interview."), contents[0].Parts[0])
	assert.Equal(t, "model", contents[1].Role)

	_, contents = geminiHistory("", "", history)
	require.Len(t, contents, 4)
	assert.Equal(t, "user", contents[0].Role)
	assert.NotEmpty(t, contents[0].Parts[0])

	_, contents = geminiHistory("", "Start the interview.", nil)
	assert.Empty(t, contents)
}

func TestAnswerFunctionCalls(t *testing.T) {
	reg := tools.NewRegistry()
	reg.Register(tools.Definition{Name: "echo"}, func(_ context.Context, args map[string]any) (string, error) {
		return args["text"].(string), nil
	})
	reg.Register(tools.Definition{Name: "fail"}, func(context.Context, map[string]any) (string, error) {
		return "", errors.New("nope")
	})

	parts := answerFunctionCalls(context.Background(), reg, []genai.FunctionCall{
		{Name: "echo", Args: map[string]any{"text": "hello"}},
		{Name: "fail"},
	})
	require.Len(t, parts, 2)

	first := parts[0].(genai.FunctionResponse)
	assert.Equal(t, "echo", first.Name)
	assert.Equal(t, "hello", first.Response["result"])

	second := parts[1].(genai.FunctionResponse)
	assert.Equal(t, "nope", second.Response["error"])
}

func TestAnswerFunctionCalls_NoToolset(t *testing.T) {
	parts := answerFunctionCalls(context.Background(), nil, []genai.FunctionCall{{Name: "echo"}})
	require.Len(t, parts, 1)
	assert.Contains(t, parts[0].(genai.FunctionResponse).Response, "error")
}

func TestExtractTextFromResponse(t *testing.T) {
	_, err := extractTextFromResponse(&genai.GenerateContentResponse{})
	assert.ErrorIs(t, err, ErrEmptyResponse)

	text, err := extractTextFromResponse(&genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("a"), genai.Text("b")}},
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, "ab", text)
}
