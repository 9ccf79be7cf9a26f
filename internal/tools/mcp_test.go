package tools

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type convertArgs struct {
	URI string `json:"uri"`
}

func startServer(t *testing.T, withConverter bool) *Client {
	t.Helper()
	ctx := context.Background()

	server := mcp.NewServer(&mcp.Implementation{Name: "markdown-converter", Version: "v0.0.1"}, nil)
	if withConverter {
		mcp.AddTool(server, &mcp.Tool{Name: DefaultConvertTool, Description: "convert a document to markdown"},
			func(_ context.Context, _ *mcp.CallToolRequest, args convertArgs) (*mcp.CallToolResult, any, error) {
				return &mcp.CallToolResult{
					Content: []mcp.Content{&mcp.TextContent{Text: "# Converted\n" + args.URI}},
				}, nil, nil
			})
	}
	mcp.AddTool(server, &mcp.Tool{Name: "fail", Description: "always fails"},
		func(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{&mcp.TextContent{Text: "boom"}},
			}, nil, nil
		})

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client, err := Dial(ctx, clientTransport, "", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestClient_ConvertToMarkdown(t *testing.T) {
	client := startServer(t, true)

	md, err := client.ConvertToMarkdown(context.Background(), "https://example.com/resume.pdf")
	require.NoError(t, err)
	assert.Equal(t, "# Converted\nhttps://example.com/resume.pdf", md)
}

func TestClient_MissingConvertToolIsHardError(t *testing.T) {
	client := startServer(t, false)

	_, err := client.ConvertToMarkdown(context.Background(), "https://example.com/resume.pdf")
	assert.ErrorIs(t, err, ErrToolNotFound)
}

func TestClient_DefinitionsAndCall(t *testing.T) {
	client := startServer(t, true)

	names := map[string]bool{}
	for _, d := range client.Definitions() {
		names[d.Name] = true
		assert.NotNil(t, d.Parameters)
	}
	assert.True(t, names[DefaultConvertTool])
	assert.True(t, names["fail"])

	out, err := client.Call(context.Background(), DefaultConvertTool, `{"uri":"file.docx"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "file.docx")

	_, err = client.Call(context.Background(), "fail", "{}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestServerConfig(t *testing.T) {
	assert.False(t, ServerConfig{}.Enabled())
	_, err := ServerConfig{}.Transport()
	assert.Error(t, err)

	tr, err := ServerConfig{Endpoint: "http://localhost:3001/mcp"}.Transport()
	require.NoError(t, err)
	assert.IsType(t, &mcp.StreamableClientTransport{}, tr)

	tr, err = ServerConfig{Command: "markitdown-mcp"}.Transport()
	require.NoError(t, err)
	assert.IsType(t, &mcp.CommandTransport{}, tr)
}

func TestClient_AgentToolsWithholdConverter(t *testing.T) {
	client := startServer(t, true)
	agent := client.AgentTools()

	for _, d := range agent.Definitions() {
		assert.NotEqual(t, DefaultConvertTool, d.Name)
	}
	_, err := agent.Call(context.Background(), DefaultConvertTool, `{"uri":"file:///etc/passwd"}`)
	assert.ErrorIs(t, err, ErrToolNotFound)

	_, err = agent.Call(context.Background(), "fail", "{}")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
