package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// DefaultConvertTool is the conversion tool name offered by markdown conversion servers.
const DefaultConvertTool = "convert_to_markdown"

// ServerConfig locates a tool server. Endpoint selects the streamable HTTP
// transport; otherwise Command is launched and spoken to over stdio.
type ServerConfig struct {
	Endpoint string
	Command  string
	Args     []string
	// ConvertTool overrides DefaultConvertTool.
	ConvertTool string
}

// Enabled reports whether a tool server is configured.
func (c ServerConfig) Enabled() bool {
	return c.Endpoint != "" || c.Command != ""
}

// Transport builds the MCP transport described by the config.
func (c ServerConfig) Transport() (mcp.Transport, error) {
	switch {
	case c.Endpoint != "":
		return &mcp.StreamableClientTransport{Endpoint: c.Endpoint}, nil
	case c.Command != "":
		return &mcp.CommandTransport{Command: exec.Command(c.Command, c.Args...)}, nil
	default:
		return nil, errors.New("tool server has neither endpoint nor command")
	}
}

// Client is a connected tool server session. It implements Toolset and the
// ingestion converter.
type Client struct {
	session     *mcp.ClientSession
	convertTool string
	logger      *zap.Logger

	mu   sync.Mutex
	defs []Definition
}

// Connect dials the server described by cfg.
func Connect(ctx context.Context, cfg ServerConfig, logger *zap.Logger) (*Client, error) {
	transport, err := cfg.Transport()
	if err != nil {
		return nil, err
	}
	return Dial(ctx, transport, cfg.ConvertTool, logger)
}

// Dial opens a session over an existing transport.
func Dial(ctx context.Context, transport mcp.Transport, convertTool string, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if convertTool == "" {
		convertTool = DefaultConvertTool
	}

	client := mcp.NewClient(&mcp.Implementation{Name: "interview-coach", Version: "v1.0.0"}, nil)
	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("connect tool server: %w", err)
	}

	c := &Client{session: session, convertTool: convertTool, logger: logger}
	if _, err := c.refresh(ctx); err != nil {
		_ = session.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) refresh(ctx context.Context) ([]Definition, error) {
	res, err := c.session.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}

	defs := make([]Definition, 0, len(res.Tools))
	for _, tool := range res.Tools {
		defs = append(defs, Definition{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  schemaMap(tool.InputSchema),
		})
	}

	c.mu.Lock()
	c.defs = defs
	c.mu.Unlock()

	names := make([]string, len(defs))
	for i, d := range defs {
		names[i] = d.Name
	}
	c.logger.Debug("tool server offers tools", zap.Strings("tools", names))
	return defs, nil
}

// schemaMap normalizes whatever schema representation the SDK returns into a plain map.
func schemaMap(schema any) map[string]any {
	if schema == nil {
		return map[string]any{"type": "object"}
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return map[string]any{"type": "object"}
	}
	out := map[string]any{}
	if err := json.Unmarshal(data, &out); err != nil || len(out) == 0 {
		return map[string]any{"type": "object"}
	}
	return out
}

// Definitions returns the tools the server offered at connect time.
func (c *Client) Definitions() []Definition {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Definition(nil), c.defs...)
}

func (c *Client) has(name string) bool {
	for _, d := range c.Definitions() {
		if d.Name == name {
			return true
		}
	}
	return false
}

// Call invokes a server tool with JSON-encoded arguments.
func (c *Client) Call(ctx context.Context, name string, arguments string) (string, error) {
	args, err := DecodeArguments(arguments)
	if err != nil {
		return "", err
	}
	return c.callTool(ctx, name, args)
}

func (c *Client) callTool(ctx context.Context, name string, args map[string]any) (string, error) {
	if !c.has(name) {
		// the server may have registered tools since connect
		if _, err := c.refresh(ctx); err != nil {
			return "", err
		}
		if !c.has(name) {
			return "", fmt.Errorf("%w: %s", ErrToolNotFound, name)
		}
	}

	res, err := c.session.CallTool(ctx, &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return "", fmt.Errorf("call tool %s: %w", name, err)
	}

	text := contentText(res.Content)
	if res.IsError {
		return "", fmt.Errorf("tool %s reported an error: %s", name, text)
	}
	c.logger.Debug("tool call finished", zap.String("tool", name), zap.Int("chars", len(text)))
	return text, nil
}

func contentText(content []mcp.Content) string {
	var parts []string
	for _, item := range content {
		if tc, ok := item.(*mcp.TextContent); ok && tc.Text != "" {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// ConvertToMarkdown asks the server's conversion tool to render uri as markdown.
// A server without the conversion tool is a configuration error.
func (c *Client) ConvertToMarkdown(ctx context.Context, uri string) (string, error) {
	return c.callTool(ctx, c.convertTool, map[string]any{"uri": uri})
}

// AgentTools is the toolset offered to the interview model. The conversion
// tool is withheld so the model cannot read arbitrary URIs through it.
func (c *Client) AgentTools() Toolset {
	return Without(c, c.convertTool)
}

// Close ends the session.
func (c *Client) Close() error {
	return c.session.Close()
}
