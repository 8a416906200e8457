package gateway

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	mcpclient "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
)

// DefaultMaxPages caps tool discovery pagination. A server that hands out
// more pages than this is treated as broken rather than followed forever.
const DefaultMaxPages = 100

// Config holds the connection parameters for the gateway.
type Config struct {
	// URL is the gateway MCP endpoint.
	URL string
	// Token is the OAuth bearer token sent on every request.
	Token string
	// MaxPages caps ListTools pagination; zero selects DefaultMaxPages.
	MaxPages int
}

// Validate reports missing required connection parameters.
func (c Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("gateway: endpoint URL is required")
	}
	if c.Token == "" {
		return fmt.Errorf("gateway: access token is required")
	}
	return nil
}

// rpcSession is the slice of the MCP client the gateway client needs.
// Tests substitute a fake; production uses mark3labs/mcp-go over
// streamable HTTP.
type rpcSession interface {
	Start(ctx context.Context) error
	Initialize(ctx context.Context, req mcp.InitializeRequest) (*mcp.InitializeResult, error)
	ListTools(ctx context.Context, req mcp.ListToolsRequest) (*mcp.ListToolsResult, error)
	CallTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
	Close() error
}

// sessionFactory opens a fresh MCP session per operation, mirroring the
// gateway's short-lived connection model.
type sessionFactory func() (rpcSession, error)

// Client discovers and invokes gateway tools. Construct with New; the
// zero value is not usable.
type Client struct {
	cfg     Config
	logger  *slog.Logger
	connect sessionFactory
}

// Option customizes a Client.
type Option func(*Client)

// WithSessionFactory overrides how MCP sessions are opened (tests).
func WithSessionFactory(factory func() (rpcSession, error)) Option {
	return func(c *Client) {
		c.connect = factory
	}
}

// New validates the configuration and builds a gateway client. Missing
// connection parameters fail here, before any workflow starts.
func New(cfg Config, logger *slog.Logger, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = DefaultMaxPages
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{cfg: cfg, logger: logger}
	c.connect = c.dialStreamableHTTP
	for _, opt := range opts {
		opt(c)
	}

	logger.Info("gateway client initialized", "url", cfg.URL)
	return c, nil
}

func (c *Client) dialStreamableHTTP() (rpcSession, error) {
	client, err := mcpclient.NewStreamableHttpClient(c.cfg.URL,
		transport.WithHTTPHeaders(map[string]string{
			"Authorization": "Bearer " + c.cfg.Token,
		}))
	if err != nil {
		return nil, fmt.Errorf("gateway: create transport: %w", err)
	}
	return client, nil
}

func (c *Client) openSession(ctx context.Context) (rpcSession, error) {
	sess, err := c.connect()
	if err != nil {
		return nil, err
	}
	if err := sess.Start(ctx); err != nil {
		_ = sess.Close()
		return nil, fmt.Errorf("gateway: start session: %w", err)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{Name: "archflow", Version: "0.1.0"}
	if _, err := sess.Initialize(ctx, initReq); err != nil {
		_ = sess.Close()
		return nil, fmt.Errorf("gateway: initialize session: %w", err)
	}
	return sess, nil
}

// ListTools fetches every tool descriptor the gateway exposes, following
// the pagination cursor until it is absent. A server that returns the same
// cursor twice in a row is treated as finished, and the page ceiling turns
// runaway pagination into an error instead of an unbounded loop.
func (c *Client) ListTools(ctx context.Context) ([]ToolDescriptor, error) {
	sess, err := c.openSession(ctx)
	if err != nil {
		return nil, err
	}
	defer sess.Close()

	var (
		tools      []ToolDescriptor
		cursor     mcp.Cursor
		prevCursor mcp.Cursor
	)

	for page := 0; ; page++ {
		if page >= c.cfg.MaxPages {
			return nil, fmt.Errorf("gateway: tool discovery exceeded %d pages", c.cfg.MaxPages)
		}

		req := mcp.ListToolsRequest{}
		req.Params.Cursor = cursor
		res, err := sess.ListTools(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("gateway: list tools page %d: %w", page, err)
		}

		for _, tool := range res.Tools {
			tools = append(tools, ToolDescriptor{
				Name:        tool.Name,
				Description: tool.Description,
				InputSchema: structToMap(tool.InputSchema),
			})
		}

		if res.NextCursor == "" {
			break
		}
		if res.NextCursor == cursor || res.NextCursor == prevCursor {
			// non-advancing cursor: end of pagination
			c.logger.Warn("gateway returned a repeated pagination cursor, stopping",
				"cursor", string(res.NextCursor))
			break
		}
		prevCursor = cursor
		cursor = res.NextCursor
	}

	c.logger.Info("gateway tools listed", "count", len(tools))
	return tools, nil
}

// CallTool invokes a tool by its logical name and normalizes the reply.
// Transport failures surface as errors; malformed replies come back as
// error-variant Results so the caller decides how to react.
func (c *Client) CallTool(ctx context.Context, logicalName string, arguments map[string]any) (Result, error) {
	callID := "tool_use_" + uuid.NewString()
	wireName := WireToolName(logicalName)

	c.logger.Info("calling gateway tool",
		"tool", logicalName,
		"wire_tool", wireName,
		"call_id", callID)

	sess, err := c.openSession(ctx)
	if err != nil {
		return Result{}, err
	}
	defer sess.Close()

	req := mcp.CallToolRequest{}
	req.Params.Name = wireName
	req.Params.Arguments = arguments

	reply, err := sess.CallTool(ctx, req)
	if err != nil {
		return Result{}, fmt.Errorf("gateway: call %s: %w", logicalName, err)
	}

	result := normalize(callID, reply)
	c.logger.Info("gateway tool call completed",
		"tool", logicalName,
		"call_id", callID,
		"kind", string(result.Kind),
		"status_code", result.StatusCode)
	return result, nil
}

func structToMap(schema mcp.ToolInputSchema) map[string]any {
	m := map[string]any{"type": schema.Type}
	if len(schema.Properties) > 0 {
		m["properties"] = schema.Properties
	}
	if len(schema.Required) > 0 {
		m["required"] = schema.Required
	}
	return m
}
