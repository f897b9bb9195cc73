// Package mcptools exposes the relay commands as MCP tools over stdio, so an
// agent can drive the fleet API through the same proxy and settings as the UI.
package mcptools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/papercomputeco/relay/pkg/settings"
	"github.com/papercomputeco/relay/pkg/shell"
)

// EndpointInput addresses one upstream endpoint.
type EndpointInput struct {
	Endpoint string `json:"endpoint" jsonschema:"path appended verbatim to the configured API base URL, e.g. /api/v1/nodes"`
}

// BodyInput addresses an endpoint with a JSON body.
type BodyInput struct {
	Endpoint string `json:"endpoint" jsonschema:"path appended verbatim to the configured API base URL"`
	Body     any    `json:"body,omitempty" jsonschema:"JSON request body; defaults to an empty object"`
}

// UploadInput uploads a local file.
type UploadInput struct {
	Endpoint string `json:"endpoint" jsonschema:"upload endpoint path"`
	FilePath string `json:"file_path" jsonschema:"absolute path of the local file to upload"`
}

// NoInput is used by tools without arguments.
type NoInput struct{}

// ValueOutput wraps a decoded upstream response.
type ValueOutput struct {
	Value any `json:"value"`
}

// SavedOutput acknowledges a settings save.
type SavedOutput struct {
	Saved bool `json:"saved"`
}

// Server is an MCP server bound to a shell.Commands.
type Server struct {
	commands *shell.Commands
	logger   *zap.Logger
	server   *mcp.Server
}

// NewServer registers every tool on a new MCP server.
func NewServer(commands *shell.Commands, version string, logger *zap.Logger) *Server {
	s := &Server{
		commands: commands,
		logger:   logger,
		server:   mcp.NewServer(&mcp.Implementation{Name: "relay", Version: version}, nil),
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "api_get",
		Description: "GET an endpoint of the fleet API and return the decoded JSON response",
	}, s.apiGet)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "api_post",
		Description: "POST a JSON body to an endpoint of the fleet API",
	}, s.apiPost)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "api_put",
		Description: "PUT a JSON body to an endpoint of the fleet API",
	}, s.apiPut)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "api_delete",
		Description: "DELETE an endpoint of the fleet API",
	}, s.apiDelete)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "api_upload",
		Description: "Upload a local file as the multipart \"file\" field of an endpoint",
	}, s.apiUpload)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_settings",
		Description: "Return the relay settings, including the API base URL",
	}, s.getSettings)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "save_settings",
		Description: "Persist relay settings and point the proxy at their api_url",
	}, s.saveSettings)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "reset_settings",
		Description: "Restore the default relay settings",
	}, s.resetSettings)

	return s
}

// Run serves over stdin/stdout until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("mcp server starting on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// MCP returns the underlying server, for in-memory transports in tests.
func (s *Server) MCP() *mcp.Server {
	return s.server
}

func (s *Server) apiGet(ctx context.Context, _ *mcp.CallToolRequest, in EndpointInput) (*mcp.CallToolResult, ValueOutput, error) {
	v, err := s.commands.APIGet(ctx, in.Endpoint)
	return nil, ValueOutput{Value: v}, err
}

func (s *Server) apiPost(ctx context.Context, _ *mcp.CallToolRequest, in BodyInput) (*mcp.CallToolResult, ValueOutput, error) {
	v, err := s.commands.APIPost(ctx, in.Endpoint, in.Body)
	return nil, ValueOutput{Value: v}, err
}

func (s *Server) apiPut(ctx context.Context, _ *mcp.CallToolRequest, in BodyInput) (*mcp.CallToolResult, ValueOutput, error) {
	v, err := s.commands.APIPut(ctx, in.Endpoint, in.Body)
	return nil, ValueOutput{Value: v}, err
}

func (s *Server) apiDelete(ctx context.Context, _ *mcp.CallToolRequest, in EndpointInput) (*mcp.CallToolResult, ValueOutput, error) {
	v, err := s.commands.APIDelete(ctx, in.Endpoint)
	return nil, ValueOutput{Value: v}, err
}

func (s *Server) apiUpload(ctx context.Context, _ *mcp.CallToolRequest, in UploadInput) (*mcp.CallToolResult, ValueOutput, error) {
	v, err := s.commands.APIUpload(ctx, in.Endpoint, in.FilePath)
	return nil, ValueOutput{Value: v}, err
}

func (s *Server) getSettings(_ context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, settings.Settings, error) {
	st, err := s.commands.GetSettings()
	return nil, st, err
}

func (s *Server) saveSettings(_ context.Context, _ *mcp.CallToolRequest, in settings.Settings) (*mcp.CallToolResult, SavedOutput, error) {
	if err := s.commands.SaveSettings(in); err != nil {
		return nil, SavedOutput{}, err
	}
	return nil, SavedOutput{Saved: true}, nil
}

func (s *Server) resetSettings(_ context.Context, _ *mcp.CallToolRequest, _ NoInput) (*mcp.CallToolResult, settings.Settings, error) {
	st, err := s.commands.ResetSettings()
	return nil, st, err
}
