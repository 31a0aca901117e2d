package mcpserver

import (
	"context"
	stdlog "log"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/spance/iphone-use-mcp/constants"
	"github.com/spance/iphone-use-mcp/phoneagent/definitions"
	"github.com/spance/iphone-use-mcp/phoneagent/helper"
)

// Executor runs one named action. phoneagent.Dispatcher implements it.
type Executor interface {
	Execute(ctx context.Context, action string, args helper.Args) *definitions.Envelope
}

// Server wraps the MCP server with the device actions registered as tools.
type Server struct {
	mcpServer *server.MCPServer
	executor  Executor
}

func NewServer(executor Executor) *Server {
	s := &Server{executor: executor}
	s.mcpServer = server.NewMCPServer(
		constants.ServerName,
		constants.ServerVersion,
		server.WithToolCapabilities(true),
		server.WithInstructions(constants.ServerInstructions),
	)
	for _, tool := range Tools() {
		s.mcpServer.AddTool(tool, s.handle)
	}
	return s
}

// MCPServer exposes the underlying server, mostly for tests.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	env := s.executor.Execute(ctx, req.Params.Name, req.GetArguments())
	return ToCallToolResult(env), nil
}

// ToCallToolResult converts an envelope to the protocol result. Failures stay
// ordinary text results; isError is never set.
func ToCallToolResult(env *definitions.Envelope) *mcp.CallToolResult {
	result := &mcp.CallToolResult{Content: make([]mcp.Content, 0, len(env.Content))}
	for _, part := range env.Content {
		switch part.Type {
		case definitions.ImageContent:
			result.Content = append(result.Content, mcp.NewImageContent(part.Data, part.MIMEType))
		default:
			result.Content = append(result.Content, mcp.NewTextContent(part.Text))
		}
	}
	return result
}

// ServeStdio serves the protocol over stdin/stdout until ctx is done or
// stdin closes. Protocol errors are logged to stderr through zerolog.
func (s *Server) ServeStdio(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(stdlog.New(log.Logger, "", 0))
	log.Info().Str("name", constants.ServerName).Str("version", constants.ServerVersion).Msg("serving on stdio")
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}
