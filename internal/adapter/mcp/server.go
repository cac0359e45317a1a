// Package mcp exposes the prompt optimizer as Model Context Protocol tools
// over stdio.
package mcp

import (
	"context"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/Strob0t/lukthan/internal/domain/agent"
	"github.com/Strob0t/lukthan/internal/domain/history"
	"github.com/Strob0t/lukthan/internal/domain/settings"
	"github.com/Strob0t/lukthan/internal/port/promptapi"
)

// Optimizer runs a single optimization turn.
type Optimizer interface {
	Optimize(ctx context.Context, req promptapi.ChatRequest) (*agent.Result, error)
}

// HistoryReader browses past optimizations.
type HistoryReader interface {
	List(ctx context.Context, limit int) (*history.Page, error)
	Get(ctx context.Context, id int64) (*history.Session, error)
}

// ServerConfig holds MCP server identity.
type ServerConfig struct {
	Name    string
	Version string
}

// ServerDeps are the services the tools call. Nil fields make the matching
// tools report an error.
type ServerDeps struct {
	Optimizer Optimizer
	History   HistoryReader
	Settings  func() settings.Settings
}

// Server wraps an mcp-go server.
type Server struct {
	mcpServer *mcpserver.MCPServer
	deps      ServerDeps
	log       *slog.Logger
}

// NewServer creates a Server with every tool and resource registered.
func NewServer(cfg ServerConfig, deps ServerDeps, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if deps.Settings == nil {
		deps.Settings = settings.Defaults
	}
	s := &Server{
		mcpServer: mcpserver.NewMCPServer(cfg.Name, cfg.Version,
			mcpserver.WithToolCapabilities(true),
			mcpserver.WithResourceCapabilities(false, false),
			mcpserver.WithRecovery(),
		),
		deps: deps,
		log:  log,
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *mcpserver.MCPServer { return s.mcpServer }

// ServeStdio serves JSON-RPC on in and out until ctx is canceled or in is
// closed.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	s.log.Info("mcp server listening on stdio")
	return mcpserver.NewStdioServer(s.mcpServer).Listen(ctx, in, out)
}

func toolResultJSON(data string) *mcp.CallToolResult {
	return mcp.NewToolResultText(data)
}
