// Package mcpserver exposes the purchase wizard as MCP tools over streamable
// HTTP so a session can be driven by automation.
package mcpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/mark3labs/adspot/internal/catalog"
	"github.com/mark3labs/adspot/internal/logger"
	"github.com/mark3labs/adspot/internal/playback"
	"github.com/mark3labs/adspot/internal/wizard"
	"github.com/mark3labs/mcp-go/server"
)

const (
	serverName    = "adspot-wizard"
	serverVersion = "1.0.0"
)

// Server serves one wizard session. Tool calls are serialized on wizMu since
// wizard.Controller is not safe for concurrent use.
type Server struct {
	catalog   *catalog.Catalog
	submitter wizard.Submitter
	player    *playback.Controller

	wizMu  sync.Mutex
	wizard *wizard.Controller

	mu         sync.Mutex
	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
	stdServer  *http.Server
	port       int
}

// New creates a server for ctrl. player may be nil, in which case the
// preview tool reports that playback is unavailable.
func New(ctrl *wizard.Controller, cat *catalog.Catalog, sub wizard.Submitter, player *playback.Controller) *Server {
	s := &Server{
		catalog:   cat,
		submitter: sub,
		player:    player,
		wizard:    ctrl,
	}
	s.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(true),
	)
	s.registerTools()
	return s
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcpServer
}

// Start listens on addr ("127.0.0.1:0" when empty) and serves /mcp in the
// background. It returns the bound port.
func (s *Server) Start(ctx context.Context, addr string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdServer != nil {
		return 0, fmt.Errorf("server already started")
	}
	if addr == "" {
		addr = "127.0.0.1:0"
	}

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return 0, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.port = listener.Addr().(*net.TCPAddr).Port

	s.httpServer = server.NewStreamableHTTPServer(
		s.mcpServer,
		server.WithStateLess(true),
	)
	mux := http.NewServeMux()
	mux.Handle("/mcp", s.httpServer)
	s.stdServer = &http.Server{Handler: mux}

	stdServer := s.stdServer
	go func() {
		if err := stdServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("MCP server error: %v", err)
		}
	}()

	logger.Info("MCP server listening on port %d", s.port)
	return s.port, nil
}

// Stop shuts the HTTP server down. Calling Stop on a stopped server is a no-op.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdServer == nil {
		return nil
	}
	if err := s.stdServer.Shutdown(ctx); err != nil {
		logger.Warn("Error stopping MCP server: %v", err)
		return fmt.Errorf("failed to stop server: %w", err)
	}
	s.httpServer = nil
	s.stdServer = nil
	logger.Debug("MCP server stopped")
	return nil
}

// URL is the endpoint clients connect to.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("http://localhost:%d/mcp", s.port)
}
