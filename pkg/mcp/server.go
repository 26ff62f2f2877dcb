package mcp

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/urmzd/lightd/pkg/devicecfg"
	"github.com/urmzd/lightd/pkg/effect"
)

// HealthSource reports the state of the incoming socket and the clock
type HealthSource interface {
	SocketState() string
	ClockState() string
}

// Server wraps the MCP server with lightd's effect and settings control
type Server struct {
	mcpServer *server.MCPServer
	effects   *effect.Manager
	device    *devicecfg.Config
	health    HealthSource
}

// NewServer creates a new MCP server. health may be nil.
func NewServer(effects *effect.Manager, device *devicecfg.Config, health HealthSource) *Server {
	s := &Server{
		effects: effects,
		device:  device,
		health:  health,
	}

	s.mcpServer = server.NewMCPServer(
		"lightd",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	s.registerTools()

	return s
}

// ServeStdio starts the MCP server using stdio transport
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
