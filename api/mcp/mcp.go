// Package mcp exposes measurement conversion as Model Context Protocol tools.
package mcp

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/papercomputeco/measures/pkg/conversion"
	"github.com/papercomputeco/measures/pkg/buildinfo"
)

type Config struct {
	// Service performs conversions and serves both histories.
	Service *conversion.Service

	// Logger is the configured slog logger
	Logger *slog.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the conversion and history tools.
func NewServer(c Config) (*Server, error) {
	if c.Service == nil {
		return nil, errors.New("conversion service is required")
	}
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    buildinfo.Name,
			Version: buildinfo.Version,
		},
		&mcp.ServerOptions{},
	)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        convertToolName,
		Description: convertDescription,
	}, s.handleConvert)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        auditLogToolName,
		Description: auditLogDescription,
	}, s.handleAuditLog)

	mcp.AddTool(mcpServer, &mcp.Tool{
		Name:        secureHistoryToolName,
		Description: secureHistoryDescription,
	}, s.handleSecureHistory)

	s.mcpServer = mcpServer

	// Create a streamable HTTP net/http handler for stateless operations
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}
