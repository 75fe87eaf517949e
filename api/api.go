package api

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/papercomputeco/measures/api/mcp"
	"github.com/papercomputeco/measures/pkg/conversion"
	"github.com/papercomputeco/measures/pkg/logger"
)

// Server is the API server for converting measurement strings
type Server struct {
	config    Config
	converter *conversion.Service
	logger    *slog.Logger
	app       *fiber.App
}

// NewServer creates a new API server.
// The conversion service is injected so the serve command owns the lifecycle
// of the stores behind it.
func NewServer(config Config, converter *conversion.Service, log *slog.Logger) (*Server, error) {
	if converter == nil {
		return nil, errors.New("api server requires a conversion service")
	}
	if log == nil {
		log = logger.Nop()
	}

	mcpServer, err := mcp.NewServer(mcp.Config{
		Service: converter,
		Logger:  log,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create MCP server: %w", err)
	}

	// Immutable: conversions keep the raw input past the request, so values
	// must not alias fasthttp's reused buffers.
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		Immutable:             true,
	})

	s := &Server{
		config:    config,
		converter: converter,
		logger:    log,
		app:       app,
	}

	corsConfig := cors.ConfigDefault
	if config.AllowOrigins != "" {
		corsConfig.AllowOrigins = config.AllowOrigins
	}
	app.Use(cors.New(corsConfig))
	app.Use(s.logRequests)

	app.Get("/ping", s.handlePing)
	app.Get("/convert-measurements", s.handleConvertMeasurements)
	app.Get("/history", s.handleHistory)
	app.Get("/secure-history", s.handleSecureHistory)
	app.All("/mcp", adaptor.HTTPHandler(mcpServer.Handler()))

	return s, nil
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		"listen", s.config.ListenAddr,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// logRequests logs one line per request once the handler chain completes.
func (s *Server) logRequests(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	s.logger.Info("request handled",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"duration", time.Since(start),
	)
	return err
}
