package mcp

import (
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Config contains server configuration.
type Config struct {
	Services      Services
	Resolver      OperatorResolver
	AuthEnabled   bool
	TransportMode string // "stdio" or "http"
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "defectlog",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	// Stdio mode is local; auth only applies over HTTP.
	if cfg.TransportMode != "stdio" && cfg.AuthEnabled && cfg.Resolver != nil {
		server.AddReceivingMiddleware(authMiddleware(cfg.Resolver))
	} else {
		server.AddReceivingMiddleware(localOperatorMiddleware("local"))
	}
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, NewHandler(cfg.Services))

	return server
}
