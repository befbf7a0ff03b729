package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/defectlog/internal/mcp"
	"github.com/rpggio/defectlog/internal/transport"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server and the export scheduler",
		Long: `Start the export scheduler and serve the MCP tools.

In stdio mode (the default) the server speaks MCP on stdin/stdout and logs to
stderr. In http mode it listens on server.host:server.port with:

  POST /mcp       streamable MCP
  POST /rpc       JSON-RPC 2.0 with the same methods as the MCP tools
  GET  /records   current records
  GET  /schedule  export times and the next one due
  GET  /health    liveness, never authenticated`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if mode != "" {
				cfg.Transport.Mode = mode
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			// stdout carries the protocol in stdio mode
			logOut := cmd.OutOrStdout()
			if cfg.Transport.Mode == "stdio" {
				logOut = cmd.ErrOrStderr()
			}
			lock, err := lockStore(cfg)
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg, logOut)
			if err != nil {
				_ = lock.Unlock()
				return err
			}
			a.lock = lock
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}

	cmd.Flags().StringVar(&mode, "transport", "", "stdio or http (default: transport.mode)")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := a.schedule.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error("scheduler stopped", "error", err)
		}
	}()
	// the scheduler finishes any export in flight before the process exits
	defer wg.Wait()
	defer cancel()

	var resolver *transport.StaticTokenResolver
	if a.cfg.Auth.Enabled {
		resolver = transport.NewStaticTokenResolver(a.cfg.Auth.Token, "operator")
	}
	mcpCfg := mcp.Config{
		Services:      a.services(),
		AuthEnabled:   a.cfg.Auth.Enabled,
		TransportMode: a.cfg.Transport.Mode,
		Logger:        a.logger,
	}
	if resolver != nil {
		mcpCfg.Resolver = resolver
	}
	mcpServer := mcp.NewServer(mcpCfg)

	if a.cfg.Transport.Mode == "stdio" {
		return runStdio(ctx, a.logger, mcpServer)
	}
	return a.runHTTP(ctx, mcpServer, resolver)
}

func runStdio(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server) error {
	logger.Info("starting stdio transport", "auth", "disabled")

	// Run blocks until stdin closes or context is canceled
	err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{})
	if err != nil && ctx.Err() == nil {
		logger.Error("stdio server error", "error", err)
		return err
	}
	logger.Info("shutting down")
	return nil
}

func (a *app) runHTTP(ctx context.Context, mcpServer *sdkmcp.Server, resolver *transport.StaticTokenResolver) error {
	streamable := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{
			Stateless:      false,
			SessionTimeout: 30 * time.Minute,
		},
	)

	var auth func(http.Handler) http.Handler
	if resolver != nil {
		auth = transport.AuthMiddleware(resolver)
	}
	router := transport.NewServer(mcp.NewHandler(a.services()), auth, transport.WithMCP(streamable))

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server listening", "addr", addr, "auth", resolver != nil)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			a.logger.Error("server error", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	a.logger.Info("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("shutdown error", "error", err)
		return err
	}
	return nil
}
