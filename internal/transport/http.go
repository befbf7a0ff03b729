package transport

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// MCPHandler handles MCP method dispatch.
type MCPHandler interface {
	Handle(ctx context.Context, method string, params json.RawMessage) (any, error)
}

// Option configures the HTTP router.
type Option func(*options)

type options struct {
	mcp http.Handler
}

// WithMCP mounts a streamable MCP endpoint at /mcp.
func WithMCP(h http.Handler) Option {
	return func(o *options) {
		o.mcp = h
	}
}

// Server wires HTTP handlers.
type Server struct {
	handler MCPHandler
}

// NewServer creates an HTTP server router with middleware. /health is always
// public; everything else goes through authMiddleware when one is given.
func NewServer(handler MCPHandler, authMiddleware func(http.Handler) http.Handler, opts ...Option) *chi.Mux {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	srv := &Server{handler: handler}

	r.Get("/health", srv.handleHealth)

	r.Group(func(r chi.Router) {
		if authMiddleware != nil {
			r.Use(authMiddleware)
		}
		r.Post("/rpc", srv.handleRPC)
		r.Get("/records", srv.handleQuery("list_records"))
		r.Get("/schedule", srv.handleQuery("get_schedule"))
		if o.mcp != nil {
			r.Handle("/mcp", o.mcp)
			r.Handle("/mcp/*", o.mcp)
		}
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	req, err := ParseRequest(r.Body)
	if err != nil {
		WriteError(w, nil, ErrInvalidReq, "invalid request", nil)
		return
	}

	result, err := s.handler.Handle(r.Context(), req.Method, req.Params)
	if err != nil {
		WriteHandlerError(w, req.ID, err)
		return
	}

	WriteResult(w, req.ID, result)
}

// handleQuery serves a read-only method as plain JSON.
func (s *Server) handleQuery(method string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := s.handler.Handle(r.Context(), method, nil)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(result)
	}
}
