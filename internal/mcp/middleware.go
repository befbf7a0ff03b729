package mcp

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type contextKey int

const operatorKey contextKey = iota

// getOperator extracts the authenticated operator from context.
func getOperator(ctx context.Context) string {
	v, _ := ctx.Value(operatorKey).(string)
	return v
}

// OperatorResolver resolves an operator name from a bearer token.
type OperatorResolver interface {
	ResolveOperator(ctx context.Context, token string) (string, error)
}

// authMiddleware implements bearer token authentication as MCP middleware.
func authMiddleware(resolver OperatorResolver) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			// Skip auth for protocol methods
			if method == "initialize" || method == "ping" || strings.HasPrefix(method, "notifications/") {
				return next(ctx, method, req)
			}

			extra := req.GetExtra()
			if extra == nil || extra.Header == nil {
				return nil, fmt.Errorf("unauthorized: missing headers")
			}

			auth := extra.Header.Get("Authorization")
			token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if token == "" {
				return nil, fmt.Errorf("unauthorized: missing bearer token")
			}

			operator, err := resolver.ResolveOperator(ctx, token)
			if err != nil {
				return nil, fmt.Errorf("unauthorized: %w", err)
			}

			ctx = context.WithValue(ctx, operatorKey, operator)
			return next(ctx, method, req)
		}
	}
}

// localOperatorMiddleware tags requests with the local operator when auth is off.
func localOperatorMiddleware(operator string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			ctx = context.WithValue(ctx, operatorKey, operator)
			return next(ctx, method, req)
		}
	}
}
