package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func trafficLoggingMiddleware(logger *slog.Logger, direction string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if logger == nil || !logger.Enabled(ctx, slog.LevelDebug) {
				return next(ctx, method, req)
			}

			operator := getOperator(ctx)
			logger.Debug("mcp traffic", "direction", direction, "stage", "request", "method", method, "operator", operator, "params", formatPayload(safeParams(req)))

			result, err := next(ctx, method, req)
			if !strings.HasPrefix(method, "notifications/") {
				if err != nil {
					logger.Debug("mcp traffic", "direction", direction, "stage", "response", "method", method, "operator", operator, "error", err)
				} else {
					logger.Debug("mcp traffic", "direction", direction, "stage", "response", "method", method, "operator", operator, "result", formatPayload(result))
				}
			}

			return result, err
		}
	}
}

// safeParams guards against requests whose params are a typed nil.
func safeParams(req sdkmcp.Request) (params any) {
	if req == nil {
		return nil
	}
	defer func() {
		if recover() != nil {
			params = nil
		}
	}()
	return req.GetParams()
}

func formatPayload(payload any) string {
	if payload == nil {
		return "<nil>"
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Sprintf("%T", payload)
	}
	return string(data)
}
