package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// buildToolCatalog returns all available MCP tools
func buildToolCatalog() []ToolDefinition {
	return []ToolDefinition{
		{
			Name:        "create_record",
			Description: "Log a defect observation. The time of day is captured now.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"quality": map[string]any{
						"type":        "string",
						"description": "Quality percentage as XX,X (comma decimal) or a whole number, 0 to 100",
						"pattern":     `^(\d{1,2},\d|\d{1,3})$`,
					},
					"occurrence": map[string]any{
						"type":        "string",
						"description": "Free-text description of the defect",
					},
				},
				"required": []string{"quality", "occurrence"},
			},
		},
		{
			Name:        "update_record",
			Description: "Edit quality and occurrence of an existing record by id, or by index in the list_records ordering",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": map[string]any{
						"type":        "string",
						"description": "Record ID (preferred)",
					},
					"index": map[string]any{
						"type":        "integer",
						"description": "Position in the newest-first list; resolved at call time",
						"minimum":     0,
					},
					"quality": map[string]any{
						"type":        "string",
						"description": "Quality percentage as XX,X or a whole number, 0 to 100",
					},
					"occurrence": map[string]any{
						"type":        "string",
						"description": "Free-text description of the defect",
					},
				},
				"required": []string{"quality", "occurrence"},
			},
		},
		{
			Name:        "list_records",
			Description: "List current records newest first; low-quality records are flagged",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
		{
			Name:        "clear_records",
			Description: "Delete every record without exporting",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
		{
			Name:        "export_now",
			Description: "Write the CSV and TXT reports for the current records now. Records are kept.",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
		{
			Name:        "get_schedule",
			Description: "Show the configured export times and the next scheduled export",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
		{
			Name:        "get_recent_activity",
			Description: "Recent record changes and export outcomes, newest first",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"type": map[string]any{
						"type":        "string",
						"description": "Filter by activity type",
						"enum": []string{
							"record_created", "record_updated", "store_cleared", "store_rotated",
							"export_completed", "export_skipped", "export_failed",
						},
					},
					"limit": map[string]any{
						"type":        "integer",
						"description": "Maximum number of entries (default 20)",
					},
					"offset": map[string]any{
						"type":        "integer",
						"description": "Offset for pagination",
					},
				},
			},
		},
	}
}

// registerTools adds every catalog tool to the server, routing calls through h.
func registerTools(server *sdkmcp.Server, h *Handler) {
	for _, def := range buildToolCatalog() {
		name := def.Name
		server.AddTool(&sdkmcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		}, func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
			var args json.RawMessage
			if req != nil && req.Params != nil {
				args = req.Params.Arguments
			}
			result, err := h.Handle(ctx, name, args)
			if err != nil {
				return toolError(err), nil
			}
			return toolResult(result)
		})
	}
}

func toolResult(result any) (*sdkmcp.CallToolResult, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil
}

func toolError(err error) *sdkmcp.CallToolResult {
	apiErr := MapError(err)
	if apiErr == nil {
		apiErr = &APIError{Code: "INTERNAL", Message: err.Error()}
	}
	data, _ := json.Marshal(apiErr)
	return &sdkmcp.CallToolResult{
		IsError: true,
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}
}
