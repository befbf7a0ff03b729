package mcp

import (
	"errors"
	"fmt"

	"github.com/rpggio/defectlog/internal/domain/record"
	"github.com/rpggio/defectlog/internal/export"
)

var (
	// ErrUnknownMethod indicates a method name with no handler.
	ErrUnknownMethod = errors.New("unknown method")
	// ErrInvalidParams indicates params that do not decode.
	ErrInvalidParams = errors.New("invalid params")
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// RPCCode returns the JSON-RPC error code for the HTTP transport.
func (e *APIError) RPCCode() int {
	switch e.Code {
	case "UNKNOWN_METHOD":
		return -32601
	case "INVALID_PARAMS":
		return -32602
	default:
		return -32000
	}
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, record.ErrRecordNotFound):
		return &APIError{Code: "RECORD_NOT_FOUND", Message: "record not found", RecoveryHint: "Call list_records and use the returned id"}
	case errors.Is(err, record.ErrInvalidQuality):
		return &APIError{Code: "INVALID_QUALITY", Message: "quality must be XX,X or a whole number between 0 and 100", RecoveryHint: "Example: 98,5"}
	case errors.Is(err, record.ErrEmptyOccurrence):
		return &APIError{Code: "EMPTY_OCCURRENCE", Message: "occurrence must not be empty", RecoveryHint: "Describe the defect"}
	case errors.Is(err, record.ErrInvalidInput):
		return &APIError{Code: "INVALID_INPUT", Message: "fill in both quality and occurrence", RecoveryHint: "Edits need an id or index"}
	case errors.Is(err, record.ErrPersist):
		return &APIError{Code: "PERSIST_FAILED", Message: err.Error(), RecoveryHint: "Check disk space and permissions on the record file"}
	case errors.Is(err, export.ErrInvalidRequest):
		return &APIError{Code: "INVALID_EXPORT", Message: "invalid export request"}
	case errors.Is(err, export.ErrExportFailed):
		return &APIError{Code: "EXPORT_FAILED", Message: err.Error(), RecoveryHint: "Records were kept; fix the export directory and export again"}
	case errors.Is(err, export.ErrRotateFailed):
		return &APIError{Code: "ROTATE_FAILED", Message: err.Error(), RecoveryHint: "Reports were written; clear records manually once saving works"}
	case errors.Is(err, ErrInvalidParams):
		return &APIError{Code: "INVALID_PARAMS", Message: err.Error()}
	case errors.Is(err, ErrUnknownMethod):
		return &APIError{Code: "UNKNOWN_METHOD", Message: err.Error()}
	default:
		return nil
	}
}
