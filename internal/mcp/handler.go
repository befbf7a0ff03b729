package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rpggio/defectlog/internal/domain/activity"
	"github.com/rpggio/defectlog/internal/domain/record"
	"github.com/rpggio/defectlog/internal/export"
)

// RecordService defines record store operations needed by MCP.
type RecordService interface {
	Create(ctx context.Context, req record.CreateRequest) (*record.Record, error)
	Update(ctx context.Context, req record.UpdateRequest) (*record.Record, error)
	Clear(ctx context.Context) error
	List() []record.View
}

// ExportService runs exports.
type ExportService interface {
	Export(ctx context.Context, req export.Request) (export.Result, error)
}

// ScheduleService reports the export schedule.
type ScheduleService interface {
	Triggers() []string
	NextRun() time.Time
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Records  RecordService
	Exports  ExportService
	Schedule ScheduleService
	Activity ActivityService
}

// Handler dispatches operator commands to the domain services. Both the MCP
// tools and the JSON-RPC transport go through it.
type Handler struct {
	records  RecordService
	exports  ExportService
	schedule ScheduleService
	activity ActivityService
}

// NewHandler creates a new handler.
func NewHandler(services Services) *Handler {
	return &Handler{
		records:  services.Records,
		exports:  services.Exports,
		schedule: services.Schedule,
		activity: services.Activity,
	}
}

// Handle dispatches a method call. Errors come back as *APIError whenever
// they map to a known code.
func (h *Handler) Handle(ctx context.Context, method string, params json.RawMessage) (any, error) {
	result, err := h.dispatch(ctx, method, params)
	if err != nil {
		return nil, mapError(err)
	}
	return result, nil
}

func (h *Handler) dispatch(ctx context.Context, method string, params json.RawMessage) (any, error) {
	switch method {
	case "create_record":
		var req CreateRecordParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		rec, err := h.records.Create(ctx, record.CreateRequest{
			Quality:    req.Quality,
			Occurrence: req.Occurrence,
		})
		return recordResponse(rec, err)
	case "update_record":
		var req UpdateRecordParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		rec, err := h.records.Update(ctx, record.UpdateRequest{
			ID:         req.ID,
			Index:      req.Index,
			Quality:    req.Quality,
			Occurrence: req.Occurrence,
		})
		return recordResponse(rec, err)
	case "list_records":
		views := h.records.List()
		low := 0
		for _, v := range views {
			if v.Low {
				low++
			}
		}
		return ListRecordsResponse{Records: views, Count: len(views), Low: low}, nil
	case "clear_records":
		err := h.records.Clear(ctx)
		if err != nil && !errors.Is(err, record.ErrPersist) {
			return nil, err
		}
		resp := ClearRecordsResponse{Status: "ok", Saved: err == nil}
		if err != nil {
			resp.Warning = err.Error()
		}
		return resp, nil
	case "export_now":
		res, err := h.exports.Export(ctx, export.Manual())
		if err != nil {
			return nil, err
		}
		return res, nil
	case "get_schedule":
		next := h.schedule.NextRun()
		return ScheduleResponse{
			Triggers:    h.schedule.Triggers(),
			Next:        next,
			NextDisplay: next.Format("02/01/2006 15:04"),
		}, nil
	case "get_recent_activity":
		var req GetRecentActivityParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		limit := req.Limit
		if limit <= 0 {
			limit = 20
		}
		entries, err := h.activity.GetRecentActivity(ctx, activity.ListActivityOptions{
			ActivityType: req.Type,
			Limit:        limit,
			Offset:       req.Offset,
		})
		if err != nil {
			return nil, err
		}
		resp := make([]ActivityEntryResponse, 0, len(entries))
		for _, entry := range entries {
			resp = append(resp, ActivityEntryResponse{
				Timestamp: entry.CreatedAt,
				Type:      entry.ActivityType,
				RecordID:  entry.RecordID,
				Summary:   entry.Summary,
				Details:   entry.Details,
			})
		}
		return resp, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
}

func recordResponse(rec *record.Record, err error) (any, error) {
	if err != nil && (rec == nil || !errors.Is(err, record.ErrPersist)) {
		return nil, err
	}
	resp := RecordResponse{Record: *rec, Saved: err == nil}
	if err != nil {
		resp.Warning = err.Error()
	}
	return resp, nil
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 || string(params) == "null" {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}
