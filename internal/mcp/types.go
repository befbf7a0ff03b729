package mcp

import (
	"time"

	"github.com/rpggio/defectlog/internal/domain/activity"
	"github.com/rpggio/defectlog/internal/domain/record"
)

type CreateRecordParams struct {
	Quality    string `json:"quality"`
	Occurrence string `json:"occurrence"`
}

type UpdateRecordParams struct {
	ID         string `json:"id,omitempty"`
	Index      *int   `json:"index,omitempty"`
	Quality    string `json:"quality"`
	Occurrence string `json:"occurrence"`
}

type GetRecentActivityParams struct {
	Type   *activity.ActivityType `json:"type,omitempty"`
	Limit  int                    `json:"limit,omitempty"`
	Offset int                    `json:"offset,omitempty"`
}

// RecordResponse is returned by create_record and update_record. Saved is
// false when the change is held in memory but could not be written to disk.
type RecordResponse struct {
	Record  record.Record `json:"record"`
	Saved   bool          `json:"saved"`
	Warning string        `json:"warning,omitempty"`
}

type ListRecordsResponse struct {
	Records []record.View `json:"records"`
	Count   int           `json:"count"`
	Low     int           `json:"low"`
}

type ClearRecordsResponse struct {
	Status  string `json:"status"`
	Saved   bool   `json:"saved"`
	Warning string `json:"warning,omitempty"`
}

type ScheduleResponse struct {
	Triggers    []string  `json:"triggers"`
	Next        time.Time `json:"next"`
	NextDisplay string    `json:"next_display"`
}

type ActivityEntryResponse struct {
	Timestamp time.Time             `json:"timestamp"`
	Type      activity.ActivityType `json:"type"`
	RecordID  *string               `json:"record_id,omitempty"`
	Summary   string                `json:"summary"`
	Details   string                `json:"details,omitempty"`
}

// ToolDefinition describes a tool and its JSON input schema.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any
}
