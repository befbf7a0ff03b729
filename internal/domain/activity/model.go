package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeRecordCreated   ActivityType = "record_created"
	TypeRecordUpdated   ActivityType = "record_updated"
	TypeStoreCleared    ActivityType = "store_cleared"
	TypeStoreRotated    ActivityType = "store_rotated"
	TypeExportCompleted ActivityType = "export_completed"
	TypeExportSkipped   ActivityType = "export_skipped"
	TypeExportFailed    ActivityType = "export_failed"
)

// ActivityEntry represents an event in the activity log
type ActivityEntry struct {
	ID           int64        `json:"id"`
	RecordID     *string      `json:"record_id,omitempty"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}
