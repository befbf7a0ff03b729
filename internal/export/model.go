package export

import "time"

// Kind distinguishes operator snapshots from shift-boundary rotations.
type Kind string

const (
	// KindManual exports the current records and keeps them.
	KindManual Kind = "manual"
	// KindScheduled exports the current records and rotates them out.
	KindScheduled Kind = "scheduled"
)

// Request describes one export invocation. Trigger is the HH:MM trigger
// time that fired and is required for scheduled exports.
type Request struct {
	Kind    Kind   `json:"kind"`
	Trigger string `json:"trigger,omitempty"`
}

// Manual returns a manual export request.
func Manual() Request {
	return Request{Kind: KindManual}
}

// Scheduled returns a scheduled export request for a trigger time.
func Scheduled(trigger string) Request {
	return Request{Kind: KindScheduled, Trigger: trigger}
}

// Result describes what an export wrote.
type Result struct {
	Kind        Kind      `json:"kind"`
	Skipped     bool      `json:"skipped"`
	Records     int       `json:"records"`
	LowQuality  int       `json:"low_quality"`
	Tag         string    `json:"tag,omitempty"`
	CSVPath     string    `json:"csv_path,omitempty"`
	TextPath    string    `json:"text_path,omitempty"`
	Rotated     int       `json:"rotated"`
	GeneratedAt time.Time `json:"generated_at"`
}
