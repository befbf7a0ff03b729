package export

import (
	"context"

	"github.com/rpggio/defectlog/internal/domain/activity"
	"github.com/rpggio/defectlog/internal/domain/record"
)

// Store is the record store as seen by the export engine.
type Store interface {
	Snapshot() []record.Record
	Rotate(ctx context.Context, exported []record.Record) (int, error)
}

// ActivityRepository logs export outcomes.
type ActivityRepository interface {
	Log(ctx context.Context, entry *activity.ActivityEntry) error
}
