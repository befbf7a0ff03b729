package record

import (
	"context"

	"github.com/rpggio/defectlog/internal/domain/activity"
)

// Repository provides durable storage for the whole record set.
type Repository interface {
	Load(ctx context.Context) ([]Record, error)
	Save(ctx context.Context, records []Record) error
}

// ActivityRepository logs record activities.
type ActivityRepository interface {
	Log(ctx context.Context, entry *activity.ActivityEntry) error
}
