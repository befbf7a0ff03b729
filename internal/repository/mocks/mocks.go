package mocks

import (
	"context"

	"github.com/rpggio/defectlog/internal/domain/activity"
	"github.com/rpggio/defectlog/internal/domain/record"
	"github.com/rpggio/defectlog/internal/export"
	"github.com/stretchr/testify/mock"
)

// RecordRepository is a mock for record.Repository.
type RecordRepository struct {
	mock.Mock
}

func (m *RecordRepository) Load(ctx context.Context) ([]record.Record, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]record.Record); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RecordRepository) Save(ctx context.Context, records []record.Record) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.ActivityEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.ActivityEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// Exporter is a mock for scheduler.Exporter.
type Exporter struct {
	mock.Mock
}

func (m *Exporter) Export(ctx context.Context, req export.Request) (export.Result, error) {
	args := m.Called(ctx, req)
	if res, ok := args.Get(0).(export.Result); ok {
		return res, args.Error(1)
	}
	return export.Result{}, args.Error(1)
}
