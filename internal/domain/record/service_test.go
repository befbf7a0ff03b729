package record_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rpggio/defectlog/internal/domain/record"
	"github.com/rpggio/defectlog/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stepClock struct {
	t time.Time
}

func (c *stepClock) now() time.Time {
	current := c.t
	c.t = c.t.Add(time.Minute)
	return current
}

func newClock() *stepClock {
	return &stepClock{t: time.Date(2026, 3, 14, 12, 10, 0, 0, time.Local)}
}

func TestRecordService_Create(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.RecordRepository{}
	activities := &mocks.ActivityRepository{}

	repo.On("Save", ctx, mock.MatchedBy(func(list []record.Record) bool { return len(list) == 1 })).Return(nil)
	activities.On("Log", ctx, mock.Anything).Return(nil)

	svc := record.NewService(repo, activities, nil, record.WithClock(newClock().now))
	rec, err := svc.Create(ctx, record.CreateRequest{Quality: "98,8", Occurrence: "  risco na lateral  "})
	require.NoError(t, err)
	require.NotEmpty(t, rec.ID)
	require.Equal(t, "12:10", rec.Time)
	require.Equal(t, "98,8%", rec.Quality)
	require.Equal(t, "risco na lateral", rec.Occurrence)
	require.Equal(t, time.Date(2026, 3, 14, 12, 10, 0, 0, time.Local).Unix(), rec.CreatedAt().Unix())
	require.Equal(t, 1, svc.Len())
	repo.AssertExpectations(t)
	activities.AssertExpectations(t)
}

func TestRecordService_Create_InvalidInput(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.RecordRepository{}
	svc := record.NewService(repo, nil, nil)

	_, err := svc.Create(ctx, record.CreateRequest{Quality: "101", Occurrence: "x"})
	require.ErrorIs(t, err, record.ErrInvalidQuality)

	_, err = svc.Create(ctx, record.CreateRequest{Quality: "9.5", Occurrence: "x"})
	require.ErrorIs(t, err, record.ErrInvalidQuality)

	_, err = svc.Create(ctx, record.CreateRequest{Quality: "95", Occurrence: "   "})
	require.ErrorIs(t, err, record.ErrEmptyOccurrence)

	_, err = svc.Create(ctx, record.CreateRequest{})
	require.ErrorIs(t, err, record.ErrInvalidInput)

	require.Zero(t, svc.Len())
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestRecordService_Create_PersistFailureKeepsRecord(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.RecordRepository{}
	repo.On("Save", ctx, mock.Anything).Return(errors.New("disk full"))

	svc := record.NewService(repo, nil, nil)
	rec, err := svc.Create(ctx, record.CreateRequest{Quality: "97", Occurrence: "bolha"})
	require.ErrorIs(t, err, record.ErrPersist)
	require.ErrorContains(t, err, "disk full")
	require.NotNil(t, rec)
	require.Equal(t, 1, svc.Len())
}

func TestRecordService_Load_FallsBackToEmpty(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.RecordRepository{}
	repo.On("Load", ctx).Return(nil, errors.New("unexpected end of JSON input"))

	svc := record.NewService(repo, nil, nil)
	loaded := svc.Load(ctx)
	require.Empty(t, loaded)
	require.Zero(t, svc.Len())
}

func TestRecordService_Load_AssignsMissingIDs(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.RecordRepository{}
	repo.On("Load", ctx).Return([]record.Record{
		{Time: "07:00", Quality: "95,0%", Occurrence: "a", Timestamp: 100},
		{ID: "kept", Time: "07:05", Quality: "99,0%", Occurrence: "b", Timestamp: 200},
	}, nil)

	svc := record.NewService(repo, nil, nil)
	loaded := svc.Load(ctx)
	require.Len(t, loaded, 2)
	require.NotEmpty(t, loaded[0].ID)
	require.Equal(t, "kept", loaded[1].ID)
}

func TestRecordService_ListAndSnapshotOrdering(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.RecordRepository{}
	repo.On("Save", ctx, mock.Anything).Return(nil)

	svc := record.NewService(repo, nil, nil, record.WithClock(newClock().now))
	for _, q := range []string{"94,0", "97,5", "100"} {
		_, err := svc.Create(ctx, record.CreateRequest{Quality: q, Occurrence: "obs " + q})
		require.NoError(t, err)
	}

	views := svc.List()
	require.Len(t, views, 3)
	require.Equal(t, "100,0%", views[0].Quality)
	require.Equal(t, "94,0%", views[2].Quality)
	require.True(t, views[2].Low)
	require.False(t, views[0].Low)
	require.Equal(t, 2, views[2].Index)

	snapshot := svc.Snapshot()
	require.Equal(t, "94,0%", snapshot[0].Quality)
	require.Equal(t, "100,0%", snapshot[2].Quality)
}

func TestRecordService_UpdateByIDAndIndex(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.RecordRepository{}
	repo.On("Save", ctx, mock.Anything).Return(nil)

	svc := record.NewService(repo, nil, nil, record.WithClock(newClock().now))
	first, err := svc.Create(ctx, record.CreateRequest{Quality: "90", Occurrence: "first"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, record.CreateRequest{Quality: "91", Occurrence: "second"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, record.UpdateRequest{ID: first.ID, Quality: "99,9", Occurrence: "fixed"})
	require.NoError(t, err)
	require.Equal(t, "99,9%", updated.Quality)
	require.Equal(t, first.Time, updated.Time)
	require.Equal(t, first.Timestamp, updated.Timestamp)

	// index 0 is the newest record
	newest := 0
	updated, err = svc.Update(ctx, record.UpdateRequest{Index: &newest, Quality: "50", Occurrence: "by index"})
	require.NoError(t, err)
	require.Equal(t, "by index", updated.Occurrence)
	require.Equal(t, "12:11", updated.Time)

	missing := 5
	_, err = svc.Update(ctx, record.UpdateRequest{Index: &missing, Quality: "50", Occurrence: "x"})
	require.ErrorIs(t, err, record.ErrRecordNotFound)

	_, err = svc.Update(ctx, record.UpdateRequest{ID: "nope", Quality: "50", Occurrence: "x"})
	require.ErrorIs(t, err, record.ErrRecordNotFound)

	_, err = svc.Update(ctx, record.UpdateRequest{Quality: "50", Occurrence: "x"})
	require.ErrorIs(t, err, record.ErrInvalidInput)
}

func TestRecordService_ClearAndRotate(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.RecordRepository{}
	repo.On("Save", ctx, mock.Anything).Return(nil)

	svc := record.NewService(repo, nil, nil, record.WithClock(newClock().now))
	a, err := svc.Create(ctx, record.CreateRequest{Quality: "90", Occurrence: "a"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, record.CreateRequest{Quality: "91", Occurrence: "b"})
	require.NoError(t, err)

	removed, err := svc.Rotate(ctx, []record.Record{*a})
	require.NoError(t, err)
	require.Equal(t, 1, removed)
	require.Equal(t, 1, svc.Len())

	require.NoError(t, svc.Clear(ctx))
	require.Zero(t, svc.Len())
	repo.AssertCalled(t, "Save", ctx, []record.Record{})
}

func TestRecordService_RotateKeepsRecordsEditedSinceSnapshot(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.RecordRepository{}
	repo.On("Save", ctx, mock.Anything).Return(nil)

	svc := record.NewService(repo, nil, nil, record.WithClock(newClock().now))
	a, err := svc.Create(ctx, record.CreateRequest{Quality: "90", Occurrence: "a"})
	require.NoError(t, err)
	b, err := svc.Create(ctx, record.CreateRequest{Quality: "91", Occurrence: "b"})
	require.NoError(t, err)

	exported := svc.Snapshot()
	require.Len(t, exported, 2)

	// edited after the snapshot: the report holds the old version
	_, err = svc.Update(ctx, record.UpdateRequest{ID: b.ID, Quality: "80", Occurrence: "b revisado"})
	require.NoError(t, err)

	removed, err := svc.Rotate(ctx, exported)
	require.NoError(t, err)
	require.Equal(t, 1, removed)

	left := svc.Snapshot()
	require.Len(t, left, 1)
	require.Equal(t, b.ID, left[0].ID)
	require.Equal(t, "b revisado", left[0].Occurrence)

	_, err = svc.Get(a.ID)
	require.ErrorIs(t, err, record.ErrRecordNotFound)
}
