package scheduler_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rpggio/defectlog/internal/export"
	"github.com/rpggio/defectlog/internal/repository/mocks"
	"github.com/rpggio/defectlog/internal/scheduler"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

func at(hour, minute, second int) time.Time {
	return time.Date(2026, 3, 14, hour, minute, second, 0, time.Local)
}

func TestParseTriggers(t *testing.T) {
	triggers, err := scheduler.ParseTriggers([]string{"05:44", "18:10", "05:44"})
	require.NoError(t, err)
	require.Len(t, triggers, 2)
	require.Equal(t, scheduler.Trigger{Label: "18:10", Hour: 18, Minute: 10}, triggers[1])

	for _, bad := range []string{"5:44", "24:00", "12:60", "1810", "", "ab:cd"} {
		_, err := scheduler.ParseTrigger(bad)
		require.ErrorIs(t, err, scheduler.ErrInvalidTrigger, bad)
	}

	_, err = scheduler.ParseTriggers(nil)
	require.ErrorIs(t, err, scheduler.ErrInvalidTrigger)
}

func TestNextOccurrence(t *testing.T) {
	triggers, err := scheduler.ParseTriggers([]string{"05:44", "18:10"})
	require.NoError(t, err)

	cases := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{name: "exact match rolls to tomorrow", now: at(18, 10, 0), want: time.Date(2026, 3, 15, 5, 44, 0, 0, time.Local)},
		{name: "before first", now: at(1, 0, 0), want: at(5, 44, 0)},
		{name: "between", now: at(5, 44, 1), want: at(18, 10, 0)},
		{name: "after last", now: at(23, 59, 0), want: time.Date(2026, 3, 15, 5, 44, 0, 0, time.Local)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.True(t, tc.want.Equal(scheduler.NextOccurrence(triggers, tc.now)))
		})
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := scheduler.New(&mocks.Exporter{}, scheduler.Config{Triggers: []string{"25:00"}}, nil)
	require.ErrorIs(t, err, scheduler.ErrInvalidTrigger)

	_, err = scheduler.New(&mocks.Exporter{}, scheduler.Config{Triggers: []string{"05:44"}, PollInterval: 2 * time.Minute}, nil)
	require.Error(t, err)

	s, err := scheduler.New(&mocks.Exporter{}, scheduler.Config{Triggers: []string{"05:44", "18:10"}}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"05:44", "18:10"}, s.Triggers())
}

func TestScheduler_TickFiresOncePerMinute(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: at(18, 9, 59)}
	exporter := &mocks.Exporter{}
	exporter.On("Export", ctx, export.Scheduled("18:10")).Return(export.Result{Kind: export.KindScheduled, Records: 2, Rotated: 2}, nil)

	s, err := scheduler.New(exporter, scheduler.Config{
		Triggers:     []string{"05:44", "18:10"},
		PollInterval: 10 * time.Second,
		Now:          clock.Now,
	}, nil)
	require.NoError(t, err)

	results, err := s.Tick(ctx)
	require.NoError(t, err)
	require.Empty(t, results)

	clock.Set(at(18, 10, 0))
	results, err = s.Tick(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)

	clock.Set(at(18, 10, 40))
	results, err = s.Tick(ctx)
	require.NoError(t, err)
	require.Empty(t, results)

	exporter.AssertNumberOfCalls(t, "Export", 1)

	// same minute on the following day fires again
	clock.Set(time.Date(2026, 3, 15, 18, 10, 5, 0, time.Local))
	results, err = s.Tick(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	exporter.AssertNumberOfCalls(t, "Export", 2)
}

func TestScheduler_TickReportsExportError(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{t: at(5, 44, 0)}
	exporter := &mocks.Exporter{}
	exporter.On("Export", ctx, export.Scheduled("05:44")).Return(export.Result{}, errors.New("disk full"))

	s, err := scheduler.New(exporter, scheduler.Config{Triggers: []string{"05:44"}, Now: clock.Now}, nil)
	require.NoError(t, err)

	_, err = s.Tick(ctx)
	require.ErrorContains(t, err, "disk full")

	// no retry within the same minute
	_, err = s.Tick(ctx)
	require.NoError(t, err)
	exporter.AssertNumberOfCalls(t, "Export", 1)
}

func TestScheduler_RunStopsOnCancel(t *testing.T) {
	clock := &fakeClock{t: at(5, 44, 0)}
	exporter := &mocks.Exporter{}
	fired := make(chan struct{}, 1)
	exporter.On("Export", mock.Anything, export.Scheduled("05:44")).
		Run(func(mock.Arguments) { fired <- struct{}{} }).
		Return(export.Result{Kind: export.KindScheduled}, nil)

	s, err := scheduler.New(exporter, scheduler.Config{
		Triggers:     []string{"05:44"},
		PollInterval: 5 * time.Millisecond,
		Now:          clock.Now,
	}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled export did not fire")
	}

	// several more polls within the same minute must not fire again
	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	exporter.AssertNumberOfCalls(t, "Export", 1)
}

func TestScheduler_NextRunUsesClock(t *testing.T) {
	clock := &fakeClock{t: at(12, 0, 0)}
	s, err := scheduler.New(&mocks.Exporter{}, scheduler.Config{Triggers: []string{"05:44", "18:10"}, Now: clock.Now}, nil)
	require.NoError(t, err)
	require.True(t, at(18, 10, 0).Equal(s.NextRun()))

	clock.Set(at(18, 10, 0))
	require.True(t, time.Date(2026, 3, 15, 5, 44, 0, 0, time.Local).Equal(s.NextRun()))
}
