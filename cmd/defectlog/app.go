package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/rpggio/defectlog/internal/config"
	"github.com/rpggio/defectlog/internal/domain/activity"
	"github.com/rpggio/defectlog/internal/domain/record"
	"github.com/rpggio/defectlog/internal/export"
	"github.com/rpggio/defectlog/internal/jsonfile"
	"github.com/rpggio/defectlog/internal/mcp"
	"github.com/rpggio/defectlog/internal/scheduler"
	"github.com/spf13/cobra"
)

// app holds the wired services for one process.
type app struct {
	cfg    config.Config
	logger *slog.Logger

	activity *activity.Service
	records  *record.Service
	exports  *export.Engine
	schedule *scheduler.Scheduler

	closeLog func() error
	lock     *jsonfile.Lock
}

func loadConfig(opts *rootOptions) (config.Config, error) {
	path := opts.configPath
	if path == "" {
		path = os.Getenv("DEFECTLOG_CONFIG_PATH")
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("config error: %w", err)
	}
	return cfg, nil
}

// newApp wires storage, export and scheduling. Logs go to logOut unless a
// log file is configured.
func newApp(ctx context.Context, cfg config.Config, logOut io.Writer) (*app, error) {
	logger, closeLog, err := newLogger(cfg.Log, logOut)
	if err != nil {
		return nil, err
	}

	activitySvc := activity.NewService(activity.NewMemoryRepository(activity.DefaultCapacity), logger)
	recordSvc := record.NewService(
		jsonfile.NewRecordRepository(cfg.Store.Path),
		activitySvc,
		logger,
		record.WithLowThreshold(cfg.Export.LowQualityThreshold),
	)
	recordSvc.Load(ctx)

	engine := export.NewEngine(recordSvc, activitySvc, export.Config{
		Dir:          cfg.Export.Dir,
		LowThreshold: cfg.Export.LowQualityThreshold,
	}, logger)

	sched, err := scheduler.New(engine, scheduler.Config{
		Triggers:     cfg.Schedule.Triggers,
		PollInterval: cfg.Schedule.PollInterval,
	}, logger)
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("schedule: %w", err)
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		activity: activitySvc,
		records:  recordSvc,
		exports:  engine,
		schedule: sched,
		closeLog: closeLog,
	}, nil
}

// openApp loads config and wires an app for a one-shot command that only
// reads the record file.
func openApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	return newApp(cmd.Context(), cfg, cmd.ErrOrStderr())
}

// openWritableApp is openApp for commands that change the record file. It
// holds the store lock until Close and fails while "defectlog serve" runs on
// the same file.
func openWritableApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	lock, err := lockStore(cfg)
	if err != nil {
		return nil, err
	}
	a, err := newApp(cmd.Context(), cfg, cmd.ErrOrStderr())
	if err != nil {
		_ = lock.Unlock()
		return nil, err
	}
	a.lock = lock
	return a, nil
}

func lockStore(cfg config.Config) (*jsonfile.Lock, error) {
	lock, err := jsonfile.TryLock(cfg.Store.Path)
	if errors.Is(err, jsonfile.ErrLocked) {
		return nil, fmt.Errorf("%w; stop \"defectlog serve\" or make the change through its tools", err)
	}
	return lock, err
}

func (a *app) services() mcp.Services {
	return mcp.Services{
		Records:  a.records,
		Exports:  a.exports,
		Schedule: a.schedule,
		Activity: a.activity,
	}
}

func (a *app) Close() error {
	err := a.closeLog()
	if a.lock != nil {
		err = errors.Join(err, a.lock.Unlock())
	}
	return err
}
