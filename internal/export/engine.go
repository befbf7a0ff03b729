package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rpggio/defectlog/internal/domain/activity"
	"github.com/rpggio/defectlog/internal/domain/record"
)

// DefaultDir is the export directory used when none is configured.
const DefaultDir = "Relatorios_Defeitos"

// Config configures an Engine.
type Config struct {
	Dir          string
	LowThreshold float64
	Now          func() time.Time
}

// Engine writes the record set to report files and rotates it after
// scheduled exports. Exports are serialized.
type Engine struct {
	store      Store
	activities ActivityRepository
	dir        string
	threshold  float64
	now        func() time.Time
	logger     *slog.Logger

	mu sync.Mutex
}

// NewEngine creates an export engine.
func NewEngine(store Store, activities ActivityRepository, cfg Config, logger *slog.Logger) *Engine {
	if cfg.Dir == "" {
		cfg.Dir = DefaultDir
	}
	if cfg.LowThreshold <= 0 {
		cfg.LowThreshold = record.DefaultLowThreshold
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		store:      store,
		activities: activities,
		dir:        cfg.Dir,
		threshold:  cfg.LowThreshold,
		now:        cfg.Now,
		logger:     logger,
	}
}

// Dir returns the export directory.
func (e *Engine) Dir() string {
	return e.dir
}

// Export writes the tabular and narrative reports for the current records.
// An empty store is a no-op reported as Skipped. Scheduled exports remove
// the exported records afterwards; nothing is removed if writing failed.
func (e *Engine) Export(ctx context.Context, req Request) (Result, error) {
	if err := validateRequest(req); err != nil {
		return Result{}, err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	res := Result{Kind: req.Kind, GeneratedAt: now}

	records := e.store.Snapshot()
	if len(records) == 0 {
		res.Skipped = true
		e.logger.Info("export skipped, no records", "kind", req.Kind, "trigger", req.Trigger)
		e.logActivity(ctx, activity.TypeExportSkipped, fmt.Sprintf("%s export skipped: no records", req.Kind), "")
		return res, nil
	}

	res.Tag = Tag(req, now)
	res.Records = len(records)
	base := filepath.Join(e.dir, FileBase(now, res.Tag))
	res.CSVPath = base + ".csv"
	res.TextPath = base + ".txt"

	low, err := e.write(res.CSVPath, res.TextPath, records, now)
	if err != nil {
		e.logger.Error("export failed", "kind", req.Kind, "trigger", req.Trigger, "error", err)
		e.logActivity(ctx, activity.TypeExportFailed, fmt.Sprintf("%s export failed", req.Kind), err.Error())
		return res, fmt.Errorf("%w: %w", ErrExportFailed, err)
	}
	res.LowQuality = low

	if req.Kind == KindScheduled {
		rotated, err := e.store.Rotate(ctx, records)
		res.Rotated = rotated
		if err != nil {
			e.logger.Error("rotation failed after export", "trigger", req.Trigger, "csv", res.CSVPath, "error", err)
			e.logActivity(ctx, activity.TypeExportFailed, "records exported but not rotated", err.Error())
			return res, fmt.Errorf("%w: %w", ErrRotateFailed, err)
		}
	}

	e.logger.Info("export completed",
		"kind", req.Kind,
		"trigger", req.Trigger,
		"records", res.Records,
		"low_quality", res.LowQuality,
		"rotated", res.Rotated,
		"csv", res.CSVPath,
		"txt", res.TextPath,
	)
	e.logActivity(ctx, activity.TypeExportCompleted,
		fmt.Sprintf("%s export of %d records", req.Kind, res.Records),
		res.CSVPath+" "+res.TextPath)
	return res, nil
}

// write renders both reports into temp files and renames them into place
// only once both rendered.
func (e *Engine) write(csvPath, textPath string, records []record.Record, now time.Time) (int, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return 0, fmt.Errorf("create export dir: %w", err)
	}

	csvTmp, err := e.writeTemp(func(w io.Writer) error {
		return WriteCSV(w, records)
	})
	if err != nil {
		return 0, fmt.Errorf("write csv: %w", err)
	}

	var low int
	textTmp, err := e.writeTemp(func(w io.Writer) error {
		var werr error
		low, werr = WriteNarrative(w, records, now, e.threshold)
		return werr
	})
	if err != nil {
		os.Remove(csvTmp)
		return 0, fmt.Errorf("write txt: %w", err)
	}

	if err := os.Rename(csvTmp, csvPath); err != nil {
		os.Remove(csvTmp)
		os.Remove(textTmp)
		return 0, fmt.Errorf("place csv: %w", err)
	}
	if err := os.Rename(textTmp, textPath); err != nil {
		os.Remove(textTmp)
		return 0, fmt.Errorf("place txt: %w", err)
	}
	return low, nil
}

func (e *Engine) writeTemp(render func(io.Writer) error) (string, error) {
	f, err := os.CreateTemp(e.dir, ".relatorio-*")
	if err != nil {
		return "", err
	}
	name := f.Name()
	if err := f.Chmod(0o644); err != nil {
		f.Close()
		os.Remove(name)
		return "", err
	}
	if err := render(f); err != nil {
		f.Close()
		os.Remove(name)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", err
	}
	return name, nil
}

func (e *Engine) logActivity(ctx context.Context, typ activity.ActivityType, summary, details string) {
	if e.activities == nil {
		return
	}
	_ = e.activities.Log(ctx, &activity.ActivityEntry{
		ActivityType: typ,
		Summary:      summary,
		Details:      details,
	})
}

func validateRequest(req Request) error {
	switch req.Kind {
	case KindManual:
		return nil
	case KindScheduled:
		if strings.TrimSpace(req.Trigger) == "" || strings.ContainsAny(req.Trigger, `/\.`) {
			return ErrInvalidRequest
		}
		return nil
	default:
		return ErrInvalidRequest
	}
}
