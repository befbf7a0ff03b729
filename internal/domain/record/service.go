package record

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/defectlog/internal/domain/activity"
)

// Service is the record store: the in-memory record set backed by a
// repository that is rewritten after every mutation.
type Service struct {
	repo       Repository
	activities ActivityRepository
	logger     *slog.Logger
	now        func() time.Time
	threshold  float64

	mu      sync.Mutex
	records []Record
}

// NewService creates a new record store. Call Load before use.
func NewService(repo Repository, activities ActivityRepository, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{
		repo:       repo,
		activities: activities,
		logger:     logger,
		now:        time.Now,
		threshold:  DefaultLowThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateRequest describes a record creation request.
type CreateRequest struct {
	Quality    string
	Occurrence string
}

// UpdateRequest describes an edit. ID takes precedence; Index addresses the
// newest-first ordering returned by List at the time of the call.
type UpdateRequest struct {
	ID         string
	Index      *int
	Quality    string
	Occurrence string
}

// Load replaces the in-memory set with the durable content. A missing or
// unreadable file yields an empty set; the failure is only logged.
func (s *Service) Load(ctx context.Context) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	loaded, err := s.repo.Load(ctx)
	if err != nil {
		s.logger.Warn("failed to load records, starting empty", "error", err)
		loaded = nil
	}

	records := make([]Record, 0, len(loaded))
	for _, rec := range loaded {
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		records = append(records, rec)
	}
	s.records = records
	s.logger.Info("records loaded", "count", len(records))
	return slices.Clone(records)
}

// Create validates the request, stamps the record with the current time and
// persists the set. On ErrPersist the record is returned and kept in memory.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Record, error) {
	quality, occurrence, err := ValidateCreateInput(req)
	if err != nil {
		return nil, err
	}

	now := s.now()
	rec := Record{
		ID:         uuid.NewString(),
		Time:       now.Format("15:04"),
		Quality:    quality,
		Occurrence: occurrence,
		Timestamp:  epochSeconds(now),
	}

	s.mu.Lock()
	s.records = append(s.records, rec)
	err = s.persist(ctx)
	s.mu.Unlock()

	s.logActivity(ctx, activity.TypeRecordCreated, &rec.ID, fmt.Sprintf("created record %s (%s)", rec.Time, rec.Quality))
	if err != nil {
		return &rec, err
	}
	return &rec, nil
}

// Update edits quality and occurrence in place. Time and Timestamp never change.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (*Record, error) {
	quality, occurrence, err := ValidateUpdateInput(req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	pos, err := s.resolve(req)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.records[pos].Quality = quality
	s.records[pos].Occurrence = occurrence
	updated := s.records[pos]
	err = s.persist(ctx)
	s.mu.Unlock()

	s.logActivity(ctx, activity.TypeRecordUpdated, &updated.ID, fmt.Sprintf("updated record %s (%s)", updated.Time, updated.Quality))
	if err != nil {
		return &updated, err
	}
	return &updated, nil
}

// Get returns a record by ID.
func (s *Service) Get(id string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos := s.indexOf(id)
	if pos < 0 {
		return nil, ErrRecordNotFound
	}
	rec := s.records[pos]
	return &rec, nil
}

// Clear empties the store and persists immediately.
func (s *Service) Clear(ctx context.Context) error {
	s.mu.Lock()
	removed := len(s.records)
	s.records = []Record{}
	err := s.persist(ctx)
	s.mu.Unlock()

	s.logActivity(ctx, activity.TypeStoreCleared, nil, fmt.Sprintf("cleared %d records", removed))
	return err
}

// Rotate removes the given records, typically the ones just exported, and
// persists. Records added since the snapshot was taken are kept, and so are
// records edited since then: an entry is removed only while it still equals
// its exported copy.
func (s *Service) Rotate(ctx context.Context, exported []Record) (int, error) {
	drop := make(map[string]Record, len(exported))
	for _, rec := range exported {
		drop[rec.ID] = rec
	}

	s.mu.Lock()
	before := len(s.records)
	s.records = slices.DeleteFunc(s.records, func(rec Record) bool {
		snap, ok := drop[rec.ID]
		return ok && snap == rec
	})
	removed := before - len(s.records)
	skipped := len(exported) - removed
	err := s.persist(ctx)
	s.mu.Unlock()

	if skipped > 0 {
		s.logger.Info("rotation skipped records changed since export", "count", skipped)
	}
	s.logActivity(ctx, activity.TypeStoreRotated, nil, fmt.Sprintf("rotated %d records", removed))
	return removed, err
}

// List returns the display view: newest first, low-quality records flagged.
func (s *Service) List() []View {
	s.mu.Lock()
	sorted := sortedDesc(s.records)
	s.mu.Unlock()

	views := make([]View, len(sorted))
	for i, rec := range sorted {
		views[i] = View{Record: rec, Index: i, Low: IsLow(rec.Quality, s.threshold)}
	}
	return views
}

// Snapshot returns a copy of the records oldest first, the export order.
func (s *Service) Snapshot() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := slices.Clone(s.records)
	slices.SortStableFunc(out, func(a, b Record) int {
		return cmp.Compare(a.Timestamp, b.Timestamp)
	})
	return out
}

// Len returns the number of records held.
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func (s *Service) resolve(req UpdateRequest) (int, error) {
	if req.ID != "" {
		pos := s.indexOf(req.ID)
		if pos < 0 {
			return -1, ErrRecordNotFound
		}
		return pos, nil
	}

	display := sortedDesc(s.records)
	idx := *req.Index
	if idx < 0 || idx >= len(display) {
		return -1, ErrRecordNotFound
	}
	return s.indexOf(display[idx].ID), nil
}

func (s *Service) indexOf(id string) int {
	return slices.IndexFunc(s.records, func(rec Record) bool { return rec.ID == id })
}

// persist must be called with mu held.
func (s *Service) persist(ctx context.Context) error {
	if err := s.repo.Save(ctx, slices.Clone(s.records)); err != nil {
		s.logger.Error("failed to save records", "count", len(s.records), "error", err)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

func (s *Service) logActivity(ctx context.Context, typ activity.ActivityType, recordID *string, summary string) {
	if s.activities == nil {
		return
	}
	_ = s.activities.Log(ctx, &activity.ActivityEntry{
		RecordID:     recordID,
		ActivityType: typ,
		Summary:      summary,
	})
}

func sortedDesc(records []Record) []Record {
	out := slices.Clone(records)
	slices.SortStableFunc(out, func(a, b Record) int {
		return cmp.Compare(b.Timestamp, a.Timestamp)
	})
	return out
}
