package activity

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Service handles activity log operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new activity service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Log records an entry with the current timestamp if missing.
func (s *Service) Log(ctx context.Context, entry *ActivityEntry) error {
	if entry == nil {
		return ErrInvalidInput
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if err := s.repo.Log(ctx, entry); err != nil {
		return fmt.Errorf("logging activity: %w", err)
	}
	if s.logger != nil {
		s.logger.Debug("activity", "type", entry.ActivityType, "summary", entry.Summary)
	}
	return nil
}

// GetRecentActivity lists activity entries with filtering, newest first.
func (s *Service) GetRecentActivity(ctx context.Context, opts ListActivityOptions) ([]ActivityEntry, error) {
	return s.repo.List(ctx, opts)
}
