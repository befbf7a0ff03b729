package activity

import (
	"context"
	"sync"
)

// DefaultCapacity bounds the in-memory log.
const DefaultCapacity = 200

// MemoryRepository keeps the most recent entries in memory. The log does not
// survive a restart.
type MemoryRepository struct {
	mu       sync.Mutex
	capacity int
	nextID   int64
	entries  []ActivityEntry
}

// NewMemoryRepository creates a log holding at most capacity entries.
func NewMemoryRepository(capacity int) *MemoryRepository {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemoryRepository{capacity: capacity}
}

// Log appends an entry, evicting the oldest when full.
func (r *MemoryRepository) Log(_ context.Context, entry *ActivityEntry) error {
	if entry == nil {
		return ErrInvalidInput
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	entry.ID = r.nextID
	r.entries = append(r.entries, *entry)
	if over := len(r.entries) - r.capacity; over > 0 {
		r.entries = append(r.entries[:0], r.entries[over:]...)
	}
	return nil
}

// List returns matching entries newest first.
func (r *MemoryRepository) List(_ context.Context, opts ListActivityOptions) ([]ActivityEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]ActivityEntry, 0, len(r.entries))
	for i := len(r.entries) - 1; i >= 0; i-- {
		entry := r.entries[i]
		if opts.ActivityType != nil && entry.ActivityType != *opts.ActivityType {
			continue
		}
		if opts.RecordID != nil && (entry.RecordID == nil || *entry.RecordID != *opts.RecordID) {
			continue
		}
		out = append(out, entry)
	}

	if opts.Offset > 0 {
		if opts.Offset >= len(out) {
			return []ActivityEntry{}, nil
		}
		out = out[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}
	return out, nil
}
