package memory

import (
	"context"
	"sync"

	domain "github.com/developer0071/Tech-House-programing/internal/domain"
	"github.com/developer0071/Tech-House-programing/internal/repositories"
)

// AuditLogRepository stores audit entries in insertion order.
type AuditLogRepository struct {
	mu      sync.RWMutex
	entries []domain.AuditLogEntry
}

// NewAuditLogRepository constructs an empty audit trail.
func NewAuditLogRepository() *AuditLogRepository {
	return &AuditLogRepository{}
}

// Append adds an entry. Entry ids must be unique.
func (r *AuditLogRepository) Append(_ context.Context, entry domain.AuditLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.entries {
		if existing.ID == entry.ID {
			return conflict("audit.append", entry.ID)
		}
	}
	r.entries = append(r.entries, cloneAuditEntry(entry))
	return nil
}

// List returns the entries matching the filter, newest first.
func (r *AuditLogRepository) List(_ context.Context, filter repositories.AuditLogFilter) ([]domain.AuditLogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.AuditLogEntry, 0, len(r.entries))
	for i := len(r.entries) - 1; i >= 0; i-- {
		entry := r.entries[i]
		if filter.Actor != "" && entry.Actor != filter.Actor {
			continue
		}
		if filter.Action != "" && entry.Action != filter.Action {
			continue
		}
		if filter.TargetRef != "" && entry.TargetRef != filter.TargetRef {
			continue
		}
		out = append(out, cloneAuditEntry(entry))
	}
	return out, nil
}

func cloneAuditEntry(entry domain.AuditLogEntry) domain.AuditLogEntry {
	if entry.Metadata != nil {
		metadata := make(map[string]any, len(entry.Metadata))
		for k, v := range entry.Metadata {
			metadata[k] = v
		}
		entry.Metadata = metadata
	}
	return entry
}
