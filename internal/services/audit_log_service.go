package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	domain "github.com/developer0071/Tech-House-programing/internal/domain"
	"github.com/developer0071/Tech-House-programing/internal/repositories"
)

const (
	defaultAuditActor   = "system"
	defaultHasherPrefix = "sha256:"
)

type auditLogService struct {
	repo     repositories.AuditLogRepository
	clock    func() time.Time
	newID    func() string
	logger   func(context.Context, string, map[string]any)
	hashSalt string
}

// AuditLogServiceDeps bundles constructor inputs for the audit writer service.
type AuditLogServiceDeps struct {
	Repository  repositories.AuditLogRepository
	Clock       func() time.Time
	IDGenerator func() string
	Logger      func(ctx context.Context, event string, fields map[string]any)
	HashSalt    string
}

// NewAuditLogService creates an audit log writer backed by the supplied repository.
func NewAuditLogService(deps AuditLogServiceDeps) (AuditLogService, error) {
	if deps.Repository == nil {
		return nil, fmt.Errorf("audit log service: repository is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	return &auditLogService{
		repo:     deps.Repository,
		clock:    func() time.Time { return clock().UTC() },
		newID:    idGen,
		logger:   logger,
		hashSalt: deps.HashSalt,
	}, nil
}

// Record persists an audit log entry after hashing sensitive metadata. Repository failures are
// logged but do not bubble up to callers to avoid interrupting the primary mutation flow.
func (s *auditLogService) Record(ctx context.Context, record AuditLogRecord) {
	entry := s.buildEntry(record)
	if err := s.repo.Append(ctx, entry); err != nil {
		s.logger(ctx, "audit.append_failed", map[string]any{
			"action": entry.Action,
			"error":  err,
		})
	}
}

// List returns the entries matching the filter, newest first.
func (s *auditLogService) List(ctx context.Context, filter AuditLogFilter) ([]domain.AuditLogEntry, error) {
	return s.repo.List(ctx, repositories.AuditLogFilter{
		Actor:     strings.TrimSpace(filter.Actor),
		Action:    strings.TrimSpace(filter.Action),
		TargetRef: strings.TrimSpace(filter.TargetRef),
	})
}

func (s *auditLogService) buildEntry(record AuditLogRecord) domain.AuditLogEntry {
	occurred := record.OccurredAt
	if occurred.IsZero() {
		occurred = s.clock()
	} else {
		occurred = occurred.UTC()
	}

	actor := sanitizeText(record.Actor, 160)
	if actor == "" {
		actor = defaultAuditActor
	}

	entry := domain.AuditLogEntry{
		ID:        s.newID(),
		Actor:     actor,
		Action:    sanitizeText(record.Action, 120),
		TargetRef: sanitizeText(record.TargetRef, 200),
		CreatedAt: occurred,
	}
	if meta := s.prepareMetadata(record.Metadata, record.SensitiveMetadataKeys); len(meta) > 0 {
		entry.Metadata = meta
	}
	return entry
}

func (s *auditLogService) prepareMetadata(metadata map[string]any, sensitiveKeys []string) map[string]any {
	if len(metadata) == 0 {
		return nil
	}
	sensitive := make(map[string]struct{}, len(sensitiveKeys))
	for _, key := range sensitiveKeys {
		if trimmed := strings.ToLower(strings.TrimSpace(key)); trimmed != "" {
			sensitive[trimmed] = struct{}{}
		}
	}

	result := make(map[string]any, len(metadata))
	for key, value := range metadata {
		trimmedKey := sanitizeText(key, 80)
		if trimmedKey == "" {
			continue
		}
		if _, ok := sensitive[strings.ToLower(trimmedKey)]; ok {
			result[trimmedKey] = defaultHasherPrefix + s.hashString(fmt.Sprint(value))
			continue
		}
		if text, ok := value.(string); ok {
			value = sanitizeText(text, 512)
		}
		result[trimmedKey] = value
	}
	return result
}

func (s *auditLogService) hashString(value string) string {
	sum := sha256.Sum256([]byte(s.hashSalt + strings.TrimSpace(value)))
	return hex.EncodeToString(sum[:])
}

func sanitizeText(input string, limit int) string {
	if limit <= 0 {
		limit = 256
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}
	var builder strings.Builder
	for _, r := range input {
		if r < 32 && r != '\t' {
			continue
		}
		builder.WriteRune(r)
		if builder.Len() >= limit {
			break
		}
	}
	return builder.String()
}
