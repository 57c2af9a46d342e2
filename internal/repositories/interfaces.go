package repositories

import (
	"context"

	domain "github.com/developer0071/Tech-House-programing/internal/domain"
)

// Registry exposes typed repository accessors for dependency injection.
type Registry interface {
	Close(ctx context.Context) error

	Catalog() CatalogRepository
	Accounts() AccountRepository
	Sales() SaleRepository
	Counters() CounterRepository
	AuditLogs() AuditLogRepository
}

// RepositoryError wraps persistence failures with categorisation used by services.
type RepositoryError interface {
	error
	IsNotFound() bool
	IsConflict() bool
	IsUnavailable() bool
}

// CatalogRepository stores appliance records keyed by id.
type CatalogRepository interface {
	Insert(ctx context.Context, product domain.Product) error
	FindByID(ctx context.Context, productID int64) (domain.Product, error)
	List(ctx context.Context, filter CatalogFilter) ([]domain.Product, error)
	UpdateStatus(ctx context.Context, productID int64, status domain.ProductStatus) (domain.Product, error)
}

// AccountRepository stores accounts keyed by username.
type AccountRepository interface {
	Insert(ctx context.Context, account domain.Account) error
	FindByUsername(ctx context.Context, username string) (domain.Account, error)
	// Update applies mutate to the stored account atomically and returns the result.
	Update(ctx context.Context, username string, mutate func(*domain.Account) error) (domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
}

// SaleRepository is the append-only sales ledger.
type SaleRepository interface {
	Append(ctx context.Context, sales ...domain.Sale) error
	ListByUsername(ctx context.Context, username string) ([]domain.Sale, error)
	List(ctx context.Context) ([]domain.Sale, error)
}

// CounterRepository provides sequence numbers.
type CounterRepository interface {
	Next(ctx context.Context, counterID string, step int64) (int64, error)
	Configure(ctx context.Context, counterID string, cfg CounterConfig) error
}

// AuditLogRepository persists immutable audit trail entries.
type AuditLogRepository interface {
	Append(ctx context.Context, entry domain.AuditLogEntry) error
	List(ctx context.Context, filter AuditLogFilter) ([]domain.AuditLogEntry, error)
}

// CatalogFilter narrows catalog listings. Empty fields match everything.
type CatalogFilter struct {
	Category string
	Status   domain.ProductStatus
	// Keyword matches case-insensitively against name or category.
	Keyword string
}

// AuditLogFilter narrows audit log listings.
type AuditLogFilter struct {
	Actor     string
	Action    string
	TargetRef string
}

// CounterConfig customises increment behaviour and bounds for a counter.
type CounterConfig struct {
	Step         int64
	MaxValue     *int64
	InitialValue *int64
}
