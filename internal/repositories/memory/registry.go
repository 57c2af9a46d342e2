package memory

import (
	"context"

	"github.com/developer0071/Tech-House-programing/internal/repositories"
)

// Registry wires the in-memory repositories for one program run.
type Registry struct {
	catalog  *CatalogRepository
	accounts *AccountRepository
	sales    *SaleRepository
	counters *CounterRepository
	audit    *AuditLogRepository
}

var _ repositories.Registry = (*Registry)(nil)

// NewRegistry builds empty repositories. Seeding is left to the services that own the data.
func NewRegistry() *Registry {
	return &Registry{
		catalog:  NewCatalogRepository(),
		accounts: NewAccountRepository(),
		sales:    NewSaleRepository(),
		counters: NewCounterRepository(),
		audit:    NewAuditLogRepository(),
	}
}

// Close is a no-op; nothing outlives the process.
func (r *Registry) Close(context.Context) error { return nil }

// Catalog returns the appliance repository.
func (r *Registry) Catalog() repositories.CatalogRepository { return r.catalog }

// Accounts returns the account repository.
func (r *Registry) Accounts() repositories.AccountRepository { return r.accounts }

// Sales returns the sales ledger.
func (r *Registry) Sales() repositories.SaleRepository { return r.sales }

// Counters returns the sequence repository.
func (r *Registry) Counters() repositories.CounterRepository { return r.counters }

// AuditLogs returns the audit trail repository.
func (r *Registry) AuditLogs() repositories.AuditLogRepository { return r.audit }
