package memory

import (
	"context"
	"sync"

	domain "github.com/developer0071/Tech-House-programing/internal/domain"
)

// SaleRepository is an append-only slice of sales in recording order.
type SaleRepository struct {
	mu    sync.RWMutex
	sales []domain.Sale
	ids   map[string]struct{}
}

// NewSaleRepository constructs an empty sales ledger.
func NewSaleRepository() *SaleRepository {
	return &SaleRepository{ids: make(map[string]struct{})}
}

// Append records the sales atomically; if any id already exists nothing is written.
func (r *SaleRepository) Append(_ context.Context, sales ...domain.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, sale := range sales {
		if _, ok := r.ids[sale.ID]; ok {
			return conflict("sales.append", sale.ID)
		}
	}
	for _, sale := range sales {
		r.ids[sale.ID] = struct{}{}
		r.sales = append(r.sales, sale)
	}
	return nil
}

// ListByUsername returns the sales recorded for username.
func (r *SaleRepository) ListByUsername(_ context.Context, username string) ([]domain.Sale, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Sale
	for _, sale := range r.sales {
		if sale.Username == username {
			out = append(out, sale)
		}
	}
	return out, nil
}

// List returns every recorded sale.
func (r *SaleRepository) List(_ context.Context) ([]domain.Sale, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Sale, len(r.sales))
	copy(out, r.sales)
	return out, nil
}
