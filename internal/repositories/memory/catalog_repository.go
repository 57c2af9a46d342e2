package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	domain "github.com/developer0071/Tech-House-programing/internal/domain"
	"github.com/developer0071/Tech-House-programing/internal/repositories"
)

// CatalogRepository keeps appliance records in a map keyed by product id.
type CatalogRepository struct {
	mu       sync.RWMutex
	products map[int64]domain.Product
}

// NewCatalogRepository constructs an empty catalog.
func NewCatalogRepository() *CatalogRepository {
	return &CatalogRepository{products: make(map[int64]domain.Product)}
}

// Insert stores a new product. Duplicate ids are conflicts.
func (r *CatalogRepository) Insert(_ context.Context, product domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID]; ok {
		return conflict("catalog.insert", product.ID)
	}
	r.products[product.ID] = product
	return nil
}

// FindByID returns the product with the given id.
func (r *CatalogRepository) FindByID(_ context.Context, productID int64) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[productID]
	if !ok {
		return domain.Product{}, notFound("catalog.find", productID)
	}
	return product, nil
}

// List returns the products matching the filter ordered by id.
func (r *CatalogRepository) List(_ context.Context, filter repositories.CatalogFilter) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keyword := strings.ToLower(strings.TrimSpace(filter.Keyword))
	out := make([]domain.Product, 0, len(r.products))
	for _, product := range r.products {
		if filter.Category != "" && product.Category != filter.Category {
			continue
		}
		if filter.Status != "" && product.Status != filter.Status {
			continue
		}
		if keyword != "" &&
			!strings.Contains(strings.ToLower(product.Name), keyword) &&
			!strings.Contains(strings.ToLower(product.Category), keyword) {
			continue
		}
		out = append(out, product)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// UpdateStatus flips the status of an existing product.
func (r *CatalogRepository) UpdateStatus(_ context.Context, productID int64, status domain.ProductStatus) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[productID]
	if !ok {
		return domain.Product{}, notFound("catalog.update_status", productID)
	}
	product.Status = status
	r.products[productID] = product
	return product, nil
}
