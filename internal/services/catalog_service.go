package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	domain "github.com/developer0071/Tech-House-programing/internal/domain"
	"github.com/developer0071/Tech-House-programing/internal/platform/textutil"
	"github.com/developer0071/Tech-House-programing/internal/repositories"
)

var (
	// ErrCatalogInvalidInput indicates the caller supplied invalid data to a catalog operation.
	ErrCatalogInvalidInput = errors.New("catalog service: invalid input")
	// ErrCatalogProductNotFound indicates no appliance exists for the id.
	ErrCatalogProductNotFound = errors.New("catalog service: product not found")
	// ErrCatalogForbidden indicates the requester is not an admin.
	ErrCatalogForbidden = errors.New("catalog service: admin role required")
	// ErrCatalogUnavailable indicates the catalog store failed.
	ErrCatalogUnavailable = errors.New("catalog service: unavailable")
)

type accountFinder interface {
	Get(ctx context.Context, username string) (domain.Account, error)
}

type productIDSource interface {
	NextProductID(ctx context.Context) (int64, error)
	AdvanceProductIDs(ctx context.Context, last int64) error
}

// CatalogServiceDeps bundles constructor inputs for the catalog service.
type CatalogServiceDeps struct {
	Catalog  repositories.CatalogRepository
	Counters productIDSource
	Accounts accountFinder
	Audit    AuditLogService
	Clock    func() time.Time
	Logger   func(ctx context.Context, event string, fields map[string]any)
}

type catalogService struct {
	repo     repositories.CatalogRepository
	counters productIDSource
	accounts accountFinder
	audit    AuditLogService
	clock    func() time.Time
	logger   func(context.Context, string, map[string]any)
}

// NewCatalogService constructs the catalog service with the supplied dependencies.
func NewCatalogService(deps CatalogServiceDeps) (CatalogService, error) {
	if deps.Catalog == nil {
		return nil, fmt.Errorf("catalog service: catalog repository is required")
	}
	if deps.Counters == nil {
		return nil, fmt.Errorf("catalog service: counter service is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &catalogService{
		repo:     deps.Catalog,
		counters: deps.Counters,
		accounts: deps.Accounts,
		audit:    deps.Audit,
		clock:    func() time.Time { return clock().UTC() },
		logger:   logger,
	}, nil
}

func (s *catalogService) Get(ctx context.Context, productID int64) (domain.Product, error) {
	if productID <= 0 {
		return domain.Product{}, fmt.Errorf("%w: product id must be positive", ErrCatalogInvalidInput)
	}
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		return domain.Product{}, s.translateRepoError(err)
	}
	return product, nil
}

func (s *catalogService) ListAvailable(ctx context.Context) ([]domain.Product, error) {
	return s.list(ctx, repositories.CatalogFilter{Status: domain.ProductStatusAvailable})
}

func (s *catalogService) ListByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, fmt.Errorf("%w: category is required", ErrCatalogInvalidInput)
	}
	return s.list(ctx, repositories.CatalogFilter{Category: category})
}

// Search matches keyword case-insensitively against names and categories. An empty keyword
// lists everything.
func (s *catalogService) Search(ctx context.Context, keyword string) ([]domain.Product, error) {
	return s.list(ctx, repositories.CatalogFilter{Keyword: strings.TrimSpace(keyword)})
}

func (s *catalogService) Categories(ctx context.Context) ([]string, error) {
	products, err := s.list(ctx, repositories.CatalogFilter{})
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	categories := make([]string, 0)
	for _, product := range products {
		if _, ok := seen[product.Category]; ok {
			continue
		}
		seen[product.Category] = struct{}{}
		categories = append(categories, product.Category)
	}
	sort.Strings(categories)
	return categories, nil
}

func (s *catalogService) AddProduct(ctx context.Context, cmd AddProductCommand) (domain.Product, error) {
	if err := s.requireAdmin(ctx, cmd.RequestedBy); err != nil {
		return domain.Product{}, err
	}

	name := textutil.PlainText(cmd.Name)
	if name == "" {
		return domain.Product{}, fmt.Errorf("%w: name is required", ErrCatalogInvalidInput)
	}
	if cmd.Price <= 0 {
		return domain.Product{}, fmt.Errorf("%w: price must be positive", ErrCatalogInvalidInput)
	}
	category, err := s.resolveCategory(ctx, cmd.Category)
	if err != nil {
		return domain.Product{}, err
	}

	product, err := s.insert(ctx, name, cmd.Price, category, domain.ProductStatusAvailable)
	if err != nil {
		return domain.Product{}, err
	}

	if s.audit != nil {
		s.audit.Record(ctx, AuditLogRecord{
			Actor:     strings.TrimSpace(cmd.RequestedBy),
			Action:    "catalog.product_added",
			TargetRef: fmt.Sprintf("products/%d", product.ID),
			Metadata: map[string]any{
				"name":     product.Name,
				"price":    product.Price,
				"category": product.Category,
			},
		})
	}
	s.logger(ctx, "catalog.product_added", map[string]any{"productId": product.ID, "name": product.Name})
	return product, nil
}

func (s *catalogService) MarkSold(ctx context.Context, productID int64) (domain.Product, error) {
	if productID <= 0 {
		return domain.Product{}, fmt.Errorf("%w: product id must be positive", ErrCatalogInvalidInput)
	}
	product, err := s.repo.UpdateStatus(ctx, productID, domain.ProductStatusSold)
	if err != nil {
		return domain.Product{}, s.translateRepoError(err)
	}
	s.logger(ctx, "catalog.product_sold", map[string]any{"productId": product.ID})
	return product, nil
}

// Seed inserts the items in order. Items with an explicit id keep it and the product counter
// moves past the highest id seen, so later additions never collide. Items without one take
// the next counter value. It stops at the first invalid item.
func (s *catalogService) Seed(ctx context.Context, items []CatalogSeedItem) (int, error) {
	existing, err := s.repo.List(ctx, repositories.CatalogFilter{})
	if err != nil {
		return 0, s.translateRepoError(err)
	}
	taken := make(map[int64]struct{}, len(existing)+len(items))
	for _, product := range existing {
		taken[product.ID] = struct{}{}
	}

	inserted := 0
	for i, item := range items {
		name := textutil.PlainText(item.Name)
		category := textutil.PlainText(item.Category)
		if name == "" || category == "" || item.Price <= 0 {
			return inserted, fmt.Errorf("%w: seed item %d needs a name, a category and a positive price", ErrCatalogInvalidInput, i+1)
		}
		if item.ID < 0 {
			return inserted, fmt.Errorf("%w: seed item %d has negative id %d", ErrCatalogInvalidInput, i+1, item.ID)
		}
		status := item.Status
		switch status {
		case "":
			status = domain.ProductStatusAvailable
		case domain.ProductStatusAvailable, domain.ProductStatusSold:
		default:
			return inserted, fmt.Errorf("%w: seed item %d has unknown status %q", ErrCatalogInvalidInput, i+1, status)
		}

		var product domain.Product
		if item.ID > 0 {
			if _, dup := taken[item.ID]; dup {
				return inserted, fmt.Errorf("%w: seed item %d reuses product id %d", ErrCatalogInvalidInput, i+1, item.ID)
			}
			if err := s.counters.AdvanceProductIDs(ctx, item.ID); err != nil {
				return inserted, fmt.Errorf("%w: reserve product id %d: %v", ErrCatalogUnavailable, item.ID, err)
			}
			product, err = s.insertWithID(ctx, item.ID, name, item.Price, category, status)
		} else {
			product, err = s.insert(ctx, name, item.Price, category, status)
		}
		if err != nil {
			return inserted, err
		}
		taken[product.ID] = struct{}{}
		inserted++
	}
	s.logger(ctx, "catalog.seeded", map[string]any{"products": inserted})
	return inserted, nil
}

func (s *catalogService) insert(ctx context.Context, name string, price int64, category string, status domain.ProductStatus) (domain.Product, error) {
	id, err := s.counters.NextProductID(ctx)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%w: allocate product id: %v", ErrCatalogUnavailable, err)
	}
	return s.insertWithID(ctx, id, name, price, category, status)
}

func (s *catalogService) insertWithID(ctx context.Context, id int64, name string, price int64, category string, status domain.ProductStatus) (domain.Product, error) {
	product := domain.Product{
		ID:       id,
		Name:     name,
		Price:    price,
		Status:   status,
		Category: category,
	}
	if err := s.repo.Insert(ctx, product); err != nil {
		return domain.Product{}, s.translateRepoError(err)
	}
	return product, nil
}

func (s *catalogService) requireAdmin(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if username == "" || s.accounts == nil {
		return ErrCatalogForbidden
	}
	account, err := s.accounts.Get(ctx, username)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return ErrCatalogForbidden
		}
		return err
	}
	if !account.IsAdmin() {
		return fmt.Errorf("%w: %s", ErrCatalogForbidden, username)
	}
	return nil
}

// resolveCategory maps input onto an existing category, ignoring case.
func (s *catalogService) resolveCategory(ctx context.Context, raw string) (string, error) {
	wanted := textutil.PlainText(raw)
	if wanted == "" {
		return "", fmt.Errorf("%w: category is required", ErrCatalogInvalidInput)
	}
	categories, err := s.Categories(ctx)
	if err != nil {
		return "", err
	}
	for _, category := range categories {
		if strings.EqualFold(category, wanted) {
			return category, nil
		}
	}
	return "", fmt.Errorf("%w: unknown category %q", ErrCatalogInvalidInput, wanted)
}

func (s *catalogService) list(ctx context.Context, filter repositories.CatalogFilter) ([]domain.Product, error) {
	products, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, s.translateRepoError(err)
	}
	return products, nil
}

func (s *catalogService) translateRepoError(err error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		if repoErr.IsNotFound() {
			return fmt.Errorf("%w: %v", ErrCatalogProductNotFound, err)
		}
		return fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	return err
}
