package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	domain "github.com/developer0071/Tech-House-programing/internal/domain"
	"github.com/developer0071/Tech-House-programing/internal/platform/idempotency"
	"github.com/developer0071/Tech-House-programing/internal/repositories/memory"
)

const (
	testAdminPassword = "admin123"
	testDeliveryFee   = 50000
)

var testClock = time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)

// testShop wires every service over the in-memory registry with the default catalog seeded.
type testShop struct {
	registry *memory.Registry
	events   *eventCapture
	audit    AuditLogService
	counters CounterService
	accounts AccountService
	catalog  CatalogService
	checkout CheckoutService
	store    *idempotency.MemoryStore
}

func newTestShop(t *testing.T) *testShop {
	t.Helper()
	shop, err := buildTestShop()
	if err != nil {
		t.Fatalf("build shop: %v", err)
	}
	return shop
}

func buildTestShop() (*testShop, error) {
	ctx := context.Background()
	clock := func() time.Time { return testClock }

	shop := &testShop{
		registry: memory.NewRegistry(),
		events:   &eventCapture{},
		store:    idempotency.NewMemoryStore(),
	}

	var err error
	shop.audit, err = NewAuditLogService(AuditLogServiceDeps{
		Repository: shop.registry.AuditLogs(),
		Clock:      clock,
		Logger:     shop.events.hook,
	})
	if err != nil {
		return nil, fmt.Errorf("audit service: %w", err)
	}
	shop.counters, err = NewCounterService(CounterServiceDeps{Repository: shop.registry.Counters()})
	if err != nil {
		return nil, fmt.Errorf("counter service: %w", err)
	}
	shop.accounts, err = NewAccountService(AccountServiceDeps{
		Repository:    shop.registry.Accounts(),
		Audit:         shop.audit,
		Clock:         clock,
		Logger:        shop.events.hook,
		AdminPassword: testAdminPassword,
		HashCost:      bcrypt.MinCost,
	})
	if err != nil {
		return nil, fmt.Errorf("account service: %w", err)
	}
	if _, err := shop.accounts.EnsureSystemAccount(ctx); err != nil {
		return nil, fmt.Errorf("seed system account: %w", err)
	}
	shop.catalog, err = NewCatalogService(CatalogServiceDeps{
		Catalog:  shop.registry.Catalog(),
		Counters: shop.counters,
		Accounts: shop.accounts,
		Audit:    shop.audit,
		Clock:    clock,
		Logger:   shop.events.hook,
	})
	if err != nil {
		return nil, fmt.Errorf("catalog service: %w", err)
	}
	if _, err := shop.catalog.Seed(ctx, DefaultCatalogSeed()); err != nil {
		return nil, fmt.Errorf("seed catalog: %w", err)
	}
	shop.checkout, err = NewCheckoutService(CheckoutServiceDeps{
		Catalog:     shop.catalog,
		Accounts:    shop.accounts,
		Sales:       shop.registry.Sales(),
		Counters:    shop.counters,
		Idempotency: shop.store,
		Clock:       clock,
		Logger:      shop.events.hook,
		DeliveryFee: testDeliveryFee,
	})
	if err != nil {
		return nil, fmt.Errorf("checkout service: %w", err)
	}
	return shop, nil
}

func (s *testShop) register(t *testing.T, username string) domain.Account {
	t.Helper()
	account, err := s.accounts.Register(context.Background(), username, "secret")
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return account
}

func (s *testShop) product(t *testing.T, id int64) domain.Product {
	t.Helper()
	product, err := s.catalog.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get product %d: %v", id, err)
	}
	return product
}

// recordPurchases bumps the purchase count directly, as n completed checkouts would.
func (s *testShop) recordPurchases(t *testing.T, username string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if _, err := s.accounts.RecordPurchase(context.Background(), username); err != nil {
			t.Fatalf("record purchase: %v", err)
		}
	}
}
