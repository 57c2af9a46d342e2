package di

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"github.com/developer0071/Tech-House-programing/internal/platform/config"
	"github.com/developer0071/Tech-House-programing/internal/repositories/memory"
	"github.com/developer0071/Tech-House-programing/internal/services"
)

func testConfig(t *testing.T, env map[string]string) config.Config {
	t.Helper()
	cfg, err := config.Load(context.Background(), config.WithEnvMap(env), config.WithoutSystemEnv(), config.WithEnvFile(""))
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}

func TestNewContainerRequiresRegistry(t *testing.T) {
	if _, err := NewContainer(context.Background(), config.Config{}, nil); err == nil {
		t.Fatal("expected error for nil registry")
	}
}

func TestNewContainerSeedsAccountsAndCatalog(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zap.InfoLevel)
	fixed := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	container, err := NewContainer(ctx, testConfig(t, nil), memory.NewRegistry(),
		WithLogger(zap.New(core)),
		WithClock(func() time.Time { return fixed }),
		WithPasswordHashCost(bcrypt.MinCost),
	)
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	t.Cleanup(func() { _ = container.Close(ctx) })

	admin, err := container.Services.Accounts.Login(ctx, "admin", "admin123")
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	if !admin.IsAdmin() || !admin.CreatedAt.Equal(fixed) {
		t.Fatalf("unexpected admin %+v", admin)
	}

	products, err := container.Services.Catalog.ListAvailable(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(products) != 15 {
		t.Fatalf("expected 15 products, got %d", len(products))
	}

	if logs.FilterMessage("catalog.seeded").Len() != 1 {
		t.Fatalf("expected catalog.seeded log entry, got %v", logs.All())
	}
}

func TestNewContainerUsesConfiguredSeedFileAndFee(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	seed := "products:\n  - name: Kettle\n    price: 90000\n    category: Kitchen appliances\n"
	if err := os.WriteFile(path, []byte(seed), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	cfg := testConfig(t, map[string]string{
		"TECHHOUSE_CATALOG_FILE": path,
		"TECHHOUSE_DELIVERY_FEE": "1000",
	})

	container, err := NewContainer(ctx, cfg, memory.NewRegistry(), WithPasswordHashCost(bcrypt.MinCost))
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	products, err := container.Services.Catalog.Search(ctx, "")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(products) != 1 || products[0].Name != "Kettle" {
		t.Fatalf("unexpected catalog %+v", products)
	}

	cart := services.NewCart()
	if err := cart.Add(products[0], 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	quote := container.Services.Checkout.Quote(ctx, cart, nil)
	if quote.Total != 91000 {
		t.Fatalf("expected configured delivery fee, got %+v", quote)
	}
}

func TestNewContainerFailsOnMissingSeedFile(t *testing.T) {
	cfg := testConfig(t, map[string]string{"TECHHOUSE_CATALOG_FILE": filepath.Join(t.TempDir(), "absent.yaml")})
	if _, err := NewContainer(context.Background(), cfg, memory.NewRegistry(), WithPasswordHashCost(bcrypt.MinCost)); err == nil {
		t.Fatal("expected missing seed file to fail")
	}
}

func TestNewContainerWithExplicitSeed(t *testing.T) {
	ctx := context.Background()
	container, err := NewContainer(ctx, testConfig(t, nil), memory.NewRegistry(),
		WithPasswordHashCost(bcrypt.MinCost),
		WithCatalogSeed([]services.CatalogSeedItem{{Name: "Lamp", Price: 40000, Category: "Lighting"}}),
	)
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	categories, err := container.Services.Catalog.Categories(ctx)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if len(categories) != 1 || categories[0] != "Lighting" {
		t.Fatalf("unexpected categories %v", categories)
	}
}
