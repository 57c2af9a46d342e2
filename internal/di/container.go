package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/developer0071/Tech-House-programing/internal/platform/config"
	"github.com/developer0071/Tech-House-programing/internal/platform/idempotency"
	"github.com/developer0071/Tech-House-programing/internal/platform/observability"
	"github.com/developer0071/Tech-House-programing/internal/repositories"
	"github.com/developer0071/Tech-House-programing/internal/services"
)

// Services bundles the service-layer contracts the shell relies upon. Concrete implementations
// are assembled in NewContainer.
type Services struct {
	Audit       services.AuditLogService
	Counters    services.CounterService
	Accounts    services.AccountService
	Catalog     services.CatalogService
	Checkout    services.CheckoutService
	Memberships services.MembershipCatalog
}

// Container wires repositories and services for runtime use.
type Container struct {
	Config       config.Config
	Repositories repositories.Registry
	Services     Services
	Logger       *zap.Logger
	// Idempotency holds completed checkout records until they expire.
	Idempotency idempotency.Store
}

// Option customises container construction.
type Option func(*options)

type options struct {
	logger   *zap.Logger
	clock    func() time.Time
	hashCost int
	seed     []services.CatalogSeedItem
}

// WithLogger routes service events to logger instead of a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithClock overrides the wall clock used by every service.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithPasswordHashCost lowers the bcrypt cost, mostly for tests.
func WithPasswordHashCost(cost int) Option {
	return func(o *options) {
		o.hashCost = cost
	}
}

// WithCatalogSeed replaces the catalog loaded from configuration.
func WithCatalogSeed(items []services.CatalogSeedItem) Option {
	return func(o *options) {
		o.seed = items
	}
}

// NewContainer constructs the runtime dependencies, seeds the system account and loads the
// catalog. Tests supply the in-memory registry just like the program does.
func NewContainer(ctx context.Context, cfg config.Config, reg repositories.Registry, opts ...Option) (*Container, error) {
	if reg == nil {
		return nil, errors.New("repositories registry is required")
	}
	o := options{clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}

	store := idempotency.NewMemoryStore()
	svc, err := buildServices(ctx, reg, cfg, store, o)
	if err != nil {
		return nil, err
	}

	return &Container{
		Config:       cfg,
		Repositories: reg,
		Services:     svc,
		Logger:       o.logger,
		Idempotency:  store,
	}, nil
}

// Close releases repository resources.
func (c *Container) Close(ctx context.Context) error {
	if c == nil || c.Repositories == nil {
		return nil
	}
	return c.Repositories.Close(ctx)
}

func buildServices(ctx context.Context, reg repositories.Registry, cfg config.Config, store idempotency.Store, o options) (Services, error) {
	var svc Services
	events := observability.EventLogger(o.logger)

	auditSvc, err := services.NewAuditLogService(services.AuditLogServiceDeps{
		Repository: reg.AuditLogs(),
		Clock:      o.clock,
		Logger:     events,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build audit log service: %w", err)
	}
	svc.Audit = auditSvc

	counterSvc, err := services.NewCounterService(services.CounterServiceDeps{
		Repository: reg.Counters(),
	})
	if err != nil {
		return Services{}, fmt.Errorf("build counter service: %w", err)
	}
	svc.Counters = counterSvc

	accountSvc, err := services.NewAccountService(services.AccountServiceDeps{
		Repository:         reg.Accounts(),
		Audit:              svc.Audit,
		Clock:              o.clock,
		Logger:             events,
		PromotionThreshold: cfg.Accounts.PromotionThreshold,
		PasswordMinLength:  cfg.Accounts.PasswordMinLength,
		AdminUsername:      cfg.Accounts.AdminUsername,
		AdminPassword:      cfg.Accounts.AdminPassword,
		HashCost:           o.hashCost,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build account service: %w", err)
	}
	if _, err := accountSvc.EnsureSystemAccount(ctx); err != nil {
		return Services{}, fmt.Errorf("seed system account: %w", err)
	}
	svc.Accounts = accountSvc

	catalogSvc, err := services.NewCatalogService(services.CatalogServiceDeps{
		Catalog:  reg.Catalog(),
		Counters: svc.Counters,
		Accounts: svc.Accounts,
		Audit:    svc.Audit,
		Clock:    o.clock,
		Logger:   events,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build catalog service: %w", err)
	}
	seed := o.seed
	if seed == nil {
		seed, err = services.LoadCatalogSeed(cfg.Catalog.SeedFile)
		if err != nil {
			return Services{}, fmt.Errorf("load catalog: %w", err)
		}
	}
	if _, err := catalogSvc.Seed(ctx, seed); err != nil {
		return Services{}, fmt.Errorf("seed catalog: %w", err)
	}
	svc.Catalog = catalogSvc

	checkoutSvc, err := services.NewCheckoutService(services.CheckoutServiceDeps{
		Catalog:        svc.Catalog,
		Accounts:       svc.Accounts,
		Sales:          reg.Sales(),
		Counters:       svc.Counters,
		Idempotency:    store,
		Clock:          o.clock,
		Logger:         events,
		DeliveryFee:    cfg.Pricing.DeliveryFee,
		IdempotencyTTL: cfg.Checkout.IdempotencyTTL,
	})
	if err != nil {
		return Services{}, fmt.Errorf("build checkout service: %w", err)
	}
	svc.Checkout = checkoutSvc

	return svc, nil
}
