package services

import (
	"context"
	"time"

	domain "github.com/developer0071/Tech-House-programing/internal/domain"
)

// AccountService is the account ledger: registration, credentials, membership and the
// purchase-count-gated promotion to admin.
type AccountService interface {
	EnsureSystemAccount(ctx context.Context) (domain.Account, error)
	Register(ctx context.Context, username, password string) (domain.Account, error)
	Login(ctx context.Context, username, password string) (domain.Account, error)
	Get(ctx context.Context, username string) (domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
	SetMembership(ctx context.Context, username string, tier domain.MembershipTier) (domain.Account, error)
	SetDeliveryAddress(ctx context.Context, username, address string) (domain.Account, error)
	RecordPurchase(ctx context.Context, username string) (domain.Account, error)
	CheckEligibility(ctx context.Context, username string) (Eligibility, error)
	Promote(ctx context.Context, username, adminPassword string) (domain.Account, error)
	PromotionThreshold() int
}

// CatalogService exposes the appliance catalog.
type CatalogService interface {
	Get(ctx context.Context, productID int64) (domain.Product, error)
	ListAvailable(ctx context.Context) ([]domain.Product, error)
	ListByCategory(ctx context.Context, category string) ([]domain.Product, error)
	Search(ctx context.Context, keyword string) ([]domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
	AddProduct(ctx context.Context, cmd AddProductCommand) (domain.Product, error)
	MarkSold(ctx context.Context, productID int64) (domain.Product, error)
	Seed(ctx context.Context, items []CatalogSeedItem) (int, error)
}

// CheckoutService quotes carts and turns them into recorded sales.
type CheckoutService interface {
	Quote(ctx context.Context, cart *Cart, account *domain.Account) domain.Quote
	Checkout(ctx context.Context, cmd CheckoutCommand) (domain.Receipt, error)
	History(ctx context.Context, username string) ([]domain.Sale, error)
}

// CounterService issues formatted sequence numbers.
type CounterService interface {
	Next(ctx context.Context, scope, name string, opts CounterGenerationOptions) (CounterValue, error)
	NextSaleNumber(ctx context.Context) (string, error)
	NextProductID(ctx context.Context) (int64, error)
	AdvanceProductIDs(ctx context.Context, last int64) error
}

// AuditLogService centralizes immutable audit log persistence and retrieval.
type AuditLogService interface {
	Record(ctx context.Context, record AuditLogRecord)
	List(ctx context.Context, filter AuditLogFilter) ([]domain.AuditLogEntry, error)
}

// Eligibility is the outcome of checking an account against the promotion gate.
type Eligibility struct {
	Eligible  bool
	Purchases int
	Remaining int
}

// AddProductCommand carries an admin's new catalog entry.
type AddProductCommand struct {
	RequestedBy string
	Name        string
	Price       int64
	Category    string
}

// CatalogSeedItem is one appliance loaded at startup, from the built-in list or a YAML file.
// A zero ID takes the next id from the product counter.
type CatalogSeedItem struct {
	ID       int64                `yaml:"id"`
	Name     string               `yaml:"name"`
	Price    int64                `yaml:"price"`
	Category string               `yaml:"category"`
	Status   domain.ProductStatus `yaml:"status"`
}

// CheckoutCommand asks the orchestrator to complete the cart for Username. CheckoutID makes
// the call idempotent; an empty id is generated.
type CheckoutCommand struct {
	CheckoutID string
	Username   string
	Cart       *Cart
}

// CounterGenerationOptions controls how counter values are incremented and formatted.
type CounterGenerationOptions struct {
	Step      int64
	Prefix    string
	PadLength int
	MaxValue  *int64
}

// CounterValue pairs the raw sequence value with its formatted form.
type CounterValue struct {
	Value     int64
	Formatted string
}

// AuditLogRecord defines the payload accepted by the audit writer service.
type AuditLogRecord struct {
	Actor      string
	Action     string
	TargetRef  string
	OccurredAt time.Time
	Metadata   map[string]any
	// SensitiveMetadataKeys are hashed instead of stored verbatim.
	SensitiveMetadataKeys []string
}

// AuditLogFilter narrows audit log listings.
type AuditLogFilter struct {
	Actor     string
	Action    string
	TargetRef string
}
