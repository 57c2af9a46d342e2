package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	domain "github.com/developer0071/Tech-House-programing/internal/domain"
	"github.com/developer0071/Tech-House-programing/internal/platform/idempotency"
	"github.com/developer0071/Tech-House-programing/internal/platform/observability"
	"github.com/developer0071/Tech-House-programing/internal/repositories"
)

const (
	maxCheckoutIDLength   = 128
	checkoutMeterName     = "techhouse.checkout"
	checkoutKeyNamespace  = "checkout:"
	checkoutCompletedName = "techhouse.checkout.completed"
	checkoutRevenueName   = "techhouse.checkout.revenue"
)

var (
	// ErrCheckoutInvalidInput indicates the caller supplied invalid input parameters.
	ErrCheckoutInvalidInput = errors.New("checkout: invalid input")
	// ErrCheckoutEmptyCart indicates there is nothing to buy.
	ErrCheckoutEmptyCart = errors.New("checkout: cart is empty")
	// ErrCheckoutUnauthenticated indicates checkout was attempted without a logged-in account.
	ErrCheckoutUnauthenticated = errors.New("checkout: login required")
	// ErrCheckoutProductUnavailable indicates a cart line refers to a sold or missing product.
	ErrCheckoutProductUnavailable = errors.New("checkout: product unavailable")
	// ErrCheckoutDuplicate indicates the checkout id was already used.
	ErrCheckoutDuplicate = errors.New("checkout: duplicate checkout")
	// ErrCheckoutUnavailable indicates checkout dependencies are currently unavailable.
	ErrCheckoutUnavailable = errors.New("checkout: unavailable")
)

type checkoutCatalog interface {
	Get(ctx context.Context, productID int64) (domain.Product, error)
	MarkSold(ctx context.Context, productID int64) (domain.Product, error)
}

type checkoutAccounts interface {
	Get(ctx context.Context, username string) (domain.Account, error)
	RecordPurchase(ctx context.Context, username string) (domain.Account, error)
}

type saleNumberSource interface {
	NextSaleNumber(ctx context.Context) (string, error)
}

// CheckoutServiceDeps wires the dependencies required by the checkout service.
type CheckoutServiceDeps struct {
	Catalog     checkoutCatalog
	Accounts    checkoutAccounts
	Sales       repositories.SaleRepository
	Counters    saleNumberSource
	Idempotency idempotency.Store
	Clock       func() time.Time
	IDGenerator func() string
	Logger      func(ctx context.Context, event string, fields map[string]any)
	// DeliveryFee applies to guests and to tiers without free delivery.
	DeliveryFee    int64
	IdempotencyTTL time.Duration
}

type checkoutService struct {
	catalog     checkoutCatalog
	accounts    checkoutAccounts
	sales       repositories.SaleRepository
	counters    saleNumberSource
	store       idempotency.Store
	now         func() time.Time
	newID       func() string
	logger      func(ctx context.Context, event string, fields map[string]any)
	deliveryFee int64
	ttl         time.Duration
	memberships MembershipCatalog

	completed metric.Int64Counter
	revenue   metric.Int64Counter
}

// NewCheckoutService constructs a CheckoutService validating required dependencies.
func NewCheckoutService(deps CheckoutServiceDeps) (CheckoutService, error) {
	if deps.Catalog == nil {
		return nil, errors.New("checkout service: catalog is required")
	}
	if deps.Accounts == nil {
		return nil, errors.New("checkout service: accounts are required")
	}
	if deps.Sales == nil {
		return nil, errors.New("checkout service: sales repository is required")
	}
	if deps.Counters == nil {
		return nil, errors.New("checkout service: counter service is required")
	}
	if deps.DeliveryFee < 0 {
		return nil, fmt.Errorf("checkout service: delivery fee must not be negative, got %d", deps.DeliveryFee)
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
	store := deps.Idempotency
	if store == nil {
		store = idempotency.NewMemoryStore()
	}
	ttl := deps.IdempotencyTTL
	if ttl <= 0 {
		ttl = idempotency.DefaultTTL
	}

	meter := observability.Meter(checkoutMeterName)
	completed, err := meter.Int64Counter(checkoutCompletedName, metric.WithDescription("Completed checkouts"))
	if err != nil {
		return nil, fmt.Errorf("checkout service: register %s: %w", checkoutCompletedName, err)
	}
	revenue, err := meter.Int64Counter(checkoutRevenueName, metric.WithDescription("Checkout totals in the smallest currency unit"))
	if err != nil {
		return nil, fmt.Errorf("checkout service: register %s: %w", checkoutRevenueName, err)
	}

	return &checkoutService{
		catalog:     deps.Catalog,
		accounts:    deps.Accounts,
		sales:       deps.Sales,
		counters:    deps.Counters,
		store:       store,
		now:         func() time.Time { return clock().UTC() },
		newID:       idGen,
		logger:      logger,
		deliveryFee: deps.DeliveryFee,
		ttl:         ttl,
		completed:   completed,
		revenue:     revenue,
	}, nil
}

// Quote prices the cart for the account's tier. A nil account is quoted as a guest.
func (s *checkoutService) Quote(_ context.Context, cart *Cart, account *domain.Account) domain.Quote {
	var items []domain.LineItem
	if cart != nil {
		items = cart.Snapshot()
	}
	return s.quote(items, account)
}

func (s *checkoutService) quote(items []domain.LineItem, account *domain.Account) domain.Quote {
	var tier *domain.MembershipTier
	if account != nil && account.Membership != nil {
		tier = account.Membership
	}

	quote := domain.Quote{Delivery: s.deliveryFee}
	if tier != nil {
		quote.Membership = *tier
		if info, ok := s.memberships.Info(*tier); ok {
			quote.Discount = info.DiscountPercent
			if info.FreeDelivery {
				quote.Delivery = 0
				quote.FreeDelivery = true
			}
		}
	}
	quote.Lines = priceLines(s.memberships, items, tier)
	for _, line := range quote.Lines {
		quote.ItemCount += line.Quantity
		quote.Subtotal += line.Subtotal
	}
	quote.Total = quote.Subtotal + quote.Delivery
	return quote
}

// Checkout records the cart as sales for the user. A checkout id already used returns
// ErrCheckoutDuplicate, together with the original receipt when that checkout completed.
func (s *checkoutService) Checkout(ctx context.Context, cmd CheckoutCommand) (domain.Receipt, error) {
	username := strings.TrimSpace(cmd.Username)
	ctx, span := observability.StartSpan(ctx, "checkout.complete", attribute.String("account.username", username))
	defer span.End()

	receipt, err := s.checkout(ctx, cmd, username)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "checkout failed")
		s.logger(ctx, "checkout.failed", map[string]any{"username": username, "error": err})
		return receipt, err
	}

	span.SetAttributes(
		attribute.String("checkout.id", receipt.CheckoutID),
		attribute.Int64("checkout.total", receipt.Quote.Total),
		attribute.Int("checkout.items", receipt.Quote.ItemCount),
	)
	tierAttr := metric.WithAttributes(attribute.String("membership", string(receipt.Quote.Membership)))
	s.completed.Add(ctx, 1, tierAttr)
	s.revenue.Add(ctx, receipt.Quote.Total, tierAttr)
	s.logger(ctx, "checkout.completed", map[string]any{
		"checkoutId": receipt.CheckoutID,
		"username":   receipt.Username,
		"total":      receipt.Quote.Total,
		"purchases":  receipt.TotalPurchases,
	})
	return receipt, nil
}

func (s *checkoutService) checkout(ctx context.Context, cmd CheckoutCommand, username string) (domain.Receipt, error) {
	if cmd.Cart == nil || cmd.Cart.IsEmpty() {
		return domain.Receipt{}, ErrCheckoutEmptyCart
	}
	if username == "" {
		return domain.Receipt{}, ErrCheckoutUnauthenticated
	}
	account, err := s.accounts.Get(ctx, username)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return domain.Receipt{}, fmt.Errorf("%w: %v", ErrCheckoutUnauthenticated, err)
		}
		return domain.Receipt{}, fmt.Errorf("%w: %v", ErrCheckoutUnavailable, err)
	}

	checkoutID := strings.TrimSpace(cmd.CheckoutID)
	if checkoutID == "" {
		checkoutID = s.newID()
	}
	if len(checkoutID) > maxCheckoutIDLength {
		return domain.Receipt{}, fmt.Errorf("%w: checkout id longer than %d bytes", ErrCheckoutInvalidInput, maxCheckoutIDLength)
	}
	items := cmd.Cart.Snapshot()
	key := checkoutKeyNamespace + checkoutID
	fingerprint := checkoutFingerprint(account.Username, items)

	reservation, err := s.store.Reserve(ctx, key, fingerprint, s.now(), s.ttl)
	if err != nil {
		if errors.Is(err, idempotency.ErrFingerprintMismatch) {
			return domain.Receipt{}, fmt.Errorf("%w: %s", ErrCheckoutDuplicate, checkoutID)
		}
		return domain.Receipt{}, fmt.Errorf("%w: reserve checkout: %v", ErrCheckoutUnavailable, err)
	}
	switch reservation.State {
	case idempotency.ReservationStateCompleted:
		previous, _ := reservation.Record.Result.(domain.Receipt)
		return previous, fmt.Errorf("%w: %s", ErrCheckoutDuplicate, checkoutID)
	case idempotency.ReservationStatePending:
		return domain.Receipt{}, fmt.Errorf("%w: %s is in progress", ErrCheckoutDuplicate, checkoutID)
	}

	receipt, err := s.complete(ctx, checkoutID, account, cmd.Cart, items)
	if err != nil {
		if releaseErr := s.store.Release(ctx, key, fingerprint); releaseErr != nil {
			s.logger(ctx, "checkout.release_failed", map[string]any{"checkoutId": checkoutID, "error": releaseErr})
		}
		return domain.Receipt{}, err
	}

	if err := s.store.Complete(ctx, key, fingerprint, receipt, s.now(), s.ttl); err != nil {
		s.logger(ctx, "checkout.idempotency_complete_failed", map[string]any{"checkoutId": checkoutID, "error": err})
	}
	return receipt, nil
}

func (s *checkoutService) complete(ctx context.Context, checkoutID string, account domain.Account, cart *Cart, items []domain.LineItem) (domain.Receipt, error) {
	for _, item := range items {
		product, err := s.catalog.Get(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, ErrCatalogProductNotFound) {
				return domain.Receipt{}, fmt.Errorf("%w: product %d", ErrCheckoutProductUnavailable, item.ProductID)
			}
			return domain.Receipt{}, fmt.Errorf("%w: %v", ErrCheckoutUnavailable, err)
		}
		if !product.Available() {
			return domain.Receipt{}, fmt.Errorf("%w: %s is %s", ErrCheckoutProductUnavailable, product.Name, product.Status)
		}
	}

	quote := s.quote(items, &account)
	now := s.now()

	sales := make([]domain.Sale, 0, len(quote.Lines))
	numbers := make([]string, 0, len(quote.Lines))
	for _, line := range quote.Lines {
		number, err := s.counters.NextSaleNumber(ctx)
		if err != nil {
			return domain.Receipt{}, fmt.Errorf("%w: allocate sale number: %v", ErrCheckoutUnavailable, err)
		}
		numbers = append(numbers, number)
		sales = append(sales, domain.Sale{
			ID:          s.newID(),
			Number:      number,
			CheckoutID:  checkoutID,
			ProductID:   line.ProductID,
			ProductName: line.Name,
			Quantity:    line.Quantity,
			UnitPrice:   line.DiscountedUnitPrice,
			LineTotal:   line.Subtotal,
			Username:    account.Username,
			Membership:  quote.Membership,
			SoldAt:      now,
		})
	}

	for _, item := range items {
		if _, err := s.catalog.MarkSold(ctx, item.ProductID); err != nil {
			return domain.Receipt{}, fmt.Errorf("%w: mark %d sold: %v", ErrCheckoutUnavailable, item.ProductID, err)
		}
	}
	if err := s.sales.Append(ctx, sales...); err != nil {
		return domain.Receipt{}, fmt.Errorf("%w: append sales: %v", ErrCheckoutUnavailable, err)
	}
	updated, err := s.accounts.RecordPurchase(ctx, account.Username)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("%w: record purchase: %v", ErrCheckoutUnavailable, err)
	}
	cart.Clear()

	return domain.Receipt{
		CheckoutID:     checkoutID,
		Username:       account.Username,
		Quote:          quote,
		SaleNumbers:    numbers,
		TotalPurchases: updated.TotalPurchases,
		CompletedAt:    now,
	}, nil
}

// History lists the user's sales in the order they were recorded.
func (s *checkoutService) History(ctx context.Context, username string) ([]domain.Sale, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrCheckoutUnauthenticated
	}
	sales, err := s.sales.ListByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCheckoutUnavailable, err)
	}
	return sales, nil
}

func checkoutFingerprint(username string, items []domain.LineItem) string {
	parts := make([]string, 0, len(items)+1)
	parts = append(parts, username)
	for _, item := range items {
		parts = append(parts, strconv.FormatInt(item.ProductID, 10)+"x"+strconv.Itoa(item.Quantity))
	}
	return idempotency.Fingerprint(parts...)
}
