package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	domain "github.com/developer0071/Tech-House-programing/internal/domain"
)

func TestNewCheckoutServiceValidatesDeps(t *testing.T) {
	shop := newTestShop(t)
	base := CheckoutServiceDeps{
		Catalog:  shop.catalog,
		Accounts: shop.accounts,
		Sales:    shop.registry.Sales(),
		Counters: shop.counters,
	}

	missingCatalog := base
	missingCatalog.Catalog = nil
	missingSales := base
	missingSales.Sales = nil
	negativeFee := base
	negativeFee.DeliveryFee = -1

	for name, deps := range map[string]CheckoutServiceDeps{
		"catalog":      missingCatalog,
		"sales":        missingSales,
		"negative fee": negativeFee,
	} {
		if _, err := NewCheckoutService(deps); err == nil {
			t.Fatalf("%s: expected constructor error", name)
		}
	}
	if _, err := NewCheckoutService(base); err != nil {
		t.Fatalf("expected defaults to be filled, got %v", err)
	}
}

func TestCheckoutServiceQuote(t *testing.T) {
	shop := newTestShop(t)
	ctx := context.Background()
	cart := NewCart()
	if err := cart.Add(shop.product(t, 1), 3); err != nil {
		t.Fatalf("add: %v", err)
	}

	tests := []struct {
		name         string
		account      *domain.Account
		wantSubtotal int64
		wantDelivery int64
		wantDiscount int
	}{
		{name: "guest", account: nil, wantSubtotal: 1350000, wantDelivery: testDeliveryFee},
		{name: "no tier", account: &domain.Account{Username: "alice"}, wantSubtotal: 1350000, wantDelivery: testDeliveryFee},
		{name: "silver", account: &domain.Account{Username: "alice", Membership: domain.TierPtr(domain.TierSilver)}, wantSubtotal: 1215000, wantDelivery: testDeliveryFee, wantDiscount: 10},
		{name: "gold", account: &domain.Account{Username: "alice", Membership: domain.TierPtr(domain.TierGold)}, wantSubtotal: 1147500, wantDelivery: 0, wantDiscount: 15},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			quote := shop.checkout.Quote(ctx, cart, tc.account)
			if quote.Subtotal != tc.wantSubtotal || quote.Delivery != tc.wantDelivery {
				t.Fatalf("unexpected quote %+v", quote)
			}
			if quote.Total != tc.wantSubtotal+tc.wantDelivery {
				t.Fatalf("expected total %d, got %d", tc.wantSubtotal+tc.wantDelivery, quote.Total)
			}
			if quote.Discount != tc.wantDiscount || quote.ItemCount != 3 {
				t.Fatalf("unexpected quote detail %+v", quote)
			}
			if quote.FreeDelivery != (tc.wantDelivery == 0) {
				t.Fatalf("unexpected free delivery flag %+v", quote)
			}
		})
	}

	empty := shop.checkout.Quote(ctx, nil, nil)
	if empty.Subtotal != 0 || empty.Total != testDeliveryFee || len(empty.Lines) != 0 {
		t.Fatalf("unexpected empty quote %+v", empty)
	}
}

func TestCheckoutServiceCheckout(t *testing.T) {
	shop := newTestShop(t)
	ctx := context.Background()
	shop.register(t, "alice")
	if _, err := shop.accounts.SetMembership(ctx, "alice", domain.TierSilver); err != nil {
		t.Fatalf("set membership: %v", err)
	}

	cart := NewCart()
	if err := cart.Add(shop.product(t, 10), 1); err != nil {
		t.Fatalf("add fan: %v", err)
	}
	if err := cart.Add(shop.product(t, 1), 3); err != nil {
		t.Fatalf("add mixer: %v", err)
	}

	receipt, err := shop.checkout.Checkout(ctx, CheckoutCommand{CheckoutID: "co-1", Username: "alice", Cart: cart})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if receipt.CheckoutID != "co-1" || receipt.Username != "alice" {
		t.Fatalf("unexpected receipt identity %+v", receipt)
	}
	if receipt.Quote.Subtotal != 1467000 || receipt.Quote.Delivery != testDeliveryFee || receipt.Quote.Total != 1517000 {
		t.Fatalf("unexpected receipt totals %+v", receipt.Quote)
	}
	if len(receipt.SaleNumbers) != 2 || receipt.SaleNumbers[0] != "S-000001" || receipt.SaleNumbers[1] != "S-000002" {
		t.Fatalf("unexpected sale numbers %v", receipt.SaleNumbers)
	}
	if receipt.TotalPurchases != 1 {
		t.Fatalf("expected one purchase recorded, got %d", receipt.TotalPurchases)
	}
	if !receipt.CompletedAt.Equal(testClock) {
		t.Fatalf("unexpected completion time %s", receipt.CompletedAt)
	}
	if !cart.IsEmpty() {
		t.Fatal("expected cart cleared")
	}

	for _, id := range []int64{1, 10} {
		if product := shop.product(t, id); product.Status != domain.ProductStatusSold {
			t.Fatalf("expected product %d sold, got %s", id, product.Status)
		}
	}

	history, err := shop.checkout.History(ctx, "alice")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 sales, got %d", len(history))
	}
	mixer := history[0]
	if mixer.ProductName != "Mixer" || mixer.Quantity != 3 || mixer.UnitPrice != 405000 || mixer.LineTotal != 1215000 {
		t.Fatalf("unexpected mixer sale %+v", mixer)
	}
	if mixer.CheckoutID != "co-1" || mixer.Membership != domain.TierSilver || mixer.ID == "" {
		t.Fatalf("unexpected mixer sale metadata %+v", mixer)
	}

	found := false
	for _, name := range shop.events.names() {
		if name == "checkout.completed" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected checkout.completed event, got %v", shop.events.names())
	}
}

func TestCheckoutServiceRejections(t *testing.T) {
	shop := newTestShop(t)
	ctx := context.Background()
	shop.register(t, "alice")

	full := NewCart()
	if err := full.Add(shop.product(t, 2), 1); err != nil {
		t.Fatalf("add: %v", err)
	}

	tests := []struct {
		name string
		cmd  CheckoutCommand
		want error
	}{
		{name: "nil cart", cmd: CheckoutCommand{Username: "alice"}, want: ErrCheckoutEmptyCart},
		{name: "empty cart", cmd: CheckoutCommand{Username: "alice", Cart: NewCart()}, want: ErrCheckoutEmptyCart},
		{name: "guest", cmd: CheckoutCommand{Cart: full}, want: ErrCheckoutUnauthenticated},
		{name: "unknown user", cmd: CheckoutCommand{Username: "ghost", Cart: full}, want: ErrCheckoutUnauthenticated},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := shop.checkout.Checkout(ctx, tc.cmd); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
	if full.IsEmpty() {
		t.Fatal("rejected checkout must keep the cart")
	}
}

func TestCheckoutServiceSoldProductIsUnavailable(t *testing.T) {
	shop := newTestShop(t)
	ctx := context.Background()
	shop.register(t, "alice")

	cart := NewCart()
	if err := cart.Add(shop.product(t, 4), 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := shop.catalog.MarkSold(ctx, 4); err != nil {
		t.Fatalf("mark sold: %v", err)
	}

	_, err := shop.checkout.Checkout(ctx, CheckoutCommand{CheckoutID: "co-sold", Username: "alice", Cart: cart})
	if !errors.Is(err, ErrCheckoutProductUnavailable) {
		t.Fatalf("expected product unavailable, got %v", err)
	}
	account, err := shop.accounts.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if account.TotalPurchases != 0 {
		t.Fatalf("expected no purchase recorded, got %d", account.TotalPurchases)
	}
	if cart.IsEmpty() {
		t.Fatal("expected cart kept after failure")
	}

	// The failed attempt releases its reservation so the id can be retried.
	if err := cart.SetQuantity(4, 0); err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if err := cart.Add(shop.product(t, 5), 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := shop.checkout.Checkout(ctx, CheckoutCommand{CheckoutID: "co-sold", Username: "alice", Cart: cart}); err != nil {
		t.Fatalf("retry checkout: %v", err)
	}
}

func TestCheckoutServiceDuplicateCheckoutID(t *testing.T) {
	shop := newTestShop(t)
	ctx := context.Background()
	shop.register(t, "alice")

	first := NewCart()
	if err := first.Add(shop.product(t, 1), 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	receipt, err := shop.checkout.Checkout(ctx, CheckoutCommand{CheckoutID: "co-dup", Username: "alice", Cart: first})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	replay := NewCart()
	if err := replay.Add(shop.product(t, 1), 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	previous, err := shop.checkout.Checkout(ctx, CheckoutCommand{CheckoutID: "co-dup", Username: "alice", Cart: replay})
	if !errors.Is(err, ErrCheckoutDuplicate) {
		t.Fatalf("expected duplicate, got %v", err)
	}
	if previous.CheckoutID != receipt.CheckoutID || previous.Quote.Total != receipt.Quote.Total {
		t.Fatalf("expected original receipt with the duplicate, got %+v", previous)
	}

	different := NewCart()
	if err := different.Add(shop.product(t, 2), 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := shop.checkout.Checkout(ctx, CheckoutCommand{CheckoutID: "co-dup", Username: "alice", Cart: different}); !errors.Is(err, ErrCheckoutDuplicate) {
		t.Fatalf("expected duplicate for reused id, got %v", err)
	}

	account, err := shop.accounts.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if account.TotalPurchases != 1 {
		t.Fatalf("expected exactly one purchase, got %d", account.TotalPurchases)
	}
	if shop.product(t, 2).Status != domain.ProductStatusAvailable {
		t.Fatal("duplicate checkout must not sell products")
	}
	sales, err := shop.registry.Sales().List(ctx)
	if err != nil {
		t.Fatalf("list sales: %v", err)
	}
	if len(sales) != 1 {
		t.Fatalf("expected one sale, got %d", len(sales))
	}
}

func TestCheckoutServiceGeneratesCheckoutID(t *testing.T) {
	shop := newTestShop(t)
	ctx := context.Background()
	shop.register(t, "alice")

	cart := NewCart()
	if err := cart.Add(shop.product(t, 11), 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	receipt, err := shop.checkout.Checkout(ctx, CheckoutCommand{Username: "alice", Cart: cart})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if len(receipt.CheckoutID) != 26 {
		t.Fatalf("expected ulid checkout id, got %q", receipt.CheckoutID)
	}
	if _, err := shop.checkout.History(ctx, " "); !errors.Is(err, ErrCheckoutUnauthenticated) {
		t.Fatalf("expected unauthenticated history, got %v", err)
	}
}

func TestCheckoutServiceFivePurchasesUnlockPromotion(t *testing.T) {
	shop := newTestShop(t)
	ctx := context.Background()
	shop.register(t, "alice")

	for id := int64(1); id <= 5; id++ {
		cart := NewCart()
		if err := cart.Add(shop.product(t, id), 1); err != nil {
			t.Fatalf("add: %v", err)
		}
		if _, err := shop.checkout.Checkout(ctx, CheckoutCommand{Username: "alice", Cart: cart}); err != nil {
			t.Fatalf("checkout %d: %v", id, err)
		}
		if id == 4 {
			if _, err := shop.accounts.Promote(ctx, "alice", testAdminPassword); !errors.Is(err, ErrAccountInsufficientPurchases) {
				t.Fatalf("expected gate after four purchases, got %v", err)
			}
		}
	}

	promoted, err := shop.accounts.Promote(ctx, "alice", testAdminPassword)
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if !promoted.IsAdmin() || promoted.TotalPurchases != 5 {
		t.Fatalf("unexpected account %+v", promoted)
	}
}

// cartGrowingCatalog adds a line to the cart the first time checkout reads the catalog.
type cartGrowingCatalog struct {
	checkoutCatalog
	cart  *Cart
	extra domain.Product
	once  sync.Once
}

func (c *cartGrowingCatalog) Get(ctx context.Context, productID int64) (domain.Product, error) {
	c.once.Do(func() { _ = c.cart.Add(c.extra, 2) })
	return c.checkoutCatalog.Get(ctx, productID)
}

func TestCheckoutServicePricesTheReservedSnapshot(t *testing.T) {
	shop := newTestShop(t)
	ctx := context.Background()
	shop.register(t, "alice")

	cart := NewCart()
	if err := cart.Add(shop.product(t, 1), 1); err != nil {
		t.Fatalf("add mixer: %v", err)
	}
	catalog := &cartGrowingCatalog{checkoutCatalog: shop.catalog, cart: cart, extra: shop.product(t, 10)}

	svc, err := NewCheckoutService(CheckoutServiceDeps{
		Catalog:     catalog,
		Accounts:    shop.accounts,
		Sales:       shop.registry.Sales(),
		Counters:    shop.counters,
		Clock:       func() time.Time { return testClock },
		DeliveryFee: testDeliveryFee,
	})
	if err != nil {
		t.Fatalf("new checkout service: %v", err)
	}

	receipt, err := svc.Checkout(ctx, CheckoutCommand{Username: "alice", Cart: cart})
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if len(receipt.Quote.Lines) != 1 || receipt.Quote.Lines[0].ProductID != 1 {
		t.Fatalf("expected only the reserved mixer line, got %+v", receipt.Quote.Lines)
	}
	if receipt.Quote.ItemCount != 1 || receipt.Quote.Subtotal != 450000 || receipt.Quote.Total != 500000 {
		t.Fatalf("unexpected quote %+v", receipt.Quote)
	}
	if len(receipt.SaleNumbers) != 1 {
		t.Fatalf("expected one sale, got %v", receipt.SaleNumbers)
	}

	sales, err := svc.History(ctx, "alice")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(sales) != 1 || sales[0].ProductID != 1 || sales[0].LineTotal != 450000 {
		t.Fatalf("unexpected sales %+v", sales)
	}
	if fan := shop.product(t, 10); !fan.Available() {
		t.Fatalf("fan was never paid for but is %s", fan.Status)
	}
}
