package domain

import "time"

// LinePricing is the per-line result of pricing a cart under an optional membership tier.
type LinePricing struct {
	ProductID int64
	Name      string
	Quantity  int
	// UnitPrice is the snapshot price before any membership discount.
	UnitPrice int64
	// DiscountedUnitPrice is UnitPrice after the tier discount, rounded to a whole unit.
	DiscountedUnitPrice int64
	Subtotal            int64
}

// Quote aggregates the monetary results of pricing a cart for checkout.
type Quote struct {
	Membership   MembershipTier
	Discount     int
	Lines        []LinePricing
	ItemCount    int
	Subtotal     int64
	Delivery     int64
	FreeDelivery bool
	Total        int64
}

// Receipt is returned after a checkout has been recorded.
type Receipt struct {
	CheckoutID     string
	Username       string
	Quote          Quote
	SaleNumbers    []string
	TotalPurchases int
	CompletedAt    time.Time
}
