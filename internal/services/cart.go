package services

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	domain "github.com/developer0071/Tech-House-programing/internal/domain"
)

var (
	// ErrCartInvalidInput indicates a malformed quantity or missing product reference.
	ErrCartInvalidInput = errors.New("cart: invalid input")
	// ErrCartItemNotFound indicates the product is not in the cart. It matches ErrCartInvalidInput too.
	ErrCartItemNotFound = fmt.Errorf("%w: item not in cart", ErrCartInvalidInput)
)

const (
	// MaxQuantity bounds the quantity of a single line.
	MaxQuantity = math.MaxInt32
	// maxCartAmount bounds the undiscounted cart value so totals plus delivery stay far from overflow.
	maxCartAmount int64 = 1_000_000_000_000_000
)

// Cart holds one session's selected products. Line items snapshot the product name and
// price when first added; a line item with quantity below one never exists.
type Cart struct {
	mu          sync.Mutex
	items       map[int64]domain.LineItem
	memberships MembershipCatalog
}

// NewCart returns an empty cart.
func NewCart() *Cart {
	return &Cart{items: make(map[int64]domain.LineItem)}
}

// Add puts quantity units of product into the cart, incrementing an existing line.
func (c *Cart) Add(product domain.Product, quantity int) error {
	if product.ID <= 0 {
		return fmt.Errorf("%w: product id is required", ErrCartInvalidInput)
	}
	if product.Price < 0 {
		return fmt.Errorf("%w: product %d has a negative price", ErrCartInvalidInput, product.ID)
	}
	if quantity <= 0 || quantity > MaxQuantity {
		return fmt.Errorf("%w: quantity must be between 1 and %d, got %d", ErrCartInvalidInput, MaxQuantity, quantity)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.ensureItems()
	line, ok := c.items[product.ID]
	if !ok {
		line = domain.LineItem{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
		}
	}
	if line.Quantity > MaxQuantity-quantity {
		return fmt.Errorf("%w: quantity of product %d would exceed %d", ErrCartInvalidInput, product.ID, MaxQuantity)
	}
	line.Quantity += quantity
	if err := c.checkAmount(line); err != nil {
		return err
	}
	c.items[product.ID] = line
	return nil
}

// RemoveItem deletes the whole line and reports whether anything was removed.
func (c *Cart) RemoveItem(productID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[productID]; !ok {
		return false
	}
	delete(c.items, productID)
	return true
}

// RemoveQuantity decrements a line, deleting it once the quantity drops to zero or below.
func (c *Cart) RemoveQuantity(productID int64, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive, got %d", ErrCartInvalidInput, quantity)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	line, ok := c.items[productID]
	if !ok {
		return fmt.Errorf("%w: product %d", ErrCartItemNotFound, productID)
	}
	line.Quantity -= quantity
	if line.Quantity <= 0 {
		delete(c.items, productID)
		return nil
	}
	c.items[productID] = line
	return nil
}

// SetQuantity overwrites a line's quantity. Zero or negative quantities delete the line.
func (c *Cart) SetQuantity(productID int64, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	line, ok := c.items[productID]
	if !ok {
		return fmt.Errorf("%w: product %d", ErrCartItemNotFound, productID)
	}
	if quantity <= 0 {
		delete(c.items, productID)
		return nil
	}
	if quantity > MaxQuantity {
		return fmt.Errorf("%w: quantity must be at most %d, got %d", ErrCartInvalidInput, MaxQuantity, quantity)
	}
	line.Quantity = quantity
	if err := c.checkAmount(line); err != nil {
		return err
	}
	c.items[productID] = line
	return nil
}

// Total sums the cart. With a tier each unit price is discounted and rounded before being
// multiplied by the quantity.
func (c *Cart) Total(tier *domain.MembershipTier) int64 {
	var total int64
	for _, line := range c.Lines(tier) {
		total += line.Subtotal
	}
	return total
}

// Lines prices every line under the optional tier, ordered by product id.
func (c *Cart) Lines(tier *domain.MembershipTier) []domain.LinePricing {
	return priceLines(c.memberships, c.Snapshot(), tier)
}

// ItemCount sums quantities across lines.
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for _, line := range c.items {
		count += line.Quantity
	}
	return count
}

// UniqueItemCount is the number of distinct lines.
func (c *Cart) UniqueItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return c.UniqueItemCount() == 0
}

// Clear drops every line.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[int64]domain.LineItem)
}

// Snapshot copies the line items ordered by product id.
func (c *Cart) Snapshot() []domain.LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.LineItem, 0, len(c.items))
	for _, line := range c.items {
		out = append(out, line)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

// checkAmount rejects candidate when the cart with candidate in place would be worth more
// than maxCartAmount. The caller holds c.mu.
func (c *Cart) checkAmount(candidate domain.LineItem) error {
	exceeded := fmt.Errorf("%w: cart value would exceed %d", ErrCartInvalidInput, maxCartAmount)
	total, ok := lineAmount(candidate)
	if !ok {
		return exceeded
	}
	for id, line := range c.items {
		if id == candidate.ProductID {
			continue
		}
		amount, _ := lineAmount(line)
		total += amount
		if total > maxCartAmount {
			return exceeded
		}
	}
	return nil
}

// lineAmount is the undiscounted line value, or false when it exceeds maxCartAmount.
func lineAmount(line domain.LineItem) (int64, bool) {
	if line.Quantity <= 0 {
		return 0, true
	}
	if line.UnitPrice > maxCartAmount/int64(line.Quantity) {
		return 0, false
	}
	return line.UnitPrice * int64(line.Quantity), true
}

// priceLines applies the optional tier to each item. Discounts round per unit before the
// quantity is applied.
func priceLines(memberships MembershipCatalog, items []domain.LineItem, tier *domain.MembershipTier) []domain.LinePricing {
	out := make([]domain.LinePricing, 0, len(items))
	for _, item := range items {
		unit := item.UnitPrice
		if tier != nil {
			unit = memberships.ApplyDiscount(item.UnitPrice, *tier)
		}
		out = append(out, domain.LinePricing{
			ProductID:           item.ProductID,
			Name:                item.Name,
			Quantity:            item.Quantity,
			UnitPrice:           item.UnitPrice,
			DiscountedUnitPrice: unit,
			Subtotal:            unit * int64(item.Quantity),
		})
	}
	return out
}

func (c *Cart) ensureItems() {
	if c.items == nil {
		c.items = make(map[int64]domain.LineItem)
	}
}

// ParseQuantity coerces text typed at the prompt into a quantity. Integral decimal text such
// as "2.0" is accepted; anything else, or a magnitude above MaxQuantity, is ErrCartInvalidInput.
// The sign is not checked here.
func ParseQuantity(raw string) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, fmt.Errorf("%w: quantity is required", ErrCartInvalidInput)
	}
	if n, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		if n > MaxQuantity || n < -MaxQuantity {
			return 0, fmt.Errorf("%w: quantity %s is out of range", ErrCartInvalidInput, trimmed)
		}
		return int(n), nil
	} else if errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("%w: quantity %s is out of range", ErrCartInvalidInput, trimmed)
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: %q is not a whole number", ErrCartInvalidInput, raw)
	}
	if math.Abs(f) > MaxQuantity {
		return 0, fmt.Errorf("%w: quantity %s is out of range", ErrCartInvalidInput, trimmed)
	}
	return int(f), nil
}
