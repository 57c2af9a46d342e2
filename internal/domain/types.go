package domain

import (
	"strings"
	"time"
)

// ProductStatus tracks whether a catalog appliance can still be sold.
type ProductStatus string

const (
	// ProductStatusAvailable marks products that can be added to carts.
	ProductStatusAvailable ProductStatus = "Available"
	// ProductStatusSold marks products flipped by a completed checkout.
	ProductStatusSold ProductStatus = "Sold"
)

// Product is a catalog appliance record. Prices are integer amounts in the smallest currency unit.
type Product struct {
	ID       int64
	Name     string
	Price    int64
	Status   ProductStatus
	Category string
}

// Available reports whether the product can still be purchased.
func (p Product) Available() bool {
	return p.Status == ProductStatusAvailable
}

// LineItem is one product within a cart. Name and UnitPrice are captured when the product is first added.
type LineItem struct {
	ProductID int64
	Name      string
	UnitPrice int64
	Quantity  int
}

// MembershipTier names a membership package.
type MembershipTier string

const (
	TierBronze MembershipTier = "Bronze"
	TierSilver MembershipTier = "Silver"
	TierGold   MembershipTier = "Gold"
)

// String implements fmt.Stringer.
func (t MembershipTier) String() string { return string(t) }

// TierPtr returns a pointer to the tier, or nil when the tier is empty.
func TierPtr(t MembershipTier) *MembershipTier {
	if strings.TrimSpace(string(t)) == "" {
		return nil
	}
	return &t
}

// Role is the closed set of account roles.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Valid reports whether the role is one of the known variants.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleAdmin:
		return true
	default:
		return false
	}
}

// Account is a registered shop user.
type Account struct {
	Username        string
	PasswordHash    string
	Role            Role
	Membership      *MembershipTier
	TotalPurchases  int
	DeliveryAddress *string
	// System marks the seeded administrative account.
	System    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAdmin reports whether the account holds the admin role.
func (a Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Tier returns the membership tier or the empty tier when none is selected.
func (a Account) Tier() MembershipTier {
	if a.Membership == nil {
		return ""
	}
	return *a.Membership
}

// Clone returns a deep copy so callers never share optional field pointers.
func (a Account) Clone() Account {
	if a.Membership != nil {
		tier := *a.Membership
		a.Membership = &tier
	}
	if a.DeliveryAddress != nil {
		addr := *a.DeliveryAddress
		a.DeliveryAddress = &addr
	}
	return a
}

// Sale records one line of a completed checkout in the sales ledger.
type Sale struct {
	ID          string
	Number      string
	CheckoutID  string
	ProductID   int64
	ProductName string
	Quantity    int
	UnitPrice   int64
	LineTotal   int64
	Username    string
	Membership  MembershipTier
	SoldAt      time.Time
}

// AuditLogEntry captures an administrative action against a target.
type AuditLogEntry struct {
	ID        string
	Actor     string
	Action    string
	TargetRef string
	Metadata  map[string]any
	CreatedAt time.Time
}
