package services

import (
	"iter"
	"strings"

	domain "github.com/developer0071/Tech-House-programing/internal/domain"
)

// TierInfo describes the benefits attached to a membership tier.
type TierInfo struct {
	Tier            domain.MembershipTier
	DiscountPercent int
	FreeDelivery    bool
}

var membershipTiers = [...]TierInfo{
	{Tier: domain.TierBronze, DiscountPercent: 5},
	{Tier: domain.TierSilver, DiscountPercent: 10},
	{Tier: domain.TierGold, DiscountPercent: 15, FreeDelivery: true},
}

// MembershipCatalog is the read-only policy table for membership tiers. The zero value is
// ready to use.
type MembershipCatalog struct{}

// Info returns the tier record for name. Lookup is exact after trimming surrounding spaces.
func (MembershipCatalog) Info(name domain.MembershipTier) (TierInfo, bool) {
	key := domain.MembershipTier(strings.TrimSpace(string(name)))
	for _, info := range membershipTiers {
		if info.Tier == key {
			return info, true
		}
	}
	return TierInfo{}, false
}

// ApplyDiscount returns price reduced by the tier discount, rounded half away from zero to a
// whole currency unit. Unknown or empty tiers leave the price unchanged.
func (m MembershipCatalog) ApplyDiscount(price int64, name domain.MembershipTier) int64 {
	info, ok := m.Info(name)
	if !ok || info.DiscountPercent == 0 {
		return price
	}
	return percentOf(price, 100-info.DiscountPercent)
}

// HasFreeDelivery reports whether the tier waives the delivery fee.
func (m MembershipCatalog) HasFreeDelivery(name domain.MembershipTier) bool {
	info, ok := m.Info(name)
	return ok && info.FreeDelivery
}

// Tiers lists tier names in display order.
func (MembershipCatalog) Tiers() []domain.MembershipTier {
	out := make([]domain.MembershipTier, 0, len(membershipTiers))
	for _, info := range membershipTiers {
		out = append(out, info.Tier)
	}
	return out
}

// All yields every tier record in display order. Each call starts a fresh sequence.
func (MembershipCatalog) All() iter.Seq[TierInfo] {
	return func(yield func(TierInfo) bool) {
		for _, info := range membershipTiers {
			if !yield(info) {
				return
			}
		}
	}
}

// percentOf computes price*percent/100 rounded half away from zero without floating point.
func percentOf(price int64, percent int) int64 {
	scaled := price * int64(percent)
	quotient := scaled / 100
	remainder := scaled % 100
	switch {
	case remainder*2 >= 100:
		quotient++
	case remainder*2 <= -100:
		quotient--
	}
	return quotient
}
