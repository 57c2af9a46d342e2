package shell

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/developer0071/Tech-House-programing/internal/services"
)

// describe turns a service error into the sentence shown at the prompt.
func describe(err error) string {
	var insufficient *services.InsufficientPurchasesError
	switch {
	case errors.As(err, &insufficient):
		return fmt.Sprintf("User needs at least %d purchases (currently has %d)", insufficient.Required, insufficient.Purchases)
	case errors.Is(err, services.ErrAccountInvalidCredentials):
		return "Invalid username or password"
	case errors.Is(err, services.ErrAccountExists):
		return "Username already exists"
	case errors.Is(err, services.ErrAccountUnauthorized):
		return "Invalid admin password"
	case errors.Is(err, services.ErrAccountAlreadyAdmin):
		return "User is already an admin"
	case errors.Is(err, services.ErrAccountNotFound):
		return "User not found"
	case errors.Is(err, services.ErrAccountInvalidInput):
		return detail(err, services.ErrAccountInvalidInput)
	case errors.Is(err, services.ErrCartItemNotFound):
		return "That product is not in your cart"
	case errors.Is(err, services.ErrCartInvalidInput):
		return "Invalid quantity"
	case errors.Is(err, services.ErrCatalogForbidden):
		return "Admin access required"
	case errors.Is(err, services.ErrCatalogProductNotFound):
		return "Invalid or unavailable"
	case errors.Is(err, services.ErrCatalogInvalidInput):
		return detail(err, services.ErrCatalogInvalidInput)
	case errors.Is(err, services.ErrCheckoutEmptyCart):
		return "Cart is empty"
	case errors.Is(err, services.ErrCheckoutUnauthenticated):
		return "Please login first"
	case errors.Is(err, services.ErrCheckoutProductUnavailable):
		return "Some items are no longer available: " + detail(err, services.ErrCheckoutProductUnavailable)
	case errors.Is(err, services.ErrCheckoutDuplicate):
		return "This order was already placed"
	default:
		return "Something went wrong, please try again"
	}
}

// detail strips the sentinel prefix from a wrapped error message and capitalises the rest.
func detail(err, sentinel error) string {
	text := strings.TrimPrefix(err.Error(), sentinel.Error())
	text = strings.TrimSpace(strings.TrimPrefix(text, ":"))
	if text == "" {
		text = "invalid input"
	}
	r, size := utf8.DecodeRuneInString(text)
	return string(unicode.ToUpper(r)) + text[size:]
}

// isKnown reports whether describe has a specific message for err.
func isKnown(err error) bool {
	for _, sentinel := range []error{
		services.ErrAccountInvalidInput,
		services.ErrAccountNotFound,
		services.ErrAccountExists,
		services.ErrAccountInvalidCredentials,
		services.ErrAccountAlreadyAdmin,
		services.ErrAccountInsufficientPurchases,
		services.ErrAccountUnauthorized,
		services.ErrCartInvalidInput,
		services.ErrCatalogInvalidInput,
		services.ErrCatalogProductNotFound,
		services.ErrCatalogForbidden,
		services.ErrCheckoutEmptyCart,
		services.ErrCheckoutUnauthenticated,
		services.ErrCheckoutProductUnavailable,
		services.ErrCheckoutDuplicate,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}
