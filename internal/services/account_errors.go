package services

import (
	"errors"
	"fmt"
)

var (
	// ErrAccountInvalidInput indicates a missing or malformed username, password, tier or address.
	ErrAccountInvalidInput = errors.New("account service: invalid input")
	// ErrAccountNotFound indicates no account exists for the username.
	ErrAccountNotFound = errors.New("account service: account not found")
	// ErrAccountExists indicates the username is already registered.
	ErrAccountExists = errors.New("account service: username already exists")
	// ErrAccountInvalidCredentials is returned by Login for unknown users and wrong passwords alike.
	ErrAccountInvalidCredentials = errors.New("account service: invalid username or password")
	// ErrAccountAlreadyAdmin indicates the account already holds the admin role.
	ErrAccountAlreadyAdmin = errors.New("account service: account is already an admin")
	// ErrAccountInsufficientPurchases indicates the promotion gate has not been reached.
	ErrAccountInsufficientPurchases = errors.New("account service: insufficient purchases")
	// ErrAccountUnauthorized indicates the administrative credential did not match.
	ErrAccountUnauthorized = errors.New("account service: invalid admin password")
	// ErrAccountUnavailable indicates the account store failed.
	ErrAccountUnavailable = errors.New("account service: unavailable")
)

// InsufficientPurchasesError carries the purchase count that failed the promotion gate.
type InsufficientPurchasesError struct {
	Username  string
	Purchases int
	Required  int
}

// Error implements the error interface.
func (e *InsufficientPurchasesError) Error() string {
	if e == nil {
		return ErrAccountInsufficientPurchases.Error()
	}
	return fmt.Sprintf("%s: %s has %d of %d", ErrAccountInsufficientPurchases.Error(), e.Username, e.Purchases, e.Required)
}

// Is lets errors.Is match ErrAccountInsufficientPurchases.
func (e *InsufficientPurchasesError) Is(target error) bool {
	return target == ErrAccountInsufficientPurchases
}

// Remaining is the number of purchases still needed.
func (e *InsufficientPurchasesError) Remaining() int {
	if e == nil || e.Purchases >= e.Required {
		return 0
	}
	return e.Required - e.Purchases
}
