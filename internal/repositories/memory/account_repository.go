package memory

import (
	"context"
	"sort"
	"sync"

	domain "github.com/developer0071/Tech-House-programing/internal/domain"
)

// AccountRepository keeps accounts keyed by username. All reads and writes copy records so
// callers never alias stored optional fields.
type AccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
}

// NewAccountRepository constructs an empty account store.
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{accounts: make(map[string]domain.Account)}
}

// Insert stores a new account. Existing usernames are conflicts.
func (r *AccountRepository) Insert(_ context.Context, account domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[account.Username]; ok {
		return conflict("accounts.insert", account.Username)
	}
	r.accounts[account.Username] = account.Clone()
	return nil
}

// FindByUsername returns the account stored under username.
func (r *AccountRepository) FindByUsername(_ context.Context, username string) (domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[username]
	if !ok {
		return domain.Account{}, notFound("accounts.find", username)
	}
	return account.Clone(), nil
}

// Update runs mutate against a copy of the stored account and saves it when mutate succeeds.
func (r *AccountRepository) Update(_ context.Context, username string, mutate func(*domain.Account) error) (domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, ok := r.accounts[username]
	if !ok {
		return domain.Account{}, notFound("accounts.update", username)
	}
	working := account.Clone()
	if err := mutate(&working); err != nil {
		return domain.Account{}, err
	}
	working.Username = username
	r.accounts[username] = working
	return working.Clone(), nil
}

// List returns every account ordered by username.
func (r *AccountRepository) List(_ context.Context) ([]domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Account, 0, len(r.accounts))
	for _, account := range r.accounts {
		out = append(out, account.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}
