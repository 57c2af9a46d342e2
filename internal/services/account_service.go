package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/crypto/bcrypt"

	domain "github.com/developer0071/Tech-House-programing/internal/domain"
	"github.com/developer0071/Tech-House-programing/internal/platform/observability"
	"github.com/developer0071/Tech-House-programing/internal/platform/sessionctx"
	"github.com/developer0071/Tech-House-programing/internal/platform/textutil"
	"github.com/developer0071/Tech-House-programing/internal/repositories"
)

const (
	defaultPromotionThreshold = 5
	defaultPasswordMinLength  = 3
	defaultAdminUsername      = "admin"
)

// AccountServiceDeps wires the account ledger.
type AccountServiceDeps struct {
	Repository repositories.AccountRepository
	Audit      AuditLogService
	Clock      func() time.Time
	Logger     func(ctx context.Context, event string, fields map[string]any)
	// PromotionThreshold is the purchase count required for promotion. Zero selects the default of 5.
	PromotionThreshold int
	PasswordMinLength  int
	AdminUsername      string
	AdminPassword      string
	// HashCost overrides bcrypt.DefaultCost.
	HashCost int
}

type accountService struct {
	repo          repositories.AccountRepository
	audit         AuditLogService
	now           func() time.Time
	logger        func(context.Context, string, map[string]any)
	threshold     int
	minPassword   int
	adminUsername string
	adminPassword string
	hashCost      int
	memberships   MembershipCatalog
}

// NewAccountService constructs the account ledger. Call EnsureSystemAccount before serving users.
func NewAccountService(deps AccountServiceDeps) (AccountService, error) {
	if deps.Repository == nil {
		return nil, errors.New("account service: repository is required")
	}
	if deps.PromotionThreshold < 0 {
		return nil, fmt.Errorf("account service: promotion threshold must not be negative, got %d", deps.PromotionThreshold)
	}
	if deps.AdminPassword == "" {
		return nil, errors.New("account service: admin password is required")
	}

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	threshold := deps.PromotionThreshold
	if threshold == 0 {
		threshold = defaultPromotionThreshold
	}
	minPassword := deps.PasswordMinLength
	if minPassword <= 0 {
		minPassword = defaultPasswordMinLength
	}
	adminUsername := strings.TrimSpace(deps.AdminUsername)
	if adminUsername == "" {
		adminUsername = defaultAdminUsername
	}
	cost := deps.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	return &accountService{
		repo:          deps.Repository,
		audit:         deps.Audit,
		now:           func() time.Time { return clock().UTC() },
		logger:        logger,
		threshold:     threshold,
		minPassword:   minPassword,
		adminUsername: adminUsername,
		adminPassword: deps.AdminPassword,
		hashCost:      cost,
	}, nil
}

// EnsureSystemAccount seeds the administrative account. Calling it again returns the existing record.
func (s *accountService) EnsureSystemAccount(ctx context.Context) (domain.Account, error) {
	hash, err := s.hashPassword(s.adminPassword)
	if err != nil {
		return domain.Account{}, err
	}
	now := s.now()
	account := domain.Account{
		Username:     s.adminUsername,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		System:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, account); err != nil {
		if isRepoConflict(err) {
			return s.Get(ctx, s.adminUsername)
		}
		return domain.Account{}, s.translateRepoError(err)
	}
	s.logger(ctx, "accounts.system_seeded", map[string]any{"username": s.adminUsername})
	return account.Clone(), nil
}

func (s *accountService) PromotionThreshold() int {
	return s.threshold
}

func (s *accountService) Register(ctx context.Context, username, password string) (domain.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.Account{}, fmt.Errorf("%w: username and password cannot be empty", ErrAccountInvalidInput)
	}
	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return domain.Account{}, fmt.Errorf("%w: %s", ErrAccountExists, username)
	} else if !isRepoNotFound(err) {
		return domain.Account{}, s.translateRepoError(err)
	}
	if len([]rune(password)) < s.minPassword {
		return domain.Account{}, fmt.Errorf("%w: password must be at least %d characters", ErrAccountInvalidInput, s.minPassword)
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return domain.Account{}, err
	}
	now := s.now()
	account := domain.Account{
		Username:     username,
		PasswordHash: hash,
		Role:         domain.RoleCustomer,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, account); err != nil {
		if isRepoConflict(err) {
			return domain.Account{}, fmt.Errorf("%w: %s", ErrAccountExists, username)
		}
		return domain.Account{}, s.translateRepoError(err)
	}
	s.logger(ctx, "accounts.registered", map[string]any{"username": username})
	return account.Clone(), nil
}

func (s *accountService) Login(ctx context.Context, username, password string) (domain.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return domain.Account{}, fmt.Errorf("%w: username and password cannot be empty", ErrAccountInvalidInput)
	}
	account, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if isRepoNotFound(err) {
			s.logger(ctx, "accounts.login_failed", map[string]any{"username": username})
			return domain.Account{}, ErrAccountInvalidCredentials
		}
		return domain.Account{}, s.translateRepoError(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		s.logger(ctx, "accounts.login_failed", map[string]any{"username": username})
		return domain.Account{}, ErrAccountInvalidCredentials
	}
	s.logger(ctx, "accounts.logged_in", map[string]any{"username": username})
	return account, nil
}

func (s *accountService) Get(ctx context.Context, username string) (domain.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.Account{}, fmt.Errorf("%w: username is required", ErrAccountInvalidInput)
	}
	account, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return domain.Account{}, s.translateRepoError(err)
	}
	return account, nil
}

func (s *accountService) List(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.translateRepoError(err)
	}
	return accounts, nil
}

func (s *accountService) SetMembership(ctx context.Context, username string, tier domain.MembershipTier) (domain.Account, error) {
	info, ok := s.memberships.Info(tier)
	if !ok {
		return domain.Account{}, fmt.Errorf("%w: unknown membership tier %q", ErrAccountInvalidInput, tier)
	}
	account, err := s.update(ctx, username, func(account *domain.Account) error {
		account.Membership = domain.TierPtr(info.Tier)
		return nil
	})
	if err != nil {
		return domain.Account{}, err
	}
	s.logger(ctx, "accounts.membership_set", map[string]any{"username": account.Username, "tier": string(info.Tier)})
	return account, nil
}

func (s *accountService) SetDeliveryAddress(ctx context.Context, username, address string) (domain.Account, error) {
	cleaned := textutil.PlainText(address)
	account, err := s.update(ctx, username, func(account *domain.Account) error {
		if cleaned == "" {
			account.DeliveryAddress = nil
			return nil
		}
		account.DeliveryAddress = &cleaned
		return nil
	})
	if err != nil {
		return domain.Account{}, err
	}

	if s.audit != nil {
		record := AuditLogRecord{
			Actor:     s.actor(ctx, account.Username),
			Action:    "account.delivery_address_cleared",
			TargetRef: "accounts/" + account.Username,
		}
		if cleaned != "" {
			record.Action = "account.delivery_address_set"
			record.Metadata = map[string]any{"address": cleaned}
			record.SensitiveMetadataKeys = []string{"address"}
		}
		s.audit.Record(ctx, record)
	}
	return account, nil
}

// actor is the session user, or fallback outside a session.
func (s *accountService) actor(ctx context.Context, fallback string) string {
	if actor := sessionctx.Username(ctx); actor != "" {
		return actor
	}
	return fallback
}

func (s *accountService) RecordPurchase(ctx context.Context, username string) (domain.Account, error) {
	account, err := s.update(ctx, username, func(account *domain.Account) error {
		account.TotalPurchases++
		return nil
	})
	if err != nil {
		return domain.Account{}, err
	}
	s.logger(ctx, "accounts.purchase_recorded", map[string]any{
		"username":       account.Username,
		"totalPurchases": account.TotalPurchases,
	})
	return account, nil
}

func (s *accountService) CheckEligibility(ctx context.Context, username string) (Eligibility, error) {
	account, err := s.Get(ctx, username)
	if err != nil {
		return Eligibility{}, err
	}
	if account.IsAdmin() {
		return Eligibility{}, fmt.Errorf("%w: %s", ErrAccountAlreadyAdmin, account.Username)
	}
	return s.eligibility(account), nil
}

// Promote moves a customer to admin once the purchase gate is met. The adminPassword must
// match the system account credential. There is no demotion.
func (s *accountService) Promote(ctx context.Context, username, adminPassword string) (domain.Account, error) {
	ctx, span := observability.StartSpan(ctx, "accounts.promote", attribute.String("account.username", strings.TrimSpace(username)))
	defer span.End()

	account, err := s.promote(ctx, username, adminPassword)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "promotion rejected")
		s.logger(ctx, "accounts.promotion_rejected", map[string]any{"username": strings.TrimSpace(username), "error": err})
		return domain.Account{}, err
	}

	actor := s.actor(ctx, s.adminUsername)
	if s.audit != nil {
		s.audit.Record(ctx, AuditLogRecord{
			Actor:     actor,
			Action:    "account.promote",
			TargetRef: "accounts/" + account.Username,
			Metadata: map[string]any{
				"purchases": account.TotalPurchases,
				"threshold": s.threshold,
			},
		})
	}
	s.logger(ctx, "accounts.promoted", map[string]any{"username": account.Username, "actor": actor})
	return account, nil
}

func (s *accountService) promote(ctx context.Context, username, adminPassword string) (domain.Account, error) {
	system, err := s.repo.FindByUsername(ctx, s.adminUsername)
	if err != nil {
		if isRepoNotFound(err) {
			return domain.Account{}, fmt.Errorf("%w: system account missing", ErrAccountUnauthorized)
		}
		return domain.Account{}, s.translateRepoError(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(system.PasswordHash), []byte(adminPassword)) != nil {
		return domain.Account{}, ErrAccountUnauthorized
	}

	return s.update(ctx, username, func(account *domain.Account) error {
		if account.IsAdmin() {
			return fmt.Errorf("%w: %s", ErrAccountAlreadyAdmin, account.Username)
		}
		if account.TotalPurchases < s.threshold {
			return &InsufficientPurchasesError{
				Username:  account.Username,
				Purchases: account.TotalPurchases,
				Required:  s.threshold,
			}
		}
		account.Role = domain.RoleAdmin
		return nil
	})
}

func (s *accountService) eligibility(account domain.Account) Eligibility {
	remaining := s.threshold - account.TotalPurchases
	if remaining < 0 {
		remaining = 0
	}
	return Eligibility{
		Eligible:  account.TotalPurchases >= s.threshold,
		Purchases: account.TotalPurchases,
		Remaining: remaining,
	}
}

func (s *accountService) update(ctx context.Context, username string, mutate func(*domain.Account) error) (domain.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.Account{}, fmt.Errorf("%w: username is required", ErrAccountInvalidInput)
	}
	now := s.now()
	account, err := s.repo.Update(ctx, username, func(account *domain.Account) error {
		if err := mutate(account); err != nil {
			return err
		}
		account.UpdatedAt = now
		return nil
	})
	if err != nil {
		return domain.Account{}, s.translateRepoError(err)
	}
	return account, nil
}

func (s *accountService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("account service: hash password: %w", err)
	}
	return string(hash), nil
}

func (s *accountService) translateRepoError(err error) error {
	if err == nil {
		return nil
	}
	var repoErr repositories.RepositoryError
	if errors.As(err, &repoErr) {
		switch {
		case repoErr.IsNotFound():
			return fmt.Errorf("%w: %v", ErrAccountNotFound, err)
		case repoErr.IsConflict():
			return fmt.Errorf("%w: %v", ErrAccountExists, err)
		}
		return fmt.Errorf("%w: %v", ErrAccountUnavailable, err)
	}
	return err
}
