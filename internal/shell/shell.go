// Package shell runs the interactive terminal storefront on top of the service layer.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	domain "github.com/developer0071/Tech-House-programing/internal/domain"
	"github.com/developer0071/Tech-House-programing/internal/platform/config"
	"github.com/developer0071/Tech-House-programing/internal/platform/observability"
	"github.com/developer0071/Tech-House-programing/internal/platform/sessionctx"
	"github.com/developer0071/Tech-House-programing/internal/services"
)

// errInputClosed ends the program when the input stream is exhausted.
var errInputClosed = errors.New("shell: input closed")

// Session is the state of one terminal user. Logging out keeps the cart.
type Session struct {
	ID       string
	Username string
	Cart     *services.Cart
}

// Deps wires the shell to the service layer and its terminal streams.
type Deps struct {
	Accounts      services.AccountService
	Catalog       services.CatalogService
	Checkout      services.CheckoutService
	Audit         services.AuditLogService
	Store         config.StoreConfig
	AdminUsername string
	Logger        *zap.Logger
	In            io.Reader
	Out           io.Writer
	SessionID     func() string
}

// Shell is the menu-driven storefront.
type Shell struct {
	accounts    services.AccountService
	catalog     services.CatalogService
	checkout    services.CheckoutService
	audit       services.AuditLogService
	memberships services.MembershipCatalog
	store       config.StoreConfig
	admin       string
	logger      *zap.Logger
	in          *bufio.Scanner
	out         io.Writer
	prices      priceFormatter
	session     *Session
}

// New validates deps and starts a guest session with an empty cart.
func New(deps Deps) (*Shell, error) {
	if deps.Accounts == nil || deps.Catalog == nil || deps.Checkout == nil || deps.Audit == nil {
		return nil, errors.New("shell: accounts, catalog, checkout and audit services are required")
	}
	if deps.In == nil || deps.Out == nil {
		return nil, errors.New("shell: input and output streams are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	newID := deps.SessionID
	if newID == nil {
		newID = func() string { return ulid.Make().String() }
	}
	storeName := strings.TrimSpace(deps.Store.Name)
	if storeName == "" {
		storeName = "TECH HOUSE"
	}
	store := deps.Store
	store.Name = storeName
	admin := strings.TrimSpace(deps.AdminUsername)
	if admin == "" {
		admin = "admin"
	}

	return &Shell{
		accounts: deps.Accounts,
		catalog:  deps.Catalog,
		checkout: deps.Checkout,
		audit:    deps.Audit,
		store:    store,
		admin:    admin,
		logger:   logger,
		in:       bufio.NewScanner(deps.In),
		out:      deps.Out,
		prices:   newPriceFormatter(deps.Store.Locale, deps.Store.CurrencySuffix),
		session:  &Session{ID: newID(), Cart: services.NewCart()},
	}, nil
}

// Session exposes the current session.
func (s *Shell) Session() *Session {
	return s.session
}

// Run shows the auth menu until the user exits or input runs out.
func (s *Shell) Run(ctx context.Context) error {
	s.println(rule("="))
	s.printf("WELCOME TO %s - Home Appliance Store\n", s.store.Name)
	s.println(rule("="))

	err := s.authMenu(ctx)
	if err != nil && !errors.Is(err, errInputClosed) {
		return err
	}
	s.farewell()
	return nil
}

type menuResult int

const (
	menuContinue menuResult = iota
	menuLogout
	menuExit
)

func (s *Shell) authMenu(ctx context.Context) error {
	for {
		s.heading(s.store.Name)
		s.println("\n1. Login\n2. Register\n3. Continue as guest\n0. Exit")
		choice, err := s.prompt("\nSelect: ")
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			ok, err := s.login(ctx)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
		case "2":
			if err := s.register(ctx); err != nil {
				return err
			}
			continue
		case "3":
		case "0":
			return nil
		default:
			continue
		}

		result, err := s.mainMenu(ctx)
		if err != nil {
			return err
		}
		if result == menuExit {
			return nil
		}
	}
}

func (s *Shell) login(ctx context.Context) (bool, error) {
	s.heading("LOGIN")
	username, err := s.prompt("\nUsername: ")
	if err != nil {
		return false, err
	}
	password, err := s.prompt("Password: ")
	if err != nil {
		return false, err
	}

	account, err := s.accounts.Login(s.sessionContext(ctx), username, password)
	if err != nil {
		s.fail(ctx, err)
		return false, nil
	}
	s.session.Username = account.Username
	s.printf("\nWelcome back, %s!\n", account.Username)
	return true, nil
}

func (s *Shell) register(ctx context.Context) error {
	s.heading("REGISTER")
	username, err := s.prompt("\nUsername: ")
	if err != nil {
		return err
	}
	password, err := s.prompt("Password: ")
	if err != nil {
		return err
	}
	if _, err := s.accounts.Register(s.sessionContext(ctx), username, password); err != nil {
		s.fail(ctx, err)
		return nil
	}
	s.println("\nRegistration successful")
	return nil
}

func (s *Shell) mainMenu(ctx context.Context) (menuResult, error) {
	for {
		account, signedIn := s.currentAccount(ctx)
		s.mainHeader(account, signedIn)

		choice, err := s.prompt("\nSelect: ")
		if err != nil {
			return menuExit, err
		}

		result, err := s.dispatch(ctx, choice, account, signedIn)
		if err != nil {
			return menuExit, err
		}
		if result != menuContinue {
			return result, nil
		}
	}
}

func (s *Shell) mainHeader(account domain.Account, signedIn bool) {
	s.heading("MAIN MENU")
	if signedIn {
		s.printf("\nLogged in: %s\n", account.Username)
		if tier := account.Tier(); tier != "" {
			s.printf("Membership: %s\n", tier)
		}
	} else {
		s.println("\nGuest Mode")
	}
	s.printf("Cart: %d items\n", s.session.Cart.ItemCount())
	s.println("\n1. View by category\n2. Search\n3. View membership")
	s.println("4. Set membership\n5. Add to cart\n6. View cart\n7. Checkout")
	if signedIn {
		s.println("8. Check admin status")
		if account.IsAdmin() {
			s.println("9. [ADMIN] Add product\n10. [ADMIN] Make user admin\n15. [ADMIN] Audit trail")
		}
	}
	s.println("11. Remove from cart\n12. Change quantity")
	if signedIn {
		s.println("13. Purchase history\n14. Delivery address")
		s.println("99. Logout")
	}
	s.println("0. Exit")
}

func (s *Shell) dispatch(ctx context.Context, choice string, account domain.Account, signedIn bool) (menuResult, error) {
	ctx = s.sessionContext(ctx)
	var err error
	switch choice {
	case "0":
		return menuExit, nil
	case "99":
		if !signedIn {
			return menuContinue, nil
		}
		s.logger.Info("session.logout", zap.String("sessionId", s.session.ID), zap.String("username", observability.SanitizeUsername(s.session.Username)))
		s.session.Username = ""
		s.println("\nLogged out")
		return menuLogout, nil
	case "1":
		err = s.viewByCategory(ctx)
	case "2":
		err = s.search(ctx)
	case "3":
		s.viewMemberships()
	case "4":
		err = s.setMembership(ctx, signedIn)
	case "5":
		err = s.addToCart(ctx)
	case "6":
		s.viewCart(ctx, account, signedIn)
	case "7":
		err = s.checkoutCart(ctx, account, signedIn)
	case "8":
		if signedIn {
			s.adminStatus(ctx, account)
		}
	case "9":
		if signedIn && account.IsAdmin() {
			err = s.addProduct(ctx, account)
		}
	case "10":
		if signedIn && account.IsAdmin() {
			err = s.makeAdmin(ctx)
		}
	case "11":
		err = s.removeFromCart()
	case "12":
		err = s.changeQuantity()
	case "13":
		if signedIn {
			s.history(ctx)
		}
	case "14":
		if signedIn {
			err = s.deliveryAddress(ctx, account)
		}
	case "15":
		if signedIn && account.IsAdmin() {
			s.auditTrail(ctx)
		}
	}
	return menuContinue, err
}

// currentAccount reloads the signed-in account so role and purchase changes show immediately.
func (s *Shell) currentAccount(ctx context.Context) (domain.Account, bool) {
	if s.session.Username == "" {
		return domain.Account{}, false
	}
	account, err := s.accounts.Get(s.sessionContext(ctx), s.session.Username)
	if err != nil {
		s.logger.Warn("session.account_missing", zap.String("username", observability.SanitizeUsername(s.session.Username)), zap.Error(err))
		s.session.Username = ""
		return domain.Account{}, false
	}
	return account, true
}

func (s *Shell) sessionContext(ctx context.Context) context.Context {
	ctx = observability.WithLogger(ctx, s.logger)
	return sessionctx.WithSession(ctx, sessionctx.Info{
		SessionID: s.session.ID,
		Username:  s.session.Username,
		Guest:     s.session.Username == "",
	})
}

// fail prints the user-facing message for err and logs errors the shell has no message for.
func (s *Shell) fail(ctx context.Context, err error) {
	if !isKnown(err) {
		observability.FromContext(s.sessionContext(ctx)).Error("shell.action_failed", zap.Error(err))
	}
	s.printf("\n%s\n", describe(err))
}

func (s *Shell) farewell() {
	s.println(rule("="))
	s.printf("THANK YOU FOR VISITING %s!\n", s.store.Name)
	s.println(rule("="))
}

func (s *Shell) heading(title string) {
	s.printf("\n%s\n%s\n%s\n", rule("="), title, rule("="))
}

func (s *Shell) prompt(label string) (string, error) {
	fmt.Fprint(s.out, label)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", fmt.Errorf("shell: read input: %w", err)
		}
		return "", errInputClosed
	}
	return strings.TrimSpace(s.in.Text()), nil
}

func (s *Shell) println(text string) {
	fmt.Fprintln(s.out, text)
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}
