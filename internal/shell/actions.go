package shell

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	domain "github.com/developer0071/Tech-House-programing/internal/domain"
	"github.com/developer0071/Tech-House-programing/internal/services"
)

func (s *Shell) viewByCategory(ctx context.Context) error {
	s.heading("CATEGORIES")
	categories, err := s.catalog.Categories(ctx)
	if err != nil {
		s.fail(ctx, err)
		return nil
	}
	for i, category := range categories {
		s.printf("%d. %s\n", i+1, category)
	}

	choice, err := s.prompt("\nSelect (0 to cancel): ")
	if err != nil {
		return err
	}
	idx, ok := menuIndex(choice, len(categories))
	if !ok {
		return nil
	}
	products, err := s.catalog.ListByCategory(ctx, categories[idx])
	if err != nil {
		s.fail(ctx, err)
		return nil
	}
	s.printf("\n%s\n%s\n", categories[idx], rule("-"))
	s.printProducts(products)
	return nil
}

func (s *Shell) search(ctx context.Context) error {
	s.heading("SEARCH")
	keyword, err := s.prompt("\nKeyword: ")
	if err != nil {
		return err
	}
	products, err := s.catalog.Search(ctx, keyword)
	if err != nil {
		s.fail(ctx, err)
		return nil
	}
	s.printf("\nResults for '%s':\n%s\n", keyword, rule("-"))
	if len(products) == 0 {
		s.println("No products found")
		return nil
	}
	s.printProducts(products)
	return nil
}

func (s *Shell) viewMemberships() {
	s.heading("MEMBERSHIP PACKAGES")
	for info := range s.memberships.All() {
		free := "No"
		if info.FreeDelivery {
			free = "Yes"
		}
		s.printf("\n%s\n  Discount: %d%%\n  Free Delivery: %s\n", strings.ToUpper(string(info.Tier)), info.DiscountPercent, free)
	}
}

func (s *Shell) setMembership(ctx context.Context, signedIn bool) error {
	if !signedIn {
		s.println("\nPlease login first")
		return nil
	}
	s.heading("SELECT MEMBERSHIP")
	tiers := make([]services.TierInfo, 0, 3)
	for info := range s.memberships.All() {
		tiers = append(tiers, info)
		label := fmt.Sprintf("%d%%", info.DiscountPercent)
		if info.FreeDelivery {
			label += " + Free delivery"
		}
		s.printf("%d. %s (%s)\n", len(tiers), info.Tier, label)
	}
	s.println("0. Cancel")

	choice, err := s.prompt("\nSelect: ")
	if err != nil {
		return err
	}
	idx, ok := menuIndex(choice, len(tiers))
	if !ok {
		return nil
	}
	account, err := s.accounts.SetMembership(ctx, s.session.Username, tiers[idx].Tier)
	if err != nil {
		s.fail(ctx, err)
		return nil
	}
	s.printf("\nMembership set to %s\n", account.Tier())
	return nil
}

func (s *Shell) addToCart(ctx context.Context) error {
	s.heading("ADD TO CART")
	available, err := s.catalog.ListAvailable(ctx)
	if err != nil {
		s.fail(ctx, err)
		return nil
	}
	s.printProducts(available)

	id, ok, err := s.promptProductID("\nEnter ID (0 to cancel): ")
	if err != nil || !ok {
		return err
	}
	product, err := s.catalog.Get(ctx, id)
	if err != nil || !product.Available() {
		s.println("\nInvalid or unavailable")
		return nil
	}

	raw, err := s.prompt("Quantity (ENTER for 1): ")
	if err != nil {
		return err
	}
	quantity := 1
	if raw != "" {
		if quantity, err = services.ParseQuantity(raw); err != nil {
			s.fail(ctx, err)
			return nil
		}
	}
	if err := s.session.Cart.Add(product, quantity); err != nil {
		s.fail(ctx, err)
		return nil
	}
	s.printf("\n%s added\n", product.Name)
	return nil
}

func (s *Shell) viewCart(ctx context.Context, account domain.Account, signedIn bool) {
	quote := s.quote(ctx, account, signedIn)
	s.printCart(quote)
	if len(quote.Lines) == 0 {
		return
	}
	s.println("\n" + rule("="))
	if quote.FreeDelivery {
		s.println("Delivery: FREE")
	} else {
		s.printf("Delivery: %s\n", s.prices.format(quote.Delivery))
	}
}

func (s *Shell) checkoutCart(ctx context.Context, account domain.Account, signedIn bool) error {
	if s.session.Cart.IsEmpty() {
		s.println("\nCart is empty")
		return nil
	}
	if !signedIn {
		s.println("\nPlease login first")
		return nil
	}

	s.heading("CHECKOUT")
	quote := s.quote(ctx, account, signedIn)
	s.printCart(quote)
	s.println("\n" + rule("="))
	s.printf("Subtotal: %s\n", s.prices.format(quote.Subtotal))
	if quote.Delivery > 0 {
		s.printf("Delivery: %s\n", s.prices.format(quote.Delivery))
	}
	if account.DeliveryAddress != nil {
		s.printf("Deliver to: %s\n", *account.DeliveryAddress)
	}
	s.printf("TOTAL: %s\n", s.prices.format(quote.Total))

	answer, err := s.prompt("\nConfirm? (yes/no): ")
	if err != nil {
		return err
	}
	if strings.ToLower(answer) != "yes" {
		s.println("\nOrder cancelled")
		return nil
	}

	receipt, err := s.checkout.Checkout(ctx, services.CheckoutCommand{
		Username: account.Username,
		Cart:     s.session.Cart,
	})
	if err != nil {
		s.fail(ctx, err)
		return nil
	}
	s.printf("\n[SUCCESS] Order completed! Total purchases: %d\n", receipt.TotalPurchases)
	s.printf("Sale numbers: %s\n", strings.Join(receipt.SaleNumbers, ", "))
	return nil
}

func (s *Shell) adminStatus(ctx context.Context, account domain.Account) {
	s.heading("ADMIN STATUS")
	if account.IsAdmin() {
		s.println("\nYou are already an admin!")
		return
	}
	threshold := s.accounts.PromotionThreshold()
	s.printf("\nRole: %s\n", account.Role)
	s.printf("Purchases: %d/%d\n", account.TotalPurchases, threshold)

	eligibility, err := s.accounts.CheckEligibility(ctx, account.Username)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	if !eligibility.Eligible {
		s.printf("\nNeed %d more purchases to be eligible\n", eligibility.Remaining)
		return
	}
	s.println("\nEligible for admin promotion")
	s.println("\nAsk current admin to use option 10!")
}

func (s *Shell) addProduct(ctx context.Context, account domain.Account) error {
	s.heading("[ADMIN] ADD PRODUCT")
	name, err := s.prompt("\nName: ")
	if err != nil {
		return err
	}
	rawPrice, err := s.prompt("Price: ")
	if err != nil {
		return err
	}
	price, convErr := strconv.ParseInt(rawPrice, 10, 64)
	if name == "" || convErr != nil || price <= 0 {
		s.println("\nInvalid input")
		return nil
	}

	categories, err := s.catalog.Categories(ctx)
	if err != nil {
		s.fail(ctx, err)
		return nil
	}
	for i, category := range categories {
		s.printf("%d. %s\n", i+1, category)
	}
	choice, err := s.prompt("\nSelect category: ")
	if err != nil {
		return err
	}
	idx, ok := menuIndex(choice, len(categories))
	if !ok {
		return nil
	}

	product, err := s.catalog.AddProduct(ctx, services.AddProductCommand{
		RequestedBy: account.Username,
		Name:        name,
		Price:       price,
		Category:    categories[idx],
	})
	if err != nil {
		s.fail(ctx, err)
		return nil
	}
	s.printf("\nAdded with ID: %d\n", product.ID)
	return nil
}

func (s *Shell) makeAdmin(ctx context.Context) error {
	s.heading("[ADMIN] MAKE USER ADMIN")
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		s.fail(ctx, err)
		return nil
	}
	s.println("\nUsers:")
	for _, account := range accounts {
		if account.System || account.Username == s.admin {
			continue
		}
		s.printf("- %s (Role: %s, Purchases: %d)\n", account.Username, account.Role, account.TotalPurchases)
	}

	username, err := s.prompt("\nUsername: ")
	if err != nil {
		return err
	}
	password, err := s.prompt("Admin password: ")
	if err != nil {
		return err
	}
	promoted, err := s.accounts.Promote(ctx, username, password)
	if err != nil {
		s.fail(ctx, err)
		return nil
	}
	s.printf("\nSuccessfully promoted %s to admin\n", promoted.Username)
	return nil
}

func (s *Shell) removeFromCart() error {
	s.heading("REMOVE FROM CART")
	if s.session.Cart.IsEmpty() {
		s.println("\nYour cart is empty")
		return nil
	}
	s.printLineItems()

	id, ok, err := s.promptProductID("\nEnter ID (0 to cancel): ")
	if err != nil || !ok {
		return err
	}
	raw, err := s.prompt("Quantity to remove (ENTER for all): ")
	if err != nil {
		return err
	}
	if raw == "" {
		if !s.session.Cart.RemoveItem(id) {
			s.println("\nThat product is not in your cart")
			return nil
		}
		s.println("\nItem removed")
		return nil
	}
	quantity, err := services.ParseQuantity(raw)
	if err == nil {
		err = s.session.Cart.RemoveQuantity(id, quantity)
	}
	if err != nil {
		s.printf("\n%s\n", describe(err))
		return nil
	}
	s.println("\nCart updated")
	return nil
}

func (s *Shell) changeQuantity() error {
	s.heading("CHANGE QUANTITY")
	if s.session.Cart.IsEmpty() {
		s.println("\nYour cart is empty")
		return nil
	}
	s.printLineItems()

	id, ok, err := s.promptProductID("\nEnter ID (0 to cancel): ")
	if err != nil || !ok {
		return err
	}
	raw, err := s.prompt("New quantity (0 removes): ")
	if err != nil {
		return err
	}
	quantity, err := services.ParseQuantity(raw)
	if err == nil {
		err = s.session.Cart.SetQuantity(id, quantity)
	}
	if err != nil {
		s.printf("\n%s\n", describe(err))
		return nil
	}
	s.println("\nCart updated")
	return nil
}

func (s *Shell) history(ctx context.Context) {
	s.heading("PURCHASE HISTORY")
	sales, err := s.checkout.History(ctx, s.session.Username)
	if err != nil {
		s.fail(ctx, err)
		return
	}
	if len(sales) == 0 {
		s.println("\nNo purchases yet")
		return
	}
	s.println("")
	for _, sale := range sales {
		s.printf("%s | %s | %s x%d | %s\n",
			sale.Number,
			sale.SoldAt.Format("2006-01-02 15:04"),
			sale.ProductName,
			sale.Quantity,
			s.prices.format(sale.LineTotal),
		)
	}
}

func (s *Shell) auditTrail(ctx context.Context) {
	s.heading("[ADMIN] AUDIT TRAIL")
	entries, err := s.audit.List(ctx, services.AuditLogFilter{})
	if err != nil {
		s.fail(ctx, err)
		return
	}
	if len(entries) == 0 {
		s.println("\nNo audit entries yet")
		return
	}
	s.println("")
	for _, entry := range entries {
		s.printf("%s | %s | %s | %s\n",
			entry.CreatedAt.Format("2006-01-02 15:04"),
			entry.Actor,
			entry.Action,
			entry.TargetRef,
		)
	}
}

func (s *Shell) deliveryAddress(ctx context.Context, account domain.Account) error {
	s.heading("DELIVERY ADDRESS")
	if account.DeliveryAddress != nil {
		s.printf("\nCurrent: %s\n", *account.DeliveryAddress)
	} else {
		s.println("\nCurrent: not set")
	}
	address, err := s.prompt("New address (ENTER to clear): ")
	if err != nil {
		return err
	}
	updated, err := s.accounts.SetDeliveryAddress(ctx, account.Username, address)
	if err != nil {
		s.fail(ctx, err)
		return nil
	}
	if updated.DeliveryAddress == nil {
		s.println("\nDelivery address cleared")
		return nil
	}
	s.printf("\nDelivery address set to %s\n", *updated.DeliveryAddress)
	return nil
}

func (s *Shell) quote(ctx context.Context, account domain.Account, signedIn bool) domain.Quote {
	if !signedIn {
		return s.checkout.Quote(ctx, s.session.Cart, nil)
	}
	return s.checkout.Quote(ctx, s.session.Cart, &account)
}

func (s *Shell) printCart(quote domain.Quote) {
	s.heading("SHOPPING CART")
	if len(quote.Lines) == 0 {
		s.println("\nYour cart is empty")
		return
	}
	s.printf("\n%-30s %5s %15s %15s\n", "Product", "Qty", "Price", "Subtotal")
	s.println(rule("-"))
	for _, line := range quote.Lines {
		s.printf("%-30s %5d %15s %15s\n", line.Name, line.Quantity, s.prices.format(line.DiscountedUnitPrice), s.prices.format(line.Subtotal))
	}
	if quote.Membership != "" {
		s.println(rule("-"))
		s.printf("Membership: %s (%d%% discount)\n", quote.Membership, quote.Discount)
	}
	s.println(rule("-"))
	s.printf("%-30s %5d items %15s %15s\n", "TOTAL", quote.ItemCount, "", s.prices.format(quote.Subtotal))
}

func (s *Shell) printLineItems() {
	for _, line := range s.session.Cart.Snapshot() {
		s.printf("ID: %d | %s | qty %d\n", line.ProductID, line.Name, line.Quantity)
	}
}

func (s *Shell) printProducts(products []domain.Product) {
	for _, product := range products {
		status := ""
		if !product.Available() {
			status = " | " + string(product.Status)
		}
		s.printf("ID: %d | %s | %s%s\n", product.ID, product.Name, s.prices.format(product.Price), status)
	}
}

// promptProductID reads a positive id. "0", blank or non-numeric input cancels.
func (s *Shell) promptProductID(label string) (int64, bool, error) {
	raw, err := s.prompt(label)
	if err != nil {
		return 0, false, err
	}
	id, convErr := strconv.ParseInt(raw, 10, 64)
	if convErr != nil || id <= 0 {
		return 0, false, nil
	}
	return id, true, nil
}

// menuIndex converts a 1-based menu choice into a slice index.
func menuIndex(choice string, size int) (int, bool) {
	n, err := strconv.Atoi(choice)
	if err != nil || n < 1 || n > size {
		return 0, false
	}
	return n - 1, true
}
