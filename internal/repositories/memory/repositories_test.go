package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	domain "github.com/developer0071/Tech-House-programing/internal/domain"
	"github.com/developer0071/Tech-House-programing/internal/repositories"
)

func seedCatalog(t *testing.T, repo *CatalogRepository) {
	t.Helper()
	ctx := context.Background()
	products := []domain.Product{
		{ID: 3, Name: "Robot Vacuum", Price: 2100000, Status: domain.ProductStatusAvailable, Category: "Cleaning devices"},
		{ID: 1, Name: "Mixer", Price: 450000, Status: domain.ProductStatusAvailable, Category: "Kitchen appliances"},
		{ID: 2, Name: "Oven", Price: 1200000, Status: domain.ProductStatusSold, Category: "Kitchen appliances"},
	}
	for _, p := range products {
		require.NoError(t, repo.Insert(ctx, p))
	}
}

func ids(products []domain.Product) []int64 {
	out := make([]int64, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func requireRepoError(t *testing.T, err error, wantNotFound, wantConflict bool) {
	t.Helper()
	require.Error(t, err)
	var repoErr repositories.RepositoryError
	require.True(t, errors.As(err, &repoErr), "expected repository error, got %T", err)
	require.Equal(t, wantNotFound, repoErr.IsNotFound())
	require.Equal(t, wantConflict, repoErr.IsConflict())
	require.False(t, repoErr.IsUnavailable())
}

func TestCatalogRepositoryListFilters(t *testing.T) {
	repo := NewCatalogRepository()
	seedCatalog(t, repo)
	ctx := context.Background()

	cases := []struct {
		name   string
		filter repositories.CatalogFilter
		want   []int64
	}{
		{name: "all ordered by id", want: []int64{1, 2, 3}},
		{name: "category", filter: repositories.CatalogFilter{Category: "Kitchen appliances"}, want: []int64{1, 2}},
		{name: "status", filter: repositories.CatalogFilter{Status: domain.ProductStatusAvailable}, want: []int64{1, 3}},
		{name: "keyword matches name", filter: repositories.CatalogFilter{Keyword: " VAC "}, want: []int64{3}},
		{name: "keyword matches category", filter: repositories.CatalogFilter{Keyword: "kitchen"}, want: []int64{1, 2}},
		{name: "combined", filter: repositories.CatalogFilter{Category: "Kitchen appliances", Status: domain.ProductStatusSold}, want: []int64{2}},
		{name: "no match", filter: repositories.CatalogFilter{Keyword: "toaster"}, want: []int64{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := repo.List(ctx, tc.filter)
			require.NoError(t, err)
			require.Equal(t, tc.want, ids(got))
		})
	}
}

func TestCatalogRepositoryInsertAndUpdateStatus(t *testing.T) {
	repo := NewCatalogRepository()
	seedCatalog(t, repo)
	ctx := context.Background()

	err := repo.Insert(ctx, domain.Product{ID: 1, Name: "Other"})
	requireRepoError(t, err, false, true)

	updated, err := repo.UpdateStatus(ctx, 1, domain.ProductStatusSold)
	require.NoError(t, err)
	require.Equal(t, domain.ProductStatusSold, updated.Status)

	stored, err := repo.FindByID(ctx, 1)
	require.NoError(t, err)
	require.False(t, stored.Available())

	_, err = repo.UpdateStatus(ctx, 99, domain.ProductStatusSold)
	requireRepoError(t, err, true, false)
	_, err = repo.FindByID(ctx, 99)
	requireRepoError(t, err, true, false)
}

func TestAccountRepositoryUpdate(t *testing.T) {
	repo := NewAccountRepository()
	ctx := context.Background()
	silver := domain.TierSilver

	require.NoError(t, repo.Insert(ctx, domain.Account{Username: "bob", Role: domain.RoleCustomer, Membership: &silver}))
	requireRepoError(t, repo.Insert(ctx, domain.Account{Username: "bob"}), false, true)

	t.Run("mutation is saved", func(t *testing.T) {
		updated, err := repo.Update(ctx, "bob", func(a *domain.Account) error {
			a.TotalPurchases++
			a.Username = "renamed"
			return nil
		})
		require.NoError(t, err)
		require.Equal(t, 1, updated.TotalPurchases)
		require.Equal(t, "bob", updated.Username)
	})

	t.Run("failed mutation leaves record untouched", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := repo.Update(ctx, "bob", func(a *domain.Account) error {
			a.TotalPurchases = 100
			gold := domain.TierGold
			a.Membership = &gold
			return boom
		})
		require.ErrorIs(t, err, boom)

		stored, err := repo.FindByUsername(ctx, "bob")
		require.NoError(t, err)
		require.Equal(t, 1, stored.TotalPurchases)
		require.Equal(t, domain.TierSilver, stored.Tier())
	})

	t.Run("returned records do not alias storage", func(t *testing.T) {
		stored, err := repo.FindByUsername(ctx, "bob")
		require.NoError(t, err)
		*stored.Membership = domain.TierGold

		again, err := repo.FindByUsername(ctx, "bob")
		require.NoError(t, err)
		require.Equal(t, domain.TierSilver, again.Tier())
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := repo.Update(ctx, "ghost", func(*domain.Account) error { return nil })
		requireRepoError(t, err, true, false)
	})
}

func TestAccountRepositoryListSorted(t *testing.T) {
	repo := NewAccountRepository()
	ctx := context.Background()
	for _, name := range []string{"zoe", "admin", "mia"} {
		require.NoError(t, repo.Insert(ctx, domain.Account{Username: name}))
	}

	accounts, err := repo.List(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(accounts))
	for _, a := range accounts {
		names = append(names, a.Username)
	}
	require.Equal(t, []string{"admin", "mia", "zoe"}, names)
}

func TestSaleRepositoryAppendIsAtomic(t *testing.T) {
	repo := NewSaleRepository()
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx,
		domain.Sale{ID: "s1", Username: "bob", ProductID: 1},
		domain.Sale{ID: "s2", Username: "amy", ProductID: 2},
	))

	err := repo.Append(ctx, domain.Sale{ID: "s3", Username: "bob"}, domain.Sale{ID: "s1", Username: "bob"})
	requireRepoError(t, err, false, true)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	bob, err := repo.ListByUsername(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, bob, 1)
	require.Equal(t, "s1", bob[0].ID)

	none, err := repo.ListByUsername(ctx, "nobody")
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestCounterRepositoryNext(t *testing.T) {
	repo := NewCounterRepository()
	ctx := context.Background()

	first, err := repo.Next(ctx, "sales:number", 0)
	require.NoError(t, err)
	require.EqualValues(t, 1, first)

	second, err := repo.Next(ctx, "sales:number", 0)
	require.NoError(t, err)
	require.EqualValues(t, 2, second)

	stepped, err := repo.Next(ctx, "sales:number", 5)
	require.NoError(t, err)
	require.EqualValues(t, 7, stepped)

	_, err = repo.Next(ctx, "  ", 1)
	var counterErr *repositories.CounterError
	require.ErrorAs(t, err, &counterErr)
	require.Equal(t, repositories.CounterErrorInvalidInput, counterErr.Code)

	_, err = repo.Next(ctx, "sales:number", -1)
	require.ErrorAs(t, err, &counterErr)
	require.Equal(t, repositories.CounterErrorInvalidInput, counterErr.Code)
}

func TestCounterRepositoryConfigure(t *testing.T) {
	repo := NewCounterRepository()
	ctx := context.Background()
	initial := int64(15)
	max := int64(16)

	require.NoError(t, repo.Configure(ctx, "catalog:product", repositories.CounterConfig{InitialValue: &initial, MaxValue: &max}))

	next, err := repo.Next(ctx, "catalog:product", 0)
	require.NoError(t, err)
	require.EqualValues(t, 16, next)

	_, err = repo.Next(ctx, "catalog:product", 0)
	var counterErr *repositories.CounterError
	require.ErrorAs(t, err, &counterErr)
	require.Equal(t, repositories.CounterErrorExhausted, counterErr.Code)
	require.Equal(t, "catalog:product", counterErr.Counter)
	require.Equal(t, "counter catalog:product: exceeded max value 16", counterErr.Error())

	require.Error(t, repo.Configure(ctx, "", repositories.CounterConfig{}))

	lower := int64(3)
	require.NoError(t, repo.Configure(ctx, "catalog:other", repositories.CounterConfig{InitialValue: &initial}))
	require.NoError(t, repo.Configure(ctx, "catalog:other", repositories.CounterConfig{InitialValue: &lower}))
	next, err = repo.Next(ctx, "catalog:other", 0)
	require.NoError(t, err)
	require.EqualValues(t, 16, next, "initial value must not rewind a counter")
}

func TestAuditLogRepository(t *testing.T) {
	repo := NewAuditLogRepository()
	ctx := context.Background()

	require.NoError(t, repo.Append(ctx, domain.AuditLogEntry{ID: "a1", Actor: "admin", Action: "account.promote", TargetRef: "accounts/bob", Metadata: map[string]any{"purchases": 5}}))
	require.NoError(t, repo.Append(ctx, domain.AuditLogEntry{ID: "a2", Actor: "admin", Action: "catalog.product_added", TargetRef: "products/16"}))
	require.NoError(t, repo.Append(ctx, domain.AuditLogEntry{ID: "a3", Actor: "system", Action: "account.promote", TargetRef: "accounts/amy"}))
	requireRepoError(t, repo.Append(ctx, domain.AuditLogEntry{ID: "a1"}), false, true)

	all, err := repo.List(ctx, repositories.AuditLogFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "a3", all[0].ID)
	require.Equal(t, "a1", all[2].ID)

	promotions, err := repo.List(ctx, repositories.AuditLogFilter{Actor: "admin", Action: "account.promote"})
	require.NoError(t, err)
	require.Len(t, promotions, 1)
	require.Equal(t, "accounts/bob", promotions[0].TargetRef)

	promotions[0].Metadata["purchases"] = 0
	again, err := repo.List(ctx, repositories.AuditLogFilter{TargetRef: "accounts/bob"})
	require.NoError(t, err)
	require.Equal(t, 5, again[0].Metadata["purchases"])
}

func TestRegistryExposesRepositories(t *testing.T) {
	reg := NewRegistry()
	require.NotNil(t, reg.Catalog())
	require.NotNil(t, reg.Accounts())
	require.NotNil(t, reg.Sales())
	require.NotNil(t, reg.Counters())
	require.NotNil(t, reg.AuditLogs())
	require.NoError(t, reg.Close(context.Background()))
}
