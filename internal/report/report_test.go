package report

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nberthet/depotvente/internal/apperr"
	"github.com/nberthet/depotvente/internal/auth"
	"github.com/nberthet/depotvente/internal/inventory"
	"github.com/nberthet/depotvente/internal/ledger"
	"github.com/nberthet/depotvente/internal/models"
	"github.com/nberthet/depotvente/internal/storage"
	"github.com/nberthet/depotvente/internal/storage/sqlite"
)

type fixture struct {
	store   storage.RecordStore
	inv     *inventory.Manager
	reports *Generator
	ledger  *ledger.Engine

	buyer  *models.User
	seller *models.User
}

var ownerTok = &auth.Token{UserID: auth.OwnerID, Role: models.RoleOwner}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	inv := inventory.NewManager(store)
	f := &fixture{
		store:   store,
		inv:     inv,
		reports: NewGenerator(store),
		ledger:  ledger.NewEngine(store, inv),
	}
	f.buyer = f.seedUser(t, "buyer-1", "Bob Buyer", models.RoleBuyer)
	f.seller = f.seedUser(t, "seller-1", "Sally Seller", models.RoleAssignedUser)
	return f
}

func (f *fixture) seedUser(t *testing.T, id, name string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{
		ID:          id,
		Role:        role,
		DisplayName: name,
		CreatedAt:   time.Now().Unix(),
	}
	require.NoError(t, f.store.PutUser(context.Background(), user))
	return user
}

func (f *fixture) consign(t *testing.T, description string, priceCents int64, pct int) *models.Item {
	t.Helper()
	item, err := f.inv.Create(context.Background(), ownerTok, inventory.CreateInput{
		Description:     description,
		SellerID:        f.seller.ID,
		PriceCents:      priceCents,
		StockPercentage: &pct,
	})
	require.NoError(t, err)
	return item
}

func (f *fixture) buy(t *testing.T, buyer *models.User, items ...*models.Item) *ledger.PurchaseResult {
	t.Helper()
	req := ledger.PurchaseRequest{BuyerID: buyer.ID}
	for _, item := range items {
		req.Items = append(req.Items, ledger.PurchaseItem{ItemID: item.ID, ExpectedPriceCents: item.PriceCents})
	}
	result, err := f.ledger.Purchase(context.Background(), &auth.Token{UserID: buyer.ID, Role: buyer.Role}, req)
	require.NoError(t, err)
	return result
}

func TestOwnerReportReconciles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.consign(t, "Armchair", 10000, 30)
	b := f.consign(t, "Bookshelf", 4500, 75)
	f.consign(t, "Candlestick", 999, 50) // stays unsold
	f.buy(t, f.buyer, a, b)

	rep, err := f.reports.Owner(ctx, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(14500), rep.TotalSalesCents)
	assert.Equal(t, rep.TotalSalesCents, rep.TotalShopShareCents+rep.TotalSellerPayoutCents,
		"shares must sum to gross sales")
	require.Len(t, rep.PerItem, 2)

	// Aggregates equal the sum of the per-item lines.
	var perItemTotal, perItemShop, perItemSeller int64
	for _, line := range rep.PerItem {
		perItemTotal += line.PriceCents
		perItemShop += line.ShopShareCents
		perItemSeller += line.SellerShareCents
	}
	assert.Equal(t, rep.TotalSalesCents, perItemTotal)
	assert.Equal(t, rep.TotalShopShareCents, perItemShop)
	assert.Equal(t, rep.TotalSellerPayoutCents, perItemSeller)

	require.Len(t, rep.PerUser, 1)
	assert.Equal(t, f.buyer.ID, rep.PerUser[0].UserID)
	assert.Equal(t, 2, rep.PerUser[0].Purchases)
	assert.Equal(t, int64(14500), rep.PerUser[0].TotalSalesCents)
}

func TestOwnerReportIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.buy(t, f.buyer, f.consign(t, "Armchair", 10000, 30))

	first, err := f.reports.Owner(ctx, nil)
	require.NoError(t, err)
	second, err := f.reports.Owner(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestOwnerReportPeriodBounds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.buy(t, f.buyer, f.consign(t, "Armchair", 10000, 30))
	now := time.Now().Unix()

	t.Run("period containing the sale", func(t *testing.T) {
		rep, err := f.reports.Owner(ctx, &Period{From: now - 3600, To: now + 3600})
		require.NoError(t, err)
		assert.Equal(t, int64(10000), rep.TotalSalesCents)
	})

	t.Run("period before the sale", func(t *testing.T) {
		rep, err := f.reports.Owner(ctx, &Period{To: now - 3600})
		require.NoError(t, err)
		assert.Zero(t, rep.TotalSalesCents)
		assert.Empty(t, rep.PerItem)
	})

	t.Run("empty store", func(t *testing.T) {
		empty := newFixture(t)
		rep, err := empty.reports.Owner(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, rep.TotalSalesCents)
	})
}

func TestUserReportReconciles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.consign(t, "Armchair", 10000, 30)
	b := f.consign(t, "Bookshelf", 4500, 75)
	f.consign(t, "Candlestick", 999, 50)
	f.buy(t, f.buyer, a)
	f.buy(t, f.buyer, b)

	rep, err := f.reports.User(ctx, f.buyer.ID)
	require.NoError(t, err)

	require.Len(t, rep.Purchases, 2)
	assert.Equal(t, int64(14500), rep.RunningBalanceCents)
	assert.Equal(t, rep.User.BalanceCents, rep.RunningBalanceCents,
		"recomputed balance must equal the stored balance")

	sellerRep, err := f.reports.User(ctx, f.seller.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, sellerRep.Seller.ItemsListed)
	assert.Equal(t, 2, sellerRep.Seller.ItemsSold)
	assert.Equal(t, 1, sellerRep.Seller.ItemsRemaining)
	assert.Equal(t, int64(14500), sellerRep.Seller.GrossSalesCents)
	assert.Equal(t, int64(3000+3375), sellerRep.Seller.AccruedIncomeCents)
	assert.Equal(t, sellerRep.User.PayoutCents, sellerRep.Seller.AccruedIncomeCents,
		"accrued income must equal the stored payout")
}

func TestUserReportUnknownUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.reports.User(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestReceipt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a := f.consign(t, "Armchair", 10000, 30)
	b := f.consign(t, "Bookshelf", 4500, 75)
	result := f.buy(t, f.buyer, a, b)

	rec, err := f.reports.Receipt(ctx, result.ReceiptID)
	require.NoError(t, err)
	assert.Equal(t, f.buyer.ID, rec.BuyerID)
	assert.Equal(t, models.RoleBuyer, rec.ActorRole)
	require.Len(t, rec.Lines, 2)
	assert.Equal(t, int64(14500), rec.TotalCents)

	rendered := rec.RenderText()
	assert.Contains(t, rendered, "Armchair")
	assert.Contains(t, rendered, "Sally Seller")
	assert.Contains(t, rendered, "Total: $145.00")
	assert.Equal(t, 2, strings.Count(rendered, "- "), "one line per item")

	_, err = f.reports.Receipt(ctx, "rcpt-unknown")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

// flakyStore lets one read path fail while everything else hits the real
// store.
type flakyStore struct {
	storage.RecordStore
	usersErr error
	itemErr  error
}

func (s *flakyStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	if s.usersErr != nil {
		return nil, s.usersErr
	}
	return s.RecordStore.ListUsers(ctx)
}

func (s *flakyStore) GetItem(ctx context.Context, id string) (*models.Item, error) {
	if s.itemErr != nil {
		return nil, s.itemErr
	}
	return s.RecordStore.GetItem(ctx, id)
}

func TestOwnerReportSurfacesStoreFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.buy(t, f.buyer, f.consign(t, "Armchair", 10000, 30))

	t.Run("user listing failure fails the report", func(t *testing.T) {
		g := NewGenerator(&flakyStore{RecordStore: f.store, usersErr: errors.New("database is locked")})
		_, err := g.Owner(ctx, nil)
		require.Error(t, err)
		assert.ErrorContains(t, err, "failed to load users")
	})

	t.Run("item read failure fails the report", func(t *testing.T) {
		g := NewGenerator(&flakyStore{RecordStore: f.store, itemErr: errors.New("database is locked")})
		_, err := g.Owner(ctx, nil)
		require.Error(t, err)
		assert.ErrorContains(t, err, "failed to load item")
	})

	t.Run("missing item row degrades to a blank description", func(t *testing.T) {
		g := NewGenerator(&flakyStore{RecordStore: f.store, itemErr: apperr.NotFound("item gone")})
		rep, err := g.Owner(ctx, nil)
		require.NoError(t, err)
		require.Len(t, rep.PerItem, 1)
		assert.Empty(t, rep.PerItem[0].Description)
		assert.Equal(t, int64(10000), rep.TotalSalesCents)
	})
}

func TestCentsToDollars(t *testing.T) {
	cases := map[int64]string{
		0:     "0.00",
		5:     "0.05",
		100:   "1.00",
		14500: "145.00",
		-250:  "-2.50",
	}
	for cents, want := range cases {
		assert.Equal(t, want, centsToDollars(cents))
	}
}
