// Package report derives owner-level and per-user reports by folding over
// committed records. It is strictly read-side: reports are recomputed on
// every call and must reconcile exactly with the transaction log.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/nberthet/depotvente/internal/apperr"
	"github.com/nberthet/depotvente/internal/models"
	"github.com/nberthet/depotvente/internal/storage"
)

// Generator computes reports from a RecordStore backend.
type Generator struct {
	store storage.RecordStore
}

// NewGenerator creates a new Generator with the given storage backend.
func NewGenerator(store storage.RecordStore) *Generator {
	return &Generator{store: store}
}

// Period bounds a report by commit timestamp, inclusive. A zero bound is
// open on that side.
type Period struct {
	From int64
	To   int64
}

func (p *Period) contains(ts int64) bool {
	if p == nil {
		return true
	}
	if p.From != 0 && ts < p.From {
		return false
	}
	if p.To != 0 && ts > p.To {
		return false
	}
	return true
}

// ItemSales is one item's line in the owner report.
type ItemSales struct {
	ItemID           string
	Description      string
	PriceCents       int64
	SellerShareCents int64
	ShopShareCents   int64
	SellerID         string
	BuyerID          string
}

// UserSales aggregates one buyer's purchases in the owner report.
type UserSales struct {
	UserID          string
	DisplayName     string
	Purchases       int
	TotalSalesCents int64
}

// OwnerReport is the shop-level summary. Every aggregate equals the sum of
// the corresponding per-transaction fields.
type OwnerReport struct {
	TotalSalesCents        int64
	TotalShopShareCents    int64
	TotalSellerPayoutCents int64
	PerItem                []ItemSales
	PerUser                []UserSales
}

// Owner folds all transactions, optionally bounded by period, into the
// shop-level report.
func (g *Generator) Owner(ctx context.Context, period *Period) (*OwnerReport, error) {
	txns, err := g.store.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	users, err := g.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.DisplayName
	}

	rep := &OwnerReport{}
	perUser := map[string]*UserSales{}

	for _, t := range txns {
		if !period.contains(t.CreatedAt) {
			continue
		}
		rep.TotalSalesCents += t.PriceCents
		rep.TotalShopShareCents += t.ShopShareCents
		rep.TotalSellerPayoutCents += t.SellerShareCents

		line := ItemSales{
			ItemID:           t.ItemID,
			PriceCents:       t.PriceCents,
			SellerShareCents: t.SellerShareCents,
			ShopShareCents:   t.ShopShareCents,
			SellerID:         t.SellerID,
			BuyerID:          t.BuyerID,
		}
		item, err := g.store.GetItem(ctx, t.ItemID)
		switch {
		case err == nil:
			line.Description = item.Description
		case apperr.IsKind(err, apperr.KindNotFound):
			// Sold items are never deleted; a missing row is a data
			// anomaly, not a reason to fail the whole report.
			slog.Warn("Sold item missing from catalog", "item_id", t.ItemID)
		default:
			return nil, fmt.Errorf("failed to load item %s: %w", t.ItemID, err)
		}
		rep.PerItem = append(rep.PerItem, line)

		us, ok := perUser[t.BuyerID]
		if !ok {
			us = &UserSales{UserID: t.BuyerID, DisplayName: names[t.BuyerID]}
			perUser[t.BuyerID] = us
		}
		us.Purchases++
		us.TotalSalesCents += t.PriceCents
	}

	for _, us := range perUser {
		rep.PerUser = append(rep.PerUser, *us)
	}
	sort.Slice(rep.PerUser, func(i, j int) bool {
		return rep.PerUser[i].UserID < rep.PerUser[j].UserID
	})

	return rep, nil
}

// SellerSummary is the consignment side of a user report: how the user's
// own items are doing.
type SellerSummary struct {
	ItemsListed        int
	ItemsSold          int
	ItemsRemaining     int
	GrossSalesCents    int64
	AccruedIncomeCents int64
	Items              []*models.Item
}

// UserReport is one user's view: their purchases as buyer and their
// consignments as seller.
type UserReport struct {
	User                *models.User
	Purchases           []*models.Transaction
	RunningBalanceCents int64
	Seller              SellerSummary
}

// User builds the per-user report. RunningBalanceCents is recomputed from
// the log; it must equal the stored User balance (reconciliation
// invariant, asserted in tests).
func (g *Generator) User(ctx context.Context, userID string) (*UserReport, error) {
	user, err := g.store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	purchases, err := g.store.ListTransactionsByBuyer(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load purchases: %w", err)
	}

	rep := &UserReport{User: user, Purchases: purchases}
	for _, t := range purchases {
		rep.RunningBalanceCents += t.PriceCents
	}

	items, err := g.store.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	txns, err := g.store.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	soldShare := map[string]int64{}
	soldPrice := map[string]int64{}
	for _, t := range txns {
		if t.SellerID == userID {
			soldShare[t.ItemID] = t.SellerShareCents
			soldPrice[t.ItemID] = t.PriceCents
		}
	}

	for _, item := range items {
		if item.SellerID != userID {
			continue
		}
		rep.Seller.ItemsListed++
		rep.Seller.Items = append(rep.Seller.Items, item)
		switch item.Status {
		case models.StatusSold:
			rep.Seller.ItemsSold++
			rep.Seller.GrossSalesCents += soldPrice[item.ID]
			rep.Seller.AccruedIncomeCents += soldShare[item.ID]
		case models.StatusAvailable:
			rep.Seller.ItemsRemaining++
		}
	}

	return rep, nil
}
