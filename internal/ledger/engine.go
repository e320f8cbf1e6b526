// Package ledger implements the transaction engine: it validates purchase
// requests and commits them as one atomic unit, with items marked Sold,
// immutable transactions appended, and buyer balance and seller payouts
// updated together.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nberthet/depotvente/internal/apperr"
	"github.com/nberthet/depotvente/internal/auth"
	"github.com/nberthet/depotvente/internal/inventory"
	"github.com/nberthet/depotvente/internal/metrics"
	"github.com/nberthet/depotvente/internal/models"
	"github.com/nberthet/depotvente/internal/storage"
)

// Engine validates and commits purchases. Commit units run under the
// inventory manager's item lock, which also covers owner edits, so no
// other item mutation can interleave between the availability check and
// the batch write; the status guard in the transition is the backstop,
// not the primary mechanism.
type Engine struct {
	store storage.RecordStore
	inv   *inventory.Manager
}

// NewEngine creates a new Engine on the given storage backend, sharing
// the inventory manager's item lock.
func NewEngine(store storage.RecordStore, inv *inventory.Manager) *Engine {
	return &Engine{store: store, inv: inv}
}

// PurchaseItem names one item and the price the caller saw when deciding
// to buy. A stale price rejects the whole request.
type PurchaseItem struct {
	ItemID             string
	ExpectedPriceCents int64
}

// PurchaseRequest is one purchase of one or more items by a single buyer.
type PurchaseRequest struct {
	BuyerID string
	Items   []PurchaseItem
}

// PurchaseResult reports a committed purchase: the receipt grouping and
// the recorded transactions.
type PurchaseResult struct {
	ReceiptID    string
	TotalCents   int64
	Transactions []*models.Transaction
}

// Purchase validates the request and, if valid, commits the whole unit
// atomically through one batch write. On rejection the store is untouched
// and the error carries a specific reason. No internal retries: the caller
// may re-request with fresh data.
func (e *Engine) Purchase(ctx context.Context, tok *auth.Token, req PurchaseRequest) (*PurchaseResult, error) {
	result, err := e.purchase(ctx, tok, req)
	if err != nil {
		reason := string(apperr.ReasonOf(err))
		if reason == "" {
			reason = "other"
		}
		metrics.PurchasesRejected.WithLabelValues(reason).Inc()
		return nil, err
	}
	metrics.PurchasesCommitted.Inc()
	metrics.TransactionsRecorded.Add(float64(len(result.Transactions)))
	return result, nil
}

func (e *Engine) purchase(ctx context.Context, tok *auth.Token, req PurchaseRequest) (*PurchaseResult, error) {
	actorRole, err := checkActor(tok, req.BuyerID)
	if err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, apperr.Validation("purchase names no items")
	}
	seen := make(map[string]bool, len(req.Items))
	for _, it := range req.Items {
		if seen[it.ItemID] {
			return nil, apperr.Validation("item %s named twice in one purchase", it.ItemID)
		}
		seen[it.ItemID] = true
	}

	// Commit unit: everything from the availability check to the batch
	// write happens under the item lock so no other purchase or owner
	// edit can interleave.
	var result *PurchaseResult
	err = e.inv.WithItemLock(func() error {
		var err error
		result, err = e.commit(ctx, actorRole, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (e *Engine) commit(ctx context.Context, actorRole models.Role, req PurchaseRequest) (*PurchaseResult, error) {
	buyer, err := e.store.GetUser(ctx, req.BuyerID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, apperr.NotFound("buyer not found: %s", req.BuyerID)
		}
		return nil, fmt.Errorf("failed to resolve buyer: %w", err)
	}
	if !buyer.Role.CanPurchase() {
		return nil, apperr.Unauthorized("user %s (role %s) cannot purchase", buyer.ID, buyer.Role).
			WithReason(apperr.ReasonBuyerUnauthorized)
	}

	receiptID := uuid.New().String()
	now := time.Now().Unix()

	var (
		ops        []storage.WriteOp
		txns       []*models.Transaction
		totalCents int64
		// Users whose balances change; keyed by ID so a buyer who is
		// also the seller of one of the items gets a single write.
		touched = map[string]*models.User{buyer.ID: buyer}
	)

	for _, want := range req.Items {
		item, err := e.store.GetItem(ctx, want.ItemID)
		if err != nil {
			if apperr.IsKind(err, apperr.KindNotFound) {
				return nil, apperr.NotFound("item not found: %s", want.ItemID)
			}
			return nil, fmt.Errorf("failed to resolve item: %w", err)
		}
		if item.Status != models.StatusAvailable {
			return nil, apperr.Conflict(apperr.ReasonItemUnavailable,
				"item already sold — refresh listing",
				"item %s is %s", item.ID, item.Status)
		}
		if item.PriceCents != want.ExpectedPriceCents {
			return nil, apperr.Conflict(apperr.ReasonPriceMismatch,
				"price changed — refresh listing",
				"item %s costs %d, request expected %d",
				item.ID, item.PriceCents, want.ExpectedPriceCents)
		}

		sold, err := inventory.Transition(item, models.StatusSold)
		if err != nil {
			return nil, err
		}

		sellerShare := item.SellerShareCents(item.PriceCents)
		txn := &models.Transaction{
			ID:               uuid.New().String(),
			ReceiptID:        receiptID,
			ItemID:           item.ID,
			BuyerID:          buyer.ID,
			ActorRole:        actorRole,
			PriceCents:       item.PriceCents,
			StockPercentage:  item.StockPercentage,
			SellerShareCents: sellerShare,
			ShopShareCents:   item.PriceCents - sellerShare,
			SellerID:         item.SellerID,
			CreatedAt:        now,
		}

		seller, ok := touched[item.SellerID]
		if !ok {
			seller, err = e.store.GetUser(ctx, item.SellerID)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve seller %s: %w", item.SellerID, err)
			}
			touched[seller.ID] = seller
		}
		seller.PayoutCents += sellerShare

		totalCents += item.PriceCents
		txns = append(txns, txn)
		ops = append(ops,
			storage.WriteOp{PutItem: sold},
			storage.WriteOp{AppendTransaction: txn},
		)
	}

	buyer.BalanceCents += totalCents
	for _, u := range touched {
		ops = append(ops, storage.WriteOp{PutUser: u})
	}

	if err := e.store.BatchWrite(ctx, ops); err != nil {
		metrics.BatchWriteFailures.Inc()
		slog.Error("Purchase batch failed", "receipt_id", receiptID, "error", err)
		return nil, err
	}

	slog.Info("Purchase committed",
		"receipt_id", receiptID,
		"buyer_id", buyer.ID,
		"actor_role", actorRole,
		"items", len(txns),
		"total_cents", totalCents,
	)

	return &PurchaseResult{
		ReceiptID:    receiptID,
		TotalCents:   totalCents,
		Transactions: txns,
	}, nil
}

// checkActor decides who may buy for whom: buyers and assigned users only
// for themselves, the owner on behalf of any buyer (counter sale).
func checkActor(tok *auth.Token, buyerID string) (models.Role, error) {
	if tok == nil {
		return "", apperr.Unauthorized("purchase requires an authenticated token").
			WithReason(apperr.ReasonBuyerUnauthorized)
	}
	switch {
	case tok.Role == models.RoleOwner:
		return models.RoleOwner, nil
	case tok.Role.CanPurchase():
		if tok.UserID != buyerID {
			return "", apperr.Unauthorized("user %s cannot purchase for %s", tok.UserID, buyerID).
				WithReason(apperr.ReasonBuyerUnauthorized)
		}
		return tok.Role, nil
	default:
		return "", apperr.Unauthorized("role %s cannot purchase", tok.Role).
			WithReason(apperr.ReasonBuyerUnauthorized)
	}
}
