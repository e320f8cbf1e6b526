// Package inventory owns the item lifecycle: listing, consignment,
// edits while Available, withdrawal and the guarded transition to Sold.
package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nberthet/depotvente/internal/apperr"
	"github.com/nberthet/depotvente/internal/auth"
	"github.com/nberthet/depotvente/internal/models"
	"github.com/nberthet/depotvente/internal/storage"
)

// Manager provides item lifecycle operations on a RecordStore backend.
// Every mutation of an existing item runs under mu, and the ledger wraps
// its commit unit in the same lock via WithItemLock, so an owner edit can
// never interleave with a purchase and write a stale row back.
type Manager struct {
	store storage.RecordStore
	mu    sync.Mutex
}

// NewManager creates a new Manager with the given storage backend.
func NewManager(store storage.RecordStore) *Manager {
	return &Manager{store: store}
}

// WithItemLock runs fn while holding the item mutation lock.
func (m *Manager) WithItemLock(fn func() error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn()
}

// CreateInput carries the owner-supplied fields for a new consignment.
type CreateInput struct {
	Description     string
	SellerID        string
	PriceCents      int64
	StockPercentage *int // nil means models.DefaultStockPercentage
	PhotoPath       string
}

// UpdateInput carries the editable fields of an Available item. Nil fields
// are left unchanged.
type UpdateInput struct {
	Description     *string
	SellerID        *string
	PriceCents      *int64
	StockPercentage *int
	PhotoPath       *string
}

// ListAvailable returns Available items in stable order by ID. query, if
// non-empty, filters case-insensitively on description and seller name.
func (m *Manager) ListAvailable(ctx context.Context, query string) ([]*models.Item, error) {
	return m.list(ctx, query, func(item *models.Item) bool {
		return item.Status == models.StatusAvailable
	})
}

// ListAll returns every item regardless of status, for the owner dashboard.
func (m *Manager) ListAll(ctx context.Context, query string) ([]*models.Item, error) {
	return m.list(ctx, query, func(*models.Item) bool { return true })
}

// ListBySeller returns the items consigned by one seller, for the user portal.
func (m *Manager) ListBySeller(ctx context.Context, sellerID string) ([]*models.Item, error) {
	return m.list(ctx, "", func(item *models.Item) bool {
		return item.SellerID == sellerID
	})
}

func (m *Manager) list(ctx context.Context, query string, keep func(*models.Item) bool) ([]*models.Item, error) {
	items, err := m.store.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]*models.Item, 0, len(items))
	for _, item := range items {
		if !keep(item) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(item.Description), query) &&
			!strings.Contains(strings.ToLower(item.SellerName), query) {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

// Get retrieves an item by ID.
func (m *Manager) Get(ctx context.Context, id string) (*models.Item, error) {
	return m.store.GetItem(ctx, id)
}

// Create consigns a new item. Owner only.
func (m *Manager) Create(ctx context.Context, tok *auth.Token, in CreateInput) (*models.Item, error) {
	if err := requireOwner(tok); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, apperr.Validation("description is required")
	}
	if in.PriceCents <= 0 {
		return nil, apperr.Validation("price must be greater than zero, got %d", in.PriceCents)
	}
	pct := models.DefaultStockPercentage
	if in.StockPercentage != nil {
		pct = *in.StockPercentage
	}
	if pct < 0 || pct > 100 {
		return nil, apperr.Validation("stock percentage must be between 0 and 100, got %d", pct)
	}

	seller, err := m.store.GetUser(ctx, in.SellerID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, apperr.Validation("seller does not exist: %s", in.SellerID)
		}
		return nil, fmt.Errorf("failed to resolve seller: %w", err)
	}

	now := time.Now().Unix()
	item := &models.Item{
		ID:              uuid.New().String(),
		Description:     strings.TrimSpace(in.Description),
		SellerName:      seller.DisplayName,
		SellerPhone:     seller.Phone,
		SellerID:        seller.ID,
		PriceCents:      in.PriceCents,
		StockPercentage: pct,
		Status:          models.StatusAvailable,
		PhotoPath:       in.PhotoPath,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := m.store.PutItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to save item: %w", err)
	}

	slog.Info("Item consigned",
		"item_id", item.ID,
		"seller_id", item.SellerID,
		"price_cents", item.PriceCents,
		"stock_percentage", item.StockPercentage,
	)
	return item, nil
}

// Update edits an Available item. Owner only. Sold and Withdrawn items are
// immutable.
func (m *Manager) Update(ctx context.Context, tok *auth.Token, id string, in UpdateInput) (*models.Item, error) {
	if err := requireOwner(tok); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	item, err := m.store.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Status != models.StatusAvailable {
		return nil, apperr.Conflict(apperr.ReasonItemUnavailable,
			"item is no longer editable — refresh listing",
			"cannot edit item %s in status %s", id, item.Status)
	}

	if in.Description != nil {
		if strings.TrimSpace(*in.Description) == "" {
			return nil, apperr.Validation("description is required")
		}
		item.Description = strings.TrimSpace(*in.Description)
	}
	if in.PriceCents != nil {
		if *in.PriceCents <= 0 {
			return nil, apperr.Validation("price must be greater than zero, got %d", *in.PriceCents)
		}
		item.PriceCents = *in.PriceCents
	}
	if in.StockPercentage != nil {
		if *in.StockPercentage < 0 || *in.StockPercentage > 100 {
			return nil, apperr.Validation("stock percentage must be between 0 and 100, got %d", *in.StockPercentage)
		}
		item.StockPercentage = *in.StockPercentage
	}
	if in.SellerID != nil {
		seller, err := m.store.GetUser(ctx, *in.SellerID)
		if err != nil {
			if apperr.IsKind(err, apperr.KindNotFound) {
				return nil, apperr.Validation("seller does not exist: %s", *in.SellerID)
			}
			return nil, fmt.Errorf("failed to resolve seller: %w", err)
		}
		item.SellerID = seller.ID
		item.SellerName = seller.DisplayName
		item.SellerPhone = seller.Phone
	}
	if in.PhotoPath != nil {
		item.PhotoPath = *in.PhotoPath
	}
	item.UpdatedAt = time.Now().Unix()

	if err := m.store.PutItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to save item: %w", err)
	}

	slog.Info("Item updated", "item_id", item.ID)
	return item, nil
}

// Withdraw transitions an Available item to Withdrawn. Owner only. The
// item is retained for audit and can never be sold afterwards.
func (m *Manager) Withdraw(ctx context.Context, tok *auth.Token, id string) (*models.Item, error) {
	if err := requireOwner(tok); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	item, err := m.store.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	withdrawn, err := Transition(item, models.StatusWithdrawn)
	if err != nil {
		return nil, err
	}

	if err := m.store.PutItem(ctx, withdrawn); err != nil {
		return nil, fmt.Errorf("failed to save item: %w", err)
	}

	slog.Info("Item withdrawn", "item_id", id)
	return withdrawn, nil
}

// Delete permanently removes an item that was never sold. Owner only.
// Sold items are retained forever so reports keep reconciling with the
// transaction log.
func (m *Manager) Delete(ctx context.Context, tok *auth.Token, id string) error {
	if err := requireOwner(tok); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	item, err := m.store.GetItem(ctx, id)
	if err != nil {
		return err
	}
	if item.Status == models.StatusSold {
		return apperr.Conflict(apperr.ReasonItemSold,
			"sold items are kept for audit",
			"cannot delete sold item %s", id)
	}
	txns, err := m.store.ListTransactionsByItem(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check item sale history: %w", err)
	}
	if len(txns) > 0 {
		return apperr.Conflict(apperr.ReasonItemSold,
			"sold items are kept for audit",
			"cannot delete item %s with recorded transactions", id)
	}

	if err := m.store.DeleteItem(ctx, id); err != nil {
		return err
	}
	slog.Info("Item deleted", "item_id", id)
	return nil
}

// Transition returns a copy of the item moved to the target status, or a
// ConflictError if the move is not allowed. It never persists; callers own
// the write so the ledger can fold the transition into its commit unit.
func Transition(item *models.Item, to models.ItemStatus) (*models.Item, error) {
	if !models.CanTransition(item.Status, to) {
		hint := "item already sold — refresh listing"
		if to == models.StatusWithdrawn {
			hint = "item can no longer be withdrawn — refresh listing"
		}
		return nil, apperr.Conflict(apperr.ReasonItemUnavailable, hint,
			"cannot transition item %s from %s to %s", item.ID, item.Status, to)
	}
	moved := *item
	moved.Status = to
	moved.UpdatedAt = time.Now().Unix()
	return &moved, nil
}

func requireOwner(tok *auth.Token) error {
	if tok == nil || tok.Role != models.RoleOwner {
		return apperr.Unauthorized("operation requires the owner role")
	}
	return nil
}
