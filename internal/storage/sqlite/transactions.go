package sqlite

import (
	"context"
	"fmt"

	"github.com/nberthet/depotvente/internal/apperr"
	"github.com/nberthet/depotvente/internal/models"
)

const txnColumns = `seq, id, receipt_id, item_id, buyer_id, actor_role,
	price_cents, stock_percentage, seller_share_cents, shop_share_cents, seller_id, created_at`

func scanTransaction(row interface{ Scan(...any) error }) (*models.Transaction, error) {
	txn := &models.Transaction{}
	var actorRole string
	err := row.Scan(
		&txn.Seq,
		&txn.ID,
		&txn.ReceiptID,
		&txn.ItemID,
		&txn.BuyerID,
		&actorRole,
		&txn.PriceCents,
		&txn.StockPercentage,
		&txn.SellerShareCents,
		&txn.ShopShareCents,
		&txn.SellerID,
		&txn.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	txn.ActorRole = models.Role(actorRole)
	return txn, nil
}

func (s *Store) listTransactionsWhere(ctx context.Context, where string, args ...any) ([]*models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+txnColumns+` FROM transactions `+where+` ORDER BY seq`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txns []*models.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txns, nil
}

// ListTransactions returns all transactions ordered by Seq.
func (s *Store) ListTransactions(ctx context.Context) ([]*models.Transaction, error) {
	return s.listTransactionsWhere(ctx, "")
}

// ListTransactionsByBuyer returns a buyer's transactions ordered by Seq.
func (s *Store) ListTransactionsByBuyer(ctx context.Context, buyerID string) ([]*models.Transaction, error) {
	return s.listTransactionsWhere(ctx, "WHERE buyer_id = ?", buyerID)
}

// ListTransactionsByReceipt returns one receipt's transactions ordered by Seq.
func (s *Store) ListTransactionsByReceipt(ctx context.Context, receiptID string) ([]*models.Transaction, error) {
	txns, err := s.listTransactionsWhere(ctx, "WHERE receipt_id = ?", receiptID)
	if err != nil {
		return nil, err
	}
	if len(txns) == 0 {
		return nil, apperr.NotFound("receipt not found: %s", receiptID)
	}
	return txns, nil
}

// ListTransactionsByItem returns the transactions referencing an item.
func (s *Store) ListTransactionsByItem(ctx context.Context, itemID string) ([]*models.Transaction, error) {
	return s.listTransactionsWhere(ctx, "WHERE item_id = ?", itemID)
}
