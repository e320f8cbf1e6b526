package sqlite

import (
	"context"
	"fmt"

	"github.com/nberthet/depotvente/internal/apperr"
	"github.com/nberthet/depotvente/internal/storage"
)

const appendTransactionSQL = `
	INSERT INTO transactions (id, receipt_id, item_id, buyer_id, actor_role,
		price_cents, stock_percentage, seller_share_cents, shop_share_cents, seller_id, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// BatchWrite applies all operations inside one SQL transaction. Either
// every operation persists or none do; readers see pre- or post-commit
// state, never an intermediate one.
func (s *Store) BatchWrite(ctx context.Context, ops []storage.WriteOp) error {
	if len(ops) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Store(err, "failed to begin batch")
	}
	defer tx.Rollback()

	for _, op := range ops {
		switch {
		case op.PutItem != nil:
			if _, err := tx.ExecContext(ctx, putItemSQL, putItemArgs(op.PutItem)...); err != nil {
				return apperr.Store(err, "batch put item %s", op.PutItem.ID)
			}
		case op.PutUser != nil:
			if _, err := tx.ExecContext(ctx, putUserSQL, putUserArgs(op.PutUser)...); err != nil {
				return apperr.Store(err, "batch put user %s", op.PutUser.ID)
			}
		case op.AppendTransaction != nil:
			txn := op.AppendTransaction
			res, err := tx.ExecContext(ctx, appendTransactionSQL,
				txn.ID, txn.ReceiptID, txn.ItemID, txn.BuyerID, string(txn.ActorRole),
				txn.PriceCents, txn.StockPercentage, txn.SellerShareCents, txn.ShopShareCents,
				txn.SellerID, txn.CreatedAt,
			)
			if err != nil {
				return apperr.Store(err, "batch append transaction %s", txn.ID)
			}
			// Report the assigned monotonic sequence back to the caller.
			if seq, err := res.LastInsertId(); err == nil {
				txn.Seq = seq
			}
		case op.DeleteItem != "":
			if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, op.DeleteItem); err != nil {
				return apperr.Store(err, "batch delete item %s", op.DeleteItem)
			}
		default:
			return fmt.Errorf("empty write op in batch")
		}
	}

	if err := tx.Commit(); err != nil {
		return apperr.Store(err, "failed to commit batch")
	}
	return nil
}
