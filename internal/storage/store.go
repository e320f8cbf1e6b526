// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/nberthet/depotvente/internal/models"
)

// WriteOp is one write in an atomic batch. Exactly one field is set.
type WriteOp struct {
	// PutItem inserts or replaces an item row.
	PutItem *models.Item

	// PutUser inserts or replaces a user row.
	PutUser *models.User

	// AppendTransaction appends an immutable transaction row. The store
	// assigns the monotonic Seq at commit time.
	AppendTransaction *models.Transaction

	// DeleteItem removes an item row by ID.
	DeleteItem string
}

// RecordStore defines the flat-record persistence interface the core
// depends on. This abstraction allows swapping storage backends without
// changing the inventory, ledger or report layers.
//
// BatchWrite is the commit-unit primitive: all operations in the batch
// persist together or none do, and a concurrent reader never observes an
// intermediate state.
type RecordStore interface {
	// GetItem retrieves an item by ID. Returns a NotFound apperr if absent.
	GetItem(ctx context.Context, id string) (*models.Item, error)

	// ListItems returns all items in stable order by ID.
	ListItems(ctx context.Context) ([]*models.Item, error)

	// PutItem inserts or replaces a single item.
	PutItem(ctx context.Context, item *models.Item) error

	// DeleteItem removes an item by ID. Returns NotFound if absent.
	DeleteItem(ctx context.Context, id string) error

	// GetUser retrieves a user by ID. Returns NotFound if absent.
	GetUser(ctx context.Context, id string) (*models.User, error)

	// ListUsers returns all users in stable order by ID.
	ListUsers(ctx context.Context) ([]*models.User, error)

	// PutUser inserts or replaces a single user.
	PutUser(ctx context.Context, user *models.User) error

	// ListTransactions returns all transactions ordered by Seq.
	ListTransactions(ctx context.Context) ([]*models.Transaction, error)

	// ListTransactionsByBuyer returns the transactions where the given
	// user is the buyer, ordered by Seq.
	ListTransactionsByBuyer(ctx context.Context, buyerID string) ([]*models.Transaction, error)

	// ListTransactionsByReceipt returns the transactions grouped under
	// one receipt, ordered by Seq. Returns NotFound for an unknown receipt.
	ListTransactionsByReceipt(ctx context.Context, receiptID string) ([]*models.Transaction, error)

	// ListTransactionsByItem returns the transactions referencing an
	// item. With the sale-uniqueness invariant intact it has at most one
	// element.
	ListTransactionsByItem(ctx context.Context, itemID string) ([]*models.Transaction, error)

	// BatchWrite applies all operations atomically, or none of them.
	// Failure surfaces as a Store apperr and leaves prior state intact.
	BatchWrite(ctx context.Context, ops []WriteOp) error

	// Close releases any resources held by the store.
	Close() error
}
