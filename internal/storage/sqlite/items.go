package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nberthet/depotvente/internal/apperr"
	"github.com/nberthet/depotvente/internal/models"
)

const itemColumns = `id, description, seller_name, seller_phone, seller_id,
	price_cents, stock_percentage, status, photo_path, created_at, updated_at`

func scanItem(row interface{ Scan(...any) error }) (*models.Item, error) {
	item := &models.Item{}
	var status string
	err := row.Scan(
		&item.ID,
		&item.Description,
		&item.SellerName,
		&item.SellerPhone,
		&item.SellerID,
		&item.PriceCents,
		&item.StockPercentage,
		&status,
		&item.PhotoPath,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.Status = models.ItemStatus(status)
	return item, nil
}

// GetItem retrieves an item by ID.
func (s *Store) GetItem(ctx context.Context, id string) (*models.Item, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id)

	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("item not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// ListItems returns all items ordered by ID.
func (s *Store) ListItems(ctx context.Context) ([]*models.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}
	return items, nil
}

// PutItem inserts or replaces an item.
func (s *Store) PutItem(ctx context.Context, item *models.Item) error {
	if _, err := s.db.ExecContext(ctx, putItemSQL, putItemArgs(item)...); err != nil {
		return fmt.Errorf("failed to put item: %w", err)
	}
	return nil
}

// DeleteItem removes an item by ID.
func (s *Store) DeleteItem(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if n == 0 {
		return apperr.NotFound("item not found: %s", id)
	}
	return nil
}

const putItemSQL = `
	INSERT INTO items (` + itemColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		description = excluded.description,
		seller_name = excluded.seller_name,
		seller_phone = excluded.seller_phone,
		seller_id = excluded.seller_id,
		price_cents = excluded.price_cents,
		stock_percentage = excluded.stock_percentage,
		status = excluded.status,
		photo_path = excluded.photo_path,
		updated_at = excluded.updated_at
`

func putItemArgs(item *models.Item) []any {
	return []any{
		item.ID,
		item.Description,
		item.SellerName,
		item.SellerPhone,
		item.SellerID,
		item.PriceCents,
		item.StockPercentage,
		string(item.Status),
		item.PhotoPath,
		item.CreatedAt,
		item.UpdatedAt,
	}
}
