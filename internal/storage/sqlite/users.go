package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nberthet/depotvente/internal/apperr"
	"github.com/nberthet/depotvente/internal/models"
)

const userColumns = `id, role, display_name, phone, balance_cents, payout_cents, created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	user := &models.User{}
	var role string
	err := row.Scan(
		&user.ID,
		&role,
		&user.DisplayName,
		&user.Phone,
		&user.BalanceCents,
		&user.PayoutCents,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Role = models.Role(role)
	return user, nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("user not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// ListUsers returns all users ordered by ID.
func (s *Store) ListUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

// PutUser inserts or replaces a user.
func (s *Store) PutUser(ctx context.Context, user *models.User) error {
	if _, err := s.db.ExecContext(ctx, putUserSQL, putUserArgs(user)...); err != nil {
		return fmt.Errorf("failed to put user: %w", err)
	}
	return nil
}

const putUserSQL = `
	INSERT INTO users (` + userColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		role = excluded.role,
		display_name = excluded.display_name,
		phone = excluded.phone,
		balance_cents = excluded.balance_cents,
		payout_cents = excluded.payout_cents
`

func putUserArgs(user *models.User) []any {
	return []any{
		user.ID,
		string(user.Role),
		user.DisplayName,
		user.Phone,
		user.BalanceCents,
		user.PayoutCents,
		user.CreatedAt,
	}
}
