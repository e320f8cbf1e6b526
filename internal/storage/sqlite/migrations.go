package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// transactions.seq is AUTOINCREMENT: the store's monotonic sequence.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    role TEXT NOT NULL,
    display_name TEXT NOT NULL,
    phone TEXT NOT NULL DEFAULT '',
    balance_cents INTEGER NOT NULL DEFAULT 0,
    payout_cents INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS items (
    id TEXT PRIMARY KEY,
    description TEXT NOT NULL,
    seller_name TEXT NOT NULL DEFAULT '',
    seller_phone TEXT NOT NULL DEFAULT '',
    seller_id TEXT NOT NULL,
    price_cents INTEGER NOT NULL,
    stock_percentage INTEGER NOT NULL,
    status TEXT NOT NULL,
    photo_path TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    FOREIGN KEY (seller_id) REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS transactions (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    receipt_id TEXT NOT NULL,
    item_id TEXT NOT NULL,
    buyer_id TEXT NOT NULL,
    actor_role TEXT NOT NULL,
    price_cents INTEGER NOT NULL,
    stock_percentage INTEGER NOT NULL,
    seller_share_cents INTEGER NOT NULL,
    shop_share_cents INTEGER NOT NULL,
    seller_id TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_items_status ON items(status);
CREATE INDEX IF NOT EXISTS idx_items_seller_id ON items(seller_id);
CREATE INDEX IF NOT EXISTS idx_transactions_buyer_id ON transactions(buyer_id);
CREATE INDEX IF NOT EXISTS idx_transactions_receipt_id ON transactions(receipt_id);
CREATE UNIQUE INDEX IF NOT EXISTS idx_transactions_item_id ON transactions(item_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
