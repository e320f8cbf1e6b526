package models

// Transaction is the immutable record of one item's sale. A purchase
// request may sell several items at once; each item gets its own
// transaction and they share a ReceiptID.
type Transaction struct {
	// Seq is the monotonically increasing sequence number assigned by
	// the record store at commit time.
	Seq int64

	// ID is the unique external reference for the transaction (UUID).
	ID string

	// ReceiptID groups the transactions committed by one purchase
	// request onto one receipt.
	ReceiptID string

	// ItemID references the sold item. An item is sold at most once.
	ItemID string

	// BuyerID references the purchasing user.
	BuyerID string

	// ActorRole records who executed the purchase: the buyer themselves
	// or the owner selling over the counter on the buyer's behalf.
	ActorRole Role

	// PriceCents is the sale price at commit time.
	PriceCents int64

	// StockPercentage is the item's percentage snapshotted at commit
	// time. Later edits to the item never alter this record.
	StockPercentage int

	// SellerShareCents is the seller's cut: PriceCents * pct / 100,
	// rounded down.
	SellerShareCents int64

	// ShopShareCents is the remainder. SellerShareCents + ShopShareCents
	// always equals PriceCents exactly.
	ShopShareCents int64

	// SellerID references the item's seller at commit time.
	SellerID string

	// CreatedAt is the Unix timestamp of the commit.
	CreatedAt int64
}
