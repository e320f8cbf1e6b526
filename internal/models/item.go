package models

// ItemStatus is the lifecycle state of a consigned item.
type ItemStatus string

const (
	StatusAvailable ItemStatus = "Available"
	StatusSold      ItemStatus = "Sold"
	StatusWithdrawn ItemStatus = "Withdrawn"
)

// validItemNext maps each status to the statuses it may transition to.
// Sold and Withdrawn are terminal.
var validItemNext = map[ItemStatus]map[ItemStatus]bool{
	StatusAvailable: {StatusSold: true, StatusWithdrawn: true},
	StatusSold:      {},
	StatusWithdrawn: {},
}

// CanTransition reports whether an item may move from one status to another.
func CanTransition(from, to ItemStatus) bool {
	return validItemNext[from][to]
}

// DefaultStockPercentage is the seller's share of the sale price when the
// owner does not agree on a different split (shop keeps 25%).
const DefaultStockPercentage = 75

// Item represents a consigned article placed by a seller.
type Item struct {
	// ID is the unique identifier for the item (UUID format).
	ID string

	// Description is the article name shown on listings and receipts.
	Description string

	// SellerName is the display name of the consigning depot/seller.
	SellerName string

	// SellerPhone is the seller's contact number.
	SellerPhone string

	// SellerID references the User who consigned the item.
	SellerID string

	// PriceCents is the asking price in cents. Always > 0.
	PriceCents int64

	// StockPercentage is the seller's share of the sale price (0-100).
	// It is snapshotted into the transaction at sale time; editing it
	// later never changes committed transactions.
	StockPercentage int

	// Status is the lifecycle state. Only Available items may be edited,
	// sold or withdrawn.
	Status ItemStatus

	// PhotoPath is an opaque reference to the item's photo. The core
	// never interprets it; presentation decides how to display it.
	PhotoPath string

	// CreatedAt is the Unix timestamp when the item was consigned.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last mutation.
	UpdatedAt int64
}

// SellerShareCents returns the seller's cut of the given sale price at the
// item's current percentage. The share rounds down; the shop share takes
// the remainder so the two always sum to the price exactly.
func (i *Item) SellerShareCents(priceCents int64) int64 {
	return priceCents * int64(i.StockPercentage) / 100
}
