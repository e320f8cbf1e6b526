package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nberthet/depotvente/internal/apperr"
	"github.com/nberthet/depotvente/internal/models"
)

// ReceiptLine is one sold item on a receipt.
type ReceiptLine struct {
	ItemID      string
	Description string
	SellerName  string
	PriceCents  int64
}

// Receipt is the read-side view of all transactions committed by one
// purchase request.
type Receipt struct {
	ReceiptID  string
	BuyerID    string
	ActorRole  models.Role
	CreatedAt  int64
	Lines      []ReceiptLine
	TotalCents int64
}

// Receipt assembles the receipt for one purchase.
func (g *Generator) Receipt(ctx context.Context, receiptID string) (*Receipt, error) {
	txns, err := g.store.ListTransactionsByReceipt(ctx, receiptID)
	if err != nil {
		return nil, err
	}

	rec := &Receipt{
		ReceiptID: receiptID,
		BuyerID:   txns[0].BuyerID,
		ActorRole: txns[0].ActorRole,
		CreatedAt: txns[0].CreatedAt,
	}
	for _, t := range txns {
		line := ReceiptLine{ItemID: t.ItemID, PriceCents: t.PriceCents}
		item, err := g.store.GetItem(ctx, t.ItemID)
		switch {
		case err == nil:
			line.Description = item.Description
			line.SellerName = item.SellerName
		case apperr.IsKind(err, apperr.KindNotFound):
			slog.Warn("Sold item missing from catalog", "item_id", t.ItemID)
		default:
			return nil, fmt.Errorf("failed to load item %s: %w", t.ItemID, err)
		}
		rec.Lines = append(rec.Lines, line)
		rec.TotalCents += t.PriceCents
	}
	return rec, nil
}

// RenderText formats a receipt the way the counter prints it.
func (r *Receipt) RenderText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Receipt ID: %s\n", r.ReceiptID)
	fmt.Fprintf(&b, "Buyer ID: %s\n", r.BuyerID)
	fmt.Fprintf(&b, "Role: %s\n", r.ActorRole)
	fmt.Fprintf(&b, "Date: %s\n\nItems:\n", time.Unix(r.CreatedAt, 0).UTC().Format(time.RFC3339))
	for _, line := range r.Lines {
		from := line.SellerName
		if from == "" {
			from = "unknown seller"
		}
		fmt.Fprintf(&b, "- %s (from %s)  [%s]  -  $%s\n", line.Description, from, line.ItemID, centsToDollars(line.PriceCents))
	}
	fmt.Fprintf(&b, "\nTotal: $%s\n", centsToDollars(r.TotalCents))
	return b.String()
}

func centsToDollars(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
