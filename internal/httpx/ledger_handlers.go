package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nberthet/depotvente/internal/ledger"
	"github.com/nberthet/depotvente/internal/middleware"
	"github.com/nberthet/depotvente/internal/models"
)

type purchaseItemReq struct {
	ItemID             string `json:"item_id"`
	ExpectedPriceCents int64  `json:"expected_price_cents"`
}

type purchaseReq struct {
	// BuyerID may be omitted by buyers purchasing for themselves; the
	// owner must name the buyer for a counter sale.
	BuyerID string            `json:"buyer_id"`
	Items   []purchaseItemReq `json:"items"`
}

type transactionResp struct {
	Seq              int64  `json:"seq"`
	ID               string `json:"id"`
	ReceiptID        string `json:"receipt_id"`
	ItemID           string `json:"item_id"`
	BuyerID          string `json:"buyer_id"`
	ActorRole        string `json:"actor_role"`
	PriceCents       int64  `json:"price_cents"`
	StockPercentage  int    `json:"stock_percentage"`
	SellerShareCents int64  `json:"seller_share_cents"`
	ShopShareCents   int64  `json:"shop_share_cents"`
	SellerID         string `json:"seller_id"`
	CreatedAt        int64  `json:"created_at"`
}

func toTransactionResp(t *models.Transaction) transactionResp {
	return transactionResp{
		Seq:              t.Seq,
		ID:               t.ID,
		ReceiptID:        t.ReceiptID,
		ItemID:           t.ItemID,
		BuyerID:          t.BuyerID,
		ActorRole:        string(t.ActorRole),
		PriceCents:       t.PriceCents,
		StockPercentage:  t.StockPercentage,
		SellerShareCents: t.SellerShareCents,
		ShopShareCents:   t.ShopShareCents,
		SellerID:         t.SellerID,
		CreatedAt:        t.CreatedAt,
	}
}

type purchaseResp struct {
	ReceiptID    string            `json:"receipt_id"`
	TotalCents   int64             `json:"total_cents"`
	Transactions []transactionResp `json:"transactions"`
}

func (s *Server) purchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json", Kind: "validation"})
		return
	}

	tok := middleware.TokenFrom(r.Context())
	buyerID := req.BuyerID
	if buyerID == "" {
		buyerID = tok.UserID
	}

	items := make([]ledger.PurchaseItem, len(req.Items))
	for i, it := range req.Items {
		items[i] = ledger.PurchaseItem{ItemID: it.ItemID, ExpectedPriceCents: it.ExpectedPriceCents}
	}

	result, err := s.Ledger.Purchase(r.Context(), tok, ledger.PurchaseRequest{
		BuyerID: buyerID,
		Items:   items,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	resp := purchaseResp{ReceiptID: result.ReceiptID, TotalCents: result.TotalCents}
	for _, t := range result.Transactions {
		resp.Transactions = append(resp.Transactions, toTransactionResp(t))
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) getReceipt(w http.ResponseWriter, r *http.Request) {
	rec, err := s.Reports.Receipt(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	// Buyers only see their own receipts; the owner sees all.
	tok := middleware.TokenFrom(r.Context())
	if tok.Role != models.RoleOwner && rec.BuyerID != tok.UserID {
		writeJSON(w, http.StatusForbidden, errorBody{Error: "not your receipt", Kind: "unauthorized"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"receipt":  rec,
		"rendered": rec.RenderText(),
	})
}
