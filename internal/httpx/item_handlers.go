package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nberthet/depotvente/internal/inventory"
	"github.com/nberthet/depotvente/internal/middleware"
	"github.com/nberthet/depotvente/internal/models"
)

type itemResp struct {
	ID              string `json:"id"`
	Description     string `json:"description"`
	SellerName      string `json:"seller_name"`
	SellerPhone     string `json:"seller_phone,omitempty"`
	SellerID        string `json:"seller_id,omitempty"`
	PriceCents      int64  `json:"price_cents"`
	StockPercentage int    `json:"stock_percentage,omitempty"`
	Status          string `json:"status"`
	PhotoPath       string `json:"photo_path,omitempty"`
	CreatedAt       int64  `json:"created_at"`
}

func toItemResp(item *models.Item, ownerView bool) itemResp {
	resp := itemResp{
		ID:          item.ID,
		Description: item.Description,
		SellerName:  item.SellerName,
		PriceCents:  item.PriceCents,
		Status:      string(item.Status),
		PhotoPath:   item.PhotoPath,
		CreatedAt:   item.CreatedAt,
	}
	if ownerView {
		resp.SellerPhone = item.SellerPhone
		resp.SellerID = item.SellerID
		resp.StockPercentage = item.StockPercentage
	}
	return resp
}

func toItemResps(items []*models.Item, ownerView bool) []itemResp {
	out := make([]itemResp, len(items))
	for i, item := range items {
		out[i] = toItemResp(item, ownerView)
	}
	return out
}

func (s *Server) listAvailable(w http.ResponseWriter, r *http.Request) {
	items, err := s.Inventory.ListAvailable(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemResps(items, false))
}

func (s *Server) ownerListItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.Inventory.ListAll(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemResps(items, true))
}

type createItemReq struct {
	Description     string `json:"description"`
	SellerID        string `json:"seller_id"`
	PriceCents      int64  `json:"price_cents"`
	StockPercentage *int   `json:"stock_percentage"`
	PhotoPath       string `json:"photo_path"`
}

func (s *Server) createItem(w http.ResponseWriter, r *http.Request) {
	var req createItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json", Kind: "validation"})
		return
	}

	item, err := s.Inventory.Create(r.Context(), middleware.TokenFrom(r.Context()), inventory.CreateInput{
		Description:     req.Description,
		SellerID:        req.SellerID,
		PriceCents:      req.PriceCents,
		StockPercentage: req.StockPercentage,
		PhotoPath:       req.PhotoPath,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toItemResp(item, true))
}

type updateItemReq struct {
	Description     *string `json:"description"`
	SellerID        *string `json:"seller_id"`
	PriceCents      *int64  `json:"price_cents"`
	StockPercentage *int    `json:"stock_percentage"`
	PhotoPath       *string `json:"photo_path"`
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json", Kind: "validation"})
		return
	}

	item, err := s.Inventory.Update(r.Context(), middleware.TokenFrom(r.Context()), chi.URLParam(r, "id"), inventory.UpdateInput{
		Description:     req.Description,
		SellerID:        req.SellerID,
		PriceCents:      req.PriceCents,
		StockPercentage: req.StockPercentage,
		PhotoPath:       req.PhotoPath,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemResp(item, true))
}

func (s *Server) withdrawItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.Inventory.Withdraw(r.Context(), middleware.TokenFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemResp(item, true))
}

func (s *Server) deleteItem(w http.ResponseWriter, r *http.Request) {
	if err := s.Inventory.Delete(r.Context(), middleware.TokenFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) myItems(w http.ResponseWriter, r *http.Request) {
	tok := middleware.TokenFrom(r.Context())
	items, err := s.Inventory.ListBySeller(r.Context(), tok.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toItemResps(items, false))
}
