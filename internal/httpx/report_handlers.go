package httpx

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nberthet/depotvente/internal/middleware"
	"github.com/nberthet/depotvente/internal/models"
	"github.com/nberthet/depotvente/internal/report"
)

func (s *Server) ownerReport(w http.ResponseWriter, r *http.Request) {
	var period *report.Period
	from, err1 := parseUnixParam(r, "from")
	to, err2 := parseUnixParam(r, "to")
	if err1 != nil || err2 != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "from/to must be Unix timestamps", Kind: "validation"})
		return
	}
	if from != 0 || to != 0 {
		period = &report.Period{From: from, To: to}
	}

	rep, err := s.Reports.Owner(r.Context(), period)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) userReport(w http.ResponseWriter, r *http.Request) {
	s.writeUserReport(w, r, chi.URLParam(r, "id"))
}

func (s *Server) myReport(w http.ResponseWriter, r *http.Request) {
	s.writeUserReport(w, r, middleware.TokenFrom(r.Context()).UserID)
}

func (s *Server) writeUserReport(w http.ResponseWriter, r *http.Request, userID string) {
	rep, err := s.Reports.User(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func parseUnixParam(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

type userResp struct {
	ID           string `json:"id"`
	Role         string `json:"role"`
	DisplayName  string `json:"display_name"`
	Phone        string `json:"phone,omitempty"`
	BalanceCents int64  `json:"balance_cents"`
	PayoutCents  int64  `json:"payout_cents"`
	CreatedAt    int64  `json:"created_at"`
}

func toUserResp(u *models.User) userResp {
	return userResp{
		ID:           u.ID,
		Role:         string(u.Role),
		DisplayName:  u.DisplayName,
		Phone:        u.Phone,
		BalanceCents: u.BalanceCents,
		PayoutCents:  u.PayoutCents,
		CreatedAt:    u.CreatedAt,
	}
}

type createUserReq struct {
	DisplayName string `json:"display_name"`
	Phone       string `json:"phone"`
	Role        string `json:"role"`
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json", Kind: "validation"})
		return
	}

	user, err := s.Users.Create(r.Context(), middleware.TokenFrom(r.Context()),
		req.DisplayName, req.Phone, models.Role(req.Role))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserResp(user))
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	all, err := s.Users.List(r.Context(), middleware.TokenFrom(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]userResp, len(all))
	for i, u := range all {
		out[i] = toUserResp(u)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) suggestUsers(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Users.SuggestByName(r.Context(), middleware.TokenFrom(r.Context()), r.URL.Query().Get("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"user_ids": ids})
}
