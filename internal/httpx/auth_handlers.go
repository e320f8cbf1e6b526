package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nberthet/depotvente/internal/auth"
)

type loginUserReq struct {
	UserID string `json:"user_id"`
}

type loginOwnerReq struct {
	Passphrase string `json:"passphrase"`
}

type loginResp struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

func (s *Server) loginUser(w http.ResponseWriter, r *http.Request) {
	var req loginUserReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json", Kind: "validation"})
		return
	}
	if req.UserID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "user_id is required", Kind: "validation"})
		return
	}

	signed, tok, err := s.Auth.LoginUser(r.Context(), req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResp{Token: signed, UserID: tok.UserID, Role: string(tok.Role)})
}

func (s *Server) loginOwner(w http.ResponseWriter, r *http.Request) {
	var req loginOwnerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json", Kind: "validation"})
		return
	}

	signed, tok, err := s.Auth.LoginOwner(req.Passphrase)
	if err != nil {
		if errors.Is(err, auth.ErrWrongPassphrase) {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "access denied", Kind: "unauthorized"})
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResp{Token: signed, UserID: tok.UserID, Role: string(tok.Role)})
}
