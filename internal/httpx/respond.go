package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nberthet/depotvente/internal/apperr"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// errorBody is what callers see on failure: the kind, the reason code if
// any, and retry guidance instead of a raw failure.
type errorBody struct {
	Error  string `json:"error"`
	Kind   string `json:"kind"`
	Reason string `json:"reason,omitempty"`
	Hint   string `json:"hint,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	body := errorBody{Error: err.Error()}

	var ae *apperr.Error
	if !errors.As(err, &ae) {
		body.Kind = "internal"
		writeJSON(w, http.StatusInternalServerError, body)
		return
	}

	body.Reason = string(ae.Reason)
	body.Hint = ae.Hint

	var code int
	switch ae.Kind {
	case apperr.KindNotFound:
		body.Kind = "not_found"
		code = http.StatusNotFound
	case apperr.KindValidation:
		body.Kind = "validation"
		code = http.StatusBadRequest
	case apperr.KindConflict:
		body.Kind = "conflict"
		code = http.StatusConflict
	case apperr.KindUnauthorized:
		body.Kind = "unauthorized"
		code = http.StatusForbidden
	case apperr.KindStore:
		body.Kind = "store_failure"
		body.Hint = "no changes were applied — retry the request"
		code = http.StatusBadGateway
	default:
		body.Kind = "internal"
		code = http.StatusInternalServerError
	}
	writeJSON(w, code, body)
}
