package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nberthet/depotvente/internal/auth"
	"github.com/nberthet/depotvente/internal/models"
)

func newTokens() *auth.TokenManager {
	return auth.NewTokenManager("test-secret-key-for-testing", time.Hour)
}

func echoToken() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := TokenFrom(r.Context())
		if tok == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		_, _ = w.Write([]byte(tok.UserID + ":" + string(tok.Role)))
	})
}

func get(h http.Handler, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// assertJSONErrorBody checks that an auth rejection uses the same JSON
// envelope as the handler error paths.
func assertJSONErrorBody(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON content type, got %q", ct)
	}
	var body struct {
		Error string `json:"error"`
		Kind  string `json:"kind"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %v (%s)", err, rec.Body.String())
	}
	if body.Kind != "unauthorized" {
		t.Errorf("expected kind unauthorized, got %q", body.Kind)
	}
	if body.Error == "" {
		t.Error("expected a non-empty error message")
	}
}

func TestRequireAuth(t *testing.T) {
	tokens := newTokens()
	h := RequireAuth(tokens)(echoToken())

	t.Run("valid token reaches the handler with identity", func(t *testing.T) {
		signed, err := tokens.Generate("u-1", models.RoleBuyer)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		rec := get(h, "Bearer "+signed)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if rec.Body.String() != "u-1:buyer" {
			t.Errorf("unexpected identity: %s", rec.Body.String())
		}
	})

	t.Run("missing header is 401 with a JSON error body", func(t *testing.T) {
		rec := get(h, "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
		assertJSONErrorBody(t, rec)
	})

	t.Run("malformed header is 401", func(t *testing.T) {
		if rec := get(h, "Token abc"); rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("token signed with another secret is 401", func(t *testing.T) {
		other := auth.NewTokenManager("a-different-secret", time.Hour)
		signed, err := other.Generate("u-1", models.RoleBuyer)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if rec := get(h, "Bearer "+signed); rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})
}

func TestRequireRole(t *testing.T) {
	tokens := newTokens()
	h := RequireRole(tokens, models.RoleOwner)(echoToken())

	ownerSigned, err := tokens.Generate("owner", models.RoleOwner)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	buyerSigned, err := tokens.Generate("u-1", models.RoleBuyer)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if rec := get(h, "Bearer "+ownerSigned); rec.Code != http.StatusOK {
		t.Errorf("owner should pass, got %d", rec.Code)
	}
	rec := get(h, "Bearer "+buyerSigned)
	if rec.Code != http.StatusForbidden {
		t.Errorf("buyer should get 403, got %d", rec.Code)
	}
	assertJSONErrorBody(t, rec)
	if rec := get(h, ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("missing token should get 401, got %d", rec.Code)
	}
}

func TestOptionalAuth(t *testing.T) {
	tokens := newTokens()
	h := OptionalAuth(tokens)(echoToken())

	t.Run("no token passes through anonymously", func(t *testing.T) {
		if rec := get(h, ""); rec.Code != http.StatusNoContent {
			t.Errorf("expected anonymous pass-through, got %d", rec.Code)
		}
	})

	t.Run("valid token attaches identity", func(t *testing.T) {
		signed, err := tokens.Generate("u-1", models.RoleAssignedUser)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		rec := get(h, "Bearer "+signed)
		if rec.Body.String() != "u-1:assigned" {
			t.Errorf("unexpected identity: %s", rec.Body.String())
		}
	})

	t.Run("invalid token passes through anonymously", func(t *testing.T) {
		if rec := get(h, "Bearer junk"); rec.Code != http.StatusNoContent {
			t.Errorf("expected anonymous pass-through, got %d", rec.Code)
		}
	})
}
