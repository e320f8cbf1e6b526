package httpx

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nberthet/depotvente/internal/auth"
	"github.com/nberthet/depotvente/internal/inventory"
	"github.com/nberthet/depotvente/internal/ledger"
	"github.com/nberthet/depotvente/internal/report"
	"github.com/nberthet/depotvente/internal/storage/sqlite"
	"github.com/nberthet/depotvente/internal/users"
)

const testPassphrase = "open sesame"

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	hash, err := auth.HashPassphrase(testPassphrase)
	require.NoError(t, err)
	tokens := auth.NewTokenManager("test-secret-key-for-testing", time.Hour)

	inv := inventory.NewManager(store)
	server := &Server{
		Inventory: inv,
		Users:     users.NewService(store),
		Ledger:    ledger.NewEngine(store, inv),
		Reports:   report.NewGenerator(store),
		Auth:      auth.NewAuthenticator(store, tokens, hash),
		Tokens:    tokens,
	}
	return server.Router()
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

func loginOwner(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/auth/owner", "", map[string]string{"passphrase": testPassphrase})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Token string `json:"token"`
	}
	decode(t, rec, &resp)
	return resp.Token
}

func createUser(t *testing.T, h http.Handler, ownerToken, name, role string) string {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/owner/users", ownerToken,
		map[string]string{"display_name": name, "role": role})
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		ID string `json:"id"`
	}
	decode(t, rec, &resp)
	return resp.ID
}

func loginUser(t *testing.T, h http.Handler, userID string) string {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/auth/login", "", map[string]string{"user_id": userID})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Token string `json:"token"`
	}
	decode(t, rec, &resp)
	return resp.Token
}

func createItem(t *testing.T, h http.Handler, ownerToken, sellerID string, priceCents int64) string {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/owner/items", ownerToken, map[string]any{
		"description": "Walnut desk",
		"seller_id":   sellerID,
		"price_cents": priceCents,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		ID string `json:"id"`
	}
	decode(t, rec, &resp)
	return resp.ID
}

func TestLogin(t *testing.T) {
	h := newTestServer(t)

	t.Run("owner with wrong passphrase is denied", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/auth/owner", "", map[string]string{"passphrase": "nope"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown user ID is not found", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/auth/login", "", map[string]string{"user_id": "ghost"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("issued token carries the stored role", func(t *testing.T) {
		ownerToken := loginOwner(t, h)
		userID := createUser(t, h, ownerToken, "Alice", "buyer")

		rec := do(t, h, http.MethodPost, "/auth/login", "", map[string]string{"user_id": userID})
		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Role string `json:"role"`
		}
		decode(t, rec, &resp)
		assert.Equal(t, "buyer", resp.Role)
	})
}

func TestRouteAuthorization(t *testing.T) {
	h := newTestServer(t)
	ownerToken := loginOwner(t, h)
	buyerID := createUser(t, h, ownerToken, "Bob", "buyer")
	buyerToken := loginUser(t, h, buyerID)

	t.Run("public listing needs no token", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/items", "", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("owner routes reject buyers", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/owner/users", buyerToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("owner routes reject missing tokens", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/owner/users", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("purchases reject unauthenticated callers", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/purchases", "", map[string]any{})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestListingHidesSellerDetails(t *testing.T) {
	h := newTestServer(t)
	ownerToken := loginOwner(t, h)
	sellerID := createUser(t, h, ownerToken, "Sally", "assigned")
	createItem(t, h, ownerToken, sellerID, 4500)

	rec := do(t, h, http.MethodGet, "/items", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var items []map[string]any
	decode(t, rec, &items)
	require.Len(t, items, 1)
	assert.Equal(t, "Walnut desk", items[0]["description"])
	assert.NotContains(t, items[0], "seller_phone")
	assert.NotContains(t, items[0], "seller_id")
	assert.NotContains(t, items[0], "stock_percentage")

	rec = do(t, h, http.MethodGet, "/owner/items", ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &items)
	require.Len(t, items, 1)
	assert.Contains(t, items[0], "seller_id")
	assert.Contains(t, items[0], "stock_percentage")
}

func TestPurchaseFlow(t *testing.T) {
	h := newTestServer(t)
	ownerToken := loginOwner(t, h)
	sellerID := createUser(t, h, ownerToken, "Sally", "assigned")
	buyerID := createUser(t, h, ownerToken, "Bob", "buyer")
	otherID := createUser(t, h, ownerToken, "Carol", "buyer")
	itemID := createItem(t, h, ownerToken, sellerID, 4500)
	buyerToken := loginUser(t, h, buyerID)
	otherToken := loginUser(t, h, otherID)

	buy := map[string]any{
		"items": []map[string]any{{"item_id": itemID, "expected_price_cents": 4500}},
	}

	rec := do(t, h, http.MethodPost, "/purchases", buyerToken, buy)
	require.Equal(t, http.StatusCreated, rec.Code)
	var purchase struct {
		ReceiptID  string `json:"receipt_id"`
		TotalCents int64  `json:"total_cents"`
	}
	decode(t, rec, &purchase)
	assert.Equal(t, int64(4500), purchase.TotalCents)
	require.NotEmpty(t, purchase.ReceiptID)

	t.Run("second purchase conflicts with a reason and hint", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/purchases", otherToken, buy)
		require.Equal(t, http.StatusConflict, rec.Code)
		var body errorBody
		decode(t, rec, &body)
		assert.Equal(t, "conflict", body.Kind)
		assert.Equal(t, "item_unavailable", body.Reason)
		assert.NotEmpty(t, body.Hint)
	})

	t.Run("buyer reads their own receipt", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/receipts/"+purchase.ReceiptID, buyerToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Rendered string `json:"rendered"`
		}
		decode(t, rec, &resp)
		assert.Contains(t, resp.Rendered, "Walnut desk")
		assert.Contains(t, resp.Rendered, "Total: $45.00")
	})

	t.Run("another buyer cannot read the receipt", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/receipts/"+purchase.ReceiptID, otherToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("owner report reconciles with the sale", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/owner/report", ownerToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			TotalSalesCents        int64
			TotalShopShareCents    int64
			TotalSellerPayoutCents int64
		}
		decode(t, rec, &resp)
		assert.Equal(t, int64(4500), resp.TotalSalesCents)
		assert.Equal(t, resp.TotalSalesCents, resp.TotalShopShareCents+resp.TotalSellerPayoutCents)
	})

	t.Run("buyer sees the purchase in their own report", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/me/report", buyerToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			RunningBalanceCents int64
		}
		decode(t, rec, &resp)
		assert.Equal(t, int64(4500), resp.RunningBalanceCents)
	})
}

func TestPurchaseRejectsStalePriceOverHTTP(t *testing.T) {
	h := newTestServer(t)
	ownerToken := loginOwner(t, h)
	sellerID := createUser(t, h, ownerToken, "Sally", "assigned")
	buyerID := createUser(t, h, ownerToken, "Bob", "buyer")
	itemID := createItem(t, h, ownerToken, sellerID, 4500)
	buyerToken := loginUser(t, h, buyerID)

	rec := do(t, h, http.MethodPost, "/purchases", buyerToken, map[string]any{
		"items": []map[string]any{{"item_id": itemID, "expected_price_cents": 4000}},
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	var body errorBody
	decode(t, rec, &body)
	assert.Equal(t, "price_mismatch", body.Reason)
}
