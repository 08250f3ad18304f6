package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-storefront/middleware"
	"go-storefront/models"
	"go-storefront/services"
	"go-storefront/store"
)

func TestParseProductFilter(t *testing.T) {
	q := url.Values{}
	q.Set("q", "  lamp ")
	q.Set("categories", "a, b,,")
	q.Set("minPrice", "5")
	q.Set("maxPrice", "20.50")
	q.Set("rating", "4")
	q.Set("sort", "price-high")

	f, ok := parseProductFilter(q)
	require.True(t, ok)
	assert.Equal(t, "lamp", f.Search)
	assert.Equal(t, []string{"a", "b"}, f.CategoryIDs)
	require.NotNil(t, f.MinPrice)
	assert.True(t, f.MinPrice.Equal(decimal.NewFromInt(5)))
	require.NotNil(t, f.MaxPrice)
	assert.Equal(t, "20.5", f.MaxPrice.String())
	require.NotNil(t, f.MinRating)
	assert.Equal(t, 4.0, *f.MinRating)
	assert.Equal(t, "price-high", f.Sort)
}

func TestParseProductFilterIgnoresRatingAll(t *testing.T) {
	for _, rating := range []string{"all", "lots", ""} {
		f, ok := parseProductFilter(url.Values{"rating": {rating}})
		require.True(t, ok)
		assert.Nil(t, f.MinRating, rating)
	}

	_, ok := parseProductFilter(url.Values{"maxPrice": {"cheap"}})
	assert.False(t, ok)
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   errorBody
	}{
		{"validation", &services.Error{Kind: services.KindValidation, Message: "Bad"}, http.StatusBadRequest, errorBody{Error: "Bad"}},
		{"auth", &services.Error{Kind: services.KindAuthenticationRequired, Message: "Sign in", RedirectURL: "/login"}, http.StatusUnauthorized, errorBody{Error: "Sign in", RedirectURL: "/login"}},
		{"forbidden", &services.Error{Kind: services.KindAuthorization, Message: "No"}, http.StatusForbidden, errorBody{Error: "No"}},
		{"not found", &services.Error{Kind: services.KindNotFound, Message: "Gone"}, http.StatusNotFound, errorBody{Error: "Gone"}},
		{"items", &services.Error{Kind: services.KindOrderItemsInsertFailed, Message: "Failed", OrderID: "o1"}, http.StatusInternalServerError, errorBody{Error: "Failed", OrderID: "o1"}},
		{"duplicate", &services.Error{Kind: services.KindDuplicateRequest, Message: "Dup", OrderID: "o2"}, http.StatusConflict, errorBody{Error: "Dup", OrderID: "o2"}},
		{"foreign", errors.New("boom"), http.StatusInternalServerError, errorBody{Error: "Internal server error"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			writeError(rr, tt.err)
			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var got errorBody
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
			assert.Equal(t, tt.body, got)
		})
	}
}

func withIdentity(r *http.Request, userID, role string) *http.Request {
	return r.WithContext(middleware.WithIdentity(r.Context(), &services.Identity{UserID: userID, Role: role}))
}

func newCart(t *testing.T) (*CartController, *store.Memory, *models.Product) {
	t.Helper()
	st := store.NewMemory()
	p := &models.Product{Name: "Lamp", Price: decimal.NewFromInt(10)}
	require.NoError(t, st.CreateProduct(context.Background(), p))
	return NewCartController(services.NewCartService(st, services.DefaultPricing)), st, p
}

func TestAddToCartDefaultsQuantity(t *testing.T) {
	cc, st, p := newCart(t)

	req := httptest.NewRequest(http.MethodPost, "/cart", bytes.NewBufferString(`{"productId":"`+p.ID+`"}`))
	rr := httptest.NewRecorder()
	cc.AddToCart(rr, withIdentity(req, "u1", models.RoleCustomer))

	assert.Equal(t, http.StatusOK, rr.Code)
	items, err := st.ListCartItems(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Quantity)
}

func TestAddToCartRejectsBadJSON(t *testing.T) {
	cc, _, _ := newCart(t)
	rr := httptest.NewRecorder()
	cc.AddToCart(rr, httptest.NewRequest(http.MethodPost, "/cart", bytes.NewBufferString(`{`)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdateCartItem(t *testing.T) {
	cc, st, p := newCart(t)
	line, err := st.IncrementCartItem(context.Background(), "u1", p.ID, 1)
	require.NoError(t, err)

	update := func(userID, itemID, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, "/cart/"+itemID, bytes.NewBufferString(body))
		req = mux.SetURLVars(req, map[string]string{"id": itemID})
		rr := httptest.NewRecorder()
		cc.UpdateCartItem(rr, withIdentity(req, userID, models.RoleCustomer))
		return rr
	}

	assert.Equal(t, http.StatusOK, update("u1", line.ID, `{"quantity":4}`).Code)
	items, err := st.ListCartItems(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, items[0].Quantity)

	assert.Equal(t, http.StatusBadRequest, update("u1", line.ID, `{"quantity":0}`).Code)
	assert.Equal(t, http.StatusNotFound, update("u2", line.ID, `{"quantity":2}`).Code)
	assert.Equal(t, http.StatusNotFound, update("u1", "missing", `{"quantity":2}`).Code)
}

func TestCartHandlersRequireIdentity(t *testing.T) {
	cc, _, _ := newCart(t)
	for name, h := range map[string]http.HandlerFunc{
		"get":    cc.GetCart,
		"quote":  cc.GetQuote,
		"update": cc.UpdateCartItem,
		"remove": cc.RemoveFromCart,
	} {
		rr := httptest.NewRecorder()
		h(rr, httptest.NewRequest(http.MethodGet, "/cart", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code, name)
	}
}

func TestGetCartCountAnonymous(t *testing.T) {
	cc, _, _ := newCart(t)
	rr := httptest.NewRecorder()
	cc.GetCartCount(rr, httptest.NewRequest(http.MethodGet, "/cart/count", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"count":0}`, rr.Body.String())
}

func TestGetProductByIDNotFound(t *testing.T) {
	pc := NewProductController(services.NewCatalogService(store.NewMemory(), nil))
	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/products/x", nil), map[string]string{"id": "x"})
	rr := httptest.NewRecorder()
	pc.GetProductByID(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestMetricsWithoutCollector(t *testing.T) {
	ac := NewAdminController(services.NewAdminService(store.NewMemory()), nil)
	rr := httptest.NewRecorder()
	ac.GetMetrics(rr, httptest.NewRequest(http.MethodGet, "/admin/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}
