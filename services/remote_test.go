package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-storefront/models"
)

func remoteRequest() CreateOrderRequest {
	return CreateOrderRequest{
		UserID:          "u1",
		Total:           decimal.RequireFromString("11"),
		ShippingAddress: shippingAddress(),
		PaymentMethod:   models.PaymentMethodPayPal,
		CartItems:       []OrderLine{{ProductID: "p1", Quantity: 1, Price: decimal.RequireFromString("10")}},
	}
}

func TestRemoteOrderCreatorSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))
		var req CreateOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "u1", req.UserID)
		assert.Equal(t, "11", req.Total.String())
		json.NewEncoder(w).Encode(map[string]any{"success": true, "orderId": "o-1"})
	}))
	defer srv.Close()

	res, err := NewRemoteOrderCreator(srv.URL, "service-key").CreateOrder(context.Background(), remoteRequest())
	require.NoError(t, err)
	assert.Equal(t, "o-1", res.OrderID)
}

func TestRemoteOrderCreatorErrors(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		orderID string
		kind    Kind
	}{
		{"validation", http.StatusBadRequest, "", KindValidation},
		{"forbidden", http.StatusForbidden, "", KindAuthorization},
		{"duplicate", http.StatusConflict, "o-9", KindDuplicateRequest},
		{"header failed", http.StatusInternalServerError, "", KindOrderInsertFailed},
		{"items failed", http.StatusInternalServerError, "o-7", KindOrderItemsInsertFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				json.NewEncoder(w).Encode(map[string]any{"error": "boom", "orderId": tc.orderID})
			}))
			defer srv.Close()

			_, err := NewRemoteOrderCreator(srv.URL, "k").CreateOrder(context.Background(), remoteRequest())
			var se *Error
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tc.kind, se.Kind)
			assert.Equal(t, tc.orderID, se.OrderID)
			assert.Equal(t, "boom", se.Message)
		})
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusFor(KindValidation))
	assert.Equal(t, http.StatusUnauthorized, StatusFor(KindAuthenticationRequired))
	assert.Equal(t, http.StatusForbidden, StatusFor(KindAuthorization))
	assert.Equal(t, http.StatusNotFound, StatusFor(KindNotFound))
	assert.Equal(t, http.StatusConflict, StatusFor(KindDuplicateRequest))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(KindOrderInsertFailed))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(KindOrderItemsInsertFailed))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(KindInternal))
}

func TestErrorIsMatchesKind(t *testing.T) {
	err := notFound("Product not found")
	assert.ErrorIs(t, err, &Error{Kind: KindNotFound})
	assert.NotErrorIs(t, err, &Error{Kind: KindValidation})
	assert.Equal(t, KindInternal, KindOf(assert.AnError))
}
