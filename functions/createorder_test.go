package functions

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-storefront/middleware"
	"go-storefront/models"
	"go-storefront/services"
	"go-storefront/store"
	"go-storefront/utils"
)

type fixture struct {
	st      *store.Memory
	handler *CreateOrderHandler
	tokens  *utils.TokenIssuer
	product *models.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := store.NewMemory()
	tokens := utils.NewTokenIssuer("secret", time.Hour)
	cart := services.NewCartService(st, services.DefaultPricing)
	orders := services.NewOrderService(st, cart, nil, services.OrderOptions{})
	p := &models.Product{Name: "Lamp", Price: decimal.RequireFromString("10")}
	require.NoError(t, st.CreateProduct(context.Background(), p))
	return &fixture{
		st:      st,
		handler: NewCreateOrderHandler(middleware.NewAuth(tokens, "service-key"), orders),
		tokens:  tokens,
		product: p,
	}
}

func (f *fixture) body(t *testing.T, userID, requestID string) string {
	t.Helper()
	b, err := json.Marshal(services.CreateOrderRequest{
		UserID:          userID,
		Total:           decimal.RequireFromString("11"),
		ShippingAddress: &models.ShippingAddress{Name: "Ada", Address: "1 Way", City: "London", Country: "UK"},
		PaymentMethod:   models.PaymentMethodPayPal,
		CartItems:       []services.OrderLine{{ProductID: f.product.ID, Quantity: 1, Price: f.product.Price}},
		RequestID:       requestID,
	})
	require.NoError(t, err)
	return string(b)
}

func post(body, auth string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Headers:    map[string]string{"authorization": auth},
		Body:       body,
	}
}

func decodeBody(t *testing.T, resp events.APIGatewayProxyResponse) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &out))
	return out
}

func TestOptionsPreflight(t *testing.T) {
	f := newFixture(t)
	resp, err := f.handler.HandleRequest(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: http.MethodOptions})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", resp.Body)
	assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
	assert.Contains(t, resp.Headers["Access-Control-Allow-Headers"], "authorization")
}

func TestServiceKeyCreatesOrder(t *testing.T) {
	f := newFixture(t)

	resp, err := f.handler.HandleRequest(context.Background(), post(f.body(t, "u1", ""), "Bearer service-key"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	out := decodeBody(t, resp)
	assert.Equal(t, true, out["success"])
	orderID, _ := out["orderId"].(string)
	require.NotEmpty(t, orderID)

	items, err := f.st.ListOrderItems(context.Background(), orderID)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestUserSessionMustMatchUserID(t *testing.T) {
	f := newFixture(t)
	session, err := f.tokens.Issue("u1", "u1@example.com", models.RoleCustomer)
	require.NoError(t, err)

	resp, err := f.handler.HandleRequest(context.Background(), post(f.body(t, "u2", ""), "Bearer "+session))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, err = f.handler.HandleRequest(context.Background(), post(f.body(t, "u1", ""), "Bearer "+session))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRejectsMissingOrBadCredentials(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.handler.HandleRequest(context.Background(), post(f.body(t, "u1", ""), ""))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = f.handler.HandleRequest(context.Background(), post(f.body(t, "u1", ""), "Bearer nope"))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req := post(f.body(t, "u1", ""), "Bearer service-key")
	req.HTTPMethod = http.MethodGet
	resp, _ = f.handler.HandleRequest(context.Background(), req)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestBase64BodyAndValidation(t *testing.T) {
	f := newFixture(t)

	req := post(base64.StdEncoding.EncodeToString([]byte(f.body(t, "u1", ""))), "Bearer service-key")
	req.IsBase64Encoded = true
	resp, _ := f.handler.HandleRequest(context.Background(), req)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = f.handler.HandleRequest(context.Background(), post(`{"userId":"u1"}`, "Bearer service-key"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Missing required fields", decodeBody(t, resp)["error"])

	resp, _ = f.handler.HandleRequest(context.Background(), post(`{`, "Bearer service-key"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestItemsFailureReportsOrderID(t *testing.T) {
	f := newFixture(t)
	f.st.SetFault("InsertOrderItems", errors.New("disk full"))

	resp, _ := f.handler.HandleRequest(context.Background(), post(f.body(t, "u1", ""), "Bearer service-key"))

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	out := decodeBody(t, resp)
	assert.Equal(t, "Failed to create order items", out["error"])
	assert.NotEmpty(t, out["orderId"])
}

func TestDuplicateRequestIsConflict(t *testing.T) {
	f := newFixture(t)
	body := f.body(t, "u1", "req-1")

	first, _ := f.handler.HandleRequest(context.Background(), post(body, "Bearer service-key"))
	require.Equal(t, http.StatusOK, first.StatusCode)

	second, _ := f.handler.HandleRequest(context.Background(), post(body, "Bearer service-key"))
	assert.Equal(t, http.StatusConflict, second.StatusCode)
	assert.Equal(t, decodeBody(t, first)["orderId"], decodeBody(t, second)["orderId"])
}
