// Package functions holds the serverless entry points that run beside the
// HTTP server.
package functions

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"go-storefront/services"
)

var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "authorization, x-client-info, apikey, content-type",
	"Content-Type":                 "application/json",
}

// Identifier resolves a bearer token; middleware.Auth satisfies it.
type Identifier interface {
	Identify(token string, allowService bool) *services.Identity
}

// CreateOrderHandler serves the create-order contract behind API Gateway.
type CreateOrderHandler struct {
	auth   Identifier
	orders services.OrderCreator
}

// NewCreateOrderHandler creates a new CreateOrderHandler
func NewCreateOrderHandler(auth Identifier, orders services.OrderCreator) *CreateOrderHandler {
	return &CreateOrderHandler{auth: auth, orders: orders}
}

// HandleRequest accepts the service key or a session for the same user.
func (h *CreateOrderHandler) HandleRequest(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if request.HTTPMethod == http.MethodOptions {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusOK, Headers: corsHeaders, Body: "ok"}, nil
	}
	if request.HTTPMethod != http.MethodPost {
		return errorResponse(http.StatusMethodNotAllowed, "Method not allowed", ""), nil
	}

	token := bearer(request.Headers)
	if token == "" {
		return errorResponse(http.StatusUnauthorized, "Authorization header missing", ""), nil
	}
	id := h.auth.Identify(token, true)
	if id == nil {
		return errorResponse(http.StatusUnauthorized, "Invalid token", ""), nil
	}

	body := request.Body
	if request.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return errorResponse(http.StatusBadRequest, "Invalid request body", ""), nil
		}
		body = string(decoded)
	}
	var req services.CreateOrderRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return errorResponse(http.StatusBadRequest, "Invalid request body", ""), nil
	}
	if !id.CanActFor(req.UserID) {
		return errorResponse(http.StatusForbidden, "Cannot create orders for another user", ""), nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	res, err := h.orders.CreateOrder(ctx, req)
	if err != nil {
		log.Printf("create-order function: %v", err)
		msg, orderID := "Failed to create order", ""
		var se *services.Error
		if errors.As(err, &se) {
			msg, orderID = se.Message, se.OrderID
		}
		return errorResponse(services.StatusFor(services.KindOf(err)), msg, orderID), nil
	}
	return successResponse(http.StatusOK, res), nil
}

func bearer(headers map[string]string) string {
	value := headers["Authorization"]
	if value == "" {
		value = headers["authorization"]
	}
	token, ok := strings.CutPrefix(value, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

func successResponse(statusCode int, res *services.CreateOrderResult) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(res)
	return events.APIGatewayProxyResponse{StatusCode: statusCode, Headers: corsHeaders, Body: string(body)}
}

func errorResponse(statusCode int, message, orderID string) events.APIGatewayProxyResponse {
	payload := map[string]any{"error": message}
	if orderID != "" {
		payload["orderId"] = orderID
	}
	body, _ := json.Marshal(payload)
	return events.APIGatewayProxyResponse{StatusCode: statusCode, Headers: corsHeaders, Body: string(body)}
}
