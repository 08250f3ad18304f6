package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"go-storefront/middleware"
	"go-storefront/services"
)

// OrderController handles order-related requests
type OrderController struct {
	orders *services.OrderService
}

// NewOrderController creates a new OrderController
func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{orders: orders}
}

// CreateOrder is the privileged create-order endpoint. Service callers may
// order for any user; a signed-in user only for themselves.
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req services.CreateOrderRequest
	if !decodeJSON(r, &req) {
		invalidInput(w)
		return
	}
	id := middleware.IdentityFrom(r.Context())
	if req.UserID != "" && !id.CanActFor(req.UserID) {
		writeJSON(w, http.StatusForbidden, errorBody{Error: "Cannot create orders for another user"})
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	res, err := oc.orders.CreateOrder(ctx, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Checkout places an order from the caller's cart at current prices
func (oc *OrderController) Checkout(w http.ResponseWriter, r *http.Request) {
	var in services.CheckoutInput
	if !decodeJSON(r, &in) {
		invalidInput(w)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	res, err := oc.orders.Checkout(ctx, middleware.IdentityFrom(r.Context()), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// GetOrders retrieves the caller's orders
func (oc *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFrom(r.Context())
	if id == nil {
		unauthorized(w)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	orders, err := oc.orders.ListOrders(ctx, id.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// GetOrder retrieves one order with its items
func (oc *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	order, err := oc.orders.GetOrder(ctx, middleware.IdentityFrom(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// GetAllOrders lists every order (Admin only)
func (oc *OrderController) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	orders, err := oc.orders.ListAllOrders(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

// UpdateOrderStatus sets an order's status (Admin only)
func (oc *OrderController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if !decodeJSON(r, &body) {
		invalidInput(w)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	if err := oc.orders.UpdateStatus(ctx, mux.Vars(r)["id"], body.Status); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Order status updated"})
}
