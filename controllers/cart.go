package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"go-storefront/middleware"
	"go-storefront/services"
)

// CartController handles cart-related requests
type CartController struct {
	cart *services.CartService
}

// NewCartController creates a new CartController
func NewCartController(cart *services.CartService) *CartController {
	return &CartController{cart: cart}
}

// AddToCart adds a product to the caller's cart. Anonymous callers get a
// tagged result pointing at the login page.
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	if !decodeJSON(r, &body) {
		invalidInput(w)
		return
	}
	if body.Quantity == 0 {
		body.Quantity = 1
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	res := cc.cart.AddToCart(ctx, middleware.IdentityFrom(r.Context()), body.ProductID, body.Quantity)
	writeJSON(w, res.Status(), res)
}

// GetCart retrieves the user's cart lines with their products
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFrom(r.Context())
	if id == nil {
		unauthorized(w)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	items, err := cc.cart.GetCart(ctx, id.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// UpdateCartItem sets the quantity of a cart line
func (cc *CartController) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFrom(r.Context())
	if id == nil {
		unauthorized(w)
		return
	}
	var body struct {
		Quantity int `json:"quantity"`
	}
	if !decodeJSON(r, &body) {
		invalidInput(w)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	if err := cc.cart.UpdateQuantity(ctx, id.UserID, mux.Vars(r)["id"], body.Quantity); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Cart updated"})
}

// RemoveFromCart removes a line from the user's cart
func (cc *CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFrom(r.Context())
	if id == nil {
		unauthorized(w)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	if err := cc.cart.Remove(ctx, id.UserID, mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Item removed from cart"})
}

// GetCartCount returns the number of cart lines, 0 for anonymous callers
func (cc *CartController) GetCartCount(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	n := cc.cart.Count(ctx, middleware.IdentityFrom(r.Context()))
	writeJSON(w, http.StatusOK, map[string]int64{"count": n})
}

// GetQuote prices the current cart
func (cc *CartController) GetQuote(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFrom(r.Context())
	if id == nil {
		unauthorized(w)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	quote, err := cc.cart.Quote(ctx, id.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}
