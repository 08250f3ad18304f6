package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"go-storefront/middleware"
	"go-storefront/services"
)

// WishlistController handles wishlist requests
type WishlistController struct {
	wishlist *services.WishlistService
}

// NewWishlistController creates a new WishlistController
func NewWishlistController(wishlist *services.WishlistService) *WishlistController {
	return &WishlistController{wishlist: wishlist}
}

func (wc *WishlistController) GetWishlist(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFrom(r.Context())
	if id == nil {
		unauthorized(w)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	items, err := wc.wishlist.List(ctx, id.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (wc *WishlistController) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFrom(r.Context())
	if id == nil {
		unauthorized(w)
		return
	}
	var body struct {
		ProductID string `json:"productId"`
	}
	if !decodeJSON(r, &body) {
		invalidInput(w)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	if err := wc.wishlist.Add(ctx, id, body.ProductID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Added to wishlist"})
}

func (wc *WishlistController) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFrom(r.Context())
	if id == nil {
		unauthorized(w)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	if err := wc.wishlist.Remove(ctx, id.UserID, mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Removed from wishlist"})
}

// MoveToCart moves a wishlist item into the cart
func (wc *WishlistController) MoveToCart(w http.ResponseWriter, r *http.Request) {
	id := middleware.IdentityFrom(r.Context())
	if id == nil {
		unauthorized(w)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	res, err := wc.wishlist.MoveToCart(ctx, id, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, res.Status(), res)
}
