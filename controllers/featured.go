package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"go-storefront/services"
)

// FeaturedController handles the home page featured product list
type FeaturedController struct {
	featured *services.FeaturedService
}

// NewFeaturedController creates a new FeaturedController
func NewFeaturedController(featured *services.FeaturedService) *FeaturedController {
	return &FeaturedController{featured: featured}
}

// GetFeatured lists featured products in position order
func (fc *FeaturedController) GetFeatured(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	items, err := fc.featured.List(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// AddFeatured appends a product to the list (Admin only)
func (fc *FeaturedController) AddFeatured(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductID string `json:"productId"`
	}
	if !decodeJSON(r, &body) {
		invalidInput(w)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	item, err := fc.featured.Add(ctx, body.ProductID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// RemoveFeatured deletes a featured row (Admin only)
func (fc *FeaturedController) RemoveFeatured(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	if err := fc.featured.Remove(ctx, mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Featured product removed"})
}

// MoveFeatured swaps a row with its neighbour (Admin only)
func (fc *FeaturedController) MoveFeatured(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Direction string `json:"direction"`
	}
	if !decodeJSON(r, &body) {
		invalidInput(w)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	if err := fc.featured.Move(ctx, mux.Vars(r)["id"], body.Direction); err != nil {
		writeError(w, err)
		return
	}
	items, err := fc.featured.List(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// ReindexFeatured rewrites positions as 0..N-1 (Admin only)
func (fc *FeaturedController) ReindexFeatured(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	if err := fc.featured.Reindex(ctx); err != nil {
		writeError(w, err)
		return
	}
	items, err := fc.featured.List(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}
