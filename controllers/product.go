package controllers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"go-storefront/middleware"
	"go-storefront/models"
	"go-storefront/services"
)

// ProductController handles product-related requests
type ProductController struct {
	catalog *services.CatalogService
}

// NewProductController creates a new ProductController
func NewProductController(catalog *services.CatalogService) *ProductController {
	return &ProductController{catalog: catalog}
}

// parseProductFilter reads the catalog query string. A rating of "all" or a
// non-numeric rating is ignored.
func parseProductFilter(q url.Values) (models.ProductFilter, bool) {
	f := models.ProductFilter{
		Search: strings.TrimSpace(q.Get("q")),
		Sort:   q.Get("sort"),
	}
	if cats := q.Get("categories"); cats != "" {
		for _, c := range strings.Split(cats, ",") {
			if c = strings.TrimSpace(c); c != "" {
				f.CategoryIDs = append(f.CategoryIDs, c)
			}
		}
	}
	for key, dst := range map[string]**decimal.Decimal{"minPrice": &f.MinPrice, "maxPrice": &f.MaxPrice} {
		v := q.Get(key)
		if v == "" {
			continue
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			return f, false
		}
		*dst = &d
	}
	if v := q.Get("rating"); v != "" && v != "all" {
		if rating, err := strconv.ParseFloat(v, 64); err == nil {
			f.MinRating = &rating
		}
	}
	return f, true
}

// GetProducts lists the catalog with optional filters and sort
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	filter, ok := parseProductFilter(r.URL.Query())
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Invalid price filter"})
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	products, err := pc.catalog.ListProducts(ctx, filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// GetProductByID retrieves a product by ID
func (pc *ProductController) GetProductByID(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	product, err := pc.catalog.GetProduct(ctx, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// CreateProduct handles adding a new product (Admin only)
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if !decodeJSON(r, &product) {
		invalidInput(w)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	if err := pc.catalog.CreateProduct(ctx, &product); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// UpdateProduct updates an existing product (Admin only)
func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if !decodeJSON(r, &product) {
		invalidInput(w)
		return
	}
	product.ID = mux.Vars(r)["id"]

	ctx, cancel := requestContext(r)
	defer cancel()
	if err := pc.catalog.UpdateProduct(ctx, &product); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// DeleteProduct deletes a product (Admin only)
func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	if err := pc.catalog.DeleteProduct(ctx, mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Product deleted successfully"})
}

// GetCategories lists categories by name
func (pc *ProductController) GetCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestContext(r)
	defer cancel()
	categories, err := pc.catalog.ListCategories(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// CreateCategory adds a category (Admin only)
func (pc *ProductController) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var category models.Category
	if !decodeJSON(r, &category) {
		invalidInput(w)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	if err := pc.catalog.CreateCategory(ctx, &category); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

// UpdateProductImages replaces a product's ordered image list
func (pc *ProductController) UpdateProductImages(w http.ResponseWriter, r *http.Request) {
	var body struct {
		URLs []string `json:"urls"`
	}
	if !decodeJSON(r, &body) {
		invalidInput(w)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	product, err := pc.catalog.UpdateImages(ctx, middleware.IdentityFrom(r.Context()), mux.Vars(r)["id"], body.URLs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// DeleteProductImage removes one image from a product
func (pc *ProductController) DeleteProductImage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		URL string `json:"url"`
	}
	if !decodeJSON(r, &body) || body.URL == "" {
		invalidInput(w)
		return
	}

	ctx, cancel := requestContext(r)
	defer cancel()
	product, err := pc.catalog.DeleteImage(ctx, middleware.IdentityFrom(r.Context()), mux.Vars(r)["id"], body.URL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}
