package services

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/shopspring/decimal"

	"go-storefront/models"
	"go-storefront/store"
)

// LoginRedirect is where anonymous shoppers are sent when they try to add to cart.
const LoginRedirect = "/auth/login?redirect=/products"

// CartResult is the tagged outcome of AddToCart. It never carries an error.
type CartResult struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	RequiresAuth bool   `json:"requiresAuth,omitempty"`
	RedirectURL  string `json:"redirectUrl,omitempty"`

	kind Kind
}

// Status is the HTTP status a handler should answer with.
func (r CartResult) Status() int {
	if r.Success {
		return http.StatusOK
	}
	return StatusFor(r.kind)
}

// Pricing holds the checkout charges applied on top of the cart subtotal.
type Pricing struct {
	TaxRate  decimal.Decimal
	Shipping decimal.Decimal
}

// DefaultPricing is 10% tax and free shipping.
var DefaultPricing = Pricing{TaxRate: decimal.RequireFromString("0.10"), Shipping: decimal.Zero}

// Quote is the priced view of a cart.
type Quote struct {
	Items    []models.CartItem `json:"items"`
	Subtotal decimal.Decimal   `json:"subtotal"`
	Tax      decimal.Decimal   `json:"tax"`
	Shipping decimal.Decimal   `json:"shipping"`
	Total    decimal.Decimal   `json:"total"`
}

// ComputeQuote prices cart lines with their joined products. Lines without a
// product are skipped.
func ComputeQuote(items []models.CartItem, pricing Pricing) Quote {
	q := Quote{Items: []models.CartItem{}, Subtotal: decimal.Zero}
	for _, item := range items {
		if item.Product == nil {
			continue
		}
		q.Items = append(q.Items, item)
		q.Subtotal = q.Subtotal.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	q.Tax = q.Subtotal.Mul(pricing.TaxRate).Round(2)
	q.Shipping = pricing.Shipping
	q.Total = q.Subtotal.Add(q.Tax).Add(q.Shipping)
	return q
}

// CartService owns cart rows and the per-user cart count cache.
type CartService struct {
	store   store.Store
	pricing Pricing
	counts  countCache
}

// countCache holds cart line counts per user. Every invalidation bumps the
// user's generation; a count read before the bump is never stored.
type countCache struct {
	mu      sync.Mutex
	entries map[string]countEntry
}

type countEntry struct {
	gen    uint64
	n      int64
	cached bool
}

func (c *countCache) load(userID string) (n int64, gen uint64, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.entries[userID]
	return e.n, e.gen, e.cached
}

func (c *countCache) store(userID string, gen uint64, n int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = make(map[string]countEntry)
	}
	if e := c.entries[userID]; e.gen == gen {
		c.entries[userID] = countEntry{gen: gen, n: n, cached: true}
	}
}

func (c *countCache) invalidate(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = make(map[string]countEntry)
	}
	c.entries[userID] = countEntry{gen: c.entries[userID].gen + 1}
}

// NewCartService creates a new CartService
func NewCartService(st store.Store, pricing Pricing) *CartService {
	return &CartService{store: st, pricing: pricing}
}

// EnsureUser returns the user row for id, creating it with the customer role
// when the identity has no row yet.
func (s *CartService) EnsureUser(ctx context.Context, id *Identity) (*models.User, error) {
	return ensureUser(ctx, s.store, id)
}

func ensureUser(ctx context.Context, st store.Store, id *Identity) (*models.User, error) {
	user, err := st.GetUser(ctx, id.UserID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	user = &models.User{ID: id.UserID, Email: id.Email, Role: models.RoleCustomer}
	if err := st.CreateUser(ctx, user); err != nil {
		// Lost a race with a concurrent request for the same identity.
		if errors.Is(err, store.ErrDuplicate) {
			return st.GetUser(ctx, id.UserID)
		}
		return nil, err
	}
	log.Printf("created user row for %s", id.UserID)
	return user, nil
}

// AddToCart adds quantity of productID to the caller's cart.
func (s *CartService) AddToCart(ctx context.Context, id *Identity, productID string, quantity int) CartResult {
	if productID == "" {
		return CartResult{Message: "Invalid product ID", kind: KindValidation}
	}
	if id == nil || id.UserID == "" {
		return CartResult{
			Message:      "Please sign in to add items to your cart",
			RequiresAuth: true,
			RedirectURL:  LoginRedirect,
			kind:         KindAuthenticationRequired,
		}
	}
	if quantity < 1 {
		quantity = 1
	}

	if _, err := s.EnsureUser(ctx, id); err != nil {
		log.Printf("add to cart: ensure user %s: %v", id.UserID, err)
		return CartResult{Message: "Failed to verify user account"}
	}

	if _, err := s.store.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return CartResult{Message: "Product not found", kind: KindNotFound}
		}
		log.Printf("add to cart: get product %s: %v", productID, err)
		return CartResult{Message: "Failed to add item to cart"}
	}

	if _, err := s.store.IncrementCartItem(ctx, id.UserID, productID, quantity); err != nil {
		log.Printf("add to cart: increment %s/%s: %v", id.UserID, productID, err)
		return CartResult{Message: "Failed to add item to cart"}
	}
	s.Invalidate(id.UserID)
	return CartResult{Success: true, Message: "Item added to cart"}
}

// GetCart lists the user's cart lines joined with their products.
func (s *CartService) GetCart(ctx context.Context, userID string) ([]models.CartItem, error) {
	items, err := s.store.ListCartItems(ctx, userID)
	if err != nil {
		return nil, internal("failed to load cart", err)
	}
	if items == nil {
		items = []models.CartItem{}
	}
	for i := range items {
		product, err := s.store.GetProduct(ctx, items[i].ProductID)
		switch {
		case err == nil:
			items[i].Product = product
		case errors.Is(err, store.ErrNotFound):
			// product deleted after it was carted; the line stays without a product
		default:
			return nil, internal("failed to load cart", err)
		}
	}
	return items, nil
}

// UpdateQuantity sets the quantity of one of the user's cart lines.
func (s *CartService) UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) error {
	if quantity < 1 {
		return validationError("Quantity must be at least 1")
	}
	if err := s.store.SetCartItemQuantity(ctx, userID, itemID, quantity); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound("Cart item not found")
		}
		return internal("failed to update cart item", err)
	}
	s.Invalidate(userID)
	return nil
}

// Remove deletes one of the user's cart lines.
func (s *CartService) Remove(ctx context.Context, userID, itemID string) error {
	if err := s.store.DeleteCartItem(ctx, userID, itemID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound("Cart item not found")
		}
		return internal("failed to remove cart item", err)
	}
	s.Invalidate(userID)
	return nil
}

// Count returns the number of lines in the caller's cart, 0 without a session.
func (s *CartService) Count(ctx context.Context, id *Identity) int64 {
	if id == nil || id.UserID == "" {
		return 0
	}
	n, gen, ok := s.counts.load(id.UserID)
	if ok {
		return n
	}
	if _, err := s.store.GetUser(ctx, id.UserID); err != nil {
		return 0
	}
	n, err := s.store.CountCartItems(ctx, id.UserID)
	if err != nil {
		log.Printf("cart count for %s: %v", id.UserID, err)
		return 0
	}
	s.counts.store(id.UserID, gen, n)
	return n
}

// Invalidate drops cached views of the user's cart.
func (s *CartService) Invalidate(userID string) {
	s.counts.invalidate(userID)
}

// Quote prices the user's current cart with live product prices.
func (s *CartService) Quote(ctx context.Context, userID string) (*Quote, error) {
	items, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	q := ComputeQuote(items, s.pricing)
	return &q, nil
}
