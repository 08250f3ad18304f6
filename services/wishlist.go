package services

import (
	"context"
	"errors"

	"go-storefront/models"
	"go-storefront/store"
)

// WishlistService handles saved-for-later products.
type WishlistService struct {
	store store.Store
	cart  *CartService
}

// NewWishlistService creates a new WishlistService
func NewWishlistService(st store.Store, cart *CartService) *WishlistService {
	return &WishlistService{store: st, cart: cart}
}

// List returns the user's wishlist joined with products.
func (s *WishlistService) List(ctx context.Context, userID string) ([]models.WishlistItem, error) {
	items, err := s.store.ListWishlistItems(ctx, userID)
	if err != nil {
		return nil, internal("failed to load wishlist", err)
	}
	out := make([]models.WishlistItem, 0, len(items))
	for _, item := range items {
		if product, err := s.store.GetProduct(ctx, item.ProductID); err == nil {
			item.Product = product
		}
		out = append(out, item)
	}
	return out, nil
}

// Add saves productID for the caller. Adding a product twice is a no-op.
func (s *WishlistService) Add(ctx context.Context, id *Identity, productID string) error {
	if productID == "" {
		return validationError("Invalid product ID")
	}
	if _, err := s.cart.EnsureUser(ctx, id); err != nil {
		return internal("failed to verify user account", err)
	}
	if _, err := s.store.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound("Product not found")
		}
		return internal("failed to load product", err)
	}
	err := s.store.AddWishlistItem(ctx, &models.WishlistItem{UserID: id.UserID, ProductID: productID})
	if err != nil && !errors.Is(err, store.ErrDuplicate) {
		return internal("failed to add to wishlist", err)
	}
	return nil
}

// Remove deletes one wishlist row.
func (s *WishlistService) Remove(ctx context.Context, userID, itemID string) error {
	if err := s.store.DeleteWishlistItem(ctx, userID, itemID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound("Wishlist item not found")
		}
		return internal("failed to remove wishlist item", err)
	}
	return nil
}

// MoveToCart adds one unit of the saved product to the cart and removes the
// wishlist row.
func (s *WishlistService) MoveToCart(ctx context.Context, id *Identity, itemID string) (CartResult, error) {
	item, err := s.store.GetWishlistItem(ctx, id.UserID, itemID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return CartResult{}, notFound("Wishlist item not found")
		}
		return CartResult{}, internal("failed to load wishlist item", err)
	}

	res := s.cart.AddToCart(ctx, id, item.ProductID, 1)
	if !res.Success {
		return res, nil
	}
	if err := s.Remove(ctx, id.UserID, itemID); err != nil {
		return res, err
	}
	return res, nil
}
