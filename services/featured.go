package services

import (
	"context"
	"errors"

	"go-storefront/models"
	"go-storefront/store"
)

// Move directions
const (
	DirectionUp   = "up"
	DirectionDown = "down"
)

// FeaturedService manages the ordered featured product list.
type FeaturedService struct {
	store store.Store
}

// NewFeaturedService creates a new FeaturedService
func NewFeaturedService(st store.Store) *FeaturedService {
	return &FeaturedService{store: st}
}

// List returns featured rows in position order joined with their products.
// Rows whose product no longer exists are left out.
func (s *FeaturedService) List(ctx context.Context) ([]models.FeaturedProduct, error) {
	items, err := s.store.ListFeatured(ctx)
	if err != nil {
		return nil, internal("failed to load featured products", err)
	}
	out := make([]models.FeaturedProduct, 0, len(items))
	for _, item := range items {
		product, err := s.store.GetProduct(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, internal("failed to load featured products", err)
		}
		item.Product = product
		out = append(out, item)
	}
	return out, nil
}

// Add appends productID after the current last position.
func (s *FeaturedService) Add(ctx context.Context, productID string) (*models.FeaturedProduct, error) {
	if productID == "" {
		return nil, validationError("Invalid product ID")
	}
	if _, err := s.store.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("Product not found")
		}
		return nil, internal("failed to load product", err)
	}

	items, err := s.store.ListFeatured(ctx)
	if err != nil {
		return nil, internal("failed to load featured products", err)
	}
	position := 0
	for _, item := range items {
		if item.Position >= position {
			position = item.Position + 1
		}
	}

	item := &models.FeaturedProduct{ProductID: productID, Position: position}
	if err := s.store.AddFeatured(ctx, item); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, validationError("Product is already featured")
		}
		return nil, internal("failed to add featured product", err)
	}
	return item, nil
}

// Remove deletes a featured row and closes the gap it leaves.
func (s *FeaturedService) Remove(ctx context.Context, id string) error {
	if err := s.store.DeleteFeatured(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return notFound("Featured product not found")
		}
		return internal("failed to remove featured product", err)
	}
	return s.Reindex(ctx)
}

// Move swaps the row with its neighbour in direction. Moving the first row
// up or the last row down does nothing.
func (s *FeaturedService) Move(ctx context.Context, id, direction string) error {
	var step int
	switch direction {
	case DirectionUp:
		step = -1
	case DirectionDown:
		step = 1
	default:
		return validationError("Direction must be up or down")
	}

	items, err := s.store.ListFeatured(ctx)
	if err != nil {
		return internal("failed to load featured products", err)
	}
	index := -1
	for i, item := range items {
		if item.ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		return notFound("Featured product not found")
	}
	target := index + step
	if target < 0 || target >= len(items) {
		return nil
	}

	current, swap := items[index], items[target]
	// Equal positions (left by a crash mid-swap) would make the swap a no-op.
	currentPos, swapPos := current.Position, swap.Position
	if currentPos == swapPos {
		currentPos, swapPos = index, target
	}
	err = s.store.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.store.SetFeaturedPosition(ctx, current.ID, swapPos); err != nil {
			return err
		}
		return s.store.SetFeaturedPosition(ctx, swap.ID, currentPos)
	})
	if err != nil {
		return internal("failed to move featured product", err)
	}
	return nil
}

// Reindex rewrites positions as 0..N-1 in the current order.
func (s *FeaturedService) Reindex(ctx context.Context) error {
	items, err := s.store.ListFeatured(ctx)
	if err != nil {
		return internal("failed to load featured products", err)
	}
	err = s.store.WithTransaction(ctx, func(ctx context.Context) error {
		for i, item := range items {
			if item.Position == i {
				continue
			}
			if err := s.store.SetFeaturedPosition(ctx, item.ID, i); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return internal("failed to reindex featured products", err)
	}
	return nil
}
