package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-storefront/store"
)

func TestWishlistAddIsIdempotent(t *testing.T) {
	st := store.NewMemory()
	svc := NewWishlistService(st, NewCartService(st, DefaultPricing))
	ctx := context.Background()
	p := seedProduct(t, st, "Lamp", "20")

	require.NoError(t, svc.Add(ctx, customer("u1"), p.ID))
	require.NoError(t, svc.Add(ctx, customer("u1"), p.ID))
	assert.Equal(t, KindNotFound, KindOf(svc.Add(ctx, customer("u1"), "missing")))
	assert.Equal(t, KindValidation, KindOf(svc.Add(ctx, customer("u1"), "")))

	items, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Product)
	assert.Equal(t, "Lamp", items[0].Product.Name)
}

func TestWishlistMoveToCart(t *testing.T) {
	st := store.NewMemory()
	cart := NewCartService(st, DefaultPricing)
	svc := NewWishlistService(st, cart)
	ctx := context.Background()
	p := seedProduct(t, st, "Lamp", "20")
	require.NoError(t, svc.Add(ctx, customer("u1"), p.ID))
	items, err := svc.List(ctx, "u1")
	require.NoError(t, err)

	_, err = svc.MoveToCart(ctx, customer("u2"), items[0].ID)
	assert.Equal(t, KindNotFound, KindOf(err))

	res, err := svc.MoveToCart(ctx, customer("u1"), items[0].ID)
	require.NoError(t, err)
	assert.True(t, res.Success)

	left, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, left)
	assert.Equal(t, int64(1), cart.Count(ctx, customer("u1")))
}

func TestWishlistMoveToCartKeepsItemWhenProductGone(t *testing.T) {
	st := store.NewMemory()
	svc := NewWishlistService(st, NewCartService(st, DefaultPricing))
	ctx := context.Background()
	p := seedProduct(t, st, "Lamp", "20")
	require.NoError(t, svc.Add(ctx, customer("u1"), p.ID))
	items, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	require.NoError(t, st.DeleteProduct(ctx, p.ID))

	res, err := svc.MoveToCart(ctx, customer("u1"), items[0].ID)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 404, res.Status())

	left, err := svc.List(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, left, 1)
}
