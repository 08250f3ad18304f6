package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-storefront/models"
	"go-storefront/store"
)

func seedFeatured(t *testing.T, st *store.Memory, svc *FeaturedService, names ...string) []models.FeaturedProduct {
	t.Helper()
	for _, name := range names {
		p := seedProduct(t, st, name, "1")
		_, err := svc.Add(context.Background(), p.ID)
		require.NoError(t, err)
	}
	items, err := svc.List(context.Background())
	require.NoError(t, err)
	return items
}

func featuredNames(t *testing.T, svc *FeaturedService) []string {
	t.Helper()
	items, err := svc.List(context.Background())
	require.NoError(t, err)
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Product.Name)
	}
	return names
}

func TestFeaturedAddAppends(t *testing.T) {
	st := store.NewMemory()
	svc := NewFeaturedService(st)

	items := seedFeatured(t, st, svc, "A", "B", "C")

	require.Len(t, items, 3)
	for i, item := range items {
		assert.Equal(t, i, item.Position)
	}

	_, err := svc.Add(context.Background(), items[0].ProductID)
	assert.Equal(t, KindValidation, KindOf(err), "a product is featured once")
	_, err = svc.Add(context.Background(), "missing")
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestFeaturedMoveSwapsNeighbours(t *testing.T) {
	st := store.NewMemory()
	svc := NewFeaturedService(st)
	items := seedFeatured(t, st, svc, "A", "B", "C")
	ctx := context.Background()

	require.NoError(t, svc.Move(ctx, items[1].ID, DirectionUp))
	assert.Equal(t, []string{"B", "A", "C"}, featuredNames(t, svc))

	require.NoError(t, svc.Move(ctx, items[1].ID, DirectionDown))
	assert.Equal(t, []string{"A", "B", "C"}, featuredNames(t, svc))
}

func TestFeaturedMoveAtEdgesIsNoop(t *testing.T) {
	st := store.NewMemory()
	svc := NewFeaturedService(st)
	items := seedFeatured(t, st, svc, "A", "B", "C")
	ctx := context.Background()

	require.NoError(t, svc.Move(ctx, items[0].ID, DirectionUp))
	require.NoError(t, svc.Move(ctx, items[2].ID, DirectionDown))

	after, err := svc.List(ctx)
	require.NoError(t, err)
	for i := range items {
		assert.Equal(t, items[i].ID, after[i].ID)
		assert.Equal(t, items[i].Position, after[i].Position)
	}
}

func TestFeaturedMoveErrors(t *testing.T) {
	st := store.NewMemory()
	svc := NewFeaturedService(st)
	items := seedFeatured(t, st, svc, "A", "B")
	ctx := context.Background()

	assert.Equal(t, KindNotFound, KindOf(svc.Move(ctx, "missing", DirectionUp)))
	assert.Equal(t, KindValidation, KindOf(svc.Move(ctx, items[0].ID, "sideways")))
}

func TestFeaturedMoveRollsBackHalfSwap(t *testing.T) {
	st := store.NewMemory()
	svc := NewFeaturedService(st)
	items := seedFeatured(t, st, svc, "A", "B", "C")
	ctx := context.Background()
	// The moved row is written first; fail the neighbour's write.
	st.SetFault("SetFeaturedPosition:"+items[0].ID, errors.New("write conflict"))

	err := svc.Move(ctx, items[1].ID, DirectionUp)
	assert.Equal(t, KindInternal, KindOf(err))

	after, err := st.ListFeatured(ctx)
	require.NoError(t, err)
	positions := map[string]int{}
	for _, item := range after {
		positions[item.ID] = item.Position
	}
	assert.Equal(t, 0, positions[items[0].ID])
	assert.Equal(t, 1, positions[items[1].ID], "no duplicate position after a failed move")
	assert.Equal(t, 2, positions[items[2].ID])
}

func TestFeaturedRemoveAndReindex(t *testing.T) {
	st := store.NewMemory()
	svc := NewFeaturedService(st)
	items := seedFeatured(t, st, svc, "A", "B", "C", "D")
	ctx := context.Background()

	require.NoError(t, svc.Remove(ctx, items[1].ID))
	assert.Equal(t, KindNotFound, KindOf(svc.Remove(ctx, items[1].ID)))
	assert.Equal(t, []string{"A", "C", "D"}, featuredNames(t, svc))

	after, err := svc.List(ctx)
	require.NoError(t, err)
	for i, item := range after {
		assert.Equal(t, i, item.Position, "remove leaves no gap")
	}

	require.NoError(t, st.SetFeaturedPosition(ctx, after[2].ID, 7))
	require.NoError(t, svc.Reindex(ctx))
	after, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, after[2].Position)

	next, err := svc.Add(ctx, seedProduct(t, st, "E", "1").ID)
	require.NoError(t, err)
	assert.Equal(t, 3, next.Position)
}

func TestFeaturedMoveRepairsEqualPositions(t *testing.T) {
	st := store.NewMemory()
	svc := NewFeaturedService(st)
	items := seedFeatured(t, st, svc, "A", "B")
	ctx := context.Background()
	require.NoError(t, st.SetFeaturedPosition(ctx, items[1].ID, 0))

	tied, err := svc.List(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.Move(ctx, tied[0].ID, DirectionDown))

	after, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, tied[1].ID, after[0].ID)
	assert.Equal(t, 0, after[0].Position)
	assert.Equal(t, tied[0].ID, after[1].ID)
	assert.Equal(t, 1, after[1].Position)
}

func TestFeaturedListSkipsDeletedProducts(t *testing.T) {
	st := store.NewMemory()
	svc := NewFeaturedService(st)
	items := seedFeatured(t, st, svc, "A", "B")
	require.NoError(t, st.DeleteProduct(context.Background(), items[0].ProductID))

	assert.Equal(t, []string{"B"}, featuredNames(t, svc))
}
