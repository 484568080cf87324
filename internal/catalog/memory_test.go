package catalog

import (
	"context"
	"testing"

	"github.com/plateful/platesearch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryMenuItemUpsertPreservesDerived(t *testing.T) {
	repo := NewMemoryMenuItemRepository()
	ctx := context.Background()

	require.NoError(t, repo.BulkUpsert(ctx, []*models.MenuItem{{ID: "i1", Name: "Ramen"}}))
	require.NoError(t, repo.UpdateDerived(ctx, "i1", []float32{1, 2, 3}, map[string]float64{"comfort-food": 0.9}))

	// Upsert without derived data keeps the existing vectors.
	require.NoError(t, repo.BulkUpsert(ctx, []*models.MenuItem{{ID: "i1", Name: "Ramen", Price: 13}}))
	item, err := repo.GetByID(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, item.Embedding)
	assert.Equal(t, 13.0, item.Price)

	// Upsert carrying its own vectors replaces them.
	require.NoError(t, repo.BulkUpsert(ctx, []*models.MenuItem{{ID: "i1", Name: "Ramen", Embedding: []float32{9}}}))
	item, err = repo.GetByID(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, []float32{9}, item.Embedding)
}

func TestMemoryMenuItemByRestaurant(t *testing.T) {
	repo := NewMemoryMenuItemRepository()
	ctx := context.Background()

	require.NoError(t, repo.BulkUpsert(ctx, []*models.MenuItem{
		{ID: "a", RestaurantID: "r1"},
		{ID: "b", RestaurantID: "r1"},
		{ID: "c", RestaurantID: "r2"},
	}))

	items, err := repo.GetByRestaurantID(ctx, "r1")
	require.NoError(t, err)
	assert.Len(t, items, 2)

	_, err = repo.GetByID(ctx, "missing")
	assert.Error(t, err)
}
