package catalog

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/plateful/platesearch/internal/ai/mock"
	"github.com/plateful/platesearch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLabels = []string{"high protein", "vegan", "dessert"}

func newTestPipeline(t *testing.T, provider *mock.Provider) (*Pipeline, *Store) {
	t.Helper()
	store := NewMemoryStore()
	pipeline, err := NewPipeline(store, provider, testLabels, WithPoolSize(2))
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)
	return pipeline, store
}

func TestIngestComputesDerivedData(t *testing.T) {
	pipeline, store := newTestPipeline(t, mock.NewProvider())

	items := []*models.MenuItem{
		{ID: "i1", RestaurantID: "r1", Name: "Vegan Burger", Description: "Plant based vegan patty"},
		{ID: "i2", RestaurantID: "r1", Name: "Cheesecake", Description: "Classic dessert"},
	}
	require.NoError(t, pipeline.IngestMenuItems(context.Background(), items, nil))

	stored, err := store.MenuItems.GetByID(context.Background(), "i1")
	require.NoError(t, err)
	assert.NotEmpty(t, stored.Embedding)
	assert.Contains(t, stored.TagScores, "vegan")

	stored, err = store.MenuItems.GetByID(context.Background(), "i2")
	require.NoError(t, err)
	assert.NotEmpty(t, stored.Embedding)
	assert.Contains(t, stored.TagScores, "dessert")
}

func TestIngestSkipsUnchangedItems(t *testing.T) {
	provider := mock.NewProvider()
	var embedCalls int64
	provider.MockEmbedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		atomic.AddInt64(&embedCalls, 1)
		return []float32{1, 0, 0}, nil
	}
	pipeline, store := newTestPipeline(t, provider)

	item := &models.MenuItem{ID: "i1", RestaurantID: "r1", Name: "Pho", Description: "Beef noodle soup"}
	require.NoError(t, pipeline.IngestMenuItems(context.Background(), []*models.MenuItem{item}, nil))
	require.EqualValues(t, 1, atomic.LoadInt64(&embedCalls))

	// Same text again: previous vectors are reused, no new inference.
	again := &models.MenuItem{ID: "i1", RestaurantID: "r1", Name: "Pho", Description: "Beef noodle soup", Price: 14}
	require.NoError(t, pipeline.IngestMenuItems(context.Background(), []*models.MenuItem{again}, nil))
	assert.EqualValues(t, 1, atomic.LoadInt64(&embedCalls))

	stored, err := store.MenuItems.GetByID(context.Background(), "i1")
	require.NoError(t, err)
	assert.Equal(t, 14.0, stored.Price, "non-text fields still update")
	assert.NotEmpty(t, stored.Embedding)

	// Changed description forces a fresh embedding.
	changed := &models.MenuItem{ID: "i1", RestaurantID: "r1", Name: "Pho", Description: "Chicken noodle soup"}
	require.NoError(t, pipeline.IngestMenuItems(context.Background(), []*models.MenuItem{changed}, nil))
	assert.EqualValues(t, 2, atomic.LoadInt64(&embedCalls))
}

func TestIngestFailedEmbeddingDoesNotFailBatch(t *testing.T) {
	provider := mock.NewProvider()
	provider.MockEmbedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embedder offline")
	}
	pipeline, store := newTestPipeline(t, provider)

	items := []*models.MenuItem{{ID: "i1", RestaurantID: "r1", Name: "Tacos"}}
	require.NoError(t, pipeline.IngestMenuItems(context.Background(), items, nil))

	stored, err := store.MenuItems.GetByID(context.Background(), "i1")
	require.NoError(t, err)
	assert.Empty(t, stored.Embedding, "item is stored without derived data")
}

func TestIngestReportsProgress(t *testing.T) {
	pipeline, _ := newTestPipeline(t, mock.NewProvider())

	var done int64
	items := []*models.MenuItem{
		{ID: "i1", RestaurantID: "r1", Name: "A"},
		{ID: "i2", RestaurantID: "r1", Name: "B"},
		{ID: "i3", RestaurantID: "r1", Name: "C"},
	}
	require.NoError(t, pipeline.IngestMenuItems(context.Background(), items, func() {
		atomic.AddInt64(&done, 1)
	}))
	assert.EqualValues(t, len(items), atomic.LoadInt64(&done))
}

func TestIngestRestaurants(t *testing.T) {
	pipeline, store := newTestPipeline(t, mock.NewProvider())

	restaurants := []*models.Restaurant{
		{ID: "r1", Name: "Noodle House"},
		{ID: "r2", Name: "Taco Cart"},
	}
	require.NoError(t, pipeline.IngestRestaurants(context.Background(), restaurants))

	count, err := store.Restaurants.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
