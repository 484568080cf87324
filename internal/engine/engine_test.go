package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/plateful/platesearch/internal/ai/mock"
	"github.com/plateful/platesearch/internal/catalog"
	"github.com/plateful/platesearch/internal/feedback"
	"github.com/plateful/platesearch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *models.Config {
	return &models.Config{
		CityLat:            40.7128,
		CityLon:            -74.0060,
		DefaultRadiusKm:    10,
		MaxCandidates:      200,
		DefaultLimit:       20,
		Weights:            models.DefaultScoreWeights(),
		ScoringWorkers:     4,
		RecentLikes:        5,
		FeedbackQueueSize:  64,
		FeedbackMaxRetries: 3,
		AI:                 models.AIConfig{InferenceTimeout: time.Second},
	}
}

type testHarness struct {
	engine   *Engine
	store    *catalog.Store
	events   *feedback.MemoryStore
	provider *mock.Provider
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()
	cfg := testConfig()
	store := catalog.NewMemoryStore()
	events := feedback.NewMemoryStore()
	provider := mock.NewProvider()

	logger := feedback.NewLogger(events, events, nil, cfg.FeedbackQueueSize, cfg.FeedbackMaxRetries)
	t.Cleanup(logger.Close)

	eng, err := New(cfg, store, provider, logger)
	require.NoError(t, err)
	t.Cleanup(eng.Close)

	return &testHarness{engine: eng, store: store, events: events, provider: provider}
}

// ingest pushes the fixtures through the real ingestion pipeline so every
// item carries the derived embedding and tag scores searches rely on.
func (h *testHarness) ingest(t *testing.T, restaurants []*models.Restaurant, items []*models.MenuItem) {
	t.Helper()
	pipeline, err := catalog.NewPipeline(h.store, h.provider, models.DefaultTagVocabulary)
	require.NoError(t, err)
	defer pipeline.Release()

	require.NoError(t, pipeline.IngestRestaurants(context.Background(), restaurants))
	require.NoError(t, pipeline.IngestMenuItems(context.Background(), items, nil))
}

func proteinFixtures() ([]*models.Restaurant, []*models.MenuItem) {
	nearby := models.Location{Lat: 40.7200, Lon: -74.0060}
	restaurants := []*models.Restaurant{
		{ID: "r1", Name: "Macro Kitchen", Location: nearby, Rating: 4.7},
	}
	items := []*models.MenuItem{
		{
			ID: "bowl", RestaurantID: "r1",
			Name: "Grilled Chicken Bowl", Description: "High protein grilled chicken with brown rice",
			Price: 12, Nutrition: models.NutritionFacts{Calories: 550, Protein: 28},
		},
		{
			ID: "steak", RestaurantID: "r1",
			Name: "Ribeye Steak Platter", Description: "High protein ribeye with roasted potatoes",
			Price: 20, Nutrition: models.NutritionFacts{Calories: 900, Protein: 45},
		},
		{
			ID: "cake", RestaurantID: "r1",
			Name: "Chocolate Lava Cake", Description: "Warm chocolate dessert",
			Price: 8, Nutrition: models.NutritionFacts{Calories: 600, Protein: 6},
		},
	}
	return restaurants, items
}

func TestSearchHonorsHardFilters(t *testing.T) {
	h := newTestHarness(t)
	restaurants, items := proteinFixtures()
	h.ingest(t, restaurants, items)

	response, err := h.engine.Search(context.Background(), &models.SearchRequest{
		Query:    "high protein lunch under $15",
		Location: models.Location{Lat: 40.7128, Lon: -74.0060},
		Filters:  models.FilterSet{MinProtein: 20},
	})
	require.NoError(t, err)

	require.Len(t, response.Items, 1, "only the $12 bowl passes price and protein filters")
	assert.Equal(t, "bowl", response.Items[0].Item.ID)
	assert.Equal(t, 1, response.Total)
	assert.NotEmpty(t, response.SessionID)
	assert.False(t, response.Degraded)

	explanation, ok := response.Explanations["bowl"]
	require.True(t, ok, "every returned item gets an explanation")
	assert.Contains(t, explanation.Tags, "high protein")
}

func TestSearchRankedOrderIsNonIncreasing(t *testing.T) {
	h := newTestHarness(t)
	restaurants, items := proteinFixtures()
	h.ingest(t, restaurants, items)

	response, err := h.engine.Search(context.Background(), &models.SearchRequest{
		Query:    "protein dinner",
		Location: models.Location{Lat: 40.7128, Lon: -74.0060},
	})
	require.NoError(t, err)
	require.NotEmpty(t, response.Items)

	for i := 1; i < len(response.Items); i++ {
		assert.GreaterOrEqual(t, response.Items[i-1].Score, response.Items[i].Score)
	}
}

func TestSearchEmptyCatalog(t *testing.T) {
	h := newTestHarness(t)

	response, err := h.engine.Search(context.Background(), &models.SearchRequest{
		Query:    "anything",
		Location: models.Location{Lat: 40.7128, Lon: -74.0060},
	})
	require.NoError(t, err)

	assert.Empty(t, response.Items)
	assert.Equal(t, 0, response.Total)
	assert.NotEmpty(t, response.SessionID)
	assert.Empty(t, h.events.Impressions(), "nothing shown, nothing logged")
}

func TestSearchDegradesWhenTagInferenceFails(t *testing.T) {
	h := newTestHarness(t)
	restaurants, items := proteinFixtures()
	h.ingest(t, restaurants, items)

	h.provider.MockTagger.InferTagsFunc = func(ctx context.Context, text string, labels []string) (map[string]float64, error) {
		return nil, errors.New("classifier offline")
	}

	response, err := h.engine.Search(context.Background(), &models.SearchRequest{
		Query:    "high protein lunch",
		Location: models.Location{Lat: 40.7128, Lon: -74.0060},
	})
	require.NoError(t, err, "tag inference failure must not fail the search")

	assert.NotEmpty(t, response.Items, "ranking proceeds on the remaining features")
	assert.True(t, response.Degraded)
	assert.Contains(t, response.DegradedReasons, DegradedTagInference)
}

func TestSearchDegradesWhenEmbeddingFails(t *testing.T) {
	h := newTestHarness(t)
	restaurants, items := proteinFixtures()
	h.ingest(t, restaurants, items)

	h.provider.MockEmbedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embedder offline")
	}

	response, err := h.engine.Search(context.Background(), &models.SearchRequest{
		Query:    "high protein lunch",
		Location: models.Location{Lat: 40.7128, Lon: -74.0060},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, response.Items)
	assert.True(t, response.Degraded)
	assert.Contains(t, response.DegradedReasons, DegradedEmbedding)
	for _, item := range response.Items {
		explanation := response.Explanations[item.Item.ID]
		assert.Equal(t, 0.0, explanation.Similarity, "similarity is neutral without an intent embedding")
	}
}

func TestSearchDefaultLocationFallback(t *testing.T) {
	h := newTestHarness(t)
	restaurants, items := proteinFixtures()
	h.ingest(t, restaurants, items)

	response, err := h.engine.Search(context.Background(), &models.SearchRequest{
		Query: "chicken bowl",
	})
	require.NoError(t, err)

	assert.True(t, response.Degraded)
	assert.Contains(t, response.DegradedReasons, DegradedDefaultLocation)
	assert.NotEmpty(t, response.Items, "search proceeds from the configured city center")
}

func TestSearchInvalidRequest(t *testing.T) {
	h := newTestHarness(t)

	_, err := h.engine.Search(context.Background(), &models.SearchRequest{
		Query:    "tacos",
		Location: models.Location{Lat: 40.7128, Lon: -74.0060},
		Filters:  models.FilterSet{MaxPrice: -5},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	var invalid *InvalidRequestError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "filters.max_price", invalid.Field)
}

func TestSearchLogsOneImpressionPerResult(t *testing.T) {
	h := newTestHarness(t)
	restaurants, items := proteinFixtures()
	h.ingest(t, restaurants, items)

	response, err := h.engine.Search(context.Background(), &models.SearchRequest{
		Query:    "protein",
		Location: models.Location{Lat: 40.7128, Lon: -74.0060},
	})
	require.NoError(t, err)

	impressions := h.events.Impressions()
	require.Len(t, impressions, len(response.Items))
	for i, impression := range impressions {
		assert.Equal(t, response.SessionID, impression.SessionID)
		assert.Equal(t, response.Items[i].Item.ID, impression.ItemID)
		assert.Equal(t, i, impression.Position)
	}
}

func TestSearchRecentLikesBoost(t *testing.T) {
	h := newTestHarness(t)
	restaurants, items := proteinFixtures()
	h.ingest(t, restaurants, items)

	require.NoError(t, h.events.WriteFeedback(context.Background(), models.FeedbackEvent{
		ClientEventID: "evt-1",
		UserID:        "user-1",
		ItemID:        "bowl",
		Action:        models.ActionLike,
		CreatedAt:     time.Now().UTC(),
	}))

	response, err := h.engine.Search(context.Background(), &models.SearchRequest{
		Query:    "chicken bowl",
		UserID:   "user-1",
		Location: models.Location{Lat: 40.7128, Lon: -74.0060},
	})
	require.NoError(t, err)
	require.NotEmpty(t, response.Items)

	explanation := response.Explanations["bowl"]
	assert.Contains(t, explanation.Reasons, "similar to dishes you liked",
		"the liked item itself earns the full boost")
}

func TestSearchCancelledContext(t *testing.T) {
	h := newTestHarness(t)
	restaurants, items := proteinFixtures()
	h.ingest(t, restaurants, items)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.engine.Search(ctx, &models.SearchRequest{
		Query:    "protein",
		Location: models.Location{Lat: 40.7128, Lon: -74.0060},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, h.events.Impressions(), "cancelled searches log nothing")
}

func TestSubmitFeedbackValidation(t *testing.T) {
	h := newTestHarness(t)

	err := h.engine.SubmitFeedback(context.Background(), models.FeedbackEvent{
		ItemID: "bowl",
		Action: models.ActionLike,
	})
	assert.ErrorIs(t, err, ErrInvalidRequest, "missing client_event_id")

	err = h.engine.SubmitFeedback(context.Background(), models.FeedbackEvent{
		ClientEventID: "evt-1",
		ItemID:        "bowl",
		Action:        "teleport",
	})
	assert.ErrorIs(t, err, ErrInvalidRequest, "unknown action")

	err = h.engine.SubmitFeedback(context.Background(), models.FeedbackEvent{
		ClientEventID: "evt-1",
		ItemID:        "bowl",
		Action:        models.ActionLike,
	})
	assert.NoError(t, err)
}
