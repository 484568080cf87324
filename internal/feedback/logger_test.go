package feedback

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/plateful/platesearch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession() models.SearchSession {
	return models.SearchSession{
		ID:        "session-1",
		UserID:    "user-1",
		Query:     "ramen",
		CreatedAt: time.Now().UTC(),
	}
}

func testRanked() []models.ScoredCandidate {
	return []models.ScoredCandidate{
		{Item: &models.MenuItem{ID: "item-a"}, Score: 0.9},
		{Item: &models.MenuItem{ID: "item-b"}, Score: 0.7},
		{Item: &models.MenuItem{ID: "item-c"}, Score: 0.5},
	}
}

func TestLogImpressionsIdempotent(t *testing.T) {
	store := NewMemoryStore()
	logger := NewLogger(store, store, nil, 16, 3)
	defer logger.Close()

	session := testSession()
	ranked := testRanked()

	require.NoError(t, logger.LogImpressions(context.Background(), session, ranked))
	require.NoError(t, logger.LogImpressions(context.Background(), session, ranked))

	impressions := store.Impressions()
	require.Len(t, impressions, len(ranked), "replaying a session creates no duplicate rows")
	for i, impression := range impressions {
		assert.Equal(t, ImpressionID(session.ID, ranked[i].Item.ID), impression.ID)
		assert.Equal(t, i, impression.Position)
		assert.Equal(t, ranked[i].Score, impression.Score)
	}
}

func TestLogImpressionsEmpty(t *testing.T) {
	store := NewMemoryStore()
	logger := NewLogger(store, store, nil, 16, 3)
	defer logger.Close()

	require.NoError(t, logger.LogImpressions(context.Background(), testSession(), nil))
	assert.Empty(t, store.Impressions())
}

// failingImpressionStore fails a fixed number of writes before recovering.
type failingImpressionStore struct {
	*MemoryStore
	failures int
}

func (s *failingImpressionStore) WriteImpressions(ctx context.Context, impressions []models.Impression) error {
	if s.failures > 0 {
		s.failures--
		return errors.New("transient store error")
	}
	return s.MemoryStore.WriteImpressions(ctx, impressions)
}

func TestLogImpressionsRetriesOnce(t *testing.T) {
	store := &failingImpressionStore{MemoryStore: NewMemoryStore(), failures: 1}
	logger := NewLogger(store, store.MemoryStore, nil, 16, 3)
	defer logger.Close()

	require.NoError(t, logger.LogImpressions(context.Background(), testSession(), testRanked()))
	assert.Len(t, store.Impressions(), 3, "a single transient failure is absorbed")
}

func TestLogImpressionsFailsAfterRetry(t *testing.T) {
	store := &failingImpressionStore{MemoryStore: NewMemoryStore(), failures: 2}
	logger := NewLogger(store, store.MemoryStore, nil, 16, 3)
	defer logger.Close()

	err := logger.LogImpressions(context.Background(), testSession(), testRanked())
	assert.Error(t, err, "two consecutive failures surface to the caller")
}

func TestLogFeedbackValidation(t *testing.T) {
	store := NewMemoryStore()
	logger := NewLogger(store, store, nil, 16, 3)
	defer logger.Close()

	err := logger.LogFeedback(models.FeedbackEvent{ItemID: "x", Action: models.ActionLike})
	assert.Error(t, err, "missing client_event_id")

	err = logger.LogFeedback(models.FeedbackEvent{ClientEventID: "e1", ItemID: "x", Action: "yodel"})
	assert.Error(t, err, "unknown action")
}

func TestLogFeedbackDrainsAndDedupes(t *testing.T) {
	store := NewMemoryStore()
	logger := NewLogger(store, store, nil, 16, 3)
	defer logger.Close()

	event := models.FeedbackEvent{
		ClientEventID: "evt-1",
		UserID:        "user-1",
		ItemID:        "item-a",
		Action:        models.ActionLike,
	}
	require.NoError(t, logger.LogFeedback(event))
	require.NoError(t, logger.LogFeedback(event)) // client retry

	logger.flush()
	assert.Equal(t, 1, store.FeedbackCount(), "client retries collapse on client_event_id")

	likes, err := store.RecentLikes(context.Background(), "user-1", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"item-a"}, likes)
}

func TestLogFeedbackQueueFull(t *testing.T) {
	store := NewMemoryStore()
	logger := NewLogger(store, store, nil, 1, 3)
	defer logger.Close()

	require.NoError(t, logger.LogFeedback(models.FeedbackEvent{
		ClientEventID: "evt-1", ItemID: "a", Action: models.ActionView,
	}))
	// The drain goroutine may or may not have run yet; fill until rejected.
	var err error
	for i := 0; i < 100; i++ {
		err = logger.LogFeedback(models.FeedbackEvent{
			ClientEventID: "evt-overflow", ItemID: "a", Action: models.ActionView,
		})
		if err != nil {
			break
		}
		logger.queue.push(pendingEvent{nextAttempt: time.Now().Add(time.Hour)})
	}
	assert.Error(t, err, "a full queue rejects instead of blocking")
}

func TestRecentLikesOrderAndLimit(t *testing.T) {
	store := NewMemoryStore()
	base := time.Now().UTC()
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.WriteFeedback(context.Background(), models.FeedbackEvent{
			ClientEventID: "evt-" + id,
			UserID:        "user-1",
			ItemID:        id,
			Action:        models.ActionLike,
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, store.WriteFeedback(context.Background(), models.FeedbackEvent{
		ClientEventID: "evt-d", UserID: "user-1", ItemID: "d",
		Action: models.ActionDislike, CreatedAt: base.Add(time.Hour),
	}))

	likes, err := store.RecentLikes(context.Background(), "user-1", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b"}, likes, "newest likes first, dislikes excluded")
}
