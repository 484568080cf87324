package feedback

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/plateful/platesearch/internal/models"
)

// ImpressionStore persists impressions. Writes must be idempotent on the
// impression ID: replaying the same batch creates no duplicate rows.
type ImpressionStore interface {
	WriteImpressions(ctx context.Context, impressions []models.Impression) error
}

// FeedbackStore persists swipe/order/save events, idempotent on the
// client event id, and serves the recent-likes history used by scoring.
type FeedbackStore interface {
	WriteFeedback(ctx context.Context, event models.FeedbackEvent) error
	RecentLikes(ctx context.Context, userID string, limit int) ([]string, error)
}

// EventStore is a backend that serves both roles, like the Postgres and
// in-memory stores do.
type EventStore interface {
	ImpressionStore
	FeedbackStore
}

// Logger is the engine's feedback sink. Impression writes sit on the
// search critical path (synchronous, one retry); feedback events are
// queued and drained in the background with bounded retries. Both are
// additionally mirrored to an optional event sink, best effort.
type Logger struct {
	impressions ImpressionStore
	feedback    FeedbackStore
	sink        EventSink
	queue       *retryQueue
	maxAttempts int

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func NewLogger(impressions ImpressionStore, feedback FeedbackStore, sink EventSink, queueSize, maxAttempts int) *Logger {
	if queueSize <= 0 {
		queueSize = 1024
	}
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	l := &Logger{
		impressions: impressions,
		feedback:    feedback,
		sink:        sink,
		queue:       newRetryQueue(queueSize),
		maxAttempts: maxAttempts,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	go l.drain()
	return l
}

// ImpressionID derives the deterministic impression id for a session/item
// pair, so duplicate submissions collapse onto one row.
func ImpressionID(sessionID, itemID string) string {
	return sessionID + ":" + itemID
}

// LogImpressions writes one impression per ranked candidate, in rank
// order, before the search response is returned. Retries once; the caller
// decides whether a final failure degrades or fails the response.
func (l *Logger) LogImpressions(ctx context.Context, session models.SearchSession, ranked []models.ScoredCandidate) error {
	if len(ranked) == 0 {
		return nil
	}

	now := time.Now().UTC()
	impressions := make([]models.Impression, len(ranked))
	for i, sc := range ranked {
		impressions[i] = models.Impression{
			ID:        ImpressionID(session.ID, sc.Item.ID),
			SessionID: session.ID,
			ItemID:    sc.Item.ID,
			Position:  i,
			Score:     sc.Score,
			Features:  sc.Features,
			CreatedAt: now,
		}
	}

	err := l.impressions.WriteImpressions(ctx, impressions)
	if err != nil {
		log.Printf("impression write failed, retrying once: %v", err)
		err = l.impressions.WriteImpressions(ctx, impressions)
	}
	if err != nil {
		return fmt.Errorf("failed to log impressions for session %s: %w", session.ID, err)
	}

	l.emit(TopicImpressions, impressions)
	return nil
}

// LogFeedback validates and enqueues a feedback event. The write happens
// off the critical path; a full queue is reported but never blocks.
func (l *Logger) LogFeedback(event models.FeedbackEvent) error {
	if event.ClientEventID == "" {
		return fmt.Errorf("feedback event missing client_event_id")
	}
	if !models.ValidAction(event.Action) {
		return fmt.Errorf("unknown feedback action %q", event.Action)
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	if !l.queue.push(pendingEvent{event: event, nextAttempt: time.Now()}) {
		return fmt.Errorf("feedback queue full, dropping event %s", event.ClientEventID)
	}
	return nil
}

// RecentLikes returns the item ids of the user's most recent likes.
func (l *Logger) RecentLikes(ctx context.Context, userID string, limit int) ([]string, error) {
	if userID == "" {
		return nil, nil
	}
	return l.feedback.RecentLikes(ctx, userID, limit)
}

func (l *Logger) drain() {
	defer close(l.done)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-l.stop:
			l.flush()
			return
		case <-ticker.C:
			l.flush()
		}
	}
}

func (l *Logger) flush() {
	for {
		pending, ok := l.queue.popDue(time.Now())
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := l.feedback.WriteFeedback(ctx, pending.event)
		cancel()

		if err == nil {
			l.emit(TopicFeedback, pending.event)
			continue
		}

		pending.attempts++
		if pending.attempts >= l.maxAttempts {
			log.Printf("dropping feedback event %s after %d attempts: %v",
				pending.event.ClientEventID, pending.attempts, err)
			continue
		}
		pending.nextAttempt = time.Now().Add(time.Duration(pending.attempts) * time.Second)
		l.queue.push(pending)
	}
}

func (l *Logger) emit(topic string, payload interface{}) {
	if l.sink == nil {
		return
	}
	if err := writeSinkMessage(l.sink, topic, payload); err != nil {
		log.Printf("failed to mirror %s to sink: %v", topic, err)
	}
}

// Close stops the background drain after a final flush.
func (l *Logger) Close() {
	l.stopOnce.Do(func() { close(l.stop) })
	<-l.done
}
