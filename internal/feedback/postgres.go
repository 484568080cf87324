package feedback

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/plateful/platesearch/internal/models"
)

// PostgresStore persists impressions and feedback events append-only.
// Idempotence rides on the primary keys: impression id for impressions,
// client_event_id for feedback.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) WriteImpressions(ctx context.Context, impressions []models.Impression) error {
	batch := &pgx.Batch{}
	for _, impression := range impressions {
		features, err := json.Marshal(impression.Features)
		if err != nil {
			return fmt.Errorf("failed to encode features for %s: %w", impression.ID, err)
		}
		batch.Queue(`
            INSERT INTO impressions (id, session_id, item_id, position, score, features, created_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7)
            ON CONFLICT (id) DO NOTHING
        `, impression.ID, impression.SessionID, impression.ItemID,
			impression.Position, impression.Score, features, impression.CreatedAt)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range impressions {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert impression: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) WriteFeedback(ctx context.Context, event models.FeedbackEvent) error {
	_, err := s.pool.Exec(ctx, `
        INSERT INTO feedback_events
            (client_event_id, session_id, user_id, item_id, action, position, dwell_time_ms, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (client_event_id) DO NOTHING
    `, event.ClientEventID, event.SessionID, event.UserID, event.ItemID,
		event.Action, event.Position, event.DwellTimeMs, event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert feedback event %s: %w", event.ClientEventID, err)
	}
	return nil
}

func (s *PostgresStore) RecentLikes(ctx context.Context, userID string, limit int) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
        SELECT item_id FROM feedback_events
        WHERE user_id = $1 AND action = $2
        ORDER BY created_at DESC
        LIMIT $3
    `, userID, models.ActionLike, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var itemIDs []string
	for rows.Next() {
		var itemID string
		if err := rows.Scan(&itemID); err != nil {
			return nil, err
		}
		itemIDs = append(itemIDs, itemID)
	}
	return itemIDs, rows.Err()
}
