package models

import "time"

// SearchSession ties a search call, its impressions and any later
// feedback together. Created once per search.
type SearchSession struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id,omitempty"`
	Query     string    `json:"query"`
	Location  Location  `json:"location"`
	CreatedAt time.Time `json:"created_at"`
}

// Impression records that one candidate was shown at a given rank in a
// given session. Append-only; the ID is derived from session and item so
// duplicate submissions collapse onto the same row.
type Impression struct {
	ID        string        `json:"id"`
	SessionID string        `json:"session_id"`
	ItemID    string        `json:"item_id"`
	Position  int           `json:"position"`
	Score     float64       `json:"score"`
	Features  FeatureScores `json:"features"`
	CreatedAt time.Time     `json:"created_at"`
}

// FeedbackEvent is a swipe/order/save/view reported by the UI layer after
// the fact. ClientEventID is supplied by the client and deduplicates
// retried submissions.
type FeedbackEvent struct {
	ClientEventID string    `json:"client_event_id"`
	SessionID     string    `json:"session_id,omitempty"`
	UserID        string    `json:"user_id"`
	ItemID        string    `json:"item_id"`
	Action        string    `json:"action"`
	Position      int       `json:"position,omitempty"`
	DwellTimeMs   int64     `json:"dwell_time,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
