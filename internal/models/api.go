package models

// SearchRequest is the transport-agnostic search contract.
type SearchRequest struct {
	Query       string      `json:"query,omitempty"`
	Location    Location    `json:"location"`
	Filters     FilterSet   `json:"filters,omitempty"`
	Preferences Preferences `json:"preferences,omitempty"`
	UserID      string      `json:"user_id,omitempty"`
	Limit       int         `json:"limit,omitempty"`
}

// RankedItem is one entry of the ranked response list.
type RankedItem struct {
	Item       *MenuItem   `json:"item"`
	Restaurant *Restaurant `json:"restaurant"`
	DistanceKm float64     `json:"distance_km"`
	Score      float64     `json:"score"`
}

// Explanation is the presentation-facing reasoning for one ranked item.
type Explanation struct {
	Tags       []string `json:"tags"`
	Similarity float64  `json:"similarity"`
	Reasons    []string `json:"reasons"`
}

// SearchResponse is the ranked, explained result set for one session.
// Degraded is set when any soft dependency failed and a feature was
// neutralised instead of failing the request.
type SearchResponse struct {
	Items           []RankedItem           `json:"items"`
	Total           int                    `json:"total"`
	SessionID       string                 `json:"session_id"`
	Explanations    map[string]Explanation `json:"explanations"`
	Degraded        bool                   `json:"degraded,omitempty"`
	DegradedReasons []string               `json:"degraded_reasons,omitempty"`
}

// FeedbackResponse acknowledges a feedback submission.
type FeedbackResponse struct {
	Status string `json:"status"`
}
