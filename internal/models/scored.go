package models

// FeatureScores is the per-candidate score breakdown. All five fitted
// components are in [0,1]; LikesBoost is additive on top of the weighted
// sum and capped separately.
type FeatureScores struct {
	Similarity  float64 `json:"similarity"`
	TagMatch    float64 `json:"tag_match"`
	RatingFit   float64 `json:"rating_fit"`
	PriceFit    float64 `json:"price_fit"`
	DistanceFit float64 `json:"distance_fit"`
	LikesBoost  float64 `json:"likes_boost"`
}

// ScoredCandidate joins a menu item with its restaurant and the scores
// computed for one intent. Ephemeral; it lives only until impressions are
// logged.
type ScoredCandidate struct {
	Item       *MenuItem
	Restaurant *Restaurant
	DistanceKm float64
	Features   FeatureScores
	Score      float64
}

// ScoreWeights holds the weighting of the five fitted components plus the
// cap for the recent-likes boost. Weights are configuration, not
// constants; DefaultScoreWeights documents the shipped defaults.
type ScoreWeights struct {
	Similarity float64 `json:"similarity" mapstructure:"similarity"`
	TagMatch   float64 `json:"tag_match" mapstructure:"tag_match"`
	Rating     float64 `json:"rating" mapstructure:"rating"`
	Price      float64 `json:"price" mapstructure:"price"`
	Distance   float64 `json:"distance" mapstructure:"distance"`
	LikesCap   float64 `json:"likes_cap" mapstructure:"likes_cap"`
}

func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		Similarity: 0.4,
		TagMatch:   0.3,
		Rating:     0.1,
		Price:      0.1,
		Distance:   0.1,
		LikesCap:   0.1,
	}
}
