package engine

import (
	"testing"

	"github.com/plateful/platesearch/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestExplainReasons(t *testing.T) {
	sc := models.ScoredCandidate{
		Item: &models.MenuItem{
			ID:        "x",
			TagScores: map[string]float64{"high protein": 0.9, "healthy": 0.7, "quick-service": 0.5},
		},
		Restaurant: &models.Restaurant{Rating: 4.6},
		Features: models.FeatureScores{
			Similarity:  0.82,
			TagMatch:    0.85,
			RatingFit:   0.92,
			PriceFit:    0.95,
			DistanceFit: 0.9,
			LikesBoost:  0.08,
		},
	}
	intentTags := map[string]float64{"high protein": 0.8, "healthy": 0.6, "quick-service": 0.3}

	explanation := Explain(sc, intentTags)

	assert.Equal(t, []string{"high protein", "healthy", "quick-service"}, explanation.Tags)
	assert.Equal(t, 0.82, explanation.Similarity)
	assert.Equal(t, []string{
		"close match for what you asked for",
		`matches "high protein"`,
		`matches "healthy"`,
		"within budget",
		"very close",
		"highly rated (4.6)",
		"similar to dishes you liked",
	}, explanation.Reasons)
}

func TestExplainStable(t *testing.T) {
	sc := models.ScoredCandidate{
		Item: &models.MenuItem{
			ID:        "x",
			TagScores: map[string]float64{"vegan": 0.7, "healthy": 0.7, "spicy": 0.7},
		},
		Restaurant: &models.Restaurant{Rating: 3.2},
		Features:   models.FeatureScores{TagMatch: 0.7},
	}
	// Equal overlaps everywhere so ordering falls back to the label
	intentTags := map[string]float64{"vegan": 0.7, "healthy": 0.7, "spicy": 0.7}

	first := Explain(sc, intentTags)
	for i := 0; i < 20; i++ {
		again := Explain(sc, intentTags)
		assert.Equal(t, first, again, "identical inputs must explain identically")
	}
	assert.Equal(t, []string{"healthy", "spicy", "vegan"}, first.Tags, "ties break alphabetically")
}

func TestExplainNoReasonsBelowThresholds(t *testing.T) {
	sc := models.ScoredCandidate{
		Item:       &models.MenuItem{ID: "x"},
		Restaurant: &models.Restaurant{Rating: 2.0},
		Features: models.FeatureScores{
			Similarity:  0.3,
			TagMatch:    0.1,
			RatingFit:   0.4,
			PriceFit:    0.5,
			DistanceFit: 0.2,
		},
	}

	explanation := Explain(sc, map[string]float64{"vegan": 0.9})
	assert.Empty(t, explanation.Reasons)
	assert.Empty(t, explanation.Tags)
}
