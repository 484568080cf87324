package engine

import (
	"fmt"
	"sort"

	"github.com/plateful/platesearch/internal/models"
)

// Thresholds above which a feature earns a human-readable reason.
const (
	explainSimilarity = 0.75
	explainTagMatch   = 0.6
	explainPriceFit   = 0.9
	explainDistance   = 0.8
	explainRating     = 0.9
	explainBoost      = 0.05
)

// Explain derives the ordered reason list for one ranked candidate. Pure
// and stable: the same feature values always produce the same output.
func Explain(sc models.ScoredCandidate, intentTags map[string]float64) models.Explanation {
	var reasons []string

	if sc.Features.Similarity > explainSimilarity {
		reasons = append(reasons, "close match for what you asked for")
	}

	matched := matchedTags(intentTags, sc.Item.TagScores)
	if sc.Features.TagMatch > explainTagMatch && len(matched) > 0 {
		top := matched
		if len(top) > 2 {
			top = top[:2]
		}
		for _, tag := range top {
			reasons = append(reasons, fmt.Sprintf("matches %q", tag))
		}
	}

	if sc.Features.PriceFit > explainPriceFit {
		reasons = append(reasons, "within budget")
	}
	if sc.Features.DistanceFit > explainDistance {
		reasons = append(reasons, "very close")
	}
	if sc.Features.RatingFit >= explainRating {
		reasons = append(reasons, fmt.Sprintf("highly rated (%.1f)", sc.Restaurant.Rating))
	}
	if sc.Features.LikesBoost > explainBoost {
		reasons = append(reasons, "similar to dishes you liked")
	}

	return models.Explanation{
		Tags:       matched,
		Similarity: sc.Features.Similarity,
		Reasons:    reasons,
	}
}

// matchedTags lists the labels scored by both intent and item, strongest
// overlap first, ties broken alphabetically so output stays stable.
func matchedTags(intentTags, itemTags map[string]float64) []string {
	type match struct {
		label   string
		overlap float64
	}
	var matches []match
	for label, conf := range intentTags {
		itemConf, ok := itemTags[label]
		if !ok || conf <= 0 || itemConf <= 0 {
			continue
		}
		matches = append(matches, match{label: label, overlap: minFloat(conf, itemConf)})
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].overlap != matches[j].overlap {
			return matches[i].overlap > matches[j].overlap
		}
		return matches[i].label < matches[j].label
	})

	labels := make([]string, len(matches))
	for i, m := range matches {
		labels[i] = m.label
	}
	return labels
}
