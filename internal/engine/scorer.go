package engine

import (
	"context"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/plateful/platesearch/internal/models"
)

const maxRating = 5.0

// Scorer computes the per-candidate feature breakdown and aggregate score.
// It never sorts; ranking belongs to the orchestrator. Scoring the same
// candidate against the same intent and weights always yields the same
// score.
type Scorer struct {
	weights         models.ScoreWeights
	defaultRadiusKm float64
	pool            *ants.Pool
}

func NewScorer(weights models.ScoreWeights, workers int, defaultRadiusKm float64) (*Scorer, error) {
	if workers < 1 {
		workers = 1
	}
	if defaultRadiusKm <= 0 {
		defaultRadiusKm = 10
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}
	return &Scorer{weights: weights, defaultRadiusKm: defaultRadiusKm, pool: pool}, nil
}

// Score annotates every candidate with its features and aggregate score.
// Candidates are scored in parallel; results keep the input order. Stops
// early when ctx is cancelled.
func (s *Scorer) Score(ctx context.Context, intent *models.SearchIntent, candidates []Candidate, recentLikes [][]float32) ([]models.ScoredCandidate, error) {
	scored := make([]models.ScoredCandidate, len(candidates))

	var wg sync.WaitGroup
	for i, candidate := range candidates {
		i, candidate := i, candidate
		wg.Add(1)
		if err := s.pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			scored[i] = s.scoreOne(intent, candidate, recentLikes)
		}); err != nil {
			wg.Done()
			return nil, err
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return scored, nil
}

func (s *Scorer) scoreOne(intent *models.SearchIntent, candidate Candidate, recentLikes [][]float32) models.ScoredCandidate {
	features := models.FeatureScores{
		Similarity:  clamp01(CosineSimilarity(intent.Embedding, candidate.Item.Embedding)),
		TagMatch:    tagOverlap(intent.TagScores, candidate.Item.TagScores),
		RatingFit:   clamp01(candidate.Restaurant.Rating / maxRating),
		PriceFit:    s.priceFit(intent.Filters, candidate.Item.Price),
		DistanceFit: s.distanceFit(intent.Filters, candidate.DistanceKm),
		LikesBoost:  s.likesBoost(candidate.Item.Embedding, recentLikes),
	}

	score := s.weights.Similarity*features.Similarity +
		s.weights.TagMatch*features.TagMatch +
		s.weights.Rating*features.RatingFit +
		s.weights.Price*features.PriceFit +
		s.weights.Distance*features.DistanceFit +
		features.LikesBoost

	return models.ScoredCandidate{
		Item:       candidate.Item,
		Restaurant: candidate.Restaurant,
		DistanceKm: candidate.DistanceKm,
		Features:   features,
		Score:      score,
	}
}

// tagOverlap sums min(intent, item) confidence per label, normalized by
// the total intent confidence. An intent naming no labels scores 0 against
// every item.
func tagOverlap(intentTags, itemTags map[string]float64) float64 {
	var total, overlap float64
	for label, conf := range intentTags {
		total += conf
		if itemConf, ok := itemTags[label]; ok {
			overlap += minFloat(conf, itemConf)
		}
	}
	if total == 0 {
		return 0
	}
	return clamp01(overlap / total)
}

// priceFit measures closeness to the target price when one is set. Without
// a target, any price the retriever admitted fits perfectly.
func (s *Scorer) priceFit(filters models.FilterSet, price float64) float64 {
	if filters.TargetPrice <= 0 {
		return 1
	}
	denom := filters.MaxPrice
	if denom <= 0 {
		denom = filters.TargetPrice
	}
	return clamp01(1 - absFloat(price-filters.TargetPrice)/denom)
}

func (s *Scorer) distanceFit(filters models.FilterSet, distanceKm float64) float64 {
	maxDistance := filters.MaxDistanceKm
	if maxDistance <= 0 {
		maxDistance = s.defaultRadiusKm
	}
	return clamp01(1 - distanceKm/maxDistance)
}

// likesBoost rewards similarity to the user's most recent liked items,
// capped at weights.LikesCap. No history, no boost.
func (s *Scorer) likesBoost(embedding []float32, recentLikes [][]float32) float64 {
	if len(recentLikes) == 0 || len(embedding) == 0 {
		return 0
	}
	var best float64
	for _, liked := range recentLikes {
		if sim := CosineSimilarity(embedding, liked); sim > best {
			best = sim
		}
	}
	return clamp01(best) * s.weights.LikesCap
}

// Release frees the worker pool.
func (s *Scorer) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
