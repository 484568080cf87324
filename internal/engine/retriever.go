package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/plateful/platesearch/internal/catalog"
	"github.com/plateful/platesearch/internal/models"
)

// Candidate is a menu item paired with its restaurant and the distance to
// the searcher, before scoring.
type Candidate struct {
	Item       *models.MenuItem
	Restaurant *models.Restaurant
	DistanceKm float64
}

// Retriever applies the hard constraints against the catalog and caps the
// result before the scoring stage. All constraints are conjunctive; an
// unset constraint filters nothing.
type Retriever struct {
	store         *catalog.Store
	maxCandidates int
}

func NewRetriever(store *catalog.Store, maxCandidates int) *Retriever {
	if maxCandidates <= 0 {
		maxCandidates = 200
	}
	return &Retriever{store: store, maxCandidates: maxCandidates}
}

// Retrieve returns every candidate passing all active hard filters, capped
// at maxCandidates by distance (nearest first) to bound scoring cost.
func (r *Retriever) Retrieve(ctx context.Context, filters models.FilterSet, location models.Location, now time.Time) ([]Candidate, error) {
	restaurants, err := r.store.Restaurants.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrieval, err)
	}

	type eligible struct {
		restaurant *models.Restaurant
		distanceKm float64
	}
	open := make(map[string]eligible)
	for id, restaurant := range restaurants {
		distance := location.DistanceKm(restaurant.Location)
		if filters.MaxDistanceKm > 0 && distance > filters.MaxDistanceKm {
			continue
		}
		if !restaurant.OpenAt(now) {
			continue
		}
		open[id] = eligible{restaurant: restaurant, distanceKm: distance}
	}
	if len(open) == 0 {
		return nil, nil
	}

	items, err := r.store.MenuItems.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRetrieval, err)
	}

	var candidates []Candidate
	for _, item := range items {
		host, ok := open[item.RestaurantID]
		if !ok {
			continue
		}
		if !passesItemFilters(item, filters) {
			continue
		}
		candidates = append(candidates, Candidate{
			Item:       item,
			Restaurant: host.restaurant,
			DistanceKm: host.distanceKm,
		})
	}

	// Cheap pre-filter cap: nearest first, ties broken by item id so the
	// cap is deterministic.
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].DistanceKm != candidates[j].DistanceKm {
			return candidates[i].DistanceKm < candidates[j].DistanceKm
		}
		return candidates[i].Item.ID < candidates[j].Item.ID
	})
	if len(candidates) > r.maxCandidates {
		candidates = candidates[:r.maxCandidates]
	}
	return candidates, nil
}

func passesItemFilters(item *models.MenuItem, filters models.FilterSet) bool {
	if filters.MaxPrice > 0 && item.Price > filters.MaxPrice {
		return false
	}
	if filters.MaxPrepTime > 0 && item.PrepTime > filters.MaxPrepTime {
		return false
	}
	if filters.MaxCalories > 0 && item.Nutrition.Calories > filters.MaxCalories {
		return false
	}
	if filters.MinProtein > 0 && item.Nutrition.Protein < filters.MinProtein {
		return false
	}
	for _, allergen := range filters.ExcludeAllergens {
		if item.ContainsAllergen(allergen) {
			return false
		}
	}
	for _, restriction := range filters.DietaryRestrictions {
		if !item.HasDietaryTag(restriction) {
			return false
		}
	}
	return true
}
