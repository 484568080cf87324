package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/plateful/platesearch/internal/models"
)

// MemoryRestaurantRepository is an in-memory RestaurantRepository used by
// tests and by the engine when no database is configured.
type MemoryRestaurantRepository struct {
	mu          sync.RWMutex
	restaurants map[string]*models.Restaurant
}

func NewMemoryRestaurantRepository() *MemoryRestaurantRepository {
	return &MemoryRestaurantRepository{restaurants: make(map[string]*models.Restaurant)}
}

func (r *MemoryRestaurantRepository) BulkUpsert(ctx context.Context, restaurants []*models.Restaurant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, restaurant := range restaurants {
		r.restaurants[restaurant.ID] = restaurant
	}
	return nil
}

func (r *MemoryRestaurantRepository) GetAll(ctx context.Context) (map[string]*models.Restaurant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*models.Restaurant, len(r.restaurants))
	for id, restaurant := range r.restaurants {
		out[id] = restaurant
	}
	return out, nil
}

func (r *MemoryRestaurantRepository) GetByID(ctx context.Context, id string) (*models.Restaurant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	restaurant, ok := r.restaurants[id]
	if !ok {
		return nil, fmt.Errorf("restaurant %s not found", id)
	}
	return restaurant, nil
}

func (r *MemoryRestaurantRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.restaurants), nil
}

// MemoryMenuItemRepository is the in-memory MenuItemRepository counterpart.
type MemoryMenuItemRepository struct {
	mu    sync.RWMutex
	items map[string]*models.MenuItem
}

func NewMemoryMenuItemRepository() *MemoryMenuItemRepository {
	return &MemoryMenuItemRepository{items: make(map[string]*models.MenuItem)}
}

func (r *MemoryMenuItemRepository) BulkUpsert(ctx context.Context, items []*models.MenuItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range items {
		existing, ok := r.items[item.ID]
		if ok && item.Embedding == nil {
			// Keep previously derived vectors when the upsert carries none
			item.Embedding = existing.Embedding
			item.TagScores = existing.TagScores
		}
		r.items[item.ID] = item
	}
	return nil
}

func (r *MemoryMenuItemRepository) GetAll(ctx context.Context) (map[string]*models.MenuItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*models.MenuItem, len(r.items))
	for id, item := range r.items {
		out[id] = item
	}
	return out, nil
}

func (r *MemoryMenuItemRepository) GetByID(ctx context.Context, id string) (*models.MenuItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("menu item %s not found", id)
	}
	return item, nil
}

func (r *MemoryMenuItemRepository) GetByRestaurantID(ctx context.Context, restaurantID string) ([]*models.MenuItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var items []*models.MenuItem
	for _, item := range r.items {
		if item.RestaurantID == restaurantID {
			items = append(items, item)
		}
	}
	return items, nil
}

func (r *MemoryMenuItemRepository) UpdateDerived(ctx context.Context, id string, embedding []float32, tagScores map[string]float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok {
		return fmt.Errorf("menu item %s not found", id)
	}
	item.Embedding = embedding
	item.TagScores = tagScores
	return nil
}

func (r *MemoryMenuItemRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items), nil
}

// NewMemoryStore wires both in-memory repositories into a Store.
func NewMemoryStore() *Store {
	return &Store{
		Restaurants: NewMemoryRestaurantRepository(),
		MenuItems:   NewMemoryMenuItemRepository(),
	}
}
