package catalog

import (
	"context"

	"github.com/plateful/platesearch/internal/models"
)

// The engine reads the catalog through these interfaces and never writes
// it; ingestion is the only writer.

type RestaurantRepository interface {
	BulkUpsert(ctx context.Context, restaurants []*models.Restaurant) error
	GetAll(ctx context.Context) (map[string]*models.Restaurant, error)
	GetByID(ctx context.Context, id string) (*models.Restaurant, error)
	Count(ctx context.Context) (int, error)
}

type MenuItemRepository interface {
	BulkUpsert(ctx context.Context, items []*models.MenuItem) error
	GetAll(ctx context.Context) (map[string]*models.MenuItem, error)
	GetByID(ctx context.Context, id string) (*models.MenuItem, error)
	GetByRestaurantID(ctx context.Context, restaurantID string) ([]*models.MenuItem, error)
	UpdateDerived(ctx context.Context, id string, embedding []float32, tagScores map[string]float64) error
	Count(ctx context.Context) (int, error)
}

// Store pairs the two repositories behind one injection point.
type Store struct {
	Restaurants RestaurantRepository
	MenuItems   MenuItemRepository
}
