package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/plateful/platesearch/internal/models"
)

type RestaurantRepository struct {
	pool *pgxpool.Pool
}

func NewRestaurantRepository(pool *pgxpool.Pool) *RestaurantRepository {
	return &RestaurantRepository{pool: pool}
}

func (r *RestaurantRepository) BulkUpsert(ctx context.Context, restaurants []*models.Restaurant) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, restaurant := range restaurants {
		hours, err := json.Marshal(restaurant.Hours)
		if err != nil {
			return fmt.Errorf("failed to encode hours for %s: %w", restaurant.ID, err)
		}

		query := `
            INSERT INTO restaurants (
                id, name, slug_name, phone, address, town, location,
                cuisines, rating, total_ratings, price_tier, avg_prep_time, hours
            ) VALUES (
                $1, $2, $3, $4, $5, $6,
                ST_SetSRID(ST_MakePoint($7, $8), 4326)::geography,
                $9, $10, $11, $12, $13, $14
            )
            ON CONFLICT (id) DO UPDATE SET
                name = EXCLUDED.name,
                slug_name = EXCLUDED.slug_name,
                phone = EXCLUDED.phone,
                address = EXCLUDED.address,
                town = EXCLUDED.town,
                location = EXCLUDED.location,
                cuisines = EXCLUDED.cuisines,
                rating = EXCLUDED.rating,
                total_ratings = EXCLUDED.total_ratings,
                price_tier = EXCLUDED.price_tier,
                avg_prep_time = EXCLUDED.avg_prep_time,
                hours = EXCLUDED.hours
        `

		_, err = tx.Exec(ctx, query,
			restaurant.ID,
			restaurant.Name,
			restaurant.SlugName,
			restaurant.Phone,
			restaurant.Address,
			restaurant.Town,
			restaurant.Location.Lon,
			restaurant.Location.Lat,
			restaurant.Cuisines,
			restaurant.Rating,
			restaurant.TotalRatings,
			restaurant.PriceTier,
			restaurant.AvgPrepTime,
			hours,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *RestaurantRepository) GetAll(ctx context.Context) (map[string]*models.Restaurant, error) {
	query := `
        SELECT
            id, name, slug_name, phone, address, town,
            ST_X(location::geometry) as longitude, ST_Y(location::geometry) as latitude,
            cuisines, rating, total_ratings, price_tier, avg_prep_time, hours
        FROM restaurants
    `
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	restaurants := make(map[string]*models.Restaurant)
	for rows.Next() {
		restaurant, err := scanRestaurant(rows.Scan)
		if err != nil {
			return nil, err
		}
		restaurants[restaurant.ID] = restaurant
	}
	return restaurants, rows.Err()
}

func (r *RestaurantRepository) GetByID(ctx context.Context, id string) (*models.Restaurant, error) {
	query := `
        SELECT
            id, name, slug_name, phone, address, town,
            ST_X(location::geometry) as longitude, ST_Y(location::geometry) as latitude,
            cuisines, rating, total_ratings, price_tier, avg_prep_time, hours
        FROM restaurants
        WHERE id = $1
    `
	return scanRestaurant(r.pool.QueryRow(ctx, query, id).Scan)
}

func scanRestaurant(scan func(dest ...any) error) (*models.Restaurant, error) {
	restaurant := &models.Restaurant{}
	var lon, lat float64
	var hours []byte
	err := scan(
		&restaurant.ID,
		&restaurant.Name,
		&restaurant.SlugName,
		&restaurant.Phone,
		&restaurant.Address,
		&restaurant.Town,
		&lon,
		&lat,
		&restaurant.Cuisines,
		&restaurant.Rating,
		&restaurant.TotalRatings,
		&restaurant.PriceTier,
		&restaurant.AvgPrepTime,
		&hours,
	)
	if err != nil {
		return nil, err
	}
	restaurant.Location = models.Location{Lat: lat, Lon: lon}
	if len(hours) > 0 {
		if err := json.Unmarshal(hours, &restaurant.Hours); err != nil {
			return nil, fmt.Errorf("failed to decode hours for %s: %w", restaurant.ID, err)
		}
	}
	return restaurant, nil
}

func (r *RestaurantRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM restaurants").Scan(&count)
	return count, err
}
