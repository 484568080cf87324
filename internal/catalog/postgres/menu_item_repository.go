package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/plateful/platesearch/internal/models"
)

type MenuItemRepository struct {
	pool *pgxpool.Pool
}

func NewMenuItemRepository(pool *pgxpool.Pool) *MenuItemRepository {
	return &MenuItemRepository{pool: pool}
}

func (r *MenuItemRepository) BulkUpsert(ctx context.Context, items []*models.MenuItem) error {
	// CopyFrom into a staging table, then merge, so re-ingesting a catalog
	// stays fast and idempotent.
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
        CREATE TEMP TABLE menu_items_staging
        (LIKE menu_items INCLUDING DEFAULTS)
        ON COMMIT DROP
    `)
	if err != nil {
		return fmt.Errorf("failed to create staging table: %w", err)
	}

	_, err = tx.CopyFrom(
		ctx,
		pgx.Identifier{"menu_items_staging"},
		[]string{
			"id", "restaurant_id", "name", "description", "price",
			"prep_time", "category", "calories", "protein", "carbs", "fat",
			"fiber", "sugar", "sodium", "dietary_tags", "allergens",
			"popularity", "embedding", "tag_scores",
		},
		pgx.CopyFromSlice(len(items), func(i int) ([]interface{}, error) {
			tagScores, err := json.Marshal(items[i].TagScores)
			if err != nil {
				return nil, err
			}
			return []interface{}{
				items[i].ID,
				items[i].RestaurantID,
				items[i].Name,
				items[i].Description,
				items[i].Price,
				items[i].PrepTime,
				items[i].Category,
				items[i].Nutrition.Calories,
				items[i].Nutrition.Protein,
				items[i].Nutrition.Carbs,
				items[i].Nutrition.Fat,
				items[i].Nutrition.Fiber,
				items[i].Nutrition.Sugar,
				items[i].Nutrition.Sodium,
				items[i].DietaryTags,
				items[i].Allergens,
				items[i].Popularity,
				items[i].Embedding,
				tagScores,
			}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to copy menu items: %w", err)
	}

	_, err = tx.Exec(ctx, `
        INSERT INTO menu_items
        SELECT * FROM menu_items_staging
        ON CONFLICT (id) DO UPDATE SET
            restaurant_id = EXCLUDED.restaurant_id,
            name = EXCLUDED.name,
            description = EXCLUDED.description,
            price = EXCLUDED.price,
            prep_time = EXCLUDED.prep_time,
            category = EXCLUDED.category,
            calories = EXCLUDED.calories,
            protein = EXCLUDED.protein,
            carbs = EXCLUDED.carbs,
            fat = EXCLUDED.fat,
            fiber = EXCLUDED.fiber,
            sugar = EXCLUDED.sugar,
            sodium = EXCLUDED.sodium,
            dietary_tags = EXCLUDED.dietary_tags,
            allergens = EXCLUDED.allergens,
            popularity = EXCLUDED.popularity
    `)
	if err != nil {
		return fmt.Errorf("failed to merge menu items: %w", err)
	}

	return tx.Commit(ctx)
}

const menuItemColumns = `
    id, restaurant_id, name, description, price, prep_time, category,
    calories, protein, carbs, fat, fiber, sugar, sodium,
    dietary_tags, allergens, popularity, embedding, tag_scores
`

func (r *MenuItemRepository) GetAll(ctx context.Context) (map[string]*models.MenuItem, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+menuItemColumns+" FROM menu_items")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make(map[string]*models.MenuItem)
	for rows.Next() {
		item, err := scanMenuItem(rows.Scan)
		if err != nil {
			return nil, err
		}
		items[item.ID] = item
	}
	return items, rows.Err()
}

func (r *MenuItemRepository) GetByID(ctx context.Context, id string) (*models.MenuItem, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+menuItemColumns+" FROM menu_items WHERE id = $1", id)
	return scanMenuItem(row.Scan)
}

func (r *MenuItemRepository) GetByRestaurantID(ctx context.Context, restaurantID string) ([]*models.MenuItem, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+menuItemColumns+" FROM menu_items WHERE restaurant_id = $1", restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.MenuItem
	for rows.Next() {
		item, err := scanMenuItem(rows.Scan)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *MenuItemRepository) UpdateDerived(ctx context.Context, id string, embedding []float32, tagScores map[string]float64) error {
	encoded, err := json.Marshal(tagScores)
	if err != nil {
		return fmt.Errorf("failed to encode tag scores for %s: %w", id, err)
	}
	_, err = r.pool.Exec(ctx,
		"UPDATE menu_items SET embedding = $2, tag_scores = $3 WHERE id = $1",
		id, embedding, encoded)
	return err
}

func scanMenuItem(scan func(dest ...any) error) (*models.MenuItem, error) {
	item := &models.MenuItem{}
	var tagScores []byte
	err := scan(
		&item.ID,
		&item.RestaurantID,
		&item.Name,
		&item.Description,
		&item.Price,
		&item.PrepTime,
		&item.Category,
		&item.Nutrition.Calories,
		&item.Nutrition.Protein,
		&item.Nutrition.Carbs,
		&item.Nutrition.Fat,
		&item.Nutrition.Fiber,
		&item.Nutrition.Sugar,
		&item.Nutrition.Sodium,
		&item.DietaryTags,
		&item.Allergens,
		&item.Popularity,
		&item.Embedding,
		&tagScores,
	)
	if err != nil {
		return nil, err
	}
	if len(tagScores) > 0 {
		if err := json.Unmarshal(tagScores, &item.TagScores); err != nil {
			return nil, fmt.Errorf("failed to decode tag scores for %s: %w", item.ID, err)
		}
	}
	return item, nil
}

func (r *MenuItemRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM menu_items").Scan(&count)
	return count, err
}
