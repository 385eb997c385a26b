package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/adlens-io/adlens-engine/pkg/database"
	"github.com/adlens-io/adlens-engine/pkg/models"
)

// CategoryRepository defines data access for the categories dimension.
type CategoryRepository interface {
	// ListKeys returns the set of existing category natural keys.
	ListKeys(ctx context.Context) (map[string]struct{}, error)
	// CreateIfAbsent inserts a category unless its key already exists.
	CreateIfAbsent(ctx context.Context, category *models.Category) error
	// ListAll returns all categories, used to populate listing filters.
	ListAll(ctx context.Context) ([]*models.Category, error)
}

type categoryRepository struct {
	db *database.DB
}

// NewCategoryRepository creates a new category repository.
func NewCategoryRepository(db *database.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) ListKeys(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.db.Query(ctx, `SELECT category_id FROM categories`)
	if err != nil {
		return nil, fmt.Errorf("failed to list category keys: %w", err)
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan category key: %w", err)
		}
		keys[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read category keys: %w", err)
	}
	return keys, nil
}

func (r *categoryRepository) CreateIfAbsent(ctx context.Context, category *models.Category) error {
	now := time.Now()
	query := `
		INSERT INTO categories (category_id, category_name, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (category_id) DO NOTHING`

	if _, err := r.db.Exec(ctx, query, category.CategoryID, category.CategoryName, now); err != nil {
		return fmt.Errorf("failed to create category %s: %w", category.CategoryID, err)
	}
	return nil
}

func (r *categoryRepository) ListAll(ctx context.Context) ([]*models.Category, error) {
	query := `
		SELECT category_id, COALESCE(category_name, ''), created_at, updated_at
		FROM categories
		ORDER BY category_name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.CategoryID, &c.CategoryName, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}
	return categories, nil
}

var _ CategoryRepository = (*categoryRepository)(nil)
