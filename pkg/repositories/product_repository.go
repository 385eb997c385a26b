package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/adlens-io/adlens-engine/pkg/database"
	"github.com/adlens-io/adlens-engine/pkg/models"
)

// ProductRepository defines data access for the products dimension.
type ProductRepository interface {
	// ListKeys returns the set of existing product natural keys.
	ListKeys(ctx context.Context) (map[string]struct{}, error)
	// CreateIfAbsent inserts a product unless its key already exists.
	CreateIfAbsent(ctx context.Context, product *models.Product) error
	// ListAll returns all products for the product listing page.
	ListAll(ctx context.Context) ([]*models.Product, error)
}

type productRepository struct {
	db *database.DB
}

// NewProductRepository creates a new product repository.
func NewProductRepository(db *database.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) ListKeys(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.db.Query(ctx, `SELECT product_id FROM products`)
	if err != nil {
		return nil, fmt.Errorf("failed to list product keys: %w", err)
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan product key: %w", err)
		}
		keys[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read product keys: %w", err)
	}
	return keys, nil
}

func (r *productRepository) CreateIfAbsent(ctx context.Context, product *models.Product) error {
	now := time.Now()
	query := `
		INSERT INTO products (product_id, product_name, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (product_id) DO NOTHING`

	if _, err := r.db.Exec(ctx, query, product.ProductID, product.ProductName, now); err != nil {
		return fmt.Errorf("failed to create product %s: %w", product.ProductID, err)
	}
	return nil
}

func (r *productRepository) ListAll(ctx context.Context) ([]*models.Product, error) {
	query := `
		SELECT product_id, COALESCE(product_name, ''), created_at, updated_at
		FROM products
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ProductID, &p.ProductName, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}
	return products, nil
}

var _ ProductRepository = (*productRepository)(nil)
