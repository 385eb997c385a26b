// Package repositories contains PostgreSQL data access for adlens-engine.
package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/adlens-io/adlens-engine/pkg/database"
	"github.com/adlens-io/adlens-engine/pkg/models"
)

// VendorRepository defines data access for the vendors dimension.
type VendorRepository interface {
	// ListKeys returns the set of existing vendor natural keys.
	ListKeys(ctx context.Context) (map[string]struct{}, error)
	// CreateIfAbsent inserts a vendor unless its key already exists.
	// Existing rows are never overwritten (first-write wins).
	CreateIfAbsent(ctx context.Context, vendor *models.Vendor) error
}

type vendorRepository struct {
	db *database.DB
}

// NewVendorRepository creates a new vendor repository.
func NewVendorRepository(db *database.DB) VendorRepository {
	return &vendorRepository{db: db}
}

func (r *vendorRepository) ListKeys(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.db.Query(ctx, `SELECT vendor_id FROM vendors`)
	if err != nil {
		return nil, fmt.Errorf("failed to list vendor keys: %w", err)
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan vendor key: %w", err)
		}
		keys[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read vendor keys: %w", err)
	}
	return keys, nil
}

func (r *vendorRepository) CreateIfAbsent(ctx context.Context, vendor *models.Vendor) error {
	now := time.Now()
	query := `
		INSERT INTO vendors (vendor_id, vendor_name, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (vendor_id) DO NOTHING`

	if _, err := r.db.Exec(ctx, query, vendor.VendorID, vendor.VendorName, now); err != nil {
		return fmt.Errorf("failed to create vendor %s: %w", vendor.VendorID, err)
	}
	return nil
}

var _ VendorRepository = (*vendorRepository)(nil)
