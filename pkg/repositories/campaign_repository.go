package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/adlens-io/adlens-engine/pkg/apperrors"
	"github.com/adlens-io/adlens-engine/pkg/database"
	"github.com/adlens-io/adlens-engine/pkg/models"
)

// CampaignRepository defines data access for the campaigns dimension and its
// many-to-many links to categories and keywords.
type CampaignRepository interface {
	// ListKeys returns the set of existing campaign natural keys.
	ListKeys(ctx context.Context) (map[string]struct{}, error)
	// CreateIfAbsent inserts a campaign unless its key already exists.
	// When the key exists only updated_at is bumped; attributes keep their
	// first-written values.
	CreateIfAbsent(ctx context.Context, campaign *models.Campaign) error
	// ListAll returns all campaigns, most recently created first.
	ListAll(ctx context.Context) ([]*models.Campaign, error)
	// Get returns one campaign or apperrors.ErrNotFound.
	Get(ctx context.Context, campaignID string) (*models.Campaign, error)
	// LinkCategory records a campaign-category pair, deduplicated.
	LinkCategory(ctx context.Context, campaignID, categoryID string) error
	// LinkKeyword records a campaign-keyword pair, deduplicated.
	LinkKeyword(ctx context.Context, campaignID string, keywordID int64) error
}

type campaignRepository struct {
	db *database.DB
}

// NewCampaignRepository creates a new campaign repository.
func NewCampaignRepository(db *database.DB) CampaignRepository {
	return &campaignRepository{db: db}
}

func (r *campaignRepository) ListKeys(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.db.Query(ctx, `SELECT campaign_id FROM campaigns`)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaign keys: %w", err)
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan campaign key: %w", err)
		}
		keys[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read campaign keys: %w", err)
	}
	return keys, nil
}

func (r *campaignRepository) CreateIfAbsent(ctx context.Context, campaign *models.Campaign) error {
	now := time.Now()
	query := `
		INSERT INTO campaigns (campaign_id, campaign_name, campaign_type,
			campaign_start_date, campaign_end_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (campaign_id) DO UPDATE SET updated_at = EXCLUDED.updated_at`

	_, err := r.db.Exec(ctx, query,
		campaign.CampaignID,
		campaign.CampaignName,
		campaign.CampaignType,
		campaign.StartDate,
		campaign.EndDate,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create campaign %s: %w", campaign.CampaignID, err)
	}
	return nil
}

func (r *campaignRepository) ListAll(ctx context.Context) ([]*models.Campaign, error) {
	query := `
		SELECT campaign_id, campaign_name, campaign_type,
			campaign_start_date, campaign_end_date, created_at, updated_at
		FROM campaigns
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []*models.Campaign
	for rows.Next() {
		var c models.Campaign
		if err := rows.Scan(&c.CampaignID, &c.CampaignName, &c.CampaignType,
			&c.StartDate, &c.EndDate, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan campaign: %w", err)
		}
		campaigns = append(campaigns, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read campaigns: %w", err)
	}
	return campaigns, nil
}

func (r *campaignRepository) Get(ctx context.Context, campaignID string) (*models.Campaign, error) {
	query := `
		SELECT campaign_id, campaign_name, campaign_type,
			campaign_start_date, campaign_end_date, created_at, updated_at
		FROM campaigns
		WHERE campaign_id = $1`

	var c models.Campaign
	err := r.db.QueryRow(ctx, query, campaignID).Scan(&c.CampaignID, &c.CampaignName,
		&c.CampaignType, &c.StartDate, &c.EndDate, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get campaign %s: %w", campaignID, err)
	}
	return &c, nil
}

func (r *campaignRepository) LinkCategory(ctx context.Context, campaignID, categoryID string) error {
	query := `
		INSERT INTO campaign_categories (campaign_id, category_id)
		VALUES ($1, $2)
		ON CONFLICT (campaign_id, category_id) DO NOTHING`

	if _, err := r.db.Exec(ctx, query, campaignID, categoryID); err != nil {
		return fmt.Errorf("failed to link campaign %s to category %s: %w", campaignID, categoryID, err)
	}
	return nil
}

func (r *campaignRepository) LinkKeyword(ctx context.Context, campaignID string, keywordID int64) error {
	query := `
		INSERT INTO campaign_keywords (campaign_id, keyword_id)
		VALUES ($1, $2)
		ON CONFLICT (campaign_id, keyword_id) DO NOTHING`

	if _, err := r.db.Exec(ctx, query, campaignID, keywordID); err != nil {
		return fmt.Errorf("failed to link campaign %s to keyword %d: %w", campaignID, keywordID, err)
	}
	return nil
}

var _ CampaignRepository = (*campaignRepository)(nil)
