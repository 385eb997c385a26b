package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/adlens-io/adlens-engine/pkg/database"
	"github.com/adlens-io/adlens-engine/pkg/models"
)

// PerformanceRepository defines data access for the ad_performances fact table.
type PerformanceRepository interface {
	// InsertBatch bulk-inserts a batch of fact rows in one operation.
	InsertBatch(ctx context.Context, facts []*models.AdPerformance) error
	// ListByCampaign returns all facts for a campaign with dimension names joined.
	ListByCampaign(ctx context.Context, campaignID string) ([]*models.PerformanceFact, error)
	// ListByProduct returns all facts for a product with dimension names joined.
	ListByProduct(ctx context.Context, productID string) ([]*models.PerformanceFact, error)
	// ListByKeyword returns all facts for a keyword with dimension names joined.
	ListByKeyword(ctx context.Context, keywordID int64) ([]*models.PerformanceFact, error)
	// DistinctProductNames returns the distinct non-null product names among a
	// campaign's facts, for filter population.
	DistinctProductNames(ctx context.Context, campaignID string) ([]string, error)
}

type performanceRepository struct {
	db *database.DB
}

// NewPerformanceRepository creates a new performance repository.
func NewPerformanceRepository(db *database.DB) PerformanceRepository {
	return &performanceRepository{db: db}
}

var factColumns = []string{
	"date", "product_id", "vendor_id", "campaign_id", "keyword_id", "category_id",
	"impressions", "clicks", "orders", "unit_sold", "ctr", "cvr", "avg_ad_position",
	"sales_revenue", "total_ad_spend", "cpa", "cpc", "roas", "extra",
	"created_at", "updated_at",
}

func (r *performanceRepository) InsertBatch(ctx context.Context, facts []*models.AdPerformance) error {
	if len(facts) == 0 {
		return nil
	}

	now := time.Now()
	_, err := r.db.CopyFrom(ctx,
		pgx.Identifier{"ad_performances"},
		factColumns,
		pgx.CopyFromSlice(len(facts), func(i int) ([]any, error) {
			f := facts[i]
			var extra []byte
			if len(f.Extra) > 0 {
				var err error
				extra, err = json.Marshal(f.Extra)
				if err != nil {
					return nil, fmt.Errorf("failed to marshal extra attributes: %w", err)
				}
			}
			return []any{
				f.Date, f.ProductID, f.VendorID, f.CampaignID, f.KeywordID, f.CategoryID,
				f.Impressions, f.Clicks, f.Orders, f.UnitSold, f.CTR, f.CVR, f.AvgAdPosition,
				f.SalesRevenue, f.TotalAdSpend, f.CPA, f.CPC, f.ROAS, extra,
				now, now,
			}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to bulk insert %d facts: %w", len(facts), err)
	}
	return nil
}

// factSelect joins each fact with the display names of its dimensions. Reports
// aggregate these rows in memory; there is no pagination by design.
const factSelect = `
	SELECT p.id, p.date, p.product_id, p.vendor_id, p.campaign_id, p.keyword_id, p.category_id,
		p.impressions, p.clicks, p.orders, p.unit_sold, p.ctr, p.cvr, p.avg_ad_position,
		p.sales_revenue, p.total_ad_spend, p.cpa, p.cpc, p.roas,
		pr.product_name, cat.category_name, k.keyword,
		c.campaign_name, c.campaign_start_date, c.campaign_end_date
	FROM ad_performances p
	LEFT JOIN products pr ON pr.product_id = p.product_id
	LEFT JOIN categories cat ON cat.category_id = p.category_id
	LEFT JOIN keywords k ON k.keyword_id = p.keyword_id
	LEFT JOIN campaigns c ON c.campaign_id = p.campaign_id`

func (r *performanceRepository) ListByCampaign(ctx context.Context, campaignID string) ([]*models.PerformanceFact, error) {
	rows, err := r.db.Query(ctx, factSelect+` WHERE p.campaign_id = $1`, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to list facts for campaign %s: %w", campaignID, err)
	}
	defer rows.Close()
	return scanFacts(rows)
}

func (r *performanceRepository) ListByProduct(ctx context.Context, productID string) ([]*models.PerformanceFact, error) {
	rows, err := r.db.Query(ctx, factSelect+` WHERE p.product_id = $1`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list facts for product %s: %w", productID, err)
	}
	defer rows.Close()
	return scanFacts(rows)
}

func (r *performanceRepository) ListByKeyword(ctx context.Context, keywordID int64) ([]*models.PerformanceFact, error) {
	rows, err := r.db.Query(ctx, factSelect+` WHERE p.keyword_id = $1`, keywordID)
	if err != nil {
		return nil, fmt.Errorf("failed to list facts for keyword %d: %w", keywordID, err)
	}
	defer rows.Close()
	return scanFacts(rows)
}

func scanFacts(rows pgx.Rows) ([]*models.PerformanceFact, error) {
	var facts []*models.PerformanceFact
	for rows.Next() {
		var f models.PerformanceFact
		err := rows.Scan(
			&f.ID, &f.Date, &f.ProductID, &f.VendorID, &f.CampaignID, &f.KeywordID, &f.CategoryID,
			&f.Impressions, &f.Clicks, &f.Orders, &f.UnitSold, &f.CTR, &f.CVR, &f.AvgAdPosition,
			&f.SalesRevenue, &f.TotalAdSpend, &f.CPA, &f.CPC, &f.ROAS,
			&f.ProductName, &f.CategoryName, &f.KeywordText,
			&f.CampaignName, &f.CampaignStartDate, &f.CampaignEndDate,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fact: %w", err)
		}
		facts = append(facts, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read facts: %w", err)
	}
	return facts, nil
}

func (r *performanceRepository) DistinctProductNames(ctx context.Context, campaignID string) ([]string, error) {
	query := `
		SELECT DISTINCT pr.product_name
		FROM ad_performances p
		JOIN products pr ON pr.product_id = p.product_id
		WHERE p.campaign_id = $1 AND pr.product_name IS NOT NULL
		ORDER BY pr.product_name`

	rows, err := r.db.Query(ctx, query, campaignID)
	if err != nil {
		return nil, fmt.Errorf("failed to list product names for campaign %s: %w", campaignID, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan product name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read product names: %w", err)
	}
	return names, nil
}

var _ PerformanceRepository = (*performanceRepository)(nil)
