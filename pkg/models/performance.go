package models

import "time"

// AdPerformance is one fact row: a single measured observation for a
// vendor/product/campaign combination. Measures are pointers because empty
// spreadsheet cells persist as NULL. CategoryID and KeywordID are mutually
// exclusive: only one is set, depending on the owning campaign's type.
type AdPerformance struct {
	ID         int64      `json:"id"`
	Date       *time.Time `json:"date"`
	ProductID  *string    `json:"product_id"`
	VendorID   *string    `json:"vendor_id"`
	CampaignID *string    `json:"campaign_id"`
	KeywordID  *int64     `json:"keyword_id"`
	CategoryID *string    `json:"category_id"`

	Impressions   *int64   `json:"impressions"`
	Clicks        *int64   `json:"clicks"`
	Orders        *int64   `json:"orders"`
	UnitSold      *int64   `json:"unit_sold"`
	CTR           *float64 `json:"ctr"`
	CVR           *float64 `json:"cvr"`
	AvgAdPosition *int64   `json:"avg_ad_position"`
	SalesRevenue  *float64 `json:"sales_revenue"`
	TotalAdSpend  *float64 `json:"total_ad_spend"`
	CPA           *float64 `json:"cpa"`
	CPC           *float64 `json:"cpc"`
	ROAS          *float64 `json:"roas"`

	// Extra holds unrecognized spreadsheet columns as-is (stored as JSONB).
	// The physical schema is never mutated to fit a file's headers.
	Extra map[string]string `json:"extra,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PerformanceFact is a fact row joined with the display names of its related
// dimensions, as loaded for the reporting layer.
type PerformanceFact struct {
	AdPerformance

	ProductName       *string    `json:"product_name"`
	CategoryName      *string    `json:"category_name"`
	KeywordText       *string    `json:"keyword"`
	CampaignName      *string    `json:"campaign_name"`
	CampaignStartDate *time.Time `json:"campaign_start_date"`
	CampaignEndDate   *time.Time `json:"campaign_end_date"`
}
