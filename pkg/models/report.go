package models

import "time"

// Report rows are keyed entries: a stable entity id plus a display payload.
// Formatting rules (2-decimal rounding, percentage strings, thousands
// separators, "-" placeholders) match what the dashboard tables render.

// ProductRef is a minimal product reference for filter population.
type ProductRef struct {
	ID          string `json:"id"`
	ProductName string `json:"product_name"`
}

// CampaignMetrics is the aggregated payload for one campaign listing row.
type CampaignMetrics struct {
	CampaignName string       `json:"campaign_name"`
	ROAS         float64      `json:"roas"`
	ProductCount int          `json:"product_count"`
	StartDate    *time.Time   `json:"campaign_start_date"`
	EndDate      *time.Time   `json:"campaign_end_date"`
	SalesRevenue string       `json:"sales_revenue"`
	Clicks       int64        `json:"clicks"`
	Orders       int64        `json:"orders"`
	Products     []ProductRef `json:"products"`
}

// CampaignReportRow is one keyed campaign listing entry.
type CampaignReportRow struct {
	ID   string          `json:"id"`
	Data CampaignMetrics `json:"data"`
}

// ProductMetrics is the aggregated payload for one product listing row.
type ProductMetrics struct {
	ProductName   string     `json:"product_name"`
	Category      string     `json:"category"`
	CampaignCount int        `json:"campaigns"`
	AverageROAS   float64    `json:"average_roas"`
	TotalRevenue  string     `json:"total_revenue"`
	TotalClicks   int64      `json:"total_clicks"`
	Orders        int64      `json:"orders"`
	CTR           string     `json:"ctr"`
	CVR           string     `json:"cvr"`
	StartDate     *time.Time `json:"campaign_start_date"`
	EndDate       *time.Time `json:"campaign_end_date"`
}

// ProductReportRow is one keyed product listing entry.
type ProductReportRow struct {
	ID   string         `json:"id"`
	Data ProductMetrics `json:"data"`
}

// KeywordMetrics is the aggregated payload for one keyword listing row.
type KeywordMetrics struct {
	KeywordName   string     `json:"keyword_name"`
	Category      string     `json:"category"`
	CampaignCount int        `json:"campaigns"`
	AverageROAS   float64    `json:"average_roas"`
	TotalRevenue  string     `json:"total_revenue"`
	TotalClicks   int64      `json:"total_clicks"`
	Orders        int64      `json:"orders"`
	CTR           string     `json:"ctr"`
	CVR           string     `json:"cvr"`
	Impressions   int64      `json:"impressions"`
	ProductCount  int        `json:"product_count"`
	AvgCPC        string     `json:"avg_cpc"`
	StartDate     *time.Time `json:"campaign_start_date"`
	EndDate       *time.Time `json:"campaign_end_date"`
}

// KeywordReportRow is one keyed keyword listing entry.
type KeywordReportRow struct {
	ID   int64          `json:"id"`
	Data KeywordMetrics `json:"data"`
}
