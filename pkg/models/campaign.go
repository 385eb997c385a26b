// Package models contains domain types for adlens-engine.
package models

import "time"

// CampaignType constants derived from the source file's asset_type field.
const (
	CampaignTypeSearch  = "SEARCH"
	CampaignTypeListing = "LISTING"
)

// AssetTypeSearch is the raw asset_type value that maps to a SEARCH campaign.
// Every other value maps to LISTING.
const AssetTypeSearch = "AD_TYPE_SEARCH"

// Campaign is a dimension entity keyed by its natural campaign_id.
// SEARCH campaigns link to keywords, LISTING campaigns link to categories.
type Campaign struct {
	CampaignID   string     `json:"campaign_id"`
	CampaignName string     `json:"campaign_name"`
	CampaignType string     `json:"campaign_type"`
	StartDate    *time.Time `json:"campaign_start_date"`
	EndDate      *time.Time `json:"campaign_end_date"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsSearch reports whether the campaign links keywords rather than categories.
func (c *Campaign) IsSearch() bool {
	return c.CampaignType == CampaignTypeSearch
}
