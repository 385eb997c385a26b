package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/adlens-io/adlens-engine/pkg/models"
	"github.com/adlens-io/adlens-engine/pkg/repositories"
	"github.com/adlens-io/adlens-engine/pkg/testhelpers"
)

const pipelineCSV = `Vendor ID,Vendor Name,Product ID,Product Name,Campaign ID,Campaign Name,Asset Type,Category ID,Category Name (L2),Keyword,Date,Impressions,Clicks,Sales Revenue,ROAS
V1,Acme,P1,Widget,C1,Spring Push (auto),AD_TYPE_LISTING,CAT1,Gadgets,,2024-03-05,"1,200",34,512.50,2.5
V1,Acme,P2,Gizmo,C1,Spring Push (auto),AD_TYPE_LISTING,CAT1,Gadgets,,2024-03-06,800,12,99.90,3.5
V1,Acme,,,C2,Brand Terms,AD_TYPE_SEARCH,,,acme widget,2024-03-05,150,10,42.00,1.25
`

// Runs the whole pipeline against a real database: ingest a small file, then
// read the campaign listing back through the report service.
func TestPipeline_ImportThenCampaignReport_Integration(t *testing.T) {
	tdb := testhelpers.GetTestDB(t)
	tdb.TruncateAll(t)
	ctx := context.Background()

	vendors := repositories.NewVendorRepository(tdb.DB)
	products := repositories.NewProductRepository(tdb.DB)
	campaigns := repositories.NewCampaignRepository(tdb.DB)
	categories := repositories.NewCategoryRepository(tdb.DB)
	keywords := repositories.NewKeywordRepository(tdb.DB)
	performances := repositories.NewPerformanceRepository(tdb.DB)

	importer := NewImportService(vendors, products, campaigns,
		categories, keywords, performances, 500, zap.NewNop())
	reports := NewReportService(campaigns, products, keywords,
		categories, performances, zap.NewNop())

	report, err := importer.Run(ctx, ImportSource{
		Filename: "performance.csv",
		Data:     strings.NewReader(pipelineCSV),
	})
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Equal(t, 3, report.RowsImported)
	assert.Equal(t, 0, report.RowsSkipped)

	rows, err := reports.CampaignReport(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byID := make(map[string]models.CampaignMetrics, len(rows))
	for _, row := range rows {
		byID[row.ID] = row.Data
	}

	listing := byID["C1"]
	assert.Equal(t, "Spring Push", listing.CampaignName)
	assert.Equal(t, int64(46), listing.Clicks)
	assert.Equal(t, "612.40", listing.SalesRevenue)
	assert.Equal(t, 3.0, listing.ROAS, "mean of 2.5 and 3.5")
	assert.Equal(t, 2, listing.ProductCount)
	assert.ElementsMatch(t, []models.ProductRef{
		{ID: "P1", ProductName: "Widget"},
		{ID: "P2", ProductName: "Gizmo"},
	}, listing.Products)

	search := byID["C2"]
	assert.Equal(t, "Brand Terms", search.CampaignName)
	assert.Equal(t, int64(10), search.Clicks)
	assert.Equal(t, "42.00", search.SalesRevenue)
	assert.Equal(t, 1.25, search.ROAS)
	assert.Equal(t, 0, search.ProductCount)

	// The LISTING campaign linked through its category, the SEARCH campaign
	// through its keyword.
	var categoryLinks int
	require.NoError(t, tdb.DB.QueryRow(ctx,
		"SELECT COUNT(*) FROM campaign_categories WHERE campaign_id = 'C1' AND category_id = 'CAT1'").
		Scan(&categoryLinks))
	assert.Equal(t, 1, categoryLinks)

	var keywordLinks int
	require.NoError(t, tdb.DB.QueryRow(ctx,
		`SELECT COUNT(*) FROM campaign_keywords ck
		 JOIN keywords k ON k.keyword_id = ck.keyword_id
		 WHERE ck.campaign_id = 'C2' AND k.keyword = 'acme widget'`).
		Scan(&keywordLinks))
	assert.Equal(t, 1, keywordLinks)
}
