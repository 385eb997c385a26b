package repositories

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adlens-io/adlens-engine/pkg/apperrors"
	"github.com/adlens-io/adlens-engine/pkg/models"
	"github.com/adlens-io/adlens-engine/pkg/testhelpers"
)

func strPtr(s string) *string   { return &s }
func intPtr(v int64) *int64     { return &v }
func fltPtr(v float64) *float64 { return &v }

func TestVendorRepository_Integration(t *testing.T) {
	tdb := testhelpers.GetTestDB(t)
	tdb.TruncateAll(t)
	ctx := context.Background()

	repo := NewVendorRepository(tdb.DB)

	require.NoError(t, repo.CreateIfAbsent(ctx, &models.Vendor{VendorID: "V1", VendorName: "Acme"}))
	require.NoError(t, repo.CreateIfAbsent(ctx, &models.Vendor{VendorID: "V1", VendorName: "Renamed"}))

	keys, err := repo.ListKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"V1": {}}, keys)

	var name string
	err = tdb.DB.QueryRow(ctx, "SELECT vendor_name FROM vendors WHERE vendor_id = 'V1'").Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "Acme", name, "first write wins on attributes")
}

func TestCampaignRepository_Integration(t *testing.T) {
	tdb := testhelpers.GetTestDB(t)
	tdb.TruncateAll(t)
	ctx := context.Background()

	repo := NewCampaignRepository(tdb.DB)

	require.NoError(t, repo.CreateIfAbsent(ctx, &models.Campaign{
		CampaignID:   "C1",
		CampaignName: "Spring Push",
		CampaignType: models.CampaignTypeListing,
	}))
	require.NoError(t, repo.CreateIfAbsent(ctx, &models.Campaign{
		CampaignID:   "C1",
		CampaignName: "Renamed",
		CampaignType: models.CampaignTypeSearch,
	}))

	got, err := repo.Get(ctx, "C1")
	require.NoError(t, err)
	assert.Equal(t, "Spring Push", got.CampaignName, "first write wins on attributes")
	assert.Equal(t, models.CampaignTypeListing, got.CampaignType)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt) || got.UpdatedAt.Equal(got.CreatedAt),
		"the duplicate insert bumps updated_at")

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestCampaignRepository_ConcurrentCreate_Integration(t *testing.T) {
	tdb := testhelpers.GetTestDB(t)
	tdb.TruncateAll(t)
	ctx := context.Background()

	repo := NewCampaignRepository(tdb.DB)

	// Two importers racing on the same campaign id both succeed; exactly one
	// row exists afterwards and its attributes come from whichever won.
	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.CreateIfAbsent(ctx, &models.Campaign{
				CampaignID:   "C1",
				CampaignName: "Racer",
				CampaignType: models.CampaignTypeListing,
			})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	var count int
	require.NoError(t, tdb.DB.QueryRow(ctx,
		"SELECT COUNT(*) FROM campaigns WHERE campaign_id = 'C1'").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestCampaignRepository_Links_Integration(t *testing.T) {
	tdb := testhelpers.GetTestDB(t)
	tdb.TruncateAll(t)
	ctx := context.Background()

	campaigns := NewCampaignRepository(tdb.DB)
	categories := NewCategoryRepository(tdb.DB)
	keywords := NewKeywordRepository(tdb.DB)

	require.NoError(t, campaigns.CreateIfAbsent(ctx, &models.Campaign{
		CampaignID: "C1", CampaignName: "Alpha", CampaignType: models.CampaignTypeListing,
	}))
	require.NoError(t, categories.CreateIfAbsent(ctx, &models.Category{
		CategoryID: "CAT1", CategoryName: "Gadgets",
	}))

	require.NoError(t, campaigns.LinkCategory(ctx, "C1", "CAT1"))
	require.NoError(t, campaigns.LinkCategory(ctx, "C1", "CAT1"), "duplicate link is a no-op")

	var linkCount int
	require.NoError(t, tdb.DB.QueryRow(ctx,
		"SELECT COUNT(*) FROM campaign_categories WHERE campaign_id = 'C1'").Scan(&linkCount))
	assert.Equal(t, 1, linkCount)

	kwID, err := keywords.GetOrCreate(ctx, "acme widget")
	require.NoError(t, err)
	require.NoError(t, campaigns.LinkKeyword(ctx, "C1", kwID))
	require.NoError(t, campaigns.LinkKeyword(ctx, "C1", kwID))

	require.NoError(t, tdb.DB.QueryRow(ctx,
		"SELECT COUNT(*) FROM campaign_keywords WHERE campaign_id = 'C1'").Scan(&linkCount))
	assert.Equal(t, 1, linkCount)
}

func TestKeywordRepository_Integration(t *testing.T) {
	tdb := testhelpers.GetTestDB(t)
	tdb.TruncateAll(t)
	ctx := context.Background()

	repo := NewKeywordRepository(tdb.DB)

	first, err := repo.GetOrCreate(ctx, "acme widget")
	require.NoError(t, err)
	again, err := repo.GetOrCreate(ctx, "acme widget")
	require.NoError(t, err)
	assert.Equal(t, first, again, "repeated text resolves to one id")

	other, err := repo.GetOrCreate(ctx, "other term")
	require.NoError(t, err)
	assert.NotEqual(t, first, other)

	ids, err := repo.ListIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"acme widget": first, "other term": other}, ids)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestPerformanceRepository_Integration(t *testing.T) {
	tdb := testhelpers.GetTestDB(t)
	tdb.TruncateAll(t)
	ctx := context.Background()

	campaigns := NewCampaignRepository(tdb.DB)
	products := NewProductRepository(tdb.DB)
	keywords := NewKeywordRepository(tdb.DB)
	performances := NewPerformanceRepository(tdb.DB)

	require.NoError(t, campaigns.CreateIfAbsent(ctx, &models.Campaign{
		CampaignID: "C1", CampaignName: "Alpha", CampaignType: models.CampaignTypeSearch,
	}))
	require.NoError(t, products.CreateIfAbsent(ctx, &models.Product{
		ProductID: "P1", ProductName: "Widget",
	}))
	kwID, err := keywords.GetOrCreate(ctx, "acme widget")
	require.NoError(t, err)

	facts := []*models.AdPerformance{
		{
			CampaignID:   strPtr("C1"),
			ProductID:    strPtr("P1"),
			KeywordID:    &kwID,
			Clicks:       intPtr(10),
			SalesRevenue: fltPtr(99.5),
			Extra:        map[string]string{"placement": "top"},
		},
		{
			CampaignID: strPtr("C1"),
			ProductID:  strPtr("P1"),
			Clicks:     intPtr(5),
		},
	}
	require.NoError(t, performances.InsertBatch(ctx, facts))
	require.NoError(t, performances.InsertBatch(ctx, nil), "empty batch is a no-op")

	byCampaign, err := performances.ListByCampaign(ctx, "C1")
	require.NoError(t, err)
	require.Len(t, byCampaign, 2)
	for _, f := range byCampaign {
		require.NotNil(t, f.ProductName)
		assert.Equal(t, "Widget", *f.ProductName)
		require.NotNil(t, f.CampaignName)
		assert.Equal(t, "Alpha", *f.CampaignName)
	}

	byKeyword, err := performances.ListByKeyword(ctx, kwID)
	require.NoError(t, err)
	require.Len(t, byKeyword, 1)
	require.NotNil(t, byKeyword[0].KeywordText)
	assert.Equal(t, "acme widget", *byKeyword[0].KeywordText)

	// Re-importing the same batch duplicates facts; there is no uniqueness.
	require.NoError(t, performances.InsertBatch(ctx, facts))
	byCampaign, err = performances.ListByCampaign(ctx, "C1")
	require.NoError(t, err)
	assert.Len(t, byCampaign, 4)

	names, err := performances.DistinctProductNames(ctx, "C1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Widget"}, names)
}

func TestCategoryRepository_Integration(t *testing.T) {
	tdb := testhelpers.GetTestDB(t)
	tdb.TruncateAll(t)
	ctx := context.Background()

	repo := NewCategoryRepository(tdb.DB)

	require.NoError(t, repo.CreateIfAbsent(ctx, &models.Category{CategoryID: "CAT2", CategoryName: "Widgets"}))
	require.NoError(t, repo.CreateIfAbsent(ctx, &models.Category{CategoryID: "CAT1", CategoryName: "Gadgets"}))

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Gadgets", all[0].CategoryName, "categories list sorted by name")
}
