// Package services contains the ingestion pipeline and reporting logic for
// adlens-engine.
package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/adlens-io/adlens-engine/pkg/models"
	"github.com/adlens-io/adlens-engine/pkg/repositories"
	"github.com/adlens-io/adlens-engine/pkg/tabular"
)

// recognizedColumns are the headers (post-slug) the structured pipeline maps to
// fact fields. Anything else lands in the fact's Extra attributes.
var recognizedColumns = map[string]struct{}{
	"vendor_id": {}, "vendor_name": {},
	"product_id": {}, "product_name": {},
	"campaign_id": {}, "campaign_name": {}, "asset_type": {},
	"campaign_start_date": {}, "campaign_end_date": {},
	"category_id": {}, "category_name_l2": {},
	"keyword": {}, "date": {},
	"impressions": {}, "clicks": {}, "orders": {}, "unit_sold": {},
	"ctr": {}, "cvr": {}, "average_ad_position": {},
	"sales_revenue": {}, "total_ad_spend": {}, "cpa": {}, "cpc": {}, "roas": {},
}

// CleanCampaignName truncates a raw campaign name at the first '(' and trims
// surrounding whitespace: "Summer Sale (Promo)" -> "Summer Sale".
func CleanCampaignName(name string) string {
	before, _, _ := strings.Cut(name, "(")
	return strings.TrimSpace(before)
}

// resolver resolves or creates the dimension entities referenced by one import
// run. All dedup caches live on the resolver, which belongs to a single import:
// concurrent imports each get their own instance and never share cache state.
type resolver struct {
	vendorRepo   repositories.VendorRepository
	productRepo  repositories.ProductRepository
	campaignRepo repositories.CampaignRepository
	categoryRepo repositories.CategoryRepository
	keywordRepo  repositories.KeywordRepository

	vendors    map[string]struct{}
	products   map[string]struct{}
	campaigns  map[string]struct{}
	categories map[string]struct{}
	keywords   map[string]int64

	categoryLinks map[string]struct{}
	keywordLinks  map[string]struct{}

	// touched records every campaign id seen for the first time in this run,
	// mapped to its cleaned name. This is the explicit "recently imported"
	// signal returned to callers.
	touched map[string]string

	logger *zap.Logger
}

// newResolver builds a per-import resolver, pre-seeding the dedup caches with
// the natural keys currently in the database so repeated keys become pure
// cache hits with no writes.
func newResolver(
	ctx context.Context,
	vendorRepo repositories.VendorRepository,
	productRepo repositories.ProductRepository,
	campaignRepo repositories.CampaignRepository,
	categoryRepo repositories.CategoryRepository,
	keywordRepo repositories.KeywordRepository,
	logger *zap.Logger,
) (*resolver, error) {
	vendors, err := vendorRepo.ListKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to seed vendor cache: %w", err)
	}
	products, err := productRepo.ListKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to seed product cache: %w", err)
	}
	campaigns, err := campaignRepo.ListKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to seed campaign cache: %w", err)
	}
	categories, err := categoryRepo.ListKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to seed category cache: %w", err)
	}
	keywords, err := keywordRepo.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to seed keyword cache: %w", err)
	}

	return &resolver{
		vendorRepo:    vendorRepo,
		productRepo:   productRepo,
		campaignRepo:  campaignRepo,
		categoryRepo:  categoryRepo,
		keywordRepo:   keywordRepo,
		vendors:       vendors,
		products:      products,
		campaigns:     campaigns,
		categories:    categories,
		keywords:      keywords,
		categoryLinks: make(map[string]struct{}),
		keywordLinks:  make(map[string]struct{}),
		touched:       make(map[string]string),
		logger:        logger,
	}, nil
}

// Resolve processes one normalized row: it creates any referenced dimension
// entities that do not exist yet and returns the fully-resolved fact row.
// The fact's CategoryID is set only for LISTING rows and KeywordID only for
// SEARCH rows, never both.
func (r *resolver) Resolve(ctx context.Context, row tabular.Row) (*models.AdPerformance, error) {
	fact := &models.AdPerformance{}

	if vendorID, ok := row.Get("vendor_id"); ok {
		if _, seen := r.vendors[vendorID]; !seen {
			name, _ := row.Get("vendor_name")
			if err := r.vendorRepo.CreateIfAbsent(ctx, &models.Vendor{VendorID: vendorID, VendorName: name}); err != nil {
				return nil, err
			}
			r.vendors[vendorID] = struct{}{}
		}
		fact.VendorID = &vendorID
	}

	if productID, ok := row.Get("product_id"); ok {
		if _, seen := r.products[productID]; !seen {
			name, _ := row.Get("product_name")
			if err := r.productRepo.CreateIfAbsent(ctx, &models.Product{ProductID: productID, ProductName: name}); err != nil {
				return nil, err
			}
			r.products[productID] = struct{}{}
		}
		fact.ProductID = &productID
	}

	assetType, _ := row.Get("asset_type")
	campaignType := models.CampaignTypeListing
	if assetType == models.AssetTypeSearch {
		campaignType = models.CampaignTypeSearch
	}

	campaignID, hasCampaign := row.Get("campaign_id")
	if hasCampaign {
		if _, seen := r.campaigns[campaignID]; !seen {
			rawName, _ := row.Get("campaign_name")
			cleanName := CleanCampaignName(rawName)

			startDate, err := parseDateField(row, "campaign_start_date")
			if err != nil {
				return nil, err
			}
			endDate, err := parseDateField(row, "campaign_end_date")
			if err != nil {
				return nil, err
			}

			campaign := &models.Campaign{
				CampaignID:   campaignID,
				CampaignName: cleanName,
				CampaignType: campaignType,
				StartDate:    startDate,
				EndDate:      endDate,
			}
			if err := r.campaignRepo.CreateIfAbsent(ctx, campaign); err != nil {
				return nil, err
			}
			r.campaigns[campaignID] = struct{}{}
			r.touched[campaignID] = cleanName
		}
		fact.CampaignID = &campaignID
	}

	switch campaignType {
	case models.CampaignTypeListing:
		if categoryID, ok := row.Get("category_id"); ok {
			if _, seen := r.categories[categoryID]; !seen {
				name, _ := row.Get("category_name_l2")
				if err := r.categoryRepo.CreateIfAbsent(ctx, &models.Category{CategoryID: categoryID, CategoryName: name}); err != nil {
					return nil, err
				}
				r.categories[categoryID] = struct{}{}
			}
			fact.CategoryID = &categoryID

			if hasCampaign {
				if err := r.linkCategory(ctx, campaignID, categoryID); err != nil {
					return nil, err
				}
			}
		}
	case models.CampaignTypeSearch:
		if keyword, ok := row.Get("keyword"); ok {
			keywordID, seen := r.keywords[keyword]
			if !seen {
				var err error
				keywordID, err = r.keywordRepo.GetOrCreate(ctx, keyword)
				if err != nil {
					return nil, err
				}
				r.keywords[keyword] = keywordID
			}
			fact.KeywordID = &keywordID

			if hasCampaign {
				if err := r.linkKeyword(ctx, campaignID, keywordID); err != nil {
					return nil, err
				}
			}
		}
	}

	if err := r.populateMeasures(fact, row); err != nil {
		return nil, err
	}

	return fact, nil
}

func (r *resolver) linkCategory(ctx context.Context, campaignID, categoryID string) error {
	key := campaignID + "\x00" + categoryID
	if _, seen := r.categoryLinks[key]; seen {
		return nil
	}
	if err := r.campaignRepo.LinkCategory(ctx, campaignID, categoryID); err != nil {
		return err
	}
	r.categoryLinks[key] = struct{}{}
	return nil
}

func (r *resolver) linkKeyword(ctx context.Context, campaignID string, keywordID int64) error {
	key := fmt.Sprintf("%s\x00%d", campaignID, keywordID)
	if _, seen := r.keywordLinks[key]; seen {
		return nil
	}
	if err := r.campaignRepo.LinkKeyword(ctx, campaignID, keywordID); err != nil {
		return err
	}
	r.keywordLinks[key] = struct{}{}
	return nil
}

// populateMeasures fills the numeric measures and the Extra attribute map.
func (r *resolver) populateMeasures(fact *models.AdPerformance, row tabular.Row) error {
	var err error
	if fact.Date, err = parseDateField(row, "date"); err != nil {
		return err
	}
	if fact.Impressions, err = parseIntField(row, "impressions"); err != nil {
		return err
	}
	if fact.Clicks, err = parseIntField(row, "clicks"); err != nil {
		return err
	}
	if fact.Orders, err = parseIntField(row, "orders"); err != nil {
		return err
	}
	if fact.UnitSold, err = parseIntField(row, "unit_sold"); err != nil {
		return err
	}
	if fact.CTR, err = parseFloatField(row, "ctr"); err != nil {
		return err
	}
	if fact.CVR, err = parseFloatField(row, "cvr"); err != nil {
		return err
	}
	if fact.AvgAdPosition, err = parseIntField(row, "average_ad_position"); err != nil {
		return err
	}
	if fact.SalesRevenue, err = parseFloatField(row, "sales_revenue"); err != nil {
		return err
	}
	if fact.TotalAdSpend, err = parseFloatField(row, "total_ad_spend"); err != nil {
		return err
	}
	if fact.CPA, err = parseFloatField(row, "cpa"); err != nil {
		return err
	}
	if fact.CPC, err = parseFloatField(row, "cpc"); err != nil {
		return err
	}
	if fact.ROAS, err = parseFloatField(row, "roas"); err != nil {
		return err
	}

	for col, val := range row {
		if _, known := recognizedColumns[col]; known {
			continue
		}
		if strings.TrimSpace(val) == "" {
			continue
		}
		if fact.Extra == nil {
			fact.Extra = make(map[string]string)
		}
		fact.Extra[col] = val
	}

	return nil
}

// Touched returns the campaigns first seen during this run, id -> cleaned name.
func (r *resolver) Touched() map[string]string {
	return r.touched
}
