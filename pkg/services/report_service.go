package services

import (
	"context"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/adlens-io/adlens-engine/pkg/models"
	"github.com/adlens-io/adlens-engine/pkg/repositories"
)

// ReportService computes the aggregated listing rows for the dashboard.
// Related facts are loaded eagerly per entity and aggregated in memory; an
// entity with no facts still gets a fixed all-zero row. Reads take no
// isolation against an in-flight import and may observe partial data.
type ReportService interface {
	CampaignReport(ctx context.Context) ([]models.CampaignReportRow, error)
	ProductReport(ctx context.Context) ([]models.ProductReportRow, error)
	KeywordReport(ctx context.Context) ([]models.KeywordReportRow, error)
	// CampaignProducts returns the campaign's name and the distinct product
	// names among its facts, for the product filter.
	CampaignProducts(ctx context.Context, campaignID string) (string, []string, error)
	// Categories lists all categories for filter population.
	Categories(ctx context.Context) ([]*models.Category, error)
}

type reportService struct {
	campaignRepo    repositories.CampaignRepository
	productRepo     repositories.ProductRepository
	keywordRepo     repositories.KeywordRepository
	categoryRepo    repositories.CategoryRepository
	performanceRepo repositories.PerformanceRepository
	logger          *zap.Logger
}

// NewReportService creates a new ReportService.
func NewReportService(
	campaignRepo repositories.CampaignRepository,
	productRepo repositories.ProductRepository,
	keywordRepo repositories.KeywordRepository,
	categoryRepo repositories.CategoryRepository,
	performanceRepo repositories.PerformanceRepository,
	logger *zap.Logger,
) ReportService {
	return &reportService{
		campaignRepo:    campaignRepo,
		productRepo:     productRepo,
		keywordRepo:     keywordRepo,
		categoryRepo:    categoryRepo,
		performanceRepo: performanceRepo,
		logger:          logger.Named("reports"),
	}
}

var _ ReportService = (*reportService)(nil)

func (s *reportService) CampaignReport(ctx context.Context) ([]models.CampaignReportRow, error) {
	campaigns, err := s.campaignRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]models.CampaignReportRow, 0, len(campaigns))
	for _, campaign := range campaigns {
		facts, err := s.performanceRepo.ListByCampaign(ctx, campaign.CampaignID)
		if err != nil {
			return nil, err
		}

		if len(facts) == 0 {
			rows = append(rows, models.CampaignReportRow{
				ID: campaign.CampaignID,
				Data: models.CampaignMetrics{
					CampaignName: campaign.CampaignName,
					SalesRevenue: "0",
					StartDate:    campaign.StartDate,
					EndDate:      campaign.EndDate,
					Products:     []models.ProductRef{},
				},
			})
			continue
		}

		products := distinctProducts(facts)
		rows = append(rows, models.CampaignReportRow{
			ID: campaign.CampaignID,
			Data: models.CampaignMetrics{
				CampaignName: campaign.CampaignName,
				ROAS:         round2(mean(facts, func(f *models.PerformanceFact) *float64 { return f.ROAS })),
				ProductCount: len(products),
				StartDate:    campaign.StartDate,
				EndDate:      campaign.EndDate,
				SalesRevenue: money(sumFloat(facts, func(f *models.PerformanceFact) *float64 { return f.SalesRevenue })),
				Clicks:       sumInt(facts, func(f *models.PerformanceFact) *int64 { return f.Clicks }),
				Orders:       sumInt(facts, func(f *models.PerformanceFact) *int64 { return f.Orders }),
				Products:     products,
			},
		})
	}
	return rows, nil
}

func (s *reportService) ProductReport(ctx context.Context) ([]models.ProductReportRow, error) {
	products, err := s.productRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]models.ProductReportRow, 0, len(products))
	for _, product := range products {
		facts, err := s.performanceRepo.ListByProduct(ctx, product.ProductID)
		if err != nil {
			return nil, err
		}

		if len(facts) == 0 {
			rows = append(rows, models.ProductReportRow{
				ID: product.ProductID,
				Data: models.ProductMetrics{
					ProductName:  product.ProductName,
					Category:     "-",
					TotalRevenue: "0",
					CTR:          "0%",
					CVR:          "0%",
				},
			})
			continue
		}

		start, end := campaignDateRange(facts)
		rows = append(rows, models.ProductReportRow{
			ID: product.ProductID,
			Data: models.ProductMetrics{
				ProductName:   product.ProductName,
				Category:      displayList(distinctCategoryNames(facts)),
				CampaignCount: distinctCampaignCount(facts),
				AverageROAS:   round2(mean(facts, func(f *models.PerformanceFact) *float64 { return f.ROAS })),
				TotalRevenue:  money(sumFloat(facts, func(f *models.PerformanceFact) *float64 { return f.SalesRevenue })),
				TotalClicks:   sumInt(facts, func(f *models.PerformanceFact) *int64 { return f.Clicks }),
				Orders:        sumInt(facts, func(f *models.PerformanceFact) *int64 { return f.Orders }),
				CTR:           percent(mean(facts, func(f *models.PerformanceFact) *float64 { return f.CTR })),
				CVR:           percent(mean(facts, func(f *models.PerformanceFact) *float64 { return f.CVR })),
				StartDate:     start,
				EndDate:       end,
			},
		})
	}
	return rows, nil
}

func (s *reportService) KeywordReport(ctx context.Context) ([]models.KeywordReportRow, error) {
	keywords, err := s.keywordRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]models.KeywordReportRow, 0, len(keywords))
	for _, keyword := range keywords {
		facts, err := s.performanceRepo.ListByKeyword(ctx, keyword.KeywordID)
		if err != nil {
			return nil, err
		}

		if len(facts) == 0 {
			rows = append(rows, models.KeywordReportRow{
				ID: keyword.KeywordID,
				Data: models.KeywordMetrics{
					KeywordName:  keyword.Keyword,
					Category:     "-",
					TotalRevenue: "0",
					CTR:          "0%",
					CVR:          "0%",
					AvgCPC:       "0",
				},
			})
			continue
		}

		start, end := campaignDateRange(facts)
		rows = append(rows, models.KeywordReportRow{
			ID: keyword.KeywordID,
			Data: models.KeywordMetrics{
				KeywordName:   keyword.Keyword,
				Category:      displayList(distinctCategoryNames(facts)),
				CampaignCount: distinctCampaignCount(facts),
				AverageROAS:   round2(mean(facts, func(f *models.PerformanceFact) *float64 { return f.ROAS })),
				TotalRevenue:  money(sumFloat(facts, func(f *models.PerformanceFact) *float64 { return f.SalesRevenue })),
				TotalClicks:   sumInt(facts, func(f *models.PerformanceFact) *int64 { return f.Clicks }),
				Orders:        sumInt(facts, func(f *models.PerformanceFact) *int64 { return f.Orders }),
				CTR:           percent(mean(facts, func(f *models.PerformanceFact) *float64 { return f.CTR })),
				CVR:           percent(mean(facts, func(f *models.PerformanceFact) *float64 { return f.CVR })),
				Impressions:   sumInt(facts, func(f *models.PerformanceFact) *int64 { return f.Impressions }),
				ProductCount:  len(distinctProductNames(facts)),
				AvgCPC:        money(mean(facts, func(f *models.PerformanceFact) *float64 { return f.CPC })),
				StartDate:     start,
				EndDate:       end,
			},
		})
	}
	return rows, nil
}

func (s *reportService) CampaignProducts(ctx context.Context, campaignID string) (string, []string, error) {
	campaign, err := s.campaignRepo.Get(ctx, campaignID)
	if err != nil {
		return "", nil, err
	}
	names, err := s.performanceRepo.DistinctProductNames(ctx, campaignID)
	if err != nil {
		return "", nil, err
	}
	return campaign.CampaignName, names, nil
}

func (s *reportService) Categories(ctx context.Context) ([]*models.Category, error) {
	return s.categoryRepo.ListAll(ctx)
}

// --- aggregation helpers ---

func sumInt(facts []*models.PerformanceFact, sel func(*models.PerformanceFact) *int64) int64 {
	var total int64
	for _, f := range facts {
		if v := sel(f); v != nil {
			total += *v
		}
	}
	return total
}

func sumFloat(facts []*models.PerformanceFact, sel func(*models.PerformanceFact) *float64) float64 {
	var total float64
	for _, f := range facts {
		if v := sel(f); v != nil {
			total += *v
		}
	}
	return total
}

// mean is the arithmetic mean over rows where the measure is present.
// Returns 0 when no row has a value.
func mean(facts []*models.PerformanceFact, sel func(*models.PerformanceFact) *float64) float64 {
	var total float64
	var n int
	for _, f := range facts {
		if v := sel(f); v != nil {
			total += *v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

func distinctCampaignCount(facts []*models.PerformanceFact) int {
	seen := make(map[string]struct{})
	for _, f := range facts {
		if f.CampaignID != nil {
			seen[*f.CampaignID] = struct{}{}
		}
	}
	return len(seen)
}

func distinctProductNames(facts []*models.PerformanceFact) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, f := range facts {
		if f.ProductName == nil || *f.ProductName == "" {
			continue
		}
		if _, ok := seen[*f.ProductName]; ok {
			continue
		}
		seen[*f.ProductName] = struct{}{}
		names = append(names, *f.ProductName)
	}
	return names
}

func distinctCategoryNames(facts []*models.PerformanceFact) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, f := range facts {
		if f.CategoryName == nil || *f.CategoryName == "" {
			continue
		}
		if _, ok := seen[*f.CategoryName]; ok {
			continue
		}
		seen[*f.CategoryName] = struct{}{}
		names = append(names, *f.CategoryName)
	}
	sort.Strings(names)
	return names
}

func distinctProducts(facts []*models.PerformanceFact) []models.ProductRef {
	seen := make(map[string]struct{})
	refs := []models.ProductRef{}
	for _, f := range facts {
		if f.ProductID == nil || f.ProductName == nil || *f.ProductName == "" {
			continue
		}
		if _, ok := seen[*f.ProductID]; ok {
			continue
		}
		seen[*f.ProductID] = struct{}{}
		refs = append(refs, models.ProductRef{ID: *f.ProductID, ProductName: *f.ProductName})
	}
	return refs
}

// campaignDateRange is min(campaign_start_date) / max(campaign_end_date)
// across the owning campaigns of the given facts.
func campaignDateRange(facts []*models.PerformanceFact) (*time.Time, *time.Time) {
	var start, end *time.Time
	for _, f := range facts {
		if f.CampaignStartDate != nil && (start == nil || f.CampaignStartDate.Before(*start)) {
			start = f.CampaignStartDate
		}
		if f.CampaignEndDate != nil && (end == nil || f.CampaignEndDate.After(*end)) {
			end = f.CampaignEndDate
		}
	}
	return start, end
}

// --- display formatting ---

var moneyPrinter = message.NewPrinter(language.English)

// money renders a monetary value with thousands separators and two decimals,
// or "0" for a zero value.
func money(v float64) string {
	if v == 0 {
		return "0"
	}
	return moneyPrinter.Sprintf("%.2f", v)
}

// percent renders a mean as a percentage string rounded to two decimals, with
// "0%" for an absent or zero mean.
func percent(v float64) string {
	r := round2(v)
	if r == 0 {
		return "0%"
	}
	return strconv.FormatFloat(r, 'f', -1, 64) + "%"
}

// displayList joins distinct names with ", ", or "-" when there are none.
func displayList(names []string) string {
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ", ")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
