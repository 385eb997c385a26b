package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/adlens-io/adlens-engine/pkg/apperrors"
	"github.com/adlens-io/adlens-engine/pkg/models"
	"github.com/adlens-io/adlens-engine/pkg/repositories"
)

// In-memory repository fakes shared by the service tests. Each records the
// writes it receives so tests can assert on exact database traffic.

type mockVendorRepository struct {
	mu      sync.Mutex
	vendors map[string]*models.Vendor
	creates int
	err     error
}

func newMockVendorRepository() *mockVendorRepository {
	return &mockVendorRepository{vendors: make(map[string]*models.Vendor)}
}

func (m *mockVendorRepository) ListKeys(ctx context.Context) (map[string]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	keys := make(map[string]struct{}, len(m.vendors))
	for k := range m.vendors {
		keys[k] = struct{}{}
	}
	return keys, nil
}

func (m *mockVendorRepository) CreateIfAbsent(ctx context.Context, vendor *models.Vendor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.creates++
	if _, ok := m.vendors[vendor.VendorID]; !ok {
		m.vendors[vendor.VendorID] = vendor
	}
	return nil
}

type mockProductRepository struct {
	mu       sync.Mutex
	products map[string]*models.Product
	order    []string
	creates  int
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{products: make(map[string]*models.Product)}
}

func (m *mockProductRepository) ListKeys(ctx context.Context) (map[string]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make(map[string]struct{}, len(m.products))
	for k := range m.products {
		keys[k] = struct{}{}
	}
	return keys, nil
}

func (m *mockProductRepository) CreateIfAbsent(ctx context.Context, product *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if _, ok := m.products[product.ProductID]; !ok {
		m.products[product.ProductID] = product
		m.order = append(m.order, product.ProductID)
	}
	return nil
}

func (m *mockProductRepository) ListAll(ctx context.Context) ([]*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Product, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.products[id])
	}
	return out, nil
}

type mockCampaignRepository struct {
	mu            sync.Mutex
	campaigns     map[string]*models.Campaign
	order         []string
	creates       int
	categoryLinks []string
	keywordLinks  []string
}

func newMockCampaignRepository() *mockCampaignRepository {
	return &mockCampaignRepository{campaigns: make(map[string]*models.Campaign)}
}

func (m *mockCampaignRepository) ListKeys(ctx context.Context) (map[string]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make(map[string]struct{}, len(m.campaigns))
	for k := range m.campaigns {
		keys[k] = struct{}{}
	}
	return keys, nil
}

func (m *mockCampaignRepository) CreateIfAbsent(ctx context.Context, campaign *models.Campaign) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if _, ok := m.campaigns[campaign.CampaignID]; !ok {
		m.campaigns[campaign.CampaignID] = campaign
		m.order = append(m.order, campaign.CampaignID)
	}
	return nil
}

func (m *mockCampaignRepository) ListAll(ctx context.Context) ([]*models.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Campaign, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		out = append(out, m.campaigns[m.order[i]])
	}
	return out, nil
}

func (m *mockCampaignRepository) Get(ctx context.Context, campaignID string) (*models.Campaign, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.campaigns[campaignID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return c, nil
}

func (m *mockCampaignRepository) LinkCategory(ctx context.Context, campaignID, categoryID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categoryLinks = append(m.categoryLinks, campaignID+"/"+categoryID)
	return nil
}

func (m *mockCampaignRepository) LinkKeyword(ctx context.Context, campaignID string, keywordID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keywordLinks = append(m.keywordLinks, fmt.Sprintf("%s/%d", campaignID, keywordID))
	return nil
}

type mockCategoryRepository struct {
	mu         sync.Mutex
	categories map[string]*models.Category
	order      []string
	creates    int
}

func newMockCategoryRepository() *mockCategoryRepository {
	return &mockCategoryRepository{categories: make(map[string]*models.Category)}
}

func (m *mockCategoryRepository) ListKeys(ctx context.Context) (map[string]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make(map[string]struct{}, len(m.categories))
	for k := range m.categories {
		keys[k] = struct{}{}
	}
	return keys, nil
}

func (m *mockCategoryRepository) CreateIfAbsent(ctx context.Context, category *models.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if _, ok := m.categories[category.CategoryID]; !ok {
		m.categories[category.CategoryID] = category
		m.order = append(m.order, category.CategoryID)
	}
	return nil
}

func (m *mockCategoryRepository) ListAll(ctx context.Context) ([]*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Category, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.categories[id])
	}
	return out, nil
}

type mockKeywordRepository struct {
	mu       sync.Mutex
	keywords map[string]int64
	order    []string
	nextID   int64
	creates  int
}

func newMockKeywordRepository() *mockKeywordRepository {
	return &mockKeywordRepository{keywords: make(map[string]int64)}
}

func (m *mockKeywordRepository) ListIDs(ctx context.Context) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make(map[string]int64, len(m.keywords))
	for k, v := range m.keywords {
		ids[k] = v
	}
	return ids, nil
}

func (m *mockKeywordRepository) GetOrCreate(ctx context.Context, keyword string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if id, ok := m.keywords[keyword]; ok {
		return id, nil
	}
	m.nextID++
	m.keywords[keyword] = m.nextID
	m.order = append(m.order, keyword)
	return m.nextID, nil
}

func (m *mockKeywordRepository) ListAll(ctx context.Context) ([]*models.Keyword, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Keyword, 0, len(m.order))
	for _, k := range m.order {
		out = append(out, &models.Keyword{KeywordID: m.keywords[k], Keyword: k})
	}
	return out, nil
}

type mockPerformanceRepository struct {
	mu        sync.Mutex
	facts     []*models.AdPerformance
	joined    []*models.PerformanceFact
	batches   []int
	insertErr error
}

func newMockPerformanceRepository() *mockPerformanceRepository {
	return &mockPerformanceRepository{}
}

func (m *mockPerformanceRepository) InsertBatch(ctx context.Context, facts []*models.AdPerformance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	m.facts = append(m.facts, facts...)
	m.batches = append(m.batches, len(facts))
	return nil
}

func (m *mockPerformanceRepository) ListByCampaign(ctx context.Context, campaignID string) ([]*models.PerformanceFact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.PerformanceFact
	for _, f := range m.joined {
		if f.CampaignID != nil && *f.CampaignID == campaignID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *mockPerformanceRepository) ListByProduct(ctx context.Context, productID string) ([]*models.PerformanceFact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.PerformanceFact
	for _, f := range m.joined {
		if f.ProductID != nil && *f.ProductID == productID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *mockPerformanceRepository) ListByKeyword(ctx context.Context, keywordID int64) ([]*models.PerformanceFact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.PerformanceFact
	for _, f := range m.joined {
		if f.KeywordID != nil && *f.KeywordID == keywordID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *mockPerformanceRepository) DistinctProductNames(ctx context.Context, campaignID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[string]struct{})
	var names []string
	for _, f := range m.joined {
		if f.CampaignID == nil || *f.CampaignID != campaignID {
			continue
		}
		if f.ProductName == nil || *f.ProductName == "" {
			continue
		}
		if _, ok := seen[*f.ProductName]; ok {
			continue
		}
		seen[*f.ProductName] = struct{}{}
		names = append(names, *f.ProductName)
	}
	return names, nil
}

var (
	_ repositories.VendorRepository      = (*mockVendorRepository)(nil)
	_ repositories.ProductRepository     = (*mockProductRepository)(nil)
	_ repositories.CampaignRepository    = (*mockCampaignRepository)(nil)
	_ repositories.CategoryRepository    = (*mockCategoryRepository)(nil)
	_ repositories.KeywordRepository     = (*mockKeywordRepository)(nil)
	_ repositories.PerformanceRepository = (*mockPerformanceRepository)(nil)
)
