package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/adlens-io/adlens-engine/pkg/database"
	"github.com/adlens-io/adlens-engine/pkg/models"
)

// KeywordRepository defines data access for the keywords dimension.
// Keywords are deduplicated by exact text; the surrogate keyword_id is needed
// synchronously during ingestion, so GetOrCreate returns it in one round trip.
type KeywordRepository interface {
	// ListIDs returns keyword text -> surrogate id for all existing keywords.
	ListIDs(ctx context.Context) (map[string]int64, error)
	// GetOrCreate returns the id for a keyword text, creating it if needed.
	GetOrCreate(ctx context.Context, keyword string) (int64, error)
	// ListAll returns all keywords for the keyword listing page.
	ListAll(ctx context.Context) ([]*models.Keyword, error)
}

type keywordRepository struct {
	db *database.DB
}

// NewKeywordRepository creates a new keyword repository.
func NewKeywordRepository(db *database.DB) KeywordRepository {
	return &keywordRepository{db: db}
}

func (r *keywordRepository) ListIDs(ctx context.Context) (map[string]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT keyword, keyword_id FROM keywords`)
	if err != nil {
		return nil, fmt.Errorf("failed to list keyword ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]int64)
	for rows.Next() {
		var text string
		var id int64
		if err := rows.Scan(&text, &id); err != nil {
			return nil, fmt.Errorf("failed to scan keyword id: %w", err)
		}
		ids[text] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read keyword ids: %w", err)
	}
	return ids, nil
}

func (r *keywordRepository) GetOrCreate(ctx context.Context, keyword string) (int64, error) {
	// The no-op DO UPDATE makes RETURNING yield the existing id on conflict,
	// keeping get-or-create a single round trip.
	query := `
		INSERT INTO keywords (keyword, created_at, updated_at)
		VALUES ($1, $2, $2)
		ON CONFLICT (keyword) DO UPDATE SET keyword = EXCLUDED.keyword
		RETURNING keyword_id`

	var id int64
	if err := r.db.QueryRow(ctx, query, keyword, time.Now()).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to get or create keyword %q: %w", keyword, err)
	}
	return id, nil
}

func (r *keywordRepository) ListAll(ctx context.Context) ([]*models.Keyword, error) {
	query := `
		SELECT keyword_id, keyword, created_at, updated_at
		FROM keywords
		ORDER BY keyword_id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list keywords: %w", err)
	}
	defer rows.Close()

	var keywords []*models.Keyword
	for rows.Next() {
		var k models.Keyword
		if err := rows.Scan(&k.KeywordID, &k.Keyword, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan keyword: %w", err)
		}
		keywords = append(keywords, &k)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read keywords: %w", err)
	}
	return keywords, nil
}

var _ KeywordRepository = (*keywordRepository)(nil)
