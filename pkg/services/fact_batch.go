package services

import (
	"context"
	"fmt"

	"github.com/adlens-io/adlens-engine/pkg/apperrors"
	"github.com/adlens-io/adlens-engine/pkg/models"
	"github.com/adlens-io/adlens-engine/pkg/repositories"
)

// DefaultBatchSize is how many fact rows are buffered before one bulk insert.
const DefaultBatchSize = 500

// factBatch accumulates resolved fact rows and flushes them as bulk inserts
// once capacity is reached. The owner must call Flush when the row loop ends,
// normally or not, so buffered rows are never dropped. A failed flush is fatal
// to the import: the batch content cannot be recovered.
type factBatch struct {
	repo     repositories.PerformanceRepository
	capacity int
	buf      []*models.AdPerformance
	flushes  int
}

func newFactBatch(repo repositories.PerformanceRepository, capacity int) *factBatch {
	if capacity <= 0 {
		capacity = DefaultBatchSize
	}
	return &factBatch{
		repo:     repo,
		capacity: capacity,
		buf:      make([]*models.AdPerformance, 0, capacity),
	}
}

// Add buffers one fact row, flushing first if the buffer is full.
func (b *factBatch) Add(ctx context.Context, fact *models.AdPerformance) error {
	b.buf = append(b.buf, fact)
	if len(b.buf) >= b.capacity {
		return b.Flush(ctx)
	}
	return nil
}

// Flush bulk-inserts any buffered rows. Safe to call with an empty buffer.
func (b *factBatch) Flush(ctx context.Context) error {
	if len(b.buf) == 0 {
		return nil
	}
	if err := b.repo.InsertBatch(ctx, b.buf); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrFlushFailed, err)
	}
	b.flushes++
	b.buf = b.buf[:0]
	return nil
}

// Flushes returns how many bulk inserts have been performed.
func (b *factBatch) Flushes() int {
	return b.flushes
}
