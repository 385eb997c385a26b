package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/adlens-io/adlens-engine/pkg/apperrors"
	"github.com/adlens-io/adlens-engine/pkg/models"
	"github.com/adlens-io/adlens-engine/pkg/repositories"
	"github.com/adlens-io/adlens-engine/pkg/tabular"
)

// ImportSource is one uploaded spreadsheet to ingest. The format is detected
// from the filename extension.
type ImportSource struct {
	Filename string
	Data     io.Reader
}

// ImportService runs the ingestion pipeline: parse the spreadsheet, resolve
// dimension entities per row, and bulk-insert fact rows in batches.
type ImportService interface {
	// Run ingests one file and returns the import report. Rows are processed
	// strictly sequentially; a malformed row is skipped and recorded, while
	// parser and flush failures abort the whole import.
	Run(ctx context.Context, source ImportSource) (*models.ImportReport, error)
}

type importService struct {
	vendorRepo      repositories.VendorRepository
	productRepo     repositories.ProductRepository
	campaignRepo    repositories.CampaignRepository
	categoryRepo    repositories.CategoryRepository
	keywordRepo     repositories.KeywordRepository
	performanceRepo repositories.PerformanceRepository

	batchSize int
	logger    *zap.Logger
}

// NewImportService creates a new ImportService. batchSize <= 0 selects
// DefaultBatchSize.
func NewImportService(
	vendorRepo repositories.VendorRepository,
	productRepo repositories.ProductRepository,
	campaignRepo repositories.CampaignRepository,
	categoryRepo repositories.CategoryRepository,
	keywordRepo repositories.KeywordRepository,
	performanceRepo repositories.PerformanceRepository,
	batchSize int,
	logger *zap.Logger,
) ImportService {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &importService{
		vendorRepo:      vendorRepo,
		productRepo:     productRepo,
		campaignRepo:    campaignRepo,
		categoryRepo:    categoryRepo,
		keywordRepo:     keywordRepo,
		performanceRepo: performanceRepo,
		batchSize:       batchSize,
		logger:          logger.Named("importer"),
	}
}

var _ ImportService = (*importService)(nil)

func (s *importService) Run(ctx context.Context, source ImportSource) (report *models.ImportReport, err error) {
	format, err := tabular.DetectFormat(source.Filename)
	if err != nil {
		return nil, err
	}

	// Opening the parser precedes any database access, so an empty file
	// aborts before a single dimension or fact write.
	reader, err := tabular.Open(source.Data, format)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := reader.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	res, err := newResolver(ctx, s.vendorRepo, s.productRepo, s.campaignRepo,
		s.categoryRepo, s.keywordRepo, s.logger)
	if err != nil {
		return nil, err
	}

	batch := newFactBatch(s.performanceRepo, s.batchSize)

	report = &models.ImportReport{
		TouchedCampaigns: res.Touched(),
		StartedAt:        time.Now(),
	}

	// Drain-on-exit: whatever is buffered when the row loop ends, for any
	// reason, must still be written. A flush failure here is fatal too.
	defer func() {
		if ferr := batch.Flush(context.WithoutCancel(ctx)); ferr != nil {
			s.logger.Error("Final flush failed", zap.Error(ferr))
			if err == nil {
				err = ferr
			}
		}
		if report != nil {
			report.FinishedAt = time.Now()
		}
		if err != nil {
			report = nil
		}
	}()

	for {
		row, rerr := reader.Next()
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			return nil, fmt.Errorf("failed reading %s: %w", source.Filename, rerr)
		}

		report.RowsSeen++

		fact, rerr := res.Resolve(ctx, row)
		if rerr != nil {
			if isRowError(rerr) {
				// Skip-and-log policy: a malformed row never aborts the import.
				report.RowsSkipped++
				report.RowErrors = append(report.RowErrors, models.RowError{
					Row:    report.RowsSeen,
					Reason: rerr.Error(),
				})
				s.logger.Warn("Skipping malformed row",
					zap.String("file", source.Filename),
					zap.Int("row", report.RowsSeen),
					zap.Error(rerr))
				continue
			}
			return nil, rerr
		}

		if berr := batch.Add(ctx, fact); berr != nil {
			return nil, berr
		}
		report.RowsImported++
	}

	// A header with no data rows is as useless as a file the parser cannot
	// open, and is reported the same way.
	if report.RowsSeen == 0 {
		return nil, apperrors.ErrEmptyFile
	}

	s.logger.Info("Import finished",
		zap.String("file", source.Filename),
		zap.Int("rows_seen", report.RowsSeen),
		zap.Int("rows_imported", report.RowsImported),
		zap.Int("rows_skipped", report.RowsSkipped),
		zap.Int("campaigns_touched", len(report.TouchedCampaigns)))

	return report, nil
}

// isRowError distinguishes per-row data problems (skippable) from
// infrastructure failures (fatal). Repository and flush errors wrap database
// failures; coercion errors are plain value errors produced by this package.
func isRowError(err error) bool {
	if errors.Is(err, apperrors.ErrFlushFailed) {
		return false
	}
	var rowErr *rowValueError
	return errors.As(err, &rowErr)
}
