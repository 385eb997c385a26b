package services

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/adlens-io/adlens-engine/pkg/apperrors"
	"github.com/adlens-io/adlens-engine/pkg/models"
)

// ImportQueue decouples the upload HTTP request from file processing: the
// handler spools the file and enqueues a job, a single background worker runs
// imports one at a time. A running import is never cancelled and has no
// timeout; it runs to completion or fails.
type ImportQueue struct {
	importer ImportService
	logger   *zap.Logger

	mu     sync.Mutex
	jobs   map[uuid.UUID]*models.ImportJob
	closed bool

	ch   chan uuid.UUID
	done chan struct{}
}

// NewImportQueue creates an ImportQueue holding at most depth pending jobs and
// starts its worker goroutine.
func NewImportQueue(importer ImportService, depth int, logger *zap.Logger) *ImportQueue {
	if depth <= 0 {
		depth = 16
	}
	q := &ImportQueue{
		importer: importer,
		logger:   logger.Named("import-queue"),
		jobs:     make(map[uuid.UUID]*models.ImportJob),
		ch:       make(chan uuid.UUID, depth),
		done:     make(chan struct{}),
	}
	go q.worker()
	return q
}

// Enqueue registers an uploaded file for background import. path must be a
// spooled copy of the upload; the queue deletes it when the job finishes.
func (q *ImportQueue) Enqueue(filename, path string) (*models.ImportJob, error) {
	job := &models.ImportJob{
		ID:         uuid.New(),
		Filename:   filename,
		Path:       path,
		Status:     models.ImportStatusQueued,
		EnqueuedAt: time.Now(),
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil, apperrors.ErrQueueClosed
	}
	select {
	case q.ch <- job.ID:
		q.jobs[job.ID] = job
	default:
		q.mu.Unlock()
		return nil, apperrors.ErrQueueFull
	}
	snapshot := *job
	q.mu.Unlock()

	q.logger.Info("Import enqueued",
		zap.String("job_id", job.ID.String()),
		zap.String("file", filename))
	return &snapshot, nil
}

// Job returns a snapshot of a job's current state.
func (q *ImportQueue) Job(id uuid.UUID) (*models.ImportJob, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	job, ok := q.jobs[id]
	if !ok {
		return nil, false
	}
	snapshot := *job
	return &snapshot, true
}

// Shutdown stops accepting work and waits for the worker to drain, or for ctx
// to expire. An import already running is allowed to finish.
func (q *ImportQueue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
	q.mu.Unlock()

	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *ImportQueue) worker() {
	defer close(q.done)

	for id := range q.ch {
		q.run(id)
	}
}

func (q *ImportQueue) run(id uuid.UUID) {
	q.mu.Lock()
	job, ok := q.jobs[id]
	if !ok {
		q.mu.Unlock()
		return
	}
	job.Status = models.ImportStatusRunning
	filename, path := job.Filename, job.Path
	q.mu.Unlock()

	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			q.logger.Warn("Failed to remove spooled upload", zap.String("path", path), zap.Error(err))
		}
	}()

	file, err := os.Open(path)
	if err != nil {
		q.fail(id, err)
		return
	}
	defer file.Close()

	// Imports have no cancellation by design; the job context is independent
	// of any HTTP request lifetime.
	report, err := q.importer.Run(context.Background(), ImportSource{
		Filename: filename,
		Data:     file,
	})
	if err != nil {
		q.fail(id, err)
		return
	}

	q.mu.Lock()
	job.Status = models.ImportStatusCompleted
	job.Report = report
	q.mu.Unlock()
}

func (q *ImportQueue) fail(id uuid.UUID, err error) {
	q.mu.Lock()
	if job, ok := q.jobs[id]; ok {
		job.Status = models.ImportStatusFailed
		job.Error = err.Error()
	}
	q.mu.Unlock()

	q.logger.Error("Import failed", zap.String("job_id", id.String()), zap.Error(err))
}
