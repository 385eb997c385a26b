package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/adlens-io/adlens-engine/pkg/apperrors"
	"github.com/adlens-io/adlens-engine/pkg/config"
	"github.com/adlens-io/adlens-engine/pkg/services"
	"github.com/adlens-io/adlens-engine/pkg/tabular"
)

// allowedMIMETypes are the container content types accepted for uploads, on
// top of the extension check. Browsers are inconsistent here, so an empty or
// generic content type is tolerated; a clearly wrong one is rejected.
var allowedMIMETypes = map[string]struct{}{
	"text/csv":                 {},
	"application/csv":          {},
	"application/vnd.ms-excel": {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": {},
	"application/octet-stream":                                          {},
	"": {},
}

// UploadHandler accepts spreadsheet uploads and hands them to the background
// import queue. The request returns as soon as the job is enqueued.
type UploadHandler struct {
	queue  *services.ImportQueue
	flash  *FlashStore
	cfg    *config.Config
	logger *zap.Logger
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(queue *services.ImportQueue, flash *FlashStore, cfg *config.Config, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{queue: queue, flash: flash, cfg: cfg, logger: logger}
}

// RegisterRoutes registers the upload handler's routes on the given mux.
func (h *UploadHandler) RegisterRoutes(mux *http.ServeMux, wrap func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("POST /campaigns/upload", wrap(h.Upload))
	mux.HandleFunc("GET /api/imports/{id}", wrap(h.ImportStatus))
	mux.HandleFunc("GET /api/flash", h.Flash)
}

// Upload handles POST /campaigns/upload. The multipart "file" field must be a
// csv, xls or xlsx file. On success it spools the file, enqueues an import job
// and redirects to the campaign listing with a success flash; validation
// failures redirect back with an error flash and never start an import.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	maxBytes := h.cfg.Upload.MaxFileSizeMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		h.rejectUpload(w, r, "The uploaded file is missing or too large.")
		return
	}
	defer file.Close()

	if _, err := tabular.DetectFormat(header.Filename); err != nil {
		h.rejectUpload(w, r, "The file must be a xlsx, xls or csv file.")
		return
	}
	contentType := header.Header.Get("Content-Type")
	if _, ok := allowedMIMETypes[contentType]; !ok {
		h.rejectUpload(w, r, "The file must be a xlsx, xls or csv file.")
		return
	}

	path, err := h.spool(file, header.Filename)
	if err != nil {
		h.logger.Error("Failed to spool upload", zap.Error(err))
		h.rejectUpload(w, r, "The upload could not be stored. Try again.")
		return
	}

	job, err := h.queue.Enqueue(header.Filename, path)
	if err != nil {
		_ = os.Remove(path)
		if errors.Is(err, apperrors.ErrQueueFull) {
			h.rejectUpload(w, r, "Too many pending imports. Try again shortly.")
			return
		}
		h.logger.Error("Failed to enqueue import", zap.Error(err))
		h.rejectUpload(w, r, "The upload could not be scheduled. Try again.")
		return
	}

	h.flash.Add(w, r, "success", "File uploaded and is being processed in background.")
	http.Redirect(w, r, "/campaigns?import="+job.ID.String(), http.StatusSeeOther)
}

// ImportStatus handles GET /api/imports/{id}. Once the job completes, the
// response carries the import report including the touched-campaigns map.
func (h *UploadHandler) ImportStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_id", "Import id must be a UUID")
		return
	}

	job, ok := h.queue.Job(id)
	if !ok {
		_ = ErrorResponse(w, http.StatusNotFound, "not_found", "Unknown import id")
		return
	}

	if err := WriteJSON(w, http.StatusOK, job); err != nil {
		h.logger.Error("Failed to encode import status", zap.Error(err))
	}
}

// Flash handles GET /api/flash, returning and clearing one-shot messages for
// the frontend to display after the upload redirect.
func (h *UploadHandler) Flash(w http.ResponseWriter, r *http.Request) {
	payload := map[string][]string{
		"success": h.flash.Pop(w, r, "success"),
		"error":   h.flash.Pop(w, r, "error"),
	}
	if err := WriteJSON(w, http.StatusOK, payload); err != nil {
		h.logger.Error("Failed to encode flash messages", zap.Error(err))
	}
}

func (h *UploadHandler) rejectUpload(w http.ResponseWriter, r *http.Request, message string) {
	h.flash.Add(w, r, "error", message)

	back := r.Referer()
	if back == "" {
		back = "/campaigns/upload"
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// spool copies the upload to a temp file the background worker can read after
// this request's multipart buffers are gone.
func (h *UploadHandler) spool(file io.Reader, filename string) (string, error) {
	pattern := fmt.Sprintf("upload-*%s", filepath.Ext(filename))
	tmp, err := os.CreateTemp(h.cfg.Upload.TempDir, pattern)
	if err != nil {
		return "", fmt.Errorf("failed to create spool file: %w", err)
	}

	if _, err := io.Copy(tmp, file); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write spool file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to close spool file: %w", err)
	}
	return tmp.Name(), nil
}
