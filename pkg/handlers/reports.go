package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/adlens-io/adlens-engine/pkg/apperrors"
	"github.com/adlens-io/adlens-engine/pkg/services"
)

// ReportsHandler serves the aggregated listing endpoints backing the
// dashboard tables.
type ReportsHandler struct {
	reports services.ReportService
	logger  *zap.Logger
}

// NewReportsHandler creates a new ReportsHandler.
func NewReportsHandler(reports services.ReportService, logger *zap.Logger) *ReportsHandler {
	return &ReportsHandler{reports: reports, logger: logger}
}

// RegisterRoutes registers the report listing routes on the given mux.
func (h *ReportsHandler) RegisterRoutes(mux *http.ServeMux, wrap func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("GET /api/campaigns", wrap(h.Campaigns))
	mux.HandleFunc("GET /api/campaigns/{id}/products", wrap(h.CampaignProducts))
	mux.HandleFunc("GET /api/products", wrap(h.Products))
	mux.HandleFunc("GET /api/keywords", wrap(h.Keywords))
	mux.HandleFunc("GET /api/categories", wrap(h.Categories))
}

// Campaigns handles GET /api/campaigns.
func (h *ReportsHandler) Campaigns(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reports.CampaignReport(r.Context())
	if err != nil {
		h.logger.Error("Failed to build campaign report", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "report_failed", "Failed to load campaign report")
		return
	}
	if err := WriteJSON(w, http.StatusOK, map[string]any{"campaignData": rows}); err != nil {
		h.logger.Error("Failed to encode campaign report", zap.Error(err))
	}
}

// CampaignProducts handles GET /api/campaigns/{id}/products, returning the
// distinct product names observed for one campaign.
func (h *ReportsHandler) CampaignProducts(w http.ResponseWriter, r *http.Request) {
	campaignID := r.PathValue("id")

	name, products, err := h.reports.CampaignProducts(r.Context(), campaignID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			_ = ErrorResponse(w, http.StatusNotFound, "not_found", "Unknown campaign id")
			return
		}
		h.logger.Error("Failed to list campaign products", zap.String("campaign_id", campaignID), zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "report_failed", "Failed to load campaign products")
		return
	}

	payload := map[string]any{
		"campaignName": name,
		"products":     products,
	}
	if err := WriteJSON(w, http.StatusOK, payload); err != nil {
		h.logger.Error("Failed to encode campaign products", zap.Error(err))
	}
}

// Products handles GET /api/products.
func (h *ReportsHandler) Products(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reports.ProductReport(r.Context())
	if err != nil {
		h.logger.Error("Failed to build product report", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "report_failed", "Failed to load product report")
		return
	}
	if err := WriteJSON(w, http.StatusOK, map[string]any{"productData": rows}); err != nil {
		h.logger.Error("Failed to encode product report", zap.Error(err))
	}
}

// Keywords handles GET /api/keywords.
func (h *ReportsHandler) Keywords(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reports.KeywordReport(r.Context())
	if err != nil {
		h.logger.Error("Failed to build keyword report", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "report_failed", "Failed to load keyword report")
		return
	}
	if err := WriteJSON(w, http.StatusOK, map[string]any{"keywordData": rows}); err != nil {
		h.logger.Error("Failed to encode keyword report", zap.Error(err))
	}
}

// Categories handles GET /api/categories, used to populate listing filters.
func (h *ReportsHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.reports.Categories(r.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "report_failed", "Failed to load categories")
		return
	}
	if err := WriteJSON(w, http.StatusOK, map[string]any{"categories": categories}); err != nil {
		h.logger.Error("Failed to encode categories", zap.Error(err))
	}
}
