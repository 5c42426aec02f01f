package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/offerpilot/offerpilot/internal/services/analysis"
	"github.com/offerpilot/offerpilot/pkg/httputil"
)

// OffersHandler serves previously generated offers
type OffersHandler struct {
	service *analysis.Service
	logger  *zap.Logger
}

// NewOffersHandler creates a new offers handler
func NewOffersHandler(service *analysis.Service, logger *zap.Logger) *OffersHandler {
	return &OffersHandler{service: service, logger: logger}
}

// ListByLead handles GET /api/v1/leads/{lead_id}/offers
func (h *OffersHandler) ListByLead(w http.ResponseWriter, r *http.Request) {
	leadID := chi.URLParam(r, "lead_id")
	if leadID == "" {
		httputil.JSONError(w, http.StatusBadRequest, "INVALID_ID", "lead_id is required", nil)
		return
	}

	offers, err := h.service.GetOffers(r.Context(), leadID)
	if err != nil {
		httputil.ErrorFromDomain(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, offers)
}
