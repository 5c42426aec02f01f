package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/offerpilot/offerpilot/internal/services/analysis"
	"github.com/offerpilot/offerpilot/pkg/httputil"
)

// AnalyzeHandler handles competitor analysis requests
type AnalyzeHandler struct {
	service *analysis.Service
	logger  *zap.Logger
}

// NewAnalyzeHandler creates a new analyze handler
func NewAnalyzeHandler(service *analysis.Service, logger *zap.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{service: service, logger: logger}
}

// Analyze handles POST /api/v1/analyze
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analysis.AnalyzeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.ErrorFromDomain(w, err)
		return
	}

	result, err := h.service.Analyze(r.Context(), req)
	if err != nil {
		h.logger.Warn("analysis failed", zap.String("url", req.URL), zap.Error(err))
		httputil.ErrorFromDomain(w, err)
		return
	}

	httputil.JSONWithNotice(w, http.StatusOK, result, result.Notice)
}
