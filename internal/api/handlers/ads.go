package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/offerpilot/offerpilot/internal/services/analysis"
	"github.com/offerpilot/offerpilot/pkg/httputil"
)

// AdsHandler handles ad transparency searches
type AdsHandler struct {
	service *analysis.Service
	logger  *zap.Logger
}

// NewAdsHandler creates a new ads handler
func NewAdsHandler(service *analysis.Service, logger *zap.Logger) *AdsHandler {
	return &AdsHandler{service: service, logger: logger}
}

// Search handles GET /api/v1/ads/search. With ?industry= the results are
// grouped per advertiser and aggregated into an industry view; otherwise
// ?page_id= or ?search_term= targets a single business.
func (h *AdsHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if industry := q.Get("industry"); industry != "" {
		result, err := h.service.SearchIndustryAds(r.Context(), industry)
		if err != nil {
			h.logger.Warn("industry ad search failed", zap.String("industry", industry), zap.Error(err))
			httputil.ErrorFromDomain(w, err)
			return
		}
		httputil.JSON(w, http.StatusOK, result)
		return
	}

	result, err := h.service.SearchAds(r.Context(), q.Get("page_id"), q.Get("search_term"))
	if err != nil {
		h.logger.Warn("ad search failed", zap.String("search_term", q.Get("search_term")), zap.Error(err))
		httputil.ErrorFromDomain(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, result)
}
