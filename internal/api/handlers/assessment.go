package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/offerpilot/offerpilot/internal/domain"
	"github.com/offerpilot/offerpilot/internal/services/analysis"
	"github.com/offerpilot/offerpilot/pkg/httputil"
)

// AssessmentHandler handles lead qualification scoring
type AssessmentHandler struct {
	service *analysis.Service
	logger  *zap.Logger
}

// NewAssessmentHandler creates a new assessment handler
func NewAssessmentHandler(service *analysis.Service, logger *zap.Logger) *AssessmentHandler {
	return &AssessmentHandler{service: service, logger: logger}
}

// ScoreRequest is the POST /api/v1/assessments body
type ScoreRequest struct {
	LeadID  string                       `json:"lead_id,omitempty"`
	Answers domain.QualificationAnswers `json:"answers"`
}

// Score handles POST /api/v1/assessments
func (h *AssessmentHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.ErrorFromDomain(w, err)
		return
	}

	result, err := h.service.ScoreAssessment(r.Context(), req.LeadID, req.Answers)
	if err != nil {
		httputil.ErrorFromDomain(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}
