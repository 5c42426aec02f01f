package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/offerpilot/offerpilot/internal/domain"
	rediscache "github.com/offerpilot/offerpilot/internal/repository/redis"
	"github.com/offerpilot/offerpilot/pkg/httputil"
)

// WidgetHandler serves embeddable-widget configuration
type WidgetHandler struct {
	store  rediscache.ConfigStore
	logger *zap.Logger
}

// NewWidgetHandler creates a new widget config handler
func NewWidgetHandler(store rediscache.ConfigStore, logger *zap.Logger) *WidgetHandler {
	return &WidgetHandler{store: store, logger: logger}
}

// GetConfig handles GET /api/v1/widgets/{widget_id}/config
func (h *WidgetHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	widgetID := chi.URLParam(r, "widget_id")

	cfg, err := h.store.GetWidgetConfig(r.Context(), widgetID)
	if err != nil {
		httputil.ErrorFromDomain(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, cfg)
}

// PutConfig handles PUT /api/v1/widgets/{widget_id}/config. The path id
// wins over any id in the body.
func (h *WidgetHandler) PutConfig(w http.ResponseWriter, r *http.Request) {
	widgetID := chi.URLParam(r, "widget_id")

	var cfg domain.WidgetConfig
	if err := httputil.DecodeJSON(r, &cfg); err != nil {
		httputil.ErrorFromDomain(w, err)
		return
	}
	cfg.WidgetID = widgetID

	if err := cfg.Validate(); err != nil {
		httputil.ErrorFromDomain(w, err)
		return
	}

	if err := h.store.SetWidgetConfig(r.Context(), &cfg); err != nil {
		h.logger.Error("storing widget config failed", zap.String("widget_id", widgetID), zap.Error(err))
		httputil.ErrorFromDomain(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, cfg)
}
