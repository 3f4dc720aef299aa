package handler

import (
	"net/http"

	"github.com/inelac/inventory-backend/internal/inventory/service"
	"github.com/inelac/inventory-backend/pkg/httputil"
	"github.com/inelac/inventory-backend/pkg/logger"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboard *service.DashboardService
	logger    *logger.Logger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboard *service.DashboardService, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, logger: log}
}

// Stats returns the inventory KPI aggregates
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboard.Stats(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, stats)
}
