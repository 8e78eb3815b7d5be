package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"wellbalance/internal/services"
)

type DashboardHandler struct {
	dashboard *services.DashboardService
	logger    *zap.Logger
}

func NewDashboardHandler(dashboard *services.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, logger: logger}
}

// Get godoc
// @Summary Dashboard for a date
// @Description Totals, targets, progress and a 7-day calorie history. A missing or malformed date means today.
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param date query string false "YYYY-MM-DD"
// @Success 200 {object} services.Dashboard
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /dashboard [get]
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.dashboard.Get(r.Context(), currentUser(r), r.URL.Query().Get("date"))
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to load dashboard")
		return
	}
	writeJSON(w, http.StatusOK, d)
}
