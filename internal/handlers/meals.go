package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"wellbalance/internal/models"
	"wellbalance/internal/services"
)

type MealHandler struct {
	logs   *services.DailyLogService
	logger *zap.Logger
}

func NewMealHandler(logs *services.DailyLogService, logger *zap.Logger) *MealHandler {
	return &MealHandler{logs: logs, logger: logger}
}

// addMealRequest carries the totals the client computed for one portion.
// FoodID and Grams identify the portion but are not stored.
type addMealRequest struct {
	FoodID        string   `json:"foodId"`
	Grams         *float64 `json:"grams"`
	CaloriesTotal *float64 `json:"caloriesTotal"`
	ProteinTotal  *float64 `json:"proteinTotal"`
	CarbsTotal    *float64 `json:"carbsTotal"`
	FatTotal      *float64 `json:"fatTotal"`
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

type AddMealResponse struct {
	OK       bool            `json:"ok"`
	DailyLog models.DailyLog `json:"dailyLog"`
}

// AddMealItem godoc
// @Summary Add a meal to today's log
// @Description Adds the meal totals to the signed-in user's row for the current server date
// @Tags meals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param meal body addMealRequest true "Meal totals"
// @Success 200 {object} AddMealResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /meal-items [post]
func (h *MealHandler) AddMealItem(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	var req addMealRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	row, err := h.logs.AddMealAmounts(r.Context(), userID, services.Amounts{
		Calories: valueOrZero(req.CaloriesTotal),
		ProteinG: valueOrZero(req.ProteinTotal),
		CarbsG:   valueOrZero(req.CarbsTotal),
		FatG:     valueOrZero(req.FatTotal),
	})
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to save meal")
		return
	}
	writeJSON(w, http.StatusOK, AddMealResponse{OK: true, DailyLog: row})
}

// Summary godoc
// @Summary Daily totals
// @Description Returns the signed-in user's totals for a date, today when omitted
// @Tags meals
// @Produce json
// @Security BearerAuth
// @Param date query string false "YYYY-MM-DD"
// @Success 200 {object} models.DailyLog
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /daily-logs/summary [get]
func (h *MealHandler) Summary(w http.ResponseWriter, r *http.Request) {
	row, err := h.logs.DailySummary(r.Context(), currentUser(r), r.URL.Query().Get("date"))
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to load daily summary")
		return
	}
	writeJSON(w, http.StatusOK, row)
}

// List godoc
// @Summary Daily log history
// @Description Lists up to 100 daily rows, newest first
// @Tags meals
// @Produce json
// @Security BearerAuth
// @Param start_date query string false "YYYY-MM-DD inclusive"
// @Param end_date query string false "YYYY-MM-DD inclusive"
// @Success 200 {array} models.DailyLog
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /daily-logs [get]
func (h *MealHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rows, err := h.logs.List(r.Context(), currentUser(r), q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to load daily logs")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
