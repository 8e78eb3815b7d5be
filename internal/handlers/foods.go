package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"wellbalance/internal/models"
	"wellbalance/internal/services"
)

type FoodHandler struct {
	foods  *services.FoodService
	logger *zap.Logger
}

func NewFoodHandler(foods *services.FoodService, logger *zap.Logger) *FoodHandler {
	return &FoodHandler{foods: foods, logger: logger}
}

type FoodListResponse struct {
	Groups []services.FoodGroup `json:"groups"`
}

// List godoc
// @Summary Selectable foods
// @Description Public foods with complete nutrition, grouped Protein, Carbs, Fat, Vegetables, Fruits
// @Tags foods
// @Produce json
// @Param q query string false "case-insensitive name filter"
// @Success 200 {object} FoodListResponse
// @Failure 500 {object} ErrorResponse
// @Router /foods [get]
func (h *FoodHandler) List(w http.ResponseWriter, r *http.Request) {
	foods, err := h.foods.ListSelectable(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to load foods")
		return
	}
	writeJSON(w, http.StatusOK, FoodListResponse{Groups: services.GroupByCategory(foods)})
}

// Portion godoc
// @Summary Nutrition for a portion
// @Tags foods
// @Produce json
// @Param id path string true "food id"
// @Param grams query number true "portion weight"
// @Success 200 {object} services.Portion
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /foods/{id}/portion [get]
func (h *FoodHandler) Portion(w http.ResponseWriter, r *http.Request) {
	grams, err := strconv.ParseFloat(r.URL.Query().Get("grams"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "grams must be a number", "grams")
		return
	}
	food, err := h.foods.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to load food")
		return
	}
	p, err := services.ComputePortion(food, grams)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to compute portion")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type CustomFoodResponse struct {
	Food models.Food `json:"food"`
}

// CreateCustom godoc
// @Summary Add a custom food
// @Description Adds a public food to the catalog; the signed-in user, if any, becomes its owner
// @Tags foods
// @Accept json
// @Produce json
// @Param food body services.CustomFoodInput true "Food"
// @Success 201 {object} CustomFoodResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /foods/custom [post]
func (h *FoodHandler) CreateCustom(w http.ResponseWriter, r *http.Request) {
	var in services.CustomFoodInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	food, err := h.foods.CreateCustom(r.Context(), currentUser(r), in)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to create custom food")
		return
	}
	writeJSON(w, http.StatusCreated, CustomFoodResponse{Food: food})
}
