package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"wellbalance/internal/models"
)

// Category is the display bucket a food is grouped under.
type Category string

const (
	CategoryProtein       Category = "Protein"
	CategoryCarbs         Category = "Carbs"
	CategoryFat           Category = "Fat"
	CategoryVegetables    Category = "Vegetables"
	CategoryFruits        Category = "Fruits"
	CategoryUncategorized Category = "uncategorized"
)

// CategoryOrder is the order groups are presented in.
var CategoryOrder = []Category{
	CategoryProtein,
	CategoryCarbs,
	CategoryFat,
	CategoryVegetables,
	CategoryFruits,
}

// NormalizeCategory maps free-form macro_category values onto the five display
// buckets. Anything unrecognised is uncategorized and hidden from grouped views.
func NormalizeCategory(raw string) Category {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "protein":
		return CategoryProtein
	case "carbs":
		return CategoryCarbs
	case "fat", "fats", "healthy fats":
		return CategoryFat
	case "vegetables":
		return CategoryVegetables
	case "fruits", "fruit":
		return CategoryFruits
	default:
		return CategoryUncategorized
	}
}

const foodColumns = `id, owner_id, name, brand, macro_category, serving_qty, serving_unit,
	calories_per_serving, protein_per_serving, carbs_per_serving, fat_per_serving, is_public`

type FoodService struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewFoodService(db *sqlx.DB, logger *zap.Logger) *FoodService {
	return &FoodService{db: db, logger: logger}
}

type CustomFoodInput struct {
	Name               string   `json:"name"`
	MacroCategory      string   `json:"macroCategory"`
	ServingQty         *float64 `json:"servingQty"`
	ServingUnit        *string  `json:"servingUnit"`
	CaloriesPerServing *float64 `json:"caloriesPerServing"`
	ProteinPerServing  *float64 `json:"proteinPerServing"`
	CarbsPerServing    *float64 `json:"carbsPerServing"`
	FatPerServing      *float64 `json:"fatPerServing"`
}

func (in CustomFoodInput) validate() error {
	var missing []string
	if strings.TrimSpace(in.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(in.MacroCategory) == "" {
		missing = append(missing, "macroCategory")
	}
	if len(missing) > 0 {
		return invalid("Name and category are required.", missing...)
	}

	var bad []string
	if in.ServingQty != nil && !(*in.ServingQty > 0) {
		bad = append(bad, "servingQty")
	}
	nonNegative := func(name string, v *float64) {
		if v != nil && (*v < 0 || math.IsNaN(*v) || math.IsInf(*v, 0)) {
			bad = append(bad, name)
		}
	}
	nonNegative("caloriesPerServing", in.CaloriesPerServing)
	nonNegative("proteinPerServing", in.ProteinPerServing)
	nonNegative("carbsPerServing", in.CarbsPerServing)
	nonNegative("fatPerServing", in.FatPerServing)
	if len(bad) > 0 {
		return invalid("invalid nutrition values", bad...)
	}
	return nil
}

// CreateCustom appends a user-contributed food to the catalog. ownerID may be
// empty, in which case the food has no owner. Custom foods are always public.
func (s *FoodService) CreateCustom(ctx context.Context, ownerID string, in CustomFoodInput) (models.Food, error) {
	if err := in.validate(); err != nil {
		return models.Food{}, err
	}

	var owner *string
	if ownerID != "" {
		owner = &ownerID
	}
	servingQty := 100.0
	if in.ServingQty != nil {
		servingQty = *in.ServingQty
	}
	servingUnit := "g"
	if in.ServingUnit != nil && strings.TrimSpace(*in.ServingUnit) != "" {
		servingUnit = strings.TrimSpace(*in.ServingUnit)
	}

	var f models.Food
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(`
		INSERT INTO foods (id, owner_id, name, brand, macro_category, serving_qty, serving_unit,
		    calories_per_serving, protein_per_serving, carbs_per_serving, fat_per_serving, is_public)
		VALUES (?, ?, ?, NULL, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+foodColumns),
		uuid.NewString(), owner, strings.TrimSpace(in.Name), strings.TrimSpace(in.MacroCategory),
		servingQty, servingUnit,
		in.CaloriesPerServing, in.ProteinPerServing, in.CarbsPerServing, in.FatPerServing, true,
	).StructScan(&f)
	if err != nil {
		return models.Food{}, fmt.Errorf("insert custom food: %w", err)
	}
	return f, nil
}

func (s *FoodService) Get(ctx context.Context, id string) (models.Food, error) {
	var f models.Food
	err := s.db.GetContext(ctx, &f, s.db.Rebind(`SELECT `+foodColumns+` FROM foods WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Food{}, ErrNotFound
	}
	if err != nil {
		return models.Food{}, fmt.Errorf("load food: %w", err)
	}
	return f, nil
}

// ListSelectable returns public foods ordered by name, optionally filtered by a
// case-insensitive name substring. Foods missing any per-serving value cannot
// be scaled into a meal and are dropped from the result.
func (s *FoodService) ListSelectable(ctx context.Context, query string) ([]models.Food, error) {
	q := `SELECT ` + foodColumns + ` FROM foods WHERE is_public = ?`
	args := []interface{}{true}
	if query = strings.TrimSpace(query); query != "" {
		q += ` AND LOWER(name) LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(strings.ToLower(query))+"%")
	}
	q += ` ORDER BY name`

	var rows []models.Food
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("list foods: %w", err)
	}
	out := make([]models.Food, 0, len(rows))
	for _, f := range rows {
		if f.HasCompleteNutrition() {
			out = append(out, f)
		}
	}
	return out, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// SelectableFood is the client shape of a food with complete nutrition.
type SelectableFood struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Category           Category `json:"category"`
	ServingQty         float64  `json:"servingQty"`
	ServingUnit        string   `json:"servingUnit"`
	CaloriesPerServing float64  `json:"caloriesPerServing"`
	ProteinPerServing  float64  `json:"proteinPerServing"`
	CarbsPerServing    float64  `json:"carbsPerServing"`
	FatPerServing      float64  `json:"fatPerServing"`
}

type FoodGroup struct {
	Category Category         `json:"category"`
	Foods    []SelectableFood `json:"foods"`
}

// GroupByCategory buckets foods in CategoryOrder. Uncategorized foods and
// empty groups are left out.
func GroupByCategory(foods []models.Food) []FoodGroup {
	buckets := make(map[Category][]SelectableFood, len(CategoryOrder))
	for _, f := range foods {
		c := NormalizeCategory(f.MacroCategory)
		if c == CategoryUncategorized || !f.HasCompleteNutrition() {
			continue
		}
		buckets[c] = append(buckets[c], SelectableFood{
			ID:                 f.ID,
			Name:               f.Name,
			Category:           c,
			ServingQty:         f.ServingQty,
			ServingUnit:        f.ServingUnit,
			CaloriesPerServing: *f.CaloriesPerServing,
			ProteinPerServing:  *f.ProteinPerServing,
			CarbsPerServing:    *f.CarbsPerServing,
			FatPerServing:      *f.FatPerServing,
		})
	}

	groups := make([]FoodGroup, 0, len(CategoryOrder))
	for _, c := range CategoryOrder {
		if len(buckets[c]) == 0 {
			continue
		}
		groups = append(groups, FoodGroup{Category: c, Foods: buckets[c]})
	}
	return groups
}

// Portion is the nutrition of a given weight of a food.
type Portion struct {
	FoodID   string  `json:"foodId"`
	Grams    float64 `json:"grams"`
	Calories int     `json:"caloriesTotal"`
	ProteinG float64 `json:"proteinTotal"`
	CarbsG   float64 `json:"carbsTotal"`
	FatG     float64 `json:"fatTotal"`
}

func (p Portion) Amounts() Amounts {
	return Amounts{Calories: float64(p.Calories), ProteinG: p.ProteinG, CarbsG: p.CarbsG, FatG: p.FatG}
}

// ComputePortion scales per-serving nutrition by grams/serving_qty. Calories
// are rounded to whole numbers and macros to one decimal place.
func ComputePortion(f models.Food, grams float64) (Portion, error) {
	if !f.HasCompleteNutrition() {
		return Portion{}, invalid("food has incomplete nutrition data", "foodId")
	}
	if grams < 0 || math.IsNaN(grams) || math.IsInf(grams, 0) {
		return Portion{}, invalid("grams must be a non-negative number", "grams")
	}
	factor := 0.0
	if f.ServingQty > 0 {
		factor = grams / f.ServingQty
	}
	return Portion{
		FoodID:   f.ID,
		Grams:    grams,
		Calories: int(math.Round(*f.CaloriesPerServing * factor)),
		ProteinG: roundTenth(*f.ProteinPerServing * factor),
		CarbsG:   roundTenth(*f.CarbsPerServing * factor),
		FatG:     roundTenth(*f.FatPerServing * factor),
	}, nil
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
