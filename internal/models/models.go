package models

type User struct {
	ID           string `db:"id" json:"id"`
	Email        string `db:"email" json:"email"`
	PasswordHash string `db:"password_hash" json:"-"`
}

// DailyLog is the aggregate of everything a user ate on one calendar date.
// LogDate is an ISO YYYY-MM-DD key, not a timestamp.
type DailyLog struct {
	ID            string `db:"id" json:"id"`
	UserID        string `db:"user_id" json:"user_id"`
	LogDate       string `db:"log_date" json:"log_date"`
	TotalCalories int    `db:"total_calories" json:"total_calories"`
	ProteinG      int    `db:"protein_g" json:"protein_g"`
	CarbsG        int    `db:"carbs_g" json:"carbs_g"`
	FatG          int    `db:"fat_g" json:"fat_g"`
}

type Food struct {
	ID                 string   `db:"id" json:"id"`
	OwnerID            *string  `db:"owner_id" json:"owner_id"`
	Name               string   `db:"name" json:"name"`
	Brand              *string  `db:"brand" json:"brand"`
	MacroCategory      string   `db:"macro_category" json:"macro_category"`
	ServingQty         float64  `db:"serving_qty" json:"serving_qty"`
	ServingUnit        string   `db:"serving_unit" json:"serving_unit"`
	CaloriesPerServing *float64 `db:"calories_per_serving" json:"calories_per_serving"`
	ProteinPerServing  *float64 `db:"protein_per_serving" json:"protein_per_serving"`
	CarbsPerServing    *float64 `db:"carbs_per_serving" json:"carbs_per_serving"`
	FatPerServing      *float64 `db:"fat_per_serving" json:"fat_per_serving"`
	IsPublic           bool     `db:"is_public" json:"is_public"`
}

// HasCompleteNutrition reports whether all four per-serving values are known.
func (f Food) HasCompleteNutrition() bool {
	return f.CaloriesPerServing != nil && f.ProteinPerServing != nil &&
		f.CarbsPerServing != nil && f.FatPerServing != nil
}

type UserTargets struct {
	DailyCalories int `db:"daily_calories" json:"daily_calories"`
	ProteinG      int `db:"protein_g" json:"protein_g"`
	CarbsG        int `db:"carbs_g" json:"carbs_g"`
	FatG          int `db:"fat_g" json:"fat_g"`
}

// DefaultTargets is used whenever a user has no targets row.
var DefaultTargets = UserTargets{
	DailyCalories: 2000,
	ProteinG:      120,
	CarbsG:        200,
	FatG:          60,
}
