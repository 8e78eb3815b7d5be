package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"wellbalance/internal/db"
	"wellbalance/internal/models"
)

// MaxMealAmount caps a single amount so its rounded value fits the INTEGER
// columns.
const MaxMealAmount = math.MaxInt32

// Amounts is one meal's contribution, already scaled by the caller from
// per-serving nutrition and portion size. Fractions are allowed here.
type Amounts struct {
	Calories float64 `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// Totals are the integer values stored in a daily log row.
type Totals struct {
	Calories int
	ProteinG int
	CarbsG   int
	FatG     int
}

// Round converts each amount to the nearest integer independently. The store
// columns are integers, so fractional grams are dropped here and nowhere else.
func (a Amounts) Round() Totals {
	return Totals{
		Calories: int(math.Round(a.Calories)),
		ProteinG: int(math.Round(a.ProteinG)),
		CarbsG:   int(math.Round(a.CarbsG)),
		FatG:     int(math.Round(a.FatG)),
	}
}

func (a Amounts) validate() error {
	var bad []string
	check := func(name string, v float64) {
		if v < 0 || v > MaxMealAmount || math.IsNaN(v) || math.IsInf(v, 0) {
			bad = append(bad, name)
		}
	}
	check("caloriesTotal", a.Calories)
	check("proteinTotal", a.ProteinG)
	check("carbsTotal", a.CarbsG)
	check("fatTotal", a.FatG)
	if len(bad) > 0 {
		return invalid("amounts must be non-negative numbers no larger than 2147483647", bad...)
	}
	return nil
}

type DailyLogService struct {
	db     *sqlx.DB
	clock  Clock
	logger *zap.Logger
}

func NewDailyLogService(db *sqlx.DB, clock Clock, logger *zap.Logger) *DailyLogService {
	return &DailyLogService{db: db, clock: clock, logger: logger}
}

// Today is the server-side calendar date used as the write key.
func (s *DailyLogService) Today() string {
	return ISODate(s.clock())
}

const addMealSQL = `
INSERT INTO daily_logs (id, user_id, log_date, total_calories, protein_g, carbs_g, fat_g)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (user_id, log_date) DO UPDATE SET
    total_calories = daily_logs.total_calories + excluded.total_calories,
    protein_g = daily_logs.protein_g + excluded.protein_g,
    carbs_g = daily_logs.carbs_g + excluded.carbs_g,
    fat_g = daily_logs.fat_g + excluded.fat_g,
    updated_at = CURRENT_TIMESTAMP
RETURNING id, user_id, log_date, total_calories, protein_g, carbs_g, fat_g`

// AddMealAmounts adds one meal to today's row for userID, creating the row on
// the first meal of the day. The increment happens inside a single upsert, so
// concurrent adds for the same day are all counted.
func (s *DailyLogService) AddMealAmounts(ctx context.Context, userID string, a Amounts) (models.DailyLog, error) {
	if userID == "" {
		return models.DailyLog{}, ErrUnauthenticated
	}
	if err := a.validate(); err != nil {
		return models.DailyLog{}, err
	}
	t := a.Round()
	today := s.Today()

	var row models.DailyLog
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(addMealSQL),
		uuid.NewString(), userID, today, t.Calories, t.ProteinG, t.CarbsG, t.FatG,
	).StructScan(&row)
	if db.IsOutOfRange(err) {
		return models.DailyLog{}, invalid("daily totals would exceed the allowed range",
			"caloriesTotal", "proteinTotal", "carbsTotal", "fatTotal")
	}
	if err != nil {
		return models.DailyLog{}, fmt.Errorf("upsert daily log: %w", err)
	}
	return row, nil
}

// DailySummary returns the row for date (today when empty). A missing row is
// an all-zero summary, and NULL columns read as zero.
func (s *DailyLogService) DailySummary(ctx context.Context, userID, date string) (models.DailyLog, error) {
	if userID == "" {
		return models.DailyLog{}, ErrUnauthenticated
	}
	if date == "" {
		date = s.Today()
	} else if _, err := ParseISODate(date); err != nil {
		return models.DailyLog{}, invalid("invalid date; expected YYYY-MM-DD", "date")
	}

	row := models.DailyLog{UserID: userID, LogDate: date}
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`
		SELECT id, user_id, log_date,
		       COALESCE(total_calories, 0) AS total_calories,
		       COALESCE(protein_g, 0) AS protein_g,
		       COALESCE(carbs_g, 0) AS carbs_g,
		       COALESCE(fat_g, 0) AS fat_g
		FROM daily_logs WHERE user_id = ? AND log_date = ?`), userID, date)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DailyLog{UserID: userID, LogDate: date}, nil
	}
	if err != nil {
		return models.DailyLog{}, fmt.Errorf("load daily log: %w", err)
	}
	return row, nil
}

// List returns up to 100 rows, newest first, optionally bounded by inclusive
// start and end dates.
func (s *DailyLogService) List(ctx context.Context, userID, startDate, endDate string) ([]models.DailyLog, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	where := "WHERE user_id = ?"
	args := []interface{}{userID}
	if startDate != "" {
		if _, err := ParseISODate(startDate); err != nil {
			return nil, invalid("invalid start_date format; expected YYYY-MM-DD", "start_date")
		}
		where += " AND log_date >= ?"
		args = append(args, startDate)
	}
	if endDate != "" {
		if _, err := ParseISODate(endDate); err != nil {
			return nil, invalid("invalid end_date format; expected YYYY-MM-DD", "end_date")
		}
		where += " AND log_date <= ?"
		args = append(args, endDate)
	}

	out := []models.DailyLog{}
	query := "SELECT id, user_id, log_date, total_calories, protein_g, carbs_g, fat_g FROM daily_logs " +
		where + " ORDER BY log_date DESC LIMIT 100"
	if err := s.db.SelectContext(ctx, &out, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list daily logs: %w", err)
	}
	return out, nil
}

type HistoryPoint struct {
	Date     string `json:"date"`
	Label    string `json:"label"`
	Calories int    `json:"calories"`
}

// WeekHistory returns seven points ending at endDate inclusive, oldest first.
// Days without a row are reported as zero calories.
func (s *DailyLogService) WeekHistory(ctx context.Context, userID, endDate string) ([]HistoryPoint, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	end, err := ParseISODate(endDate)
	if err != nil {
		return nil, invalid("invalid date; expected YYYY-MM-DD", "date")
	}
	start := end.AddDate(0, 0, -6)

	var rows []struct {
		LogDate  string `db:"log_date"`
		Calories int    `db:"total_calories"`
	}
	err = s.db.SelectContext(ctx, &rows, s.db.Rebind(`
		SELECT log_date, total_calories FROM daily_logs
		WHERE user_id = ? AND log_date >= ? AND log_date <= ?
		ORDER BY log_date`), userID, start.Format(dateLayout), endDate)
	if err != nil {
		return nil, fmt.Errorf("load calorie history: %w", err)
	}
	byDate := make(map[string]int, len(rows))
	for _, r := range rows {
		byDate[r.LogDate] = r.Calories
	}

	out := make([]HistoryPoint, 0, 7)
	for i := 0; i < 7; i++ {
		day := start.AddDate(0, 0, i)
		iso := day.Format(dateLayout)
		out = append(out, HistoryPoint{
			Date:     iso,
			Label:    day.Format("Mon"),
			Calories: byDate[iso],
		})
	}
	return out, nil
}
