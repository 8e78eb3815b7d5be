package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"wellbalance/internal/models"
)

// TargetsSource tells a caller where resolved targets came from.
type TargetsSource string

const (
	TargetsFromUser       TargetsSource = "user"
	TargetsDefault        TargetsSource = "default"
	TargetsDefaultOnError TargetsSource = "default_on_error"
	TargetsDefaultNoUser  TargetsSource = "default_unauthenticated"
)

const noteDefaultOnLoadError = "Using default targets due to load error."

type ResolvedTargets struct {
	models.UserTargets
	Source TargetsSource `json:"source"`
	Note   string        `json:"note,omitempty"`
}

type TargetsService struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewTargetsService(db *sqlx.DB, logger *zap.Logger) *TargetsService {
	return &TargetsService{db: db, logger: logger}
}

// Get never fails: target display must not depend on store availability, so
// both a missing row and a read error resolve to the defaults.
func (s *TargetsService) Get(ctx context.Context, userID string) ResolvedTargets {
	if userID == "" {
		return ResolvedTargets{
			UserTargets: models.DefaultTargets,
			Source:      TargetsDefaultNoUser,
			Note:        "User is not authenticated; showing default targets.",
		}
	}

	var t models.UserTargets
	err := s.db.GetContext(ctx, &t, s.db.Rebind(
		`SELECT daily_calories, protein_g, carbs_g, fat_g FROM user_targets WHERE user_id = ?`), userID)
	switch {
	case err == nil:
		return ResolvedTargets{UserTargets: t, Source: TargetsFromUser}
	case errors.Is(err, sql.ErrNoRows):
		return ResolvedTargets{UserTargets: models.DefaultTargets, Source: TargetsDefault}
	default:
		s.logger.Error("failed to load user targets", zap.String("user_id", userID), zap.Error(err))
		return ResolvedTargets{
			UserTargets: models.DefaultTargets,
			Source:      TargetsDefaultOnError,
			Note:        noteDefaultOnLoadError,
		}
	}
}

// Upsert stores the user's four goals. Every goal must be positive.
func (s *TargetsService) Upsert(ctx context.Context, userID string, t models.UserTargets) (models.UserTargets, error) {
	if userID == "" {
		return models.UserTargets{}, ErrUnauthenticated
	}
	var bad []string
	if t.DailyCalories <= 0 {
		bad = append(bad, "daily_calories")
	}
	if t.ProteinG <= 0 {
		bad = append(bad, "protein_g")
	}
	if t.CarbsG <= 0 {
		bad = append(bad, "carbs_g")
	}
	if t.FatG <= 0 {
		bad = append(bad, "fat_g")
	}
	if len(bad) > 0 {
		return models.UserTargets{}, invalid("targets must be positive integers", bad...)
	}

	var out models.UserTargets
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(`
		INSERT INTO user_targets (user_id, daily_calories, protein_g, carbs_g, fat_g)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
		    daily_calories = excluded.daily_calories,
		    protein_g = excluded.protein_g,
		    carbs_g = excluded.carbs_g,
		    fat_g = excluded.fat_g,
		    updated_at = CURRENT_TIMESTAMP
		RETURNING daily_calories, protein_g, carbs_g, fat_g`),
		userID, t.DailyCalories, t.ProteinG, t.CarbsG, t.FatG,
	).StructScan(&out)
	if err != nil {
		return models.UserTargets{}, fmt.Errorf("upsert user targets: %w", err)
	}
	return out, nil
}
