package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"wellbalance/internal/models"
	"wellbalance/internal/services"
)

const fallbackDisplayName = "WellBalance friend"

type ProfileHandler struct {
	db      *sqlx.DB
	targets *services.TargetsService
	logger  *zap.Logger
}

func NewProfileHandler(db *sqlx.DB, targets *services.TargetsService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{db: db, targets: targets, logger: logger}
}

type ProfileResponse struct {
	ID          string                   `json:"id"`
	Email       string                   `json:"email"`
	DisplayName string                   `json:"displayName"`
	Initials    string                   `json:"initials"`
	Targets     services.ResolvedTargets `json:"targets"`
}

func displayName(email string) string {
	if local, _, _ := strings.Cut(email, "@"); local != "" {
		return local
	}
	return fallbackDisplayName
}

// initials takes the first letter of up to two space-separated words.
func initials(email string) string {
	src := email
	if src == "" {
		src = "WB"
	}
	var b strings.Builder
	for _, word := range strings.Fields(src) {
		r, _ := utf8.DecodeRuneInString(word)
		b.WriteRune(r)
		if utf8.RuneCountInString(b.String()) == 2 {
			break
		}
	}
	return strings.ToUpper(b.String())
}

// Get godoc
// @Summary Current user's profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ProfileResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /profile [get]
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	var u models.User
	err := h.db.GetContext(r.Context(), &u, h.db.Rebind(`SELECT id, email, password_hash FROM users WHERE id = ?`), userID)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to load profile")
		return
	}
	writeJSON(w, http.StatusOK, ProfileResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: displayName(u.Email),
		Initials:    initials(u.Email),
		Targets:     h.targets.Get(r.Context(), userID),
	})
}

// UpdateTargets godoc
// @Summary Set daily targets
// @Description Stores four positive integers as the user's daily goals
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param targets body models.UserTargets true "Targets"
// @Success 200 {object} models.UserTargets
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /profile/targets [put]
func (h *ProfileHandler) UpdateTargets(w http.ResponseWriter, r *http.Request) {
	var t models.UserTargets
	if err := decodeJSON(r, &t); err != nil {
		writeError(w, http.StatusBadRequest, "targets must be positive integers")
		return
	}
	saved, err := h.targets.Upsert(r.Context(), currentUser(r), t)
	if err != nil {
		writeServiceError(w, h.logger, err, "Failed to save targets")
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
