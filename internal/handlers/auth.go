package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"wellbalance/internal/db"
	"wellbalance/internal/models"
)

const minPasswordLen = 8

type TokenIssuer interface {
	IssueToken(userID string) (string, error)
}

type AuthHandler struct {
	db     *sqlx.DB
	tokens TokenIssuer
	logger *zap.Logger
}

func NewAuthHandler(conn *sqlx.DB, tokens TokenIssuer, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{db: conn, tokens: tokens, logger: logger}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func (c *credentials) normalize() []string {
	c.Email = strings.TrimSpace(strings.ToLower(c.Email))
	var missing []string
	if c.Email == "" {
		missing = append(missing, "email")
	}
	if c.Password == "" {
		missing = append(missing, "password")
	}
	return missing
}

// Signup godoc
// @Summary Create an account
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body credentials true "Email and password"
// @Success 201 {object} TokenResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := decodeJSON(r, &c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if missing := c.normalize(); len(missing) > 0 {
		writeError(w, http.StatusBadRequest, "email and password required", missing...)
		return
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		writeError(w, http.StatusBadRequest, "invalid email", "email")
		return
	}
	if len(c.Password) < minPasswordLen {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters", "password")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(c.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not hash password")
		return
	}

	user := models.User{ID: uuid.NewString(), Email: c.Email, PasswordHash: string(hashed)}
	_, err = h.db.ExecContext(r.Context(), h.db.Rebind(`INSERT INTO users (id, email, password_hash) VALUES (?, ?, ?)`),
		user.ID, user.Email, user.PasswordHash)
	if db.IsUniqueViolation(err) {
		writeError(w, http.StatusConflict, "email already registered", "email")
		return
	}
	if err != nil {
		h.logger.Error("signup insert failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not create user")
		return
	}
	h.respondWithToken(w, http.StatusCreated, user)
}

// Login godoc
// @Summary Exchange credentials for a token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body credentials true "Email and password"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := decodeJSON(r, &c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if missing := c.normalize(); len(missing) > 0 {
		writeError(w, http.StatusBadRequest, "email and password required", missing...)
		return
	}

	var user models.User
	err := h.db.GetContext(r.Context(), &user, h.db.Rebind(`SELECT id, email, password_hash FROM users WHERE email = ?`), c.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.logger.Error("login lookup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "server error")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(c.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	h.respondWithToken(w, http.StatusOK, user)
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, status int, user models.User) {
	token, err := h.tokens.IssueToken(user.ID)
	if err != nil {
		h.logger.Error("could not issue token", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	writeJSON(w, status, TokenResponse{Token: token, User: user})
}
