package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var secret = []byte("test-secret")

func whoAmI(w http.ResponseWriter, r *http.Request) {
	id, ok := UserID(r.Context())
	if !ok {
		id = "anonymous"
	}
	_, _ = w.Write([]byte(id))
}

func request(h http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuth(t *testing.T) {
	m := NewAuthMiddleware(secret)
	h := m.RequireAuth(http.HandlerFunc(whoAmI))

	token, err := m.IssueToken("5f1c0c2e-3b7a-4c1e-9d55-8a0d1f2b3c4d")
	require.NoError(t, err)

	rec := request(h, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "5f1c0c2e-3b7a-4c1e-9d55-8a0d1f2b3c4d", rec.Body.String())

	for name, bad := range map[string]string{
		"missing":      "",
		"garbage":      "not-a-jwt",
		"wrong secret": mustSign(t, []byte("other"), jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(time.Hour).Unix()}),
		"no subject":   mustSign(t, secret, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}),
		"numeric sub":  mustSign(t, secret, jwt.MapClaims{"sub": 7, "exp": time.Now().Add(time.Hour).Unix()}),
	} {
		rec := request(h, bad)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)
		assert.JSONEq(t, `{"error":"Not authenticated"}`, rec.Body.String(), name)
	}
}

func TestRequireAuthRejectsExpiredToken(t *testing.T) {
	m := NewAuthMiddleware(secret)
	m.now = func() time.Time { return time.Now().Add(-25 * time.Hour) }
	token, err := m.IssueToken("u1")
	require.NoError(t, err)

	m.now = time.Now
	assert.Equal(t, http.StatusUnauthorized, request(m.RequireAuth(http.HandlerFunc(whoAmI)), token).Code)
}

func TestOptionalAuth(t *testing.T) {
	m := NewAuthMiddleware(secret)
	h := m.OptionalAuth(http.HandlerFunc(whoAmI))
	token, err := m.IssueToken("u1")
	require.NoError(t, err)

	assert.Equal(t, "u1", request(h, token).Body.String())
	assert.Equal(t, "anonymous", request(h, "").Body.String())
	assert.Equal(t, "anonymous", request(h, "bogus").Body.String())
}

func mustSign(t *testing.T, key []byte, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestZapRequestLoggerRecordsUser(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	auth := NewAuthMiddleware(secret)
	token, err := auth.IssueToken("u1")
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Use(chimw.RequestID, ZapRequestLogger(zap.New(core)))
	r.With(auth.RequireAuth).Get("/me", whoAmI)
	r.Get("/missing", func(w http.ResponseWriter, r *http.Request) { http.NotFound(w, r) })

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(httptest.NewRecorder(), req)
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	entries := logs.All()
	require.Len(t, entries, 2)
	first := entries[0].ContextMap()
	assert.Equal(t, "u1", first["user_id"])
	assert.Equal(t, int64(http.StatusOK), first["status"])
	assert.NotEmpty(t, first["request_id"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestZapRecoverer(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	h := ZapRecoverer(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "panic recovered", logs.All()[0].Message)
}
