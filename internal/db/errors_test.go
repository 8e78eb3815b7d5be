package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsUniqueViolationSQLite(t *testing.T) {
	conn, err := Open(context.Background(), DriverSQLite, ":memory:")
	require.NoError(t, err)
	defer conn.Close()

	insert := `INSERT INTO users (id, email, password_hash) VALUES (?, ?, 'x')`
	_, err = conn.Exec(insert, "u1", "a@example.com")
	require.NoError(t, err)

	_, err = conn.Exec(insert, "u2", "a@example.com")
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert user: %w", err)))

	_, err = conn.Exec(`INSERT INTO users (id, email) VALUES ('u3', 'b@example.com')`)
	require.Error(t, err)
	assert.False(t, IsUniqueViolation(err), "NOT NULL is a different constraint")
}

func TestPostgresErrorCodes(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "22003"}))
	assert.True(t, IsOutOfRange(fmt.Errorf("upsert: %w", &pgconn.PgError{Code: "22003"})))
	assert.False(t, IsOutOfRange(errors.New("boom")))
	assert.False(t, IsUniqueViolation(nil))
}
