package db

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// The schema is written in the subset of SQL shared by Postgres and SQLite so
// the same script serves production and local/test databases.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS daily_logs (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    log_date TEXT NOT NULL,
    total_calories INTEGER NOT NULL DEFAULT 0 CHECK (total_calories >= 0),
    protein_g INTEGER NOT NULL DEFAULT 0 CHECK (protein_g >= 0),
    carbs_g INTEGER NOT NULL DEFAULT 0 CHECK (carbs_g >= 0),
    fat_g INTEGER NOT NULL DEFAULT 0 CHECK (fat_g >= 0),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(user_id, log_date)
);

CREATE TABLE IF NOT EXISTS foods (
    id TEXT PRIMARY KEY,
    owner_id TEXT REFERENCES users(id) ON DELETE SET NULL,
    name TEXT NOT NULL,
    brand TEXT,
    macro_category TEXT NOT NULL,
    serving_qty DOUBLE PRECISION NOT NULL DEFAULT 100,
    serving_unit TEXT NOT NULL DEFAULT 'g',
    calories_per_serving DOUBLE PRECISION,
    protein_per_serving DOUBLE PRECISION,
    carbs_per_serving DOUBLE PRECISION,
    fat_per_serving DOUBLE PRECISION,
    is_public BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_foods_public_name ON foods(is_public, name);

CREATE TABLE IF NOT EXISTS user_targets (
    user_id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
    daily_calories INTEGER NOT NULL CHECK (daily_calories > 0),
    protein_g INTEGER NOT NULL CHECK (protein_g > 0),
    carbs_g INTEGER NOT NULL CHECK (carbs_g > 0),
    fat_g INTEGER NOT NULL CHECK (fat_g > 0),
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

func RunMigrations(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
