package storage

import (
	"context"
	"fmt"
)

// schema creates the tables this service owns. Statements are idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS embedding_providers (
		id                UUID PRIMARY KEY,
		provider_type     TEXT NOT NULL UNIQUE,
		encrypted_api_key TEXT NOT NULL DEFAULT '',
		api_url           TEXT NOT NULL DEFAULT '',
		custom_config     JSONB,
		default_model_id  UUID,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS cloud_embedding_models (
		id                UUID PRIMARY KEY,
		model_name        TEXT NOT NULL,
		provider_type     TEXT NOT NULL,
		description       TEXT NOT NULL DEFAULT '',
		model_dim         INTEGER NOT NULL DEFAULT 0,
		normalize         BOOLEAN NOT NULL DEFAULT FALSE,
		query_prefix      TEXT NOT NULL DEFAULT '',
		passage_prefix    TEXT NOT NULL DEFAULT '',
		api_url           TEXT NOT NULL DEFAULT '',
		price_per_million DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (provider_type, model_name)
	)`,
	`CREATE TABLE IF NOT EXISTS search_settings (
		id             BIGINT PRIMARY KEY,
		model_name     TEXT NOT NULL,
		provider_type  TEXT NOT NULL,
		model_dim      INTEGER NOT NULL DEFAULT 0,
		normalize      BOOLEAN NOT NULL DEFAULT FALSE,
		query_prefix   TEXT NOT NULL DEFAULT '',
		passage_prefix TEXT NOT NULL DEFAULT '',
		api_url        TEXT NOT NULL DEFAULT '',
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS admin_users (
		id            UUID PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		roles         TEXT[] NOT NULL DEFAULT '{}',
		enabled       BOOLEAN NOT NULL DEFAULT TRUE,
		last_login_at TIMESTAMPTZ,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// EnsureSchema creates missing tables
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
