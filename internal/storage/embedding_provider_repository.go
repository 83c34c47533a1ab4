package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"embedding_admin/internal/embedding"
	"embedding_admin/internal/models"
)

// EmbeddingProviderRepository handles embedding_providers operations
type EmbeddingProviderRepository struct {
	db  *DB
	enc *Encryption
}

// NewEmbeddingProviderRepository creates a new provider repository. API keys
// are sealed with enc before they reach the table.
func NewEmbeddingProviderRepository(db *DB, enc *Encryption) *EmbeddingProviderRepository {
	return &EmbeddingProviderRepository{db: db, enc: enc}
}

const providerColumns = `id, provider_type, encrypted_api_key, api_url, custom_config,
	       default_model_id, created_at, updated_at`

// List returns all provider records ordered by type
func (r *EmbeddingProviderRepository) List(ctx context.Context) ([]*models.EmbeddingProvider, error) {
	query := `SELECT ` + providerColumns + ` FROM embedding_providers ORDER BY provider_type`

	var providers []*models.EmbeddingProvider
	if err := r.db.conn.SelectContext(ctx, &providers, query); err != nil {
		return nil, fmt.Errorf("failed to list embedding providers: %w", err)
	}

	return providers, nil
}

// ListDetails returns the provider details the selection screen consumes.
// The slice is cached and the same slice is returned until a write
// invalidates it.
func (r *EmbeddingProviderRepository) ListDetails(ctx context.Context) ([]embedding.ProviderDetail, error) {
	if details, ok := r.db.providerCache.Get(providerDetailsKey); ok {
		return details, nil
	}

	providers, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	details := models.Details(providers)
	r.db.providerCache.Set(providerDetailsKey, details)
	return details, nil
}

// GetByType retrieves a provider record, matching the type case-insensitively
func (r *EmbeddingProviderRepository) GetByType(ctx context.Context, providerType string) (*models.EmbeddingProvider, error) {
	var provider models.EmbeddingProvider
	query := `SELECT ` + providerColumns + ` FROM embedding_providers WHERE provider_type = $1`

	err := r.db.conn.GetContext(ctx, &provider, query, models.NormalizeProviderType(providerType))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProviderNotFound
		}
		return nil, fmt.Errorf("failed to get embedding provider: %w", err)
	}

	return &provider, nil
}

// ProviderUpsert carries the fields an admin submits for a provider
type ProviderUpsert struct {
	ProviderType string
	APIKey       string
	APIURL       string
	CustomConfig map[string]any
}

// Upsert creates or replaces the record for a provider type. An empty API
// key on an existing record keeps the stored key.
func (r *EmbeddingProviderRepository) Upsert(ctx context.Context, in ProviderUpsert) (*models.EmbeddingProvider, error) {
	providerType := models.NormalizeProviderType(in.ProviderType)
	if providerType == "" {
		return nil, fmt.Errorf("provider type is required")
	}

	encryptedKey, err := r.enc.EncryptString(in.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt api key: %w", err)
	}

	provider := &models.EmbeddingProvider{
		ID:              uuid.New(),
		ProviderType:    providerType,
		EncryptedAPIKey: encryptedKey,
		APIURL:          in.APIURL,
		CustomConfig:    models.JSONB(in.CustomConfig),
	}

	query := `
		INSERT INTO embedding_providers (id, provider_type, encrypted_api_key, api_url, custom_config)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (provider_type) DO UPDATE
		SET encrypted_api_key = COALESCE(NULLIF(EXCLUDED.encrypted_api_key, ''), embedding_providers.encrypted_api_key),
		    api_url = EXCLUDED.api_url,
		    custom_config = EXCLUDED.custom_config,
		    updated_at = NOW()
		RETURNING ` + providerColumns

	err = r.db.conn.QueryRowxContext(
		ctx, query,
		provider.ID, provider.ProviderType, provider.EncryptedAPIKey, provider.APIURL, provider.CustomConfig,
	).StructScan(provider)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert embedding provider: %w", err)
	}

	r.db.providerCache.Delete(providerDetailsKey)
	return provider, nil
}

// APIKey returns the decrypted API key for a provider type
func (r *EmbeddingProviderRepository) APIKey(ctx context.Context, providerType string) (string, error) {
	provider, err := r.GetByType(ctx, providerType)
	if err != nil {
		return "", err
	}
	return r.enc.DecryptString(provider.EncryptedAPIKey)
}

// DeleteByType deletes the record for a provider type
func (r *EmbeddingProviderRepository) DeleteByType(ctx context.Context, providerType string) error {
	query := `DELETE FROM embedding_providers WHERE provider_type = $1`

	result, err := r.db.conn.ExecContext(ctx, query, models.NormalizeProviderType(providerType))
	if err != nil {
		return fmt.Errorf("failed to delete embedding provider: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return ErrProviderNotFound
	}

	r.db.providerCache.Delete(providerDetailsKey)
	return nil
}
