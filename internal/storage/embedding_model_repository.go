package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"embedding_admin/internal/models"
)

// EmbeddingModelRepository handles cloud_embedding_models and the active
// model row in search_settings
type EmbeddingModelRepository struct {
	db *DB
}

// NewEmbeddingModelRepository creates a new model repository
func NewEmbeddingModelRepository(db *DB) *EmbeddingModelRepository {
	return &EmbeddingModelRepository{db: db}
}

const modelColumns = `id, model_name, provider_type, description, model_dim, normalize,
	       query_prefix, passage_prefix, api_url, price_per_million, created_at`

// List returns every registered model
func (r *EmbeddingModelRepository) List(ctx context.Context) ([]*models.CloudEmbeddingModel, error) {
	query := `SELECT ` + modelColumns + ` FROM cloud_embedding_models ORDER BY provider_type, model_name`

	var rows []*models.CloudEmbeddingModel
	if err := r.db.conn.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list embedding models: %w", err)
	}

	return rows, nil
}

// ListByProvider returns the models registered for a provider type
func (r *EmbeddingModelRepository) ListByProvider(ctx context.Context, providerType string) ([]*models.CloudEmbeddingModel, error) {
	query := `SELECT ` + modelColumns + ` FROM cloud_embedding_models
		WHERE provider_type = $1
		ORDER BY model_name`

	var rows []*models.CloudEmbeddingModel
	err := r.db.conn.SelectContext(ctx, &rows, query, models.NormalizeProviderType(providerType))
	if err != nil {
		return nil, fmt.Errorf("failed to list embedding models: %w", err)
	}

	return rows, nil
}

// Create registers a model. ProviderType is stored normalized.
func (r *EmbeddingModelRepository) Create(ctx context.Context, m *models.CloudEmbeddingModel) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	m.ProviderType = models.NormalizeProviderType(m.ProviderType)

	query := `
		INSERT INTO cloud_embedding_models (id, model_name, provider_type, description, model_dim,
		                                    normalize, query_prefix, passage_prefix, api_url, price_per_million)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`

	err := r.db.conn.QueryRowxContext(
		ctx, query,
		m.ID, m.ModelName, m.ProviderType, m.Description, m.ModelDim,
		m.Normalize, m.QueryPrefix, m.PassagePrefix, m.APIURL, m.PricePerMillion,
	).Scan(&m.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrModelExists
		}
		return fmt.Errorf("failed to create embedding model: %w", err)
	}

	return nil
}

// Delete removes a model by ID
func (r *EmbeddingModelRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.conn.ExecContext(ctx, `DELETE FROM cloud_embedding_models WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete embedding model: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return ErrModelNotFound
	}

	return nil
}

// GetCurrent returns the active model settings
func (r *EmbeddingModelRepository) GetCurrent(ctx context.Context) (*models.SearchSettings, error) {
	if s, ok := r.db.settingsCache.Get(searchSettingsKey); ok {
		return s, nil
	}

	var s models.SearchSettings
	query := `
		SELECT id, model_name, provider_type, model_dim, normalize,
		       query_prefix, passage_prefix, api_url, updated_at
		FROM search_settings
		WHERE id = 1
	`

	err := r.db.conn.GetContext(ctx, &s, query)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCurrentModelNotSet
		}
		return nil, fmt.Errorf("failed to get search settings: %w", err)
	}

	r.db.settingsCache.Set(searchSettingsKey, &s)
	return &s, nil
}

// SetCurrent makes s the active model
func (r *EmbeddingModelRepository) SetCurrent(ctx context.Context, s *models.SearchSettings) error {
	query := `
		INSERT INTO search_settings (id, model_name, provider_type, model_dim, normalize,
		                             query_prefix, passage_prefix, api_url)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE
		SET model_name = EXCLUDED.model_name,
		    provider_type = EXCLUDED.provider_type,
		    model_dim = EXCLUDED.model_dim,
		    normalize = EXCLUDED.normalize,
		    query_prefix = EXCLUDED.query_prefix,
		    passage_prefix = EXCLUDED.passage_prefix,
		    api_url = EXCLUDED.api_url,
		    updated_at = NOW()
		RETURNING id, updated_at
	`

	err := r.db.conn.QueryRowxContext(
		ctx, query,
		s.ModelName, s.ProviderType, s.ModelDim, s.Normalize,
		s.QueryPrefix, s.PassagePrefix, s.APIURL,
	).Scan(&s.ID, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to set current embedding model: %w", err)
	}

	r.db.settingsCache.Delete(searchSettingsKey)
	return nil
}
