package models

import (
	"time"

	"github.com/google/uuid"

	"embedding_admin/internal/embedding"
)

//
// CloudEmbeddingModel (cloud_embedding_models table)
//

type CloudEmbeddingModel struct {
	ID uuid.UUID `db:"id" json:"id"`

	// 1. Identity
	ModelName    string `db:"model_name" json:"model_name"`
	ProviderType string `db:"provider_type" json:"provider_type"`
	Description  string `db:"description" json:"description"`

	// 2. Embedding shape
	ModelDim      int    `db:"model_dim" json:"model_dim"`
	Normalize     bool   `db:"normalize" json:"normalize"`
	QueryPrefix   string `db:"query_prefix" json:"query_prefix"`
	PassagePrefix string `db:"passage_prefix" json:"passage_prefix"`

	// 3. Serving
	APIURL          string  `db:"api_url" json:"api_url"`
	PricePerMillion float64 `db:"price_per_million" json:"price_per_million"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CloudModel returns the model as the selection screen sees it. Provider
// types are passed through unchanged; proxy models are stored as "litellm".
func (m *CloudEmbeddingModel) CloudModel() embedding.CloudModel {
	return embedding.CloudModel{
		ModelName:       m.ModelName,
		ProviderType:    embedding.ProviderType(m.ProviderType),
		Description:     m.Description,
		PricePerMillion: m.PricePerMillion,
		ModelDim:        m.ModelDim,
		Normalize:       m.Normalize,
		QueryPrefix:     m.QueryPrefix,
		PassagePrefix:   m.PassagePrefix,
		APIURL:          m.APIURL,
	}
}

// CloudModels converts a list of records.
func CloudModels(rows []*CloudEmbeddingModel) []embedding.CloudModel {
	out := make([]embedding.CloudModel, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.CloudModel())
	}
	return out
}

// NewCloudEmbeddingModel builds a record from a screen model.
func NewCloudEmbeddingModel(m embedding.CloudModel) *CloudEmbeddingModel {
	return &CloudEmbeddingModel{
		ID:              uuid.New(),
		ModelName:       m.ModelName,
		ProviderType:    string(m.ProviderType),
		Description:     m.Description,
		ModelDim:        m.ModelDim,
		Normalize:       m.Normalize,
		QueryPrefix:     m.QueryPrefix,
		PassagePrefix:   m.PassagePrefix,
		APIURL:          m.APIURL,
		PricePerMillion: m.PricePerMillion,
	}
}

//
// SearchSettings (search_settings table, single active row)
//

// SearchSettings records the embedding model currently used for indexing.
type SearchSettings struct {
	ID            int64     `db:"id"`
	ModelName     string    `db:"model_name"`
	ProviderType  string    `db:"provider_type"`
	ModelDim      int       `db:"model_dim"`
	Normalize     bool      `db:"normalize"`
	QueryPrefix   string    `db:"query_prefix"`
	PassagePrefix string    `db:"passage_prefix"`
	APIURL        string    `db:"api_url"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// Selected returns the settings as the active model.
func (s *SearchSettings) Selected() embedding.SelectedModel {
	return embedding.SelectedModel{CloudModel: embedding.CloudModel{
		ModelName:     s.ModelName,
		ProviderType:  embedding.ProviderType(s.ProviderType),
		ModelDim:      s.ModelDim,
		Normalize:     s.Normalize,
		QueryPrefix:   s.QueryPrefix,
		PassagePrefix: s.PassagePrefix,
		APIURL:        s.APIURL,
	}}
}

// SearchSettingsFor builds settings that make m the active model.
func SearchSettingsFor(m embedding.CloudModel) *SearchSettings {
	return &SearchSettings{
		ModelName:     m.ModelName,
		ProviderType:  string(m.ProviderType),
		ModelDim:      m.ModelDim,
		Normalize:     m.Normalize,
		QueryPrefix:   m.QueryPrefix,
		PassagePrefix: m.PassagePrefix,
		APIURL:        m.APIURL,
	}
}
