package models

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"embedding_admin/internal/embedding"
)

// EmbeddingProvider is a persisted cloud embedding provider configuration
// (embedding_providers table). ProviderType is stored lower-cased.
type EmbeddingProvider struct {
	ID              uuid.UUID  `db:"id"`
	ProviderType    string     `db:"provider_type"`
	EncryptedAPIKey string     `db:"encrypted_api_key"` // AES-GCM, base64
	APIURL          string     `db:"api_url"`
	CustomConfig    JSONB      `db:"custom_config"`
	DefaultModelID  *uuid.UUID `db:"default_model_id"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

// NormalizeProviderType maps a provider type to its stored form.
func NormalizeProviderType(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

// Detail returns the record as seen by the selection screen. The API key
// itself never leaves storage; only whether one is set.
func (p *EmbeddingProvider) Detail() embedding.ProviderDetail {
	d := embedding.ProviderDetail{
		ProviderType: p.ProviderType,
		APIKeySet:    p.EncryptedAPIKey != "",
		APIURL:       p.APIURL,
		CustomConfig: p.CustomConfig,
	}
	if p.DefaultModelID != nil {
		d.DefaultModelID = p.DefaultModelID.String()
	}
	return d
}

// Details converts a list of records.
func Details(providers []*EmbeddingProvider) []embedding.ProviderDetail {
	details := make([]embedding.ProviderDetail, 0, len(providers))
	for _, p := range providers {
		details = append(details, p.Detail())
	}
	return details
}
