package models

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"embedding_admin/internal/embedding"
)

func TestNormalizeProviderType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Cohere", "cohere"},
		{"LiteLLM", "litellm"},
		{"  openai ", "openai"},
		{"voyage", "voyage"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeProviderType(tt.in); got != tt.want {
				t.Errorf("NormalizeProviderType(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestEmbeddingProvider_Detail(t *testing.T) {
	modelID := uuid.New()
	provider := &EmbeddingProvider{
		ID:              uuid.New(),
		ProviderType:    "litellm",
		EncryptedAPIKey: "ciphertext",
		APIURL:          "http://proxy:4000",
		CustomConfig:    JSONB{"timeout": "30s"},
		DefaultModelID:  &modelID,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	d := provider.Detail()
	if d.ProviderType != "litellm" {
		t.Errorf("Detail().ProviderType = %s, want litellm", d.ProviderType)
	}
	if !d.APIKeySet {
		t.Error("Detail().APIKeySet = false, want true")
	}
	if d.APIURL != "http://proxy:4000" {
		t.Errorf("Detail().APIURL = %s", d.APIURL)
	}
	if d.DefaultModelID != modelID.String() {
		t.Errorf("Detail().DefaultModelID = %s, want %s", d.DefaultModelID, modelID)
	}
	if d.CustomConfig["timeout"] != "30s" {
		t.Errorf("Detail().CustomConfig = %v", d.CustomConfig)
	}
}

func TestEmbeddingProvider_DetailWithoutKey(t *testing.T) {
	d := (&EmbeddingProvider{ProviderType: "cohere"}).Detail()
	if d.APIKeySet {
		t.Error("Detail().APIKeySet = true for empty key")
	}
	if d.DefaultModelID != "" {
		t.Errorf("Detail().DefaultModelID = %q, want empty", d.DefaultModelID)
	}
}

func TestDetails_FeedConfiguredStatus(t *testing.T) {
	details := Details([]*EmbeddingProvider{{ProviderType: "cohere"}, {ProviderType: "voyage"}})
	if len(details) != 2 {
		t.Fatalf("len(Details()) = %d, want 2", len(details))
	}
	if !embedding.IsConfigured(embedding.ProviderTypeCohere, nil, nil, details) {
		t.Error("stored lower-case type should configure Cohere")
	}
	if embedding.IsConfigured(embedding.ProviderTypeOpenAI, nil, nil, details) {
		t.Error("OpenAI should not be configured")
	}
}
