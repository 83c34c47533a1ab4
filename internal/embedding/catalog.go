package embedding

import "strings"

// ProviderType identifies an embedding provider.
type ProviderType string

const (
	ProviderTypeCohere ProviderType = "Cohere"
	ProviderTypeOpenAI ProviderType = "OpenAI"
	ProviderTypeGoogle ProviderType = "Google"
	ProviderTypeVoyage ProviderType = "Voyage"

	// ProxyProviderType is the self-hosted LiteLLM proxy. It is never part of
	// the main catalog and gets its own section on the selection screen.
	ProxyProviderType ProviderType = "LiteLLM"
)

// RecommendedProviderType gets a "(recommended)" suffix in its section title.
const RecommendedProviderType = ProviderTypeCohere

// ProxyDocsURL is linked from the proxy section intro.
const ProxyDocsURL = "https://docs.litellm.ai/"

// Lower returns the lower-cased form used by persisted records.
func (t ProviderType) Lower() string {
	return strings.ToLower(string(t))
}

func (t ProviderType) String() string {
	return string(t)
}

// IsProxy reports whether the type names the proxy provider. The comparison
// is exact, as the selection flow only special-cases the canonical spelling.
func (t ProviderType) IsProxy() bool {
	return t == ProxyProviderType
}

// CloudModel describes one embedding model offered by a provider.
type CloudModel struct {
	ModelName       string       `json:"model_name"`
	ProviderType    ProviderType `json:"provider_type"`
	Description     string       `json:"description"`
	PricePerMillion float64      `json:"price_per_million"`
	ModelDim        int          `json:"model_dim"`
	Normalize       bool         `json:"normalize"`
	QueryPrefix     string       `json:"query_prefix,omitempty"`
	PassagePrefix   string       `json:"passage_prefix,omitempty"`
	APIURL          string       `json:"api_url,omitempty"`
	MTEBScore       float64      `json:"mteb_score,omitempty"`
	MaxContext      int          `json:"max_context,omitempty"`
}

// ProviderDescriptor is an immutable catalog entry.
type ProviderDescriptor struct {
	ProviderType    ProviderType `json:"provider_type"`
	DisplayName     string       `json:"display_name"`
	Icon            string       `json:"icon"`
	Description     string       `json:"description"`
	Website         string       `json:"website"`
	APIKeyLink      string       `json:"api_key_link,omitempty"`
	CostsLink       string       `json:"costs_link,omitempty"`
	EmbeddingModels []CloudModel `json:"embedding_models"`
}

// FindModel returns the catalog model with the given name.
func (p ProviderDescriptor) FindModel(name string) (CloudModel, bool) {
	for _, m := range p.EmbeddingModels {
		if m.ModelName == name {
			return m, true
		}
	}
	return CloudModel{}, false
}

// Catalog is the static list of selectable cloud providers.
type Catalog []ProviderDescriptor

// Find returns the provider with the given type. Matching is exact.
func (c Catalog) Find(t ProviderType) (ProviderDescriptor, bool) {
	for _, p := range c {
		if p.ProviderType == t {
			return p, true
		}
	}
	return ProviderDescriptor{}, false
}

// DefaultCatalog returns the built-in provider catalog. Each call returns a
// fresh copy so callers may not corrupt one another.
func DefaultCatalog() Catalog {
	return Catalog{
		{
			ProviderType: ProviderTypeCohere,
			DisplayName:  "Cohere",
			Icon:         "cohere",
			Description:  "AI company specializing in NLP models for various text-based tasks",
			Website:      "https://cohere.ai",
			APIKeyLink:   "https://dashboard.cohere.ai/api-keys",
			CostsLink:    "https://cohere.com/pricing",
			EmbeddingModels: []CloudModel{
				{
					ModelName:       "embed-english-v3.0",
					ProviderType:    ProviderTypeCohere,
					Description:     "Cohere's English embedding model. Good performance for English-language tasks.",
					PricePerMillion: 0.1,
					ModelDim:        1024,
					MTEBScore:       64.5,
					MaxContext:      512,
				},
				{
					ModelName:       "embed-english-light-v3.0",
					ProviderType:    ProviderTypeCohere,
					Description:     "Cohere's lightweight English embedding model. Faster and more efficient for simpler tasks.",
					PricePerMillion: 0.1,
					ModelDim:        384,
					MTEBScore:       62,
					MaxContext:      512,
				},
			},
		},
		{
			ProviderType: ProviderTypeOpenAI,
			DisplayName:  "OpenAI",
			Icon:         "openai",
			Description:  "AI industry leader known for ChatGPT and DALL-E",
			Website:      "https://openai.com",
			APIKeyLink:   "https://platform.openai.com/api-keys",
			CostsLink:    "https://openai.com/pricing",
			EmbeddingModels: []CloudModel{
				{
					ModelName:       "text-embedding-3-large",
					ProviderType:    ProviderTypeOpenAI,
					Description:     "OpenAI's large embedding model. Best performance, but more expensive.",
					PricePerMillion: 0.13,
					ModelDim:        3072,
					MTEBScore:       64.6,
					MaxContext:      8191,
				},
				{
					ModelName:       "text-embedding-3-small",
					ProviderType:    ProviderTypeOpenAI,
					Description:     "OpenAI's newer, more efficient embedding model. Good balance of performance and cost.",
					PricePerMillion: 0.02,
					ModelDim:        1536,
					MTEBScore:       62.3,
					MaxContext:      8191,
				},
			},
		},
		{
			ProviderType: ProviderTypeGoogle,
			DisplayName:  "Google",
			Icon:         "google",
			Description:  "Offers a wide range of AI services including language and vision models",
			Website:      "https://ai.google.dev",
			APIKeyLink:   "https://console.cloud.google.com/apis/credentials",
			CostsLink:    "https://cloud.google.com/vertex-ai/pricing",
			EmbeddingModels: []CloudModel{
				{
					ModelName:       "text-embedding-004",
					ProviderType:    ProviderTypeGoogle,
					Description:     "Google's most recent text embedding model.",
					PricePerMillion: 0.025,
					ModelDim:        768,
					Normalize:       true,
					MTEBScore:       66.31,
					MaxContext:      2048,
				},
				{
					ModelName:       "textembedding-gecko@003",
					ProviderType:    ProviderTypeGoogle,
					Description:     "Google's Gecko embedding model. Powerful and efficient, but slightly older.",
					PricePerMillion: 0.025,
					ModelDim:        768,
					Normalize:       true,
					MTEBScore:       66.31,
					MaxContext:      2048,
				},
			},
		},
		{
			ProviderType: ProviderTypeVoyage,
			DisplayName:  "Voyage",
			Icon:         "voyage",
			Description:  "Advanced NLP research startup born from Stanford AI Labs",
			Website:      "https://www.voyageai.com",
			APIKeyLink:   "https://www.voyageai.com/dashboard",
			CostsLink:    "https://www.voyageai.com/pricing",
			EmbeddingModels: []CloudModel{
				{
					ModelName:       "voyage-large-2-instruct",
					ProviderType:    ProviderTypeVoyage,
					Description:     "Voyage's large embedding model. High performance with instruction fine-tuning.",
					PricePerMillion: 0.12,
					ModelDim:        1024,
					MTEBScore:       68.28,
					MaxContext:      4000,
				},
				{
					ModelName:       "voyage-light-2-instruct",
					ProviderType:    ProviderTypeVoyage,
					Description:     "Voyage's lightweight embedding model. Good balance of performance and efficiency.",
					PricePerMillion: 0.12,
					ModelDim:        1024,
					MTEBScore:       67.13,
					MaxContext:      16000,
				},
			},
		},
	}
}

// ProxyProvider returns the descriptor of the LiteLLM proxy. It offers no
// catalog models; its models are registered by the admin and persisted.
func ProxyProvider() ProviderDescriptor {
	return ProviderDescriptor{
		ProviderType:    ProxyProviderType,
		DisplayName:     "LiteLLM",
		Icon:            "litellm",
		Description:     "Open-source library to call LLM APIs using OpenAI format",
		Website:         "https://github.com/BerriAI/litellm",
		APIKeyLink:      "https://docs.litellm.ai/docs/proxy/quick_start",
		EmbeddingModels: []CloudModel{},
	}
}
