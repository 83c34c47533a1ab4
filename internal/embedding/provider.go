package embedding

import (
	"slices"
	"strings"
)

// ProviderDetail is a persisted provider configuration record. The selection
// screen only looks at ProviderType; the remaining fields are carried so the
// proxy form can be pre-populated.
type ProviderDetail struct {
	ProviderType   string         `json:"provider_type"`
	APIKeySet      bool           `json:"api_key_set"`
	APIURL         string         `json:"api_url,omitempty"`
	CustomConfig   map[string]any `json:"custom_config,omitempty"`
	DefaultModelID string         `json:"default_model_id,omitempty"`
}

// ProviderFull is a catalog entry with its derived configured status.
type ProviderFull struct {
	ProviderDescriptor
	Configured bool `json:"configured"`
}

// SelectedModel is the currently active embedding model. The cloud model
// fields are only populated when the active model is a cloud model.
type SelectedModel struct {
	CloudModel
}

// hasProviderType reports whether any record matches the provider type,
// ignoring case.
func hasProviderType(details []ProviderDetail, t ProviderType) bool {
	for _, d := range details {
		if strings.EqualFold(d.ProviderType, string(t)) {
			return true
		}
	}
	return false
}

// IsConfigured derives whether a provider is usable. An explicit disable
// always wins. Otherwise the provider counts as configured when it was enabled
// in this session or a persisted record exists for it. Id list membership is
// case-sensitive while the record match ignores case.
func IsConfigured(t ProviderType, enabledIDs, disabledIDs []string, details []ProviderDetail) bool {
	if slices.Contains(disabledIDs, string(t)) {
		return false
	}
	return slices.Contains(enabledIDs, string(t)) || hasProviderType(details, t)
}

// BuildProviders computes the configured status of every catalog entry, in
// catalog order.
func BuildProviders(catalog Catalog, enabledIDs, disabledIDs []string, details []ProviderDetail) []ProviderFull {
	providers := make([]ProviderFull, 0, len(catalog))
	for _, p := range catalog {
		providers = append(providers, ProviderFull{
			ProviderDescriptor: p,
			Configured:         IsConfigured(p.ProviderType, enabledIDs, disabledIDs, details),
		})
	}
	return providers
}

// ClickProviderButton handles the "Provide API key" / "Modify API key" button.
func ClickProviderButton(p ProviderFull, intents Intents) {
	if !p.Configured {
		intents.RequestProviderSetup(p.ProviderDescriptor)
		return
	}
	intents.RequestCredentialChange(p.ProviderDescriptor)
}

func providerButtonLabel(configured bool) string {
	if configured {
		return "Modify API key"
	}
	return "Provide API key"
}
