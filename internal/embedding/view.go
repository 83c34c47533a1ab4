// Package embedding derives the cloud embedding model selection screen from
// the provider catalog, the session's provider choices, the persisted
// provider records and the active model.
//
// Everything here is a pure function of its inputs apart from ProxyState,
// which caches the resolved proxy record between updates. Clicks are turned
// into Intents calls and never change state directly.
package embedding

const (
	listTitle    = "Here are some cloud-based models to choose from."
	listSubtitle = "These models require API keys and run in the clouds of the respective providers."
	proxyIntro   = "Alternatively, you can use a self-hosted model using the LiteLLM proxy. " +
		"This allows you to leverage various LLM providers through a unified interface that you control."
)

// Input is everything the screen is derived from.
type Input struct {
	Catalog            Catalog
	EnabledProviders   []string
	UnenabledProviders []string
	ProviderDetails    []ProviderDetail // nil when not loaded
	ModelDetails       []CloudModel     // nil when not loaded
	Current            SelectedModel
}

// ListView is the whole selection screen.
type ListView struct {
	Title      string            `json:"title"`
	Subtitle   string            `json:"subtitle"`
	Providers  []ProviderSection `json:"providers"`
	ProxyIntro ProxyIntro        `json:"proxy_intro"`
	Proxy      ProxySection      `json:"proxy"`
}

// ProviderSection is one catalog provider with its model cards.
type ProviderSection struct {
	Key         string       `json:"key"`
	Provider    ProviderFull `json:"provider"`
	Title       string       `json:"title"`
	Info        string       `json:"info"`
	ButtonLabel string       `json:"button_label"`
	Cards       []ModelCard  `json:"cards"`
}

// ProxyIntro is the text above the proxy section.
type ProxyIntro struct {
	Text     string `json:"text"`
	LinkText string `json:"link_text"`
	Link     Link   `json:"link"`
}

func sectionTitle(t ProviderType) string {
	if t == RecommendedProviderType {
		return string(t) + " (recommended)"
	}
	return string(t)
}

// Build derives the screen. proxy is synced against in.ProviderDetails first;
// a nil proxy gets a throwaway state.
func Build(in Input, proxy *ProxyState) ListView {
	if proxy == nil {
		proxy = NewProxyState()
	}
	proxy.Sync(in.ProviderDetails)

	providers := BuildProviders(in.Catalog, in.EnabledProviders, in.UnenabledProviders, in.ProviderDetails)
	sections := make([]ProviderSection, 0, len(providers))
	for _, p := range providers {
		cards := make([]ModelCard, 0, len(p.EmbeddingModels))
		for _, m := range p.EmbeddingModels {
			cards = append(cards, NewModelCard(m, p, in.Current))
		}
		sections = append(sections, ProviderSection{
			Key:         string(p.ProviderType),
			Provider:    p,
			Title:       sectionTitle(p.ProviderType),
			Info:        p.Description,
			ButtonLabel: providerButtonLabel(p.Configured),
			Cards:       cards,
		})
	}

	return ListView{
		Title:     listTitle,
		Subtitle:  listSubtitle,
		Providers: sections,
		ProxyIntro: ProxyIntro{
			Text:     proxyIntro,
			LinkText: "Learn more about LiteLLM",
			Link:     newTabLink(ProxyDocsURL, false),
		},
		Proxy: buildProxySection(proxy, in.ModelDetails, in.Current),
	}
}

// Section returns the provider section with the given type.
func (v ListView) Section(t ProviderType) (ProviderSection, bool) {
	for _, s := range v.Providers {
		if s.Provider.ProviderType == t {
			return s, true
		}
	}
	return ProviderSection{}, false
}
