package embedding

import "sync"

// ProxyState holds the proxy provider's resolved configuration record, the
// only value the selection screen derives and keeps between updates.
type ProxyState struct {
	mu sync.Mutex

	synced  bool
	lastLen int
	lastRef *ProviderDetail
	lastNil bool

	provider   *ProviderDetail
	recomputes int
}

// NewProxyState returns an unsynced state. Until the first Sync the proxy
// counts as unconfigured.
func NewProxyState() *ProxyState {
	return &ProxyState{}
}

// Sync recomputes the resolved record when details is a different collection
// than the one seen last time. Passing the same slice again is a no-op.
func (s *ProxyState) Sync(details []ProviderDetail) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.synced && s.sameCollection(details) {
		return
	}

	s.provider = findProxyDetail(details)
	s.synced = true
	s.lastLen = len(details)
	s.lastNil = details == nil
	s.lastRef = nil
	if len(details) > 0 {
		s.lastRef = &details[0]
	}
	s.recomputes++
}

func (s *ProxyState) sameCollection(details []ProviderDetail) bool {
	if len(details) != s.lastLen {
		return false
	}
	if len(details) == 0 {
		return (details == nil) == s.lastNil
	}
	return &details[0] == s.lastRef
}

// Provider returns the resolved proxy record, if any.
func (s *ProxyState) Provider() (ProviderDetail, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.provider == nil {
		return ProviderDetail{}, false
	}
	return *s.provider, true
}

// Recomputes returns how many times Sync actually recomputed.
func (s *ProxyState) Recomputes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recomputes
}

// findProxyDetail matches the lower-cased proxy type exactly.
func findProxyDetail(details []ProviderDetail) *ProviderDetail {
	for i := range details {
		if details[i].ProviderType == ProxyProviderType.Lower() {
			d := details[i]
			return &d
		}
	}
	return nil
}

// ProxySection is the fixed section for the self-hosted proxy.
type ProxySection struct {
	Provider    ProviderDescriptor `json:"provider"`
	Title       string             `json:"title"`
	Info        string             `json:"info"`
	Configured  bool               `json:"configured"`
	ButtonLabel string             `json:"button_label"`
	Placeholder *ProxyPlaceholder  `json:"placeholder,omitempty"`
	Cards       []ModelCard        `json:"cards"`
	Form        *ProxyForm         `json:"form,omitempty"`
}

// ProxyPlaceholder explains why no proxy models are listed yet.
type ProxyPlaceholder struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Hint  string `json:"hint"`
}

// ProxyForm is the embedded model entry form for the proxy.
type ProxyForm struct {
	Provider      ProviderDetail `json:"provider"`
	CurrentValues *CloudModel    `json:"current_values"`
	Highlighted   bool           `json:"highlighted"`
}

func proxyPlaceholder() *ProxyPlaceholder {
	return &ProxyPlaceholder{
		Title: "API URL Required",
		Body: "Before you can add models, you need to provide an API URL for your LiteLLM proxy. " +
			`Click the "Provide API URL" button above to set up your LiteLLM configuration.`,
		Hint: "Once configured, you'll be able to add and manage your LiteLLM models here.",
	}
}

// ClickProxyButton handles the "Provide API URL" / "Modify API URL" button.
func ClickProxyButton(configured bool, intents Intents) {
	if !configured {
		intents.RequestProviderSetup(ProxyProvider())
		return
	}
	intents.RequestCredentialChange(ProxyProvider())
}

// ProxyModels filters persisted models down to the proxy's own.
func ProxyModels(models []CloudModel) []CloudModel {
	var out []CloudModel
	for _, m := range models {
		if string(m.ProviderType) == ProxyProviderType.Lower() {
			out = append(out, m)
		}
	}
	return out
}

// ProxyFull is the proxy descriptor as a card owner. The proxy entry carries
// no configured flag of its own, so its cards are owned by ProxyFull(false)
// and render dimmed. Clicks still route through the proxy branch.
func ProxyFull(configured bool) ProviderFull {
	return ProviderFull{ProviderDescriptor: ProxyProvider(), Configured: configured}
}

func buildProxySection(state *ProxyState, models []CloudModel, current SelectedModel) ProxySection {
	proxy := ProxyProvider()
	section := ProxySection{
		Provider: proxy,
		Title:    sectionTitle(proxy.ProviderType),
		Info:     proxy.Description,
		Cards:    []ModelCard{},
	}

	detail, ok := state.Provider()
	if !ok {
		section.ButtonLabel = "Provide API URL"
		section.Placeholder = proxyPlaceholder()
		return section
	}

	section.Configured = true
	section.ButtonLabel = "Modify API URL"
	owner := ProxyFull(false)
	for _, m := range ProxyModels(models) {
		section.Cards = append(section.Cards, NewModelCard(m, owner, current))
	}

	form := &ProxyForm{Provider: detail}
	if current.ProviderType == ProxyProviderType {
		values := current.CloudModel
		form.CurrentValues = &values
		form.Highlighted = true
	}
	section.Form = form
	return section
}
