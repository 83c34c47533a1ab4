package embedding

import (
	"strconv"
	"strings"
)

// ModelCard is the view of one selectable model.
type ModelCard struct {
	Key            string       `json:"key"`
	ModelName      string       `json:"model_name"`
	ProviderType   ProviderType `json:"provider_type"`
	Description    string       `json:"description"`
	Price          string       `json:"price,omitempty"`
	Website        Link         `json:"website"`
	Selected       bool         `json:"selected"`
	Dimmed         bool         `json:"dimmed"`
	ButtonLabel    string       `json:"button_label"`
	ButtonDisabled bool         `json:"button_disabled"`
}

// Link is an external link. Target "_blank" opens a new browsing context;
// StopPropagation keeps the click from reaching the surrounding card.
type Link struct {
	URL             string `json:"url"`
	Target          string `json:"target"`
	StopPropagation bool   `json:"stop_propagation"`
}

func newTabLink(url string, stopPropagation bool) Link {
	return Link{URL: url, Target: "_blank", StopPropagation: stopPropagation}
}

// IsSelected reports whether the model is the active one. Both the name and
// the provider type must match.
func IsSelected(m CloudModel, current SelectedModel) bool {
	return m.ModelName == current.ModelName && m.ProviderType == current.ProviderType
}

// showsPrice is false for proxy-hosted models, whose pricing is defined by
// whatever backend the proxy fronts.
func showsPrice(m CloudModel) bool {
	return strings.ToLower(string(m.ProviderType)) != ProxyProviderType.Lower()
}

// FormatPrice renders a per-million-token price.
func FormatPrice(pricePerMillion float64) string {
	return "$" + strconv.FormatFloat(pricePerMillion, 'f', -1, 64) + "/M tokens"
}

// NewModelCard builds the card for model m of provider p.
func NewModelCard(m CloudModel, p ProviderFull, current SelectedModel) ModelCard {
	selected := IsSelected(m, current)

	card := ModelCard{
		Key:            m.ModelName,
		ModelName:      m.ModelName,
		ProviderType:   m.ProviderType,
		Description:    m.Description,
		Website:        newTabLink(p.Website, true),
		Selected:       selected,
		Dimmed:         !p.Configured,
		ButtonLabel:    "Select Model",
		ButtonDisabled: selected,
	}
	if selected {
		card.ButtonLabel = "Selected Model"
	}
	if showsPrice(m) {
		card.Price = FormatPrice(m.PricePerMillion)
	}
	return card
}

// SelectModel handles a click on a card's select button.
//
// A model of an unconfigured provider is queued before the provider setup is
// requested, so the switch resumes once setup completes.
func SelectModel(m CloudModel, p ProviderFull, current SelectedModel, intents Intents) {
	switch {
	case IsSelected(m, current):
		// The button is disabled in this state; kept for hosts that do not
		// honour ButtonDisabled.
		intents.MarkAlreadySelected(m)
	case p.Configured || p.ProviderType.IsProxy():
		intents.RequestModelSetup(m)
	default:
		intents.QueueModelPendingProvider(m)
		intents.RequestProviderSetup(p.ProviderDescriptor)
	}
}
