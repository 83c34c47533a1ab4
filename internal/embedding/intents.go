package embedding

// Intents receives what the user asked for on the selection screen. The
// screen never changes state itself; the implementation owns all of it.
type Intents interface {
	// RequestProviderSetup opens the credential entry flow for an
	// unconfigured provider.
	RequestProviderSetup(p ProviderDescriptor)

	// RequestCredentialChange opens the credential edit flow for a configured
	// provider.
	RequestCredentialChange(p ProviderDescriptor)

	// MarkAlreadySelected notes a click on the active model.
	MarkAlreadySelected(m CloudModel)

	// RequestModelSetup starts switching to a model of a usable provider.
	RequestModelSetup(m CloudModel)

	// QueueModelPendingProvider remembers a model chosen before its provider
	// was configured, so the switch can resume after setup.
	QueueModelPendingProvider(m CloudModel)
}

// Intent names, as recorded in the audit trail.
const (
	IntentRequestProviderSetup      = "request_provider_setup"
	IntentRequestCredentialChange   = "request_credential_change"
	IntentMarkAlreadySelected       = "mark_already_selected"
	IntentRequestModelSetup         = "request_model_setup"
	IntentQueueModelPendingProvider = "queue_model_pending_provider"
)

// FiredIntent is one recorded intent call.
type FiredIntent struct {
	Name         string       `json:"name"`
	ProviderType ProviderType `json:"provider_type"`
	ModelName    string       `json:"model_name,omitempty"`
}

// IntentLog records intent calls in order without acting on them.
type IntentLog struct {
	Fired []FiredIntent
}

func (l *IntentLog) RequestProviderSetup(p ProviderDescriptor) {
	l.Fired = append(l.Fired, FiredIntent{Name: IntentRequestProviderSetup, ProviderType: p.ProviderType})
}

func (l *IntentLog) RequestCredentialChange(p ProviderDescriptor) {
	l.Fired = append(l.Fired, FiredIntent{Name: IntentRequestCredentialChange, ProviderType: p.ProviderType})
}

func (l *IntentLog) MarkAlreadySelected(m CloudModel) {
	l.Fired = append(l.Fired, FiredIntent{Name: IntentMarkAlreadySelected, ProviderType: m.ProviderType, ModelName: m.ModelName})
}

func (l *IntentLog) RequestModelSetup(m CloudModel) {
	l.Fired = append(l.Fired, FiredIntent{Name: IntentRequestModelSetup, ProviderType: m.ProviderType, ModelName: m.ModelName})
}

func (l *IntentLog) QueueModelPendingProvider(m CloudModel) {
	l.Fired = append(l.Fired, FiredIntent{Name: IntentQueueModelPendingProvider, ProviderType: m.ProviderType, ModelName: m.ModelName})
}

// Names returns the recorded intent names in call order.
func (l *IntentLog) Names() []string {
	names := make([]string, 0, len(l.Fired))
	for _, f := range l.Fired {
		names = append(names, f.Name)
	}
	return names
}
