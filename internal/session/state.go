// Package session keeps the per-admin selection state around the cloud
// embedding screen: which providers were enabled or removed in this session,
// which dialog is open and which model waits for its provider to be set up.
package session

import (
	"slices"
	"strings"
	"time"

	"embedding_admin/internal/embedding"
)

// State is the selection state of one admin session.
type State struct {
	EnabledProviders   []string `json:"enabled_providers"`
	UnenabledProviders []string `json:"unenabled_providers"`

	// Open dialogs
	TentativeProvider         *embedding.ProviderDescriptor `json:"tentative_provider,omitempty"`
	ChangeCredentialsProvider *embedding.ProviderDescriptor `json:"change_credentials_provider,omitempty"`
	AlreadySelectedModel      *embedding.CloudModel         `json:"already_selected_model,omitempty"`
	TentativeModel            *embedding.CloudModel         `json:"tentative_model,omitempty"`

	// Chosen before its provider was configured
	ModelInQueue *embedding.CloudModel `json:"model_in_queue,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// NewState returns an empty state.
func NewState() *State {
	return &State{
		EnabledProviders:   []string{},
		UnenabledProviders: []string{},
	}
}

// Recorder applies intents to a State, the way the screen's setter callbacks
// would, and remembers what was fired.
type Recorder struct {
	state *State
	log   embedding.IntentLog
}

// NewRecorder wraps state.
func NewRecorder(state *State) *Recorder {
	return &Recorder{state: state}
}

func (r *Recorder) RequestProviderSetup(p embedding.ProviderDescriptor) {
	r.log.RequestProviderSetup(p)
	r.state.TentativeProvider = &p
}

func (r *Recorder) RequestCredentialChange(p embedding.ProviderDescriptor) {
	r.log.RequestCredentialChange(p)
	r.state.ChangeCredentialsProvider = &p
}

func (r *Recorder) MarkAlreadySelected(m embedding.CloudModel) {
	r.log.MarkAlreadySelected(m)
	r.state.AlreadySelectedModel = &m
}

func (r *Recorder) RequestModelSetup(m embedding.CloudModel) {
	r.log.RequestModelSetup(m)
	r.state.TentativeModel = &m
}

func (r *Recorder) QueueModelPendingProvider(m embedding.CloudModel) {
	r.log.QueueModelPendingProvider(m)
	r.state.ModelInQueue = &m
}

// Fired returns the intents applied so far, in order.
func (r *Recorder) Fired() []embedding.FiredIntent {
	return r.log.Fired
}

// CompleteProviderSetup marks a provider as configured after its credentials
// were saved. A model queued for that provider becomes the tentative model,
// which resumes the switch the user started before setup.
func CompleteProviderSetup(s *State, providerType embedding.ProviderType) {
	id := string(providerType)
	if !slices.Contains(s.EnabledProviders, id) {
		s.EnabledProviders = append(s.EnabledProviders, id)
	}
	s.UnenabledProviders = remove(s.UnenabledProviders, id)

	if s.TentativeProvider != nil && s.TentativeProvider.ProviderType == providerType {
		s.TentativeProvider = nil
	}
	if s.ChangeCredentialsProvider != nil && s.ChangeCredentialsProvider.ProviderType == providerType {
		s.ChangeCredentialsProvider = nil
	}

	if s.ModelInQueue != nil && s.ModelInQueue.ProviderType == providerType {
		queued := *s.ModelInQueue
		s.TentativeModel = &queued
		s.ModelInQueue = nil
	}
}

// RemoveProvider marks a provider as removed in this session. A queued model
// of that provider can no longer resume and is dropped.
func RemoveProvider(s *State, providerType embedding.ProviderType) {
	id := string(providerType)
	if !slices.Contains(s.UnenabledProviders, id) {
		s.UnenabledProviders = append(s.UnenabledProviders, id)
	}
	s.EnabledProviders = remove(s.EnabledProviders, id)

	if s.ChangeCredentialsProvider != nil && s.ChangeCredentialsProvider.ProviderType == providerType {
		s.ChangeCredentialsProvider = nil
	}
	if s.ModelInQueue != nil && s.ModelInQueue.ProviderType == providerType {
		s.ModelInQueue = nil
	}
}

// CancelDialogs closes every open dialog. Cancelling provider setup also
// forgets the model that was waiting on it.
func CancelDialogs(s *State) {
	if s.TentativeProvider != nil {
		s.ModelInQueue = nil
	}
	s.TentativeProvider = nil
	s.ChangeCredentialsProvider = nil
	s.AlreadySelectedModel = nil
	s.TentativeModel = nil
}

// ForgetModel drops every reference to a model that no longer exists.
func ForgetModel(s *State, name string, providerType embedding.ProviderType) {
	same := func(m *embedding.CloudModel) bool {
		return m != nil && m.ModelName == name && strings.EqualFold(string(m.ProviderType), string(providerType))
	}
	if same(s.TentativeModel) {
		s.TentativeModel = nil
	}
	if same(s.AlreadySelectedModel) {
		s.AlreadySelectedModel = nil
	}
	if same(s.ModelInQueue) {
		s.ModelInQueue = nil
	}
}

// ConfirmModel closes the model dialogs once the switch was persisted.
func ConfirmModel(s *State) {
	s.TentativeModel = nil
	s.AlreadySelectedModel = nil
}

func remove(ids []string, id string) []string {
	return slices.DeleteFunc(ids, func(v string) bool { return v == id })
}
