package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"embedding_admin/internal/audit"
	"embedding_admin/internal/embedding"
	"embedding_admin/internal/logging"
	"embedding_admin/internal/middleware"
	"embedding_admin/internal/models"
	"embedding_admin/internal/session"
	"embedding_admin/internal/storage"
	"embedding_admin/internal/utils"
)

// sessionLockShards bounds the lock table regardless of how many sessions call in
const sessionLockShards = 64

// SessionHeader carries the browser session the selection state belongs to
const SessionHeader = "X-Session-ID"

// ProviderStore is the provider persistence the screen needs
type ProviderStore interface {
	ListDetails(ctx context.Context) ([]embedding.ProviderDetail, error)
	GetByType(ctx context.Context, providerType string) (*models.EmbeddingProvider, error)
	APIKey(ctx context.Context, providerType string) (string, error)
	Upsert(ctx context.Context, in storage.ProviderUpsert) (*models.EmbeddingProvider, error)
	DeleteByType(ctx context.Context, providerType string) error
}

// ModelStore is the model persistence the screen needs
type ModelStore interface {
	List(ctx context.Context) ([]*models.CloudEmbeddingModel, error)
	ListByProvider(ctx context.Context, providerType string) ([]*models.CloudEmbeddingModel, error)
	Create(ctx context.Context, m *models.CloudEmbeddingModel) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetCurrent(ctx context.Context) (*models.SearchSettings, error)
	SetCurrent(ctx context.Context, s *models.SearchSettings) error
}

// EmbeddingsHandler serves the cloud embedding selection screen
type EmbeddingsHandler struct {
	catalog   embedding.Catalog
	providers ProviderStore
	models    ModelStore
	sessions  session.Store
	proxies   *storage.LRUCache[*embedding.ProxyState]
	audit     *audit.Publisher

	// serializes load-modify-save per session within this process; sessions
	// hashing to the same shard share a mutex
	locks [sessionLockShards]sync.Mutex
}

// NewEmbeddingsHandler creates the handler. proxies holds one ProxyState per
// session; audit may be nil.
func NewEmbeddingsHandler(
	catalog embedding.Catalog,
	providers ProviderStore,
	modelStore ModelStore,
	sessions session.Store,
	proxies *storage.LRUCache[*embedding.ProxyState],
	publisher *audit.Publisher,
) *EmbeddingsHandler {
	if proxies == nil {
		proxies = storage.NewLRUCache[*embedding.ProxyState](1000, 30*time.Minute)
	}
	return &EmbeddingsHandler{
		catalog:   catalog,
		providers: providers,
		models:    modelStore,
		sessions:  sessions,
		proxies:   proxies,
		audit:     publisher,
	}
}

// IntentResponse is returned by every endpoint that may fire intents
type IntentResponse struct {
	Fired []embedding.FiredIntent `json:"fired"`
	State *session.State          `json:"state"`
}

// ModelClickRequest identifies a model card
type ModelClickRequest struct {
	ModelName    string `json:"model_name"`
	ProviderType string `json:"provider_type"`
}

// screen is the loaded input of one request
type screen struct {
	sessionID string
	adminID   string
	state     *session.State
	input     embedding.Input
	proxy     *embedding.ProxyState
}

func sessionIdentity(r *http.Request) (sessionID, adminID string) {
	adminID, _ = middleware.GetAdminID(r.Context())
	sessionID = strings.TrimSpace(r.Header.Get(SessionHeader))
	if sessionID == "" {
		sessionID = adminID
	}
	return sessionID, adminID
}

// isProxyType matches the proxy in URLs and request bodies, where both the
// display and the stored spelling are accepted.
func isProxyType(providerType string) bool {
	return strings.EqualFold(providerType, embedding.ProxyProviderType.Lower())
}

func (h *EmbeddingsHandler) lockFor(sessionID string) *sync.Mutex {
	return &h.locks[xxhash.Sum64String(sessionID)%sessionLockShards]
}

func (h *EmbeddingsHandler) lock(sessionID string) func() {
	mu := h.lockFor(sessionID)
	mu.Lock()
	return mu.Unlock
}

// load reads session state and persisted inputs and syncs the session's
// proxy state. It writes the error response itself and returns nil on failure.
func (h *EmbeddingsHandler) load(w http.ResponseWriter, r *http.Request) *screen {
	ctx := r.Context()
	sessionID, adminID := sessionIdentity(r)
	if sessionID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, SessionHeader+" header is required")
		return nil
	}

	state, err := h.sessions.Load(ctx, sessionID)
	if err != nil {
		logging.Errorf("failed to load session %s: %v", sessionID, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load session")
		return nil
	}

	details, err := h.providers.ListDetails(ctx)
	if err != nil {
		logging.Errorf("failed to list embedding providers: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load providers")
		return nil
	}

	rows, err := h.models.List(ctx)
	if err != nil {
		logging.Errorf("failed to list embedding models: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load models")
		return nil
	}

	var current embedding.SelectedModel
	settings, err := h.models.GetCurrent(ctx)
	switch {
	case err == nil:
		current = settings.Selected()
	case errors.Is(err, storage.ErrCurrentModelNotSet):
	default:
		logging.Errorf("failed to load current embedding model: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load current model")
		return nil
	}

	proxy := h.proxies.GetOrCreate(sessionID, embedding.NewProxyState)
	proxy.Sync(details)

	return &screen{
		sessionID: sessionID,
		adminID:   adminID,
		state:     state,
		proxy:     proxy,
		input: embedding.Input{
			Catalog:            h.catalog,
			EnabledProviders:   state.EnabledProviders,
			UnenabledProviders: state.UnenabledProviders,
			ProviderDetails:    details,
			ModelDetails:       models.CloudModels(rows),
			Current:            current,
		},
	}
}

func (h *EmbeddingsHandler) providersFull(s *screen) []embedding.ProviderFull {
	return embedding.BuildProviders(s.input.Catalog, s.input.EnabledProviders, s.input.UnenabledProviders, s.input.ProviderDetails)
}

func (h *EmbeddingsHandler) proxyConfigured(s *screen) bool {
	_, ok := s.proxy.Provider()
	return ok
}

// save persists the session state and answers with what was fired
func (h *EmbeddingsHandler) save(w http.ResponseWriter, r *http.Request, s *screen, fired []embedding.FiredIntent) {
	if err := h.sessions.Save(r.Context(), s.sessionID, s.state); err != nil {
		logging.Errorf("failed to save session %s: %v", s.sessionID, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save session")
		return
	}

	h.audit.PublishIntents(r.Context(), s.sessionID, s.adminID, fired)

	if fired == nil {
		fired = []embedding.FiredIntent{}
	}
	utils.RespondWithJSON(w, http.StatusOK, IntentResponse{Fired: fired, State: s.state})
}

// View handles GET /admin/embeddings/cloud
func (h *EmbeddingsHandler) View(w http.ResponseWriter, r *http.Request) {
	s := h.load(w, r)
	if s == nil {
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, embedding.Build(s.input, s.proxy))
}

// State handles GET /admin/embeddings/cloud/state
func (h *EmbeddingsHandler) State(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := sessionIdentity(r)
	if sessionID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, SessionHeader+" header is required")
		return
	}

	state, err := h.sessions.Load(r.Context(), sessionID)
	if err != nil {
		logging.Errorf("failed to load session %s: %v", sessionID, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load session")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, state)
}

// ClickProvider handles POST /admin/embeddings/cloud/providers/{type}/click
func (h *EmbeddingsHandler) ClickProvider(w http.ResponseWriter, r *http.Request) {
	providerType := embedding.ProviderType(r.PathValue("type"))

	sessionID, _ := sessionIdentity(r)
	defer h.lock(sessionID)()

	s := h.load(w, r)
	if s == nil {
		return
	}

	rec := session.NewRecorder(s.state)
	if isProxyType(string(providerType)) {
		embedding.ClickProxyButton(h.proxyConfigured(s), rec)
		h.save(w, r, s, rec.Fired())
		return
	}

	for _, p := range h.providersFull(s) {
		if p.ProviderType == providerType {
			embedding.ClickProviderButton(p, rec)
			h.save(w, r, s, rec.Fired())
			return
		}
	}

	utils.RespondWithError(w, http.StatusNotFound, "Unknown provider: "+string(providerType))
}

// ClickModel handles POST /admin/embeddings/cloud/models/click
func (h *EmbeddingsHandler) ClickModel(w http.ResponseWriter, r *http.Request) {
	var req ModelClickRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if req.ModelName == "" || req.ProviderType == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "model_name and provider_type are required")
		return
	}

	sessionID, _ := sessionIdentity(r)
	defer h.lock(sessionID)()

	s := h.load(w, r)
	if s == nil {
		return
	}

	model, owner, ok := h.findCard(s, req)
	if !ok {
		utils.RespondWithError(w, http.StatusNotFound, "Unknown model: "+req.ModelName)
		return
	}

	rec := session.NewRecorder(s.state)
	embedding.SelectModel(model, owner, s.input.Current, rec)
	h.save(w, r, s, rec.Fired())
}

// findCard resolves a clicked card to its model and owning provider. Proxy
// models are matched by their stored lower-case type.
func (h *EmbeddingsHandler) findCard(s *screen, req ModelClickRequest) (embedding.CloudModel, embedding.ProviderFull, bool) {
	if isProxyType(req.ProviderType) {
		if !h.proxyConfigured(s) {
			return embedding.CloudModel{}, embedding.ProviderFull{}, false
		}
		for _, m := range embedding.ProxyModels(s.input.ModelDetails) {
			if m.ModelName == req.ModelName {
				return m, embedding.ProxyFull(false), true
			}
		}
		return embedding.CloudModel{}, embedding.ProviderFull{}, false
	}

	for _, p := range h.providersFull(s) {
		if string(p.ProviderType) != req.ProviderType {
			continue
		}
		if m, ok := p.FindModel(req.ModelName); ok {
			return m, p, true
		}
	}
	return embedding.CloudModel{}, embedding.ProviderFull{}, false
}
