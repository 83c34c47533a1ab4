package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"embedding_admin/internal/embedding"
	"embedding_admin/internal/logging"
	"embedding_admin/internal/models"
	"embedding_admin/internal/session"
	"embedding_admin/internal/storage"
	"embedding_admin/internal/utils"
)

// ProviderSetupRequest is submitted by the provider setup and change
// credentials dialogs
type ProviderSetupRequest struct {
	APIKey       string         `json:"api_key"`
	APIURL       string         `json:"api_url"`
	CustomConfig map[string]any `json:"custom_config"`
}

// RegisterModelRequest registers a model served by the proxy
type RegisterModelRequest struct {
	ModelName     string `json:"model_name"`
	Description   string `json:"description"`
	ModelDim      int    `json:"model_dim"`
	Normalize     bool   `json:"normalize"`
	QueryPrefix   string `json:"query_prefix"`
	PassagePrefix string `json:"passage_prefix"`
	APIURL        string `json:"api_url"`
}

// ConfirmModelResponse is returned once the active model was switched
type ConfirmModelResponse struct {
	Current embedding.CloudModel `json:"current"`
	State   *session.State       `json:"state"`
}

// resolveProvider maps a path segment to its descriptor
func (h *EmbeddingsHandler) resolveProvider(raw string) (embedding.ProviderDescriptor, bool) {
	if isProxyType(raw) {
		return embedding.ProxyProvider(), true
	}
	return h.catalog.Find(embedding.ProviderType(raw))
}

// SetupProvider handles PUT /admin/embeddings/cloud/providers/{type}
func (h *EmbeddingsHandler) SetupProvider(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.resolveProvider(r.PathValue("type"))
	if !ok {
		utils.RespondWithError(w, http.StatusNotFound, "Unknown provider: "+r.PathValue("type"))
		return
	}

	var req ProviderSetupRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	req.APIKey = strings.TrimSpace(req.APIKey)
	req.APIURL = strings.TrimSpace(req.APIURL)

	if provider.ProviderType == embedding.ProxyProviderType {
		if req.APIURL == "" {
			utils.RespondWithError(w, http.StatusBadRequest, "api_url is required")
			return
		}
	} else if req.APIKey == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "api_key is required")
		return
	}

	sessionID, _ := sessionIdentity(r)
	defer h.lock(sessionID)()

	s := h.load(w, r)
	if s == nil {
		return
	}

	_, err := h.providers.Upsert(r.Context(), storage.ProviderUpsert{
		ProviderType: string(provider.ProviderType),
		APIKey:       req.APIKey,
		APIURL:       req.APIURL,
		CustomConfig: req.CustomConfig,
	})
	if err != nil {
		logging.Errorf("failed to save provider %s: %v", provider.ProviderType, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save provider")
		return
	}

	logging.Infof("Embedding provider %s configured (session %s)", provider.ProviderType, s.sessionID)
	session.CompleteProviderSetup(s.state, provider.ProviderType)
	h.save(w, r, s, nil)
}

// RemoveProvider handles DELETE /admin/embeddings/cloud/providers/{type}
func (h *EmbeddingsHandler) RemoveProvider(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.resolveProvider(r.PathValue("type"))
	if !ok {
		utils.RespondWithError(w, http.StatusNotFound, "Unknown provider: "+r.PathValue("type"))
		return
	}

	sessionID, _ := sessionIdentity(r)
	defer h.lock(sessionID)()

	s := h.load(w, r)
	if s == nil {
		return
	}

	if err := h.providers.DeleteByType(r.Context(), string(provider.ProviderType)); err != nil {
		if errors.Is(err, storage.ErrProviderNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Provider not configured")
			return
		}
		logging.Errorf("failed to delete provider %s: %v", provider.ProviderType, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete provider")
		return
	}

	logging.Infof("Embedding provider %s removed (session %s)", provider.ProviderType, s.sessionID)
	session.RemoveProvider(s.state, provider.ProviderType)
	h.save(w, r, s, nil)
}

// RegisterModel handles POST /admin/embeddings/cloud/models. The new proxy
// model is selected right away, which opens the model switch dialog.
func (h *EmbeddingsHandler) RegisterModel(w http.ResponseWriter, r *http.Request) {
	var req RegisterModelRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	req.ModelName = strings.TrimSpace(req.ModelName)
	if req.ModelName == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "model_name is required")
		return
	}
	if req.ModelDim <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "model_dim must be positive")
		return
	}

	sessionID, _ := sessionIdentity(r)
	defer h.lock(sessionID)()

	s := h.load(w, r)
	if s == nil {
		return
	}

	detail, ok := s.proxy.Provider()
	if !ok {
		utils.RespondWithError(w, http.StatusConflict, "LiteLLM proxy is not configured")
		return
	}

	apiURL := req.APIURL
	if apiURL == "" {
		apiURL = detail.APIURL
	}

	model := embedding.CloudModel{
		ModelName:     req.ModelName,
		ProviderType:  embedding.ProviderType(embedding.ProxyProviderType.Lower()),
		Description:   req.Description,
		ModelDim:      req.ModelDim,
		Normalize:     req.Normalize,
		QueryPrefix:   req.QueryPrefix,
		PassagePrefix: req.PassagePrefix,
		APIURL:        apiURL,
	}

	if err := h.models.Create(r.Context(), models.NewCloudEmbeddingModel(model)); err != nil {
		if errors.Is(err, storage.ErrModelExists) {
			utils.RespondWithError(w, http.StatusConflict, "Model already registered")
			return
		}
		logging.Errorf("failed to register model %s: %v", req.ModelName, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to register model")
		return
	}

	logging.Infof("Proxy embedding model %s registered (session %s)", model.ModelName, s.sessionID)

	rec := session.NewRecorder(s.state)
	embedding.SelectModel(model, embedding.ProxyFull(false), s.input.Current, rec)
	h.save(w, r, s, rec.Fired())
}

// ConfirmModel handles POST /admin/embeddings/cloud/models/confirm. It makes
// the tentative model the active one.
func (h *EmbeddingsHandler) ConfirmModel(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := sessionIdentity(r)
	if sessionID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, SessionHeader+" header is required")
		return
	}
	defer h.lock(sessionID)()

	state, err := h.sessions.Load(r.Context(), sessionID)
	if err != nil {
		logging.Errorf("failed to load session %s: %v", sessionID, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load session")
		return
	}
	if state.TentativeModel == nil {
		utils.RespondWithError(w, http.StatusConflict, "No model switch pending")
		return
	}

	model := *state.TentativeModel
	if err := h.models.SetCurrent(r.Context(), models.SearchSettingsFor(model)); err != nil {
		logging.Errorf("failed to switch embedding model to %s: %v", model.ModelName, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to switch model")
		return
	}

	logging.Infof("Embedding model switched to %s/%s (session %s)", model.ProviderType, model.ModelName, sessionID)

	session.ConfirmModel(state)
	if err := h.sessions.Save(r.Context(), sessionID, state); err != nil {
		logging.Errorf("failed to save session %s: %v", sessionID, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save session")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, ConfirmModelResponse{Current: model, State: state})
}

// CancelDialogs handles POST /admin/embeddings/cloud/dialogs/cancel
func (h *EmbeddingsHandler) CancelDialogs(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := sessionIdentity(r)
	if sessionID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, SessionHeader+" header is required")
		return
	}
	defer h.lock(sessionID)()

	state, err := h.sessions.Load(r.Context(), sessionID)
	if err != nil {
		logging.Errorf("failed to load session %s: %v", sessionID, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load session")
		return
	}

	session.CancelDialogs(state)
	if err := h.sessions.Save(r.Context(), sessionID, state); err != nil {
		logging.Errorf("failed to save session %s: %v", sessionID, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save session")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, state)
}
