package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"embedding_admin/internal/embedding"
	"embedding_admin/internal/logging"
	"embedding_admin/internal/session"
	"embedding_admin/internal/storage"
	"embedding_admin/internal/utils"
)

// ProviderResponse describes a stored provider record. The API key itself
// never leaves the server, only its last characters.
type ProviderResponse struct {
	ProviderType string         `json:"provider_type"`
	APIURL       string         `json:"api_url,omitempty"`
	APIKeySet    bool           `json:"api_key_set"`
	APIKeyHint   string         `json:"api_key_hint,omitempty"`
	CustomConfig map[string]any `json:"custom_config,omitempty"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// maskAPIKey keeps the last four characters of keys long enough to hide
func maskAPIKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "****"
	}
	return "****" + key[len(key)-4:]
}

// GetProvider handles GET /admin/embeddings/cloud/providers/{type}
func (h *EmbeddingsHandler) GetProvider(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.resolveProvider(r.PathValue("type"))
	if !ok {
		utils.RespondWithError(w, http.StatusNotFound, "Unknown provider: "+r.PathValue("type"))
		return
	}
	providerType := string(provider.ProviderType)

	record, err := h.providers.GetByType(r.Context(), providerType)
	if err != nil {
		if errors.Is(err, storage.ErrProviderNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Provider not configured")
			return
		}
		logging.Errorf("failed to load provider %s: %v", providerType, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load provider")
		return
	}

	key, err := h.providers.APIKey(r.Context(), providerType)
	if err != nil {
		logging.Errorf("failed to read api key of provider %s: %v", providerType, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load provider")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, ProviderResponse{
		ProviderType: providerType,
		APIURL:       record.APIURL,
		APIKeySet:    key != "",
		APIKeyHint:   maskAPIKey(key),
		CustomConfig: record.CustomConfig,
		UpdatedAt:    record.UpdatedAt,
	})
}

// DeleteModel handles DELETE /admin/embeddings/cloud/models/{id}. Only proxy
// models are stored records; catalog models cannot be removed. The active
// model stays until another one is confirmed.
func (h *EmbeddingsHandler) DeleteModel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid model id")
		return
	}

	sessionID, _ := sessionIdentity(r)
	if sessionID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, SessionHeader+" header is required")
		return
	}
	defer h.lock(sessionID)()

	ctx := r.Context()
	rows, err := h.models.ListByProvider(ctx, embedding.ProxyProviderType.Lower())
	if err != nil {
		logging.Errorf("failed to list proxy models: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load models")
		return
	}

	var name string
	for _, m := range rows {
		if m.ID == id {
			name = m.ModelName
			break
		}
	}
	if name == "" {
		utils.RespondWithError(w, http.StatusNotFound, "Model not found")
		return
	}

	current, err := h.models.GetCurrent(ctx)
	switch {
	case err == nil:
		if current.ModelName == name && isProxyType(current.ProviderType) {
			utils.RespondWithError(w, http.StatusConflict, "Model is the active embedding model")
			return
		}
	case errors.Is(err, storage.ErrCurrentModelNotSet):
	default:
		logging.Errorf("failed to load current embedding model: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load current model")
		return
	}

	if err := h.models.Delete(ctx, id); err != nil {
		if errors.Is(err, storage.ErrModelNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Model not found")
			return
		}
		logging.Errorf("failed to delete model %s: %v", name, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to delete model")
		return
	}

	logging.Infof("Proxy embedding model %s removed (session %s)", name, sessionID)

	state, err := h.sessions.Load(ctx, sessionID)
	if err != nil {
		logging.Errorf("failed to load session %s: %v", sessionID, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load session")
		return
	}
	session.ForgetModel(state, name, embedding.ProxyProviderType)
	if err := h.sessions.Save(ctx, sessionID, state); err != nil {
		logging.Errorf("failed to save session %s: %v", sessionID, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save session")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, state)
}

// ResetState handles DELETE /admin/embeddings/cloud/state. It forgets the
// session's selection state and its proxy state.
func (h *EmbeddingsHandler) ResetState(w http.ResponseWriter, r *http.Request) {
	sessionID, _ := sessionIdentity(r)
	if sessionID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, SessionHeader+" header is required")
		return
	}
	defer h.lock(sessionID)()

	if err := h.sessions.Delete(r.Context(), sessionID); err != nil {
		logging.Errorf("failed to delete session %s: %v", sessionID, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to reset session")
		return
	}
	h.proxies.Delete(sessionID)

	logging.Debugf("Session %s reset", sessionID)
	w.WriteHeader(http.StatusNoContent)
}
