package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"embedding_admin/internal/audit"
	"embedding_admin/internal/logging"
	"embedding_admin/internal/queue"
	"embedding_admin/internal/utils"
)

// DeadLetterSource is the part of the audit worker the admin API exposes
type DeadLetterSource interface {
	QueueLength(ctx context.Context) (int, error)
	DeadLetters(ctx context.Context, maxItems int) ([]queue.DeadLetterItem[audit.Event], error)
	RetryDeadLetter(ctx context.Context, id string) error
}

// AuditHandler serves audit queue inspection endpoints
type AuditHandler struct {
	worker DeadLetterSource
}

// NewAuditHandler creates a new audit handler. worker may be nil when
// auditing is disabled.
func NewAuditHandler(worker DeadLetterSource) *AuditHandler {
	return &AuditHandler{worker: worker}
}

// DeadLettersResponse lists failed audit events
type DeadLettersResponse struct {
	QueueLength int                                 `json:"queue_length"`
	Items       []queue.DeadLetterItem[audit.Event] `json:"items"`
}

// ListDeadLetters handles GET /admin/audit/dead-letters?limit=N
func (h *AuditHandler) ListDeadLetters(w http.ResponseWriter, r *http.Request) {
	if h.worker == nil {
		utils.RespondWithError(w, http.StatusServiceUnavailable, "Audit is disabled")
		return
	}

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			utils.RespondWithError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	items, err := h.worker.DeadLetters(r.Context(), limit)
	if err != nil {
		logging.Errorf("failed to list audit dead letters: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to list dead letters")
		return
	}
	if items == nil {
		items = []queue.DeadLetterItem[audit.Event]{}
	}

	length, err := h.worker.QueueLength(r.Context())
	if err != nil {
		logging.Warningf("failed to read audit queue length: %v", err)
	}

	utils.RespondWithJSON(w, http.StatusOK, DeadLettersResponse{QueueLength: length, Items: items})
}

// RetryDeadLetter handles POST /admin/audit/dead-letters/{id}/retry
func (h *AuditHandler) RetryDeadLetter(w http.ResponseWriter, r *http.Request) {
	if h.worker == nil {
		utils.RespondWithError(w, http.StatusServiceUnavailable, "Audit is disabled")
		return
	}

	id := r.PathValue("id")
	if err := h.worker.RetryDeadLetter(r.Context(), id); err != nil {
		if errors.Is(err, queue.ErrItemNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Dead letter not found")
			return
		}
		logging.Errorf("failed to retry audit dead letter %s: %v", id, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to retry dead letter")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
