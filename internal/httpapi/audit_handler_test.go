package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"embedding_admin/internal/audit"
	"embedding_admin/internal/config"
	"embedding_admin/internal/queue"
)

func newAuditEnv(t *testing.T) (*testEnv, *queue.MemoryQueue[audit.Event], *queue.MemoryDeadLetterQueue[audit.Event]) {
	t.Helper()

	env := newTestEnv(t)
	q := queue.NewMemoryQueue[audit.Event](queue.DefaultConfig("audit-dlq-test"))
	dlq := queue.NewMemoryDeadLetterQueue[audit.Event]()
	env.deps.AuditWorker = audit.NewWorker(q, dlq, audit.NewLogWriter(nil), nil)
	env.mux = NewMux(env.deps, env.cfg)
	return env, q, dlq
}

func TestDeadLetters_ListAndRetry(t *testing.T) {
	env, q, dlq := newAuditEnv(t)
	ctx := context.Background()

	require.NoError(t, dlq.Add(ctx, audit.Event{ID: "ev-1", Intent: "request_model_setup"}, errors.New("s3 down")))

	w := env.do(http.MethodGet, "/admin/audit/dead-letters", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp DeadLettersResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "s3 down", resp.Items[0].Error)
	assert.Equal(t, "ev-1", resp.Items[0].Item.ID)

	w = env.do(http.MethodPost, "/admin/audit/dead-letters/"+resp.Items[0].ID+"/retry", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	n, err := q.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	items, err := dlq.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDeadLetters_RetryUnknown(t *testing.T) {
	env, _, _ := newAuditEnv(t)

	w := env.do(http.MethodPost, "/admin/audit/dead-letters/missing/retry", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeadLetters_BadLimit(t *testing.T) {
	env, _, _ := newAuditEnv(t)

	w := env.do(http.MethodGet, "/admin/audit/dead-letters?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeadLetters_AuditDisabled(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/admin/audit/dead-letters", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestDeadLetters_ViewerForbidden(t *testing.T) {
	env, _, _ := newAuditEnv(t)

	w := env.do(http.MethodGet, "/admin/audit/dead-letters", nil, "viewer")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestNewMux_LoginRoute(t *testing.T) {
	env := newTestEnv(t)
	env.deps.AdminStore = nil
	env.mux = NewMux(env.deps, &config.Config{JWTSecret: []byte("x")})

	w := env.do(http.MethodPost, "/admin/auth/login", map[string]string{"email": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
