// Package audit records every intent the embedding selection screen fires.
// Handlers publish events onto a queue; a Worker drains the queue in
// batches and hands them to a Writer (S3 or the log).
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"embedding_admin/internal/embedding"
	"embedding_admin/internal/logging"
	"embedding_admin/internal/queue"
)

// Event is one fired intent
type Event struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	SessionID    string    `json:"session_id"`
	AdminID      string    `json:"admin_id,omitempty"`
	Intent       string    `json:"intent"`
	ProviderType string    `json:"provider_type,omitempty"`
	ModelName    string    `json:"model_name,omitempty"`
}

// Publisher enqueues events. A nil *Publisher discards them.
type Publisher struct {
	queue queue.Queue[Event]
	now   func() time.Time
}

// NewPublisher creates a publisher on q
func NewPublisher(q queue.Queue[Event]) *Publisher {
	return &Publisher{queue: q, now: time.Now}
}

// Publish stamps ev with an ID and timestamp when missing and enqueues it
func (p *Publisher) Publish(ctx context.Context, ev Event) error {
	if p == nil {
		return nil
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = p.now().UTC()
	}
	return p.queue.Enqueue(ctx, ev)
}

// PublishIntents publishes one event per fired intent. Failures are logged;
// the audit trail never fails the request that produced it.
func (p *Publisher) PublishIntents(ctx context.Context, sessionID, adminID string, fired []embedding.FiredIntent) {
	if p == nil {
		return
	}
	for _, f := range fired {
		err := p.Publish(ctx, Event{
			SessionID:    sessionID,
			AdminID:      adminID,
			Intent:       f.Name,
			ProviderType: string(f.ProviderType),
			ModelName:    f.ModelName,
		})
		if err != nil {
			logging.Warningf("audit: failed to publish %s for session %s: %v", f.Name, sessionID, err)
		}
	}
}
