package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/soltixdb/tsexplorer/internal/logging"
	"github.com/soltixdb/tsexplorer/internal/utils"
)

// EventType names an explorer event; it is also the subject suffix
type EventType string

const (
	EventDatasetLoaded    EventType = "dataset.loaded"
	EventDatasetDeleted   EventType = "dataset.deleted"
	EventExploreCompleted EventType = "explore.completed"
)

// Event is the JSON payload published for every explorer event
type Event struct {
	Type        EventType `json:"type"`
	DatasetID   string    `json:"dataset_id"`
	RequestID   string    `json:"request_id,omitempty"`
	Granularity string    `json:"granularity,omitempty"`
	Buckets     int       `json:"buckets,omitempty"`
	Rows        int       `json:"rows,omitempty"`
	Total       float64   `json:"total,omitempty"`
	Empty       bool      `json:"empty,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Subject returns "<prefix>.<type>", or just the type when prefix is empty
func Subject(prefix string, t EventType) string {
	if prefix == "" {
		return string(t)
	}
	return prefix + "." + string(t)
}

// DecodeEvent parses an event payload
func DecodeEvent(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("invalid event payload: %w", err)
	}
	return &e, nil
}

// Emitter publishes events and never fails the caller
type Emitter struct {
	pub    Publisher
	prefix string
	logger *logging.Logger
}

// NewEmitter creates an emitter over pub; a nil pub disables publishing
func NewEmitter(pub Publisher, prefix string, logger *logging.Logger) *Emitter {
	if logger == nil {
		logger = logging.Global()
	}
	return &Emitter{pub: pub, prefix: prefix, logger: logger}
}

// Emit stamps and publishes e. Failures are logged at warn level.
func (em *Emitter) Emit(ctx context.Context, e Event) {
	if em == nil || em.pub == nil {
		return
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	if e.RequestID == "" {
		e.RequestID = logging.RequestID(ctx)
	}

	data, err := json.Marshal(e)
	if err != nil {
		em.logger.Warn("Failed to encode event", "type", string(e.Type), "error", err)
		return
	}

	// Publishing outlives the request but not the publish timeout
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), utils.EventPublishTimeout)
	defer cancel()

	subject := Subject(em.prefix, e.Type)
	if err := em.pub.Publish(pubCtx, subject, data); err != nil {
		em.logger.Warn("Failed to publish event", "subject", subject, "error", err)
		return
	}
	em.logger.Debug("Event published", "subject", subject, "dataset_id", e.DatasetID)
}

// AuditHandler returns a handler that logs each explore event it receives
func AuditHandler(logger *logging.Logger) MessageHandler {
	return func(data []byte) error {
		e, err := DecodeEvent(data)
		if err != nil {
			logger.Warn("Dropping malformed event", "error", err)
			return nil
		}
		logger.Info("Audit",
			"type", string(e.Type),
			"dataset_id", e.DatasetID,
			"request_id", e.RequestID,
			"granularity", e.Granularity,
			"buckets", e.Buckets,
			"total", e.Total,
			"empty", e.Empty,
			"occurred_at", e.OccurredAt,
		)
		return nil
	}
}
