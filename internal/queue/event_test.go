package queue

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soltixdb/tsexplorer/internal/logging"
)

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, string, []byte) error {
	return errors.New("broker down")
}
func (failingPublisher) Close() error { return nil }

func TestSubject(t *testing.T) {
	assert.Equal(t, "tsexplorer.dataset.loaded", Subject("tsexplorer", EventDatasetLoaded))
	assert.Equal(t, "explore.completed", Subject("", EventExploreCompleted))
}

func TestEmitter_Emit(t *testing.T) {
	q := newMemoryQueue()
	defer func() { _ = q.Close() }()

	got := make(chan *Event, 1)
	require.NoError(t, q.Subscribe("app.explore.completed", func(data []byte) error {
		e, err := DecodeEvent(data)
		if err != nil {
			return err
		}
		got <- e
		return nil
	}))

	ctx := logging.WithRequestID(context.Background(), "req-42")
	em := NewEmitter(q, "app", nil)
	em.Emit(ctx, Event{
		Type:        EventExploreCompleted,
		DatasetID:   "default",
		Granularity: "monthly",
		Buckets:     2,
		Total:       35,
	})

	select {
	case e := <-got:
		assert.Equal(t, EventExploreCompleted, e.Type)
		assert.Equal(t, "default", e.DatasetID)
		assert.Equal(t, "req-42", e.RequestID)
		assert.Equal(t, 2, e.Buckets)
		assert.Equal(t, 35.0, e.Total)
		assert.False(t, e.OccurredAt.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestEmitter_FailureIsLogged(t *testing.T) {
	var buf bytes.Buffer
	em := NewEmitter(failingPublisher{}, "app", logging.NewWithWriter(&buf, zerolog.DebugLevel))

	em.Emit(context.Background(), Event{Type: EventDatasetLoaded, DatasetID: "d"})

	assert.Contains(t, buf.String(), "Failed to publish event")
	assert.Contains(t, buf.String(), "broker down")
}

func TestEmitter_NilIsNoop(t *testing.T) {
	var em *Emitter
	em.Emit(context.Background(), Event{Type: EventDatasetLoaded})

	NewEmitter(nil, "", nil).Emit(context.Background(), Event{Type: EventDatasetLoaded})
}

func TestAuditHandler(t *testing.T) {
	var buf bytes.Buffer
	h := AuditHandler(logging.NewWithWriter(&buf, zerolog.DebugLevel))

	require.NoError(t, h([]byte(`{"type":"explore.completed","dataset_id":"default","buckets":3}`)))
	assert.Contains(t, buf.String(), `"dataset_id":"default"`)

	buf.Reset()
	require.NoError(t, h([]byte("not json")))
	assert.Contains(t, buf.String(), "Dropping malformed event")
}
