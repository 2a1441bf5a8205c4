package queue

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMemoryQueue_PublishSubscribe(t *testing.T) {
	q := newMemoryQueue()
	defer func() { _ = q.Close() }()

	subject := "tsexplorer.explore.completed"
	received := make(chan []byte, 3)

	if err := q.Subscribe(subject, func(data []byte) error {
		received <- data
		return nil
	}); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	for _, msg := range []string{"a", "b", "c"} {
		if err := q.Publish(context.Background(), subject, []byte(msg)); err != nil {
			t.Fatalf("Publish failed: %v", err)
		}
	}

	for _, want := range []string{"a", "b", "c"} {
		select {
		case got := <-received:
			if string(got) != want {
				t.Errorf("expected %q, got %q", want, got)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for message")
		}
	}
}

func TestMemoryQueue_PublishCopiesData(t *testing.T) {
	q := newMemoryQueue()
	defer func() { _ = q.Close() }()

	data := []byte("original")
	if err := q.Publish(context.Background(), "s", data); err != nil {
		t.Fatal(err)
	}
	data[0] = 'X'

	got := make(chan []byte, 1)
	if err := q.Subscribe("s", func(d []byte) error {
		got <- d
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	select {
	case d := <-got:
		if string(d) != "original" {
			t.Errorf("expected buffered copy, got %q", d)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout")
	}
}

func TestMemoryQueue_DuplicateSubscribe(t *testing.T) {
	q := newMemoryQueue()
	defer func() { _ = q.Close() }()

	noop := func([]byte) error { return nil }
	if err := q.Subscribe("s", noop); err != nil {
		t.Fatal(err)
	}
	if err := q.Subscribe("s", noop); err == nil {
		t.Error("expected error on duplicate subscribe")
	}

	if err := q.Unsubscribe("s"); err != nil {
		t.Fatal(err)
	}
	if err := q.Unsubscribe("s"); err == nil {
		t.Error("expected error on second unsubscribe")
	}
}

func TestMemoryQueue_ChannelFull(t *testing.T) {
	q := newMemoryQueue()
	defer func() { _ = q.Close() }()

	for i := 0; i < memoryBufferSize; i++ {
		if err := q.Publish(context.Background(), "s", []byte("x")); err != nil {
			t.Fatalf("publish %d failed: %v", i, err)
		}
	}
	if q.Pending("s") != memoryBufferSize {
		t.Errorf("expected %d pending, got %d", memoryBufferSize, q.Pending("s"))
	}
	if err := q.Publish(context.Background(), "s", []byte("x")); err == nil {
		t.Error("expected error when channel is full")
	}
}

func TestMemoryQueue_Close(t *testing.T) {
	q := newMemoryQueue()

	var wg sync.WaitGroup
	wg.Add(1)
	if err := q.Subscribe("s", func([]byte) error {
		wg.Done()
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if err := q.Publish(context.Background(), "s", []byte("x")); err != nil {
		t.Fatal(err)
	}
	wg.Wait()

	if err := q.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
	if err := q.Publish(context.Background(), "s", []byte("x")); err == nil {
		t.Error("expected error publishing to closed queue")
	}
}
