package nats

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Strob0t/lukthan/internal/logger"
	"github.com/Strob0t/lukthan/internal/port/messagequeue"
)

// testConnect connects to NATS or skips the test if NATS_URL is not set.
func testConnect(t *testing.T) *Queue {
	t.Helper()

	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("requires NATS_URL")
	}

	q, err := Connect(context.Background(), url, nil)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() {
		if err := q.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return q
}

// uniqueEvent returns an event type unique to t and the subject it is
// published on.
func uniqueEvent(t *testing.T) (eventType, subject string) {
	t.Helper()
	eventType = "test." + t.Name()
	return eventType, messagequeue.EventSubject(eventType)
}

func TestQueue_PublishSubscribe(t *testing.T) {
	q := testConnect(t)
	eventType, subject := uniqueEvent(t)

	type payload struct {
		Type string `json:"type"`
	}
	data, err := json.Marshal(payload{Type: eventType})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var (
		mu       sync.Mutex
		received *payload
		done     = make(chan struct{})
		once     sync.Once
	)

	stop, err := q.Subscribe(context.Background(), subject, func(_ context.Context, _ string, d []byte) error {
		var got payload
		if err := json.Unmarshal(d, &got); err != nil {
			return err
		}
		mu.Lock()
		received = &got
		mu.Unlock()
		once.Do(func() { close(done) })
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer stop()

	if err := q.Publish(context.Background(), subject, data); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
	}

	mu.Lock()
	defer mu.Unlock()
	if received == nil || received.Type != eventType {
		t.Errorf("received %+v", received)
	}
}

func TestQueue_TurnIDPropagation(t *testing.T) {
	q := testConnect(t)
	eventType, subject := uniqueEvent(t)

	const wantTurn = "turn-abc-123"
	var (
		mu      sync.Mutex
		gotTurn string
		done    = make(chan struct{})
		once    sync.Once
	)

	stop, err := q.Subscribe(context.Background(), subject, func(ctx context.Context, _ string, _ []byte) error {
		mu.Lock()
		gotTurn = logger.TurnID(ctx)
		mu.Unlock()
		once.Do(func() { close(done) })
		return nil
	})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer stop()

	ctx := logger.WithTurnID(context.Background(), wantTurn)
	if err := q.Publish(ctx, subject, []byte(`{"type":"`+eventType+`"}`)); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
	}

	mu.Lock()
	defer mu.Unlock()
	if gotTurn != wantTurn {
		t.Errorf("turn ID = %q, want %q", gotTurn, wantTurn)
	}
}

func TestQueue_KeyValue(t *testing.T) {
	q := testConnect(t)
	ctx := context.Background()

	kv, err := q.KeyValue(ctx, "test-kv-"+t.Name(), 30*time.Second)
	if err != nil {
		t.Fatalf("KeyValue: %v", err)
	}
	if _, err := kv.Put(ctx, "history.list.20", []byte("page")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	entry, err := kv.Get(ctx, "history.list.20")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(entry.Value()) != "page" {
		t.Errorf("value = %q", entry.Value())
	}
}

func TestQueue_PublishRejectsMismatchedEvent(t *testing.T) {
	q := testConnect(t)
	_, subject := uniqueEvent(t)

	err := q.Publish(context.Background(), subject, []byte(`{"type":"log.cleared"}`))
	if !errors.Is(err, messagequeue.ErrInvalidMessage) {
		t.Errorf("Publish() error = %v, want ErrInvalidMessage", err)
	}
}

func TestQueue_IsConnected(t *testing.T) {
	q := testConnect(t)
	if !q.IsConnected() {
		t.Error("IsConnected() = false after Connect, want true")
	}
}
