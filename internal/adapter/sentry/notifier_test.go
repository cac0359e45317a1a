package sentry

import (
	"context"
	"errors"
	"sync"
	"testing"

	sentrygo "github.com/getsentry/sentry-go"

	"github.com/Strob0t/lukthan/internal/config"
	"github.com/Strob0t/lukthan/internal/port/notifier"
)

var _ notifier.Notifier = (*Notifier)(nil)

type captured struct {
	mu     sync.Mutex
	events []*sentrygo.Event
}

func (c *captured) beforeSend(e *sentrygo.Event, _ *sentrygo.EventHint) *sentrygo.Event {
	c.mu.Lock()
	c.events = append(c.events, e)
	c.mu.Unlock()
	return nil
}

func newTestNotifier(t *testing.T) (*Notifier, *captured) {
	t.Helper()
	c := &captured{}
	client, err := sentrygo.NewClient(sentrygo.ClientOptions{BeforeSend: c.beforeSend})
	if err != nil {
		t.Fatal(err)
	}
	return NewNotifier(sentrygo.NewHub(client, sentrygo.NewScope())), c
}

func TestCapabilities(t *testing.T) {
	caps := NewNotifier(nil).Capabilities()
	if !caps.ErrorsOnly || !caps.RemoteReport {
		t.Errorf("unexpected capabilities %+v", caps)
	}
}

func TestSendCapturesUnderlyingError(t *testing.T) {
	n, c := newTestNotifier(t)
	cause := errors.New("prompt api: status 502")

	err := n.Send(context.Background(), notifier.Notification{
		Message: "Failed to process message. Please try again.",
		Level:   notifier.LevelError,
		Source:  "gateway.chat",
		Err:     cause,
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(c.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(c.events))
	}
	e := c.events[0]
	if e.Level != sentrygo.LevelError || e.Tags["source"] != "gateway.chat" {
		t.Errorf("level %s, tags %v", e.Level, e.Tags)
	}
	if len(e.Exception) == 0 || e.Exception[len(e.Exception)-1].Value != cause.Error() {
		t.Errorf("exception = %+v", e.Exception)
	}
}

func TestSendWithoutClient(t *testing.T) {
	n := NewNotifier(sentrygo.NewHub(nil, sentrygo.NewScope()))
	err := n.Send(context.Background(), notifier.Notification{Level: notifier.LevelError, Message: "x"})
	if !errors.Is(err, notifier.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestInitWithoutDSN(t *testing.T) {
	flush, err := Init(config.Sentry{}, "dev")
	if err != nil {
		t.Fatal(err)
	}
	flush()
}
