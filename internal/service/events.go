package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/Strob0t/lukthan/internal/domain/event"
	"github.com/Strob0t/lukthan/internal/port/broadcast"
	"github.com/Strob0t/lukthan/internal/port/messagequeue"
)

// EventSource is any state container that emits events.
type EventSource interface {
	Subscribe(h event.Handler) (cancel func())
}

// EventFanout forwards session events to live viewers, the message queue
// and local renderers. Either transport may be nil.
type EventFanout struct {
	hub   broadcast.Broadcaster
	queue messagequeue.Queue
	log   *slog.Logger

	mu      sync.Mutex
	sinks   []event.Handler
	cancels []func()
}

// NewEventFanout creates an EventFanout.
func NewEventFanout(hub broadcast.Broadcaster, queue messagequeue.Queue, log *slog.Logger) *EventFanout {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &EventFanout{hub: hub, queue: queue, log: log}
}

// Attach subscribes to every source.
func (f *EventFanout) Attach(sources ...EventSource) {
	for _, s := range sources {
		cancel := s.Subscribe(f.Handle)
		f.mu.Lock()
		f.cancels = append(f.cancels, cancel)
		f.mu.Unlock()
	}
}

// AddSink registers a local handler, such as a terminal renderer.
func (f *EventFanout) AddSink(h event.Handler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sinks = append(f.sinks, h)
}

// Handle forwards e to every destination.
func (f *EventFanout) Handle(e event.Event) {
	ctx := context.Background()
	if f.hub != nil {
		f.hub.BroadcastEvent(ctx, string(e.Type), e)
	}
	if f.queue != nil {
		if data, err := json.Marshal(e); err != nil {
			f.log.Error("marshal event", "type", e.Type, "error", err)
		} else if err := f.queue.Publish(ctx, messagequeue.EventSubject(string(e.Type)), data); err != nil {
			f.log.Warn("publish event", "type", e.Type, "error", err)
		}
	}

	f.mu.Lock()
	sinks := append([]event.Handler(nil), f.sinks...)
	f.mu.Unlock()
	for _, h := range sinks {
		h(e)
	}
}

// Close detaches from every source.
func (f *EventFanout) Close() {
	f.mu.Lock()
	cancels := f.cancels
	f.cancels = nil
	f.mu.Unlock()
	for _, c := range cancels {
		c()
	}
}
