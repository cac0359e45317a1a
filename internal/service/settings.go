package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Strob0t/lukthan/internal/domain"
	"github.com/Strob0t/lukthan/internal/domain/event"
	"github.com/Strob0t/lukthan/internal/domain/settings"
	"github.com/Strob0t/lukthan/internal/port/promptapi"
)

// SettingsStore holds the session's settings record.
type SettingsStore struct {
	mu  sync.Mutex
	cur settings.Settings

	// updates serializes Update so a reset and the change it guards are
	// never interleaved with another update.
	updates sync.Mutex

	api    promptapi.API
	notify *NotificationService
	obs    observers
	log    *slog.Logger
}

// NewSettingsStore creates a store holding initial.
func NewSettingsStore(initial settings.Settings, api promptapi.API, notify *NotificationService, log *slog.Logger) *SettingsStore {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &SettingsStore{cur: initial, api: api, notify: notify, log: log}
}

// Get returns the current settings.
func (s *SettingsStore) Get() settings.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// Subscribe registers h for settings.changed events.
func (s *SettingsStore) Subscribe(h event.Handler) (cancel func()) {
	return s.obs.add(h)
}

// Update merges p into the current settings.
//
// Switching mode, or changing domain while guided, first asks the backend
// to drop its guided conversation. The new settings become visible only
// after that call returns; a failed reset is reported but does not block
// the change.
func (s *SettingsStore) Update(ctx context.Context, p settings.Patch) (settings.Settings, error) {
	s.updates.Lock()
	defer s.updates.Unlock()

	old := s.Get()
	next := old.Merge(p)
	if err := next.Validate(); err != nil {
		return old, fmt.Errorf("update settings: %w: %w", domain.ErrValidation, err)
	}
	if next == old {
		return old, nil
	}

	if settings.RequiresReset(old, next) {
		if _, err := s.api.ResetConversation(ctx); err != nil {
			s.log.Warn("guided conversation reset failed", "error", err)
			s.notify.Error(ctx, "settings.reset", promptapi.Detail(err, "Failed to reset guided conversation."), err)
		} else {
			s.log.Debug("guided conversation reset", "from_mode", old.Mode, "to_mode", next.Mode, "domain", next.Domain)
		}
	}

	s.mu.Lock()
	s.cur = next
	s.mu.Unlock()

	snap := next
	s.obs.emit(event.Event{Type: event.TypeSettingsChanged, Settings: &snap})
	return next, nil
}
