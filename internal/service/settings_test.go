package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Strob0t/lukthan/internal/domain"
	"github.com/Strob0t/lukthan/internal/domain/event"
	"github.com/Strob0t/lukthan/internal/domain/settings"
	"github.com/Strob0t/lukthan/internal/port/notifier"
	"github.com/Strob0t/lukthan/internal/port/promptapi"
)

func ptr[T any](v T) *T { return &v }

func newSettingsStore(api *fakeAPI, n *mockNotifier) *SettingsStore {
	return NewSettingsStore(settings.Defaults(), api, NewNotificationService(nil, n), nil)
}

func TestSettingsStore_ResetOnSwitch(t *testing.T) {
	tests := []struct {
		name      string
		start     settings.Mode
		patch     settings.Patch
		wantReset int
	}{
		{"direct to guided", settings.ModeDirect, settings.Patch{Mode: ptr(settings.ModeGuided)}, 1},
		{"guided to direct", settings.ModeGuided, settings.Patch{Mode: ptr(settings.ModeDirect)}, 1},
		{"domain while guided", settings.ModeGuided, settings.Patch{Domain: ptr("research")}, 1},
		{"domain while direct", settings.ModeDirect, settings.Patch{Domain: ptr("research")}, 0},
		{"language while guided", settings.ModeGuided, settings.Patch{Language: ptr("French")}, 0},
		{"same mode", settings.ModeGuided, settings.Patch{Mode: ptr(settings.ModeGuided)}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{}
			start := settings.Defaults()
			start.Mode = tt.start
			s := NewSettingsStore(start, api, nil, nil)

			if _, err := s.Update(context.Background(), tt.patch); err != nil {
				t.Fatal(err)
			}
			if got := api.resetCount(); got != tt.wantReset {
				t.Errorf("reset calls = %d, want %d", got, tt.wantReset)
			}
		})
	}
}

func TestSettingsStore_ResetBeforeVisible(t *testing.T) {
	api := &fakeAPI{}
	s := newSettingsStore(api, &mockNotifier{})

	var seenAtChange int
	s.Subscribe(func(e event.Event) {
		if e.Type == event.TypeSettingsChanged {
			seenAtChange = api.resetCount()
		}
	})

	var modeDuringReset settings.Mode
	s.api = &resetProbe{fakeAPI: api, onReset: func() { modeDuringReset = s.Get().Mode }}

	got, err := s.Update(context.Background(), settings.Patch{Mode: ptr(settings.ModeGuided)})
	if err != nil {
		t.Fatal(err)
	}
	if modeDuringReset != settings.ModeDirect {
		t.Errorf("new mode visible during reset: %s", modeDuringReset)
	}
	if seenAtChange != 1 {
		t.Errorf("expected reset to precede the change event, saw %d resets", seenAtChange)
	}
	if got.Mode != settings.ModeGuided || s.Get().Mode != settings.ModeGuided {
		t.Errorf("expected guided mode applied, got %s", s.Get().Mode)
	}
}

// resetProbe runs a hook while a reset is in flight.
type resetProbe struct {
	*fakeAPI
	onReset func()
}

func (r *resetProbe) ResetConversation(ctx context.Context) (*promptapi.ResetResult, error) {
	r.onReset()
	return r.fakeAPI.ResetConversation(ctx)
}

func TestSettingsStore_ResetFailureStillApplies(t *testing.T) {
	api := &fakeAPI{resetErr: &promptapi.Error{Status: 500, Detail: "redis down"}}
	n := &mockNotifier{}
	s := newSettingsStore(api, n)

	got, err := s.Update(context.Background(), settings.Patch{Mode: ptr(settings.ModeGuided)})
	if err != nil {
		t.Fatalf("reset failure must not fail the update: %v", err)
	}
	if got.Mode != settings.ModeGuided {
		t.Errorf("expected guided, got %s", got.Mode)
	}
	if last := n.last(); last.Level != notifier.LevelError || last.Message != "redis down" {
		t.Errorf("expected error notice with server detail, got %+v", last)
	}
}

func TestSettingsStore_InvalidPatch(t *testing.T) {
	api := &fakeAPI{}
	s := newSettingsStore(api, &mockNotifier{})

	var changes int
	s.Subscribe(func(event.Event) { changes++ })

	_, err := s.Update(context.Background(), settings.Patch{Mode: ptr(settings.Mode("auto"))})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if s.Get() != settings.Defaults() {
		t.Errorf("invalid patch changed settings: %+v", s.Get())
	}
	if api.resetCount() != 0 || changes != 0 {
		t.Errorf("invalid patch must not reset or notify (resets %d, events %d)", api.resetCount(), changes)
	}
}

func TestSettingsStore_NoOpPatch(t *testing.T) {
	s := newSettingsStore(&fakeAPI{}, &mockNotifier{})
	var changes int
	s.Subscribe(func(event.Event) { changes++ })

	if _, err := s.Update(context.Background(), settings.Patch{Language: ptr("English")}); err != nil {
		t.Fatal(err)
	}
	if changes != 0 {
		t.Errorf("unchanged settings must not emit events, got %d", changes)
	}
}

func TestSettingsStore_ErrorWrapping(t *testing.T) {
	s := newSettingsStore(&fakeAPI{}, &mockNotifier{})
	_, err := s.Update(context.Background(), settings.Patch{ExpertiseLevel: ptr("Wizard")})
	if err == nil || errors.Unwrap(err) == nil {
		t.Errorf("expected wrapped validation error, got %v", err)
	}
}
