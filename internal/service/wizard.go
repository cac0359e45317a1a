package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Strob0t/lukthan/internal/config"
	"github.com/Strob0t/lukthan/internal/domain"
	"github.com/Strob0t/lukthan/internal/domain/agent"
	"github.com/Strob0t/lukthan/internal/domain/event"
	"github.com/Strob0t/lukthan/internal/domain/wizard"
)

// WizardView is a read-only snapshot of the guided questionnaire.
type WizardView struct {
	Title       string
	Step        int
	Total       int
	Percent     int
	Current     *wizard.Step // nil on the description step
	Answer      string       // option chosen for Current, if any
	Description string
	Selections  []string
	CanSubmit   bool
}

// WizardService drives the guided questionnaire and submits its result
// through the gateway. Selecting an option advances after a short delay;
// repeated selections within the delay collapse into one advance.
type WizardService struct {
	mu    sync.Mutex
	state *wizard.State
	timer *time.Timer
	gen   uint64

	delay    time.Duration
	gateway  *Gateway
	settings *SettingsStore
	log      *slog.Logger
	unsub    func()
}

// NewWizardService creates a WizardService for the store's current domain.
// The questionnaire restarts whenever settings change.
func NewWizardService(gw *Gateway, store *SettingsStore, cfg config.Wizard, log *slog.Logger) *WizardService {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	w := &WizardService{
		state:    wizard.New(store.Get().Domain),
		delay:    cfg.AdvanceDelay,
		gateway:  gw,
		settings: store,
		log:      log,
	}
	w.unsub = store.Subscribe(func(e event.Event) {
		if e.Type == event.TypeSettingsChanged && e.Settings != nil {
			w.resetTo(e.Settings.Domain)
		}
	})
	return w
}

// Close stops listening for settings changes and cancels a pending advance.
func (w *WizardService) Close() {
	w.unsub()
	w.mu.Lock()
	w.cancelLocked()
	w.mu.Unlock()
}

// View returns the current questionnaire state.
func (w *WizardService) View() WizardView {
	w.mu.Lock()
	defer w.mu.Unlock()
	n, total, pct := w.state.Progress()
	v := WizardView{
		Title:       w.state.Flow().Title,
		Step:        n,
		Total:       total,
		Percent:     pct,
		Description: w.state.Description(),
		Selections:  w.state.Selections(),
		CanSubmit:   w.state.CanSubmit(),
	}
	if st, ok := w.state.Current(); ok {
		v.Current = &st
		v.Answer = w.state.Answer(w.state.Step())
	}
	return v
}

// Select records optionID for the current step and schedules the advance.
func (w *WizardService) Select(optionID string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.state.Select(optionID); err != nil {
		return fmt.Errorf("wizard select: %w", err)
	}

	w.cancelLocked()
	if w.delay <= 0 {
		w.state.Advance()
		return nil
	}
	gen, step := w.gen, w.state.Step()
	w.timer = time.AfterFunc(w.delay, func() { w.advance(gen, step) })
	return nil
}

func (w *WizardService) advance(gen uint64, step int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != w.gen || step != w.state.Step() {
		return
	}
	w.timer = nil
	w.state.Advance()
}

// Back returns to the previous step.
func (w *WizardService) Back() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cancelLocked()
	w.state.Back()
}

// SetDescription stores the free-text requirements.
func (w *WizardService) SetDescription(text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state.SetDescription(text)
}

// Submit sends the synthesized prompt with its guided context and restarts
// the questionnaire once the turn has been attempted.
func (w *WizardService) Submit(ctx context.Context) (*agent.Result, error) {
	w.mu.Lock()
	if !w.state.CanSubmit() {
		w.mu.Unlock()
		return nil, fmt.Errorf("wizard submit: description step incomplete: %w", domain.ErrInvalidState)
	}
	gc := w.state.Context()
	prompt := w.state.Prompt()
	w.mu.Unlock()

	w.log.Debug("guided prompt submitted", "domain", gc.Domain, "project_type", gc.ProjectType)
	res, err := w.gateway.Send(ctx, SendRequest{Text: prompt, Guided: &gc})
	if errors.Is(err, domain.ErrBusy) {
		return nil, err
	}
	w.Reset()
	return res, err
}

// Reset restarts the questionnaire for the current settings domain.
func (w *WizardService) Reset() {
	w.resetTo(w.settings.Get().Domain)
}

func (w *WizardService) resetTo(domainName string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cancelLocked()
	w.state = wizard.New(domainName)
}

func (w *WizardService) cancelLocked() {
	w.gen++
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}
