package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	cfotel "github.com/Strob0t/lukthan/internal/adapter/otel"
	"github.com/Strob0t/lukthan/internal/config"
	"github.com/Strob0t/lukthan/internal/domain"
	"github.com/Strob0t/lukthan/internal/domain/agent"
	"github.com/Strob0t/lukthan/internal/domain/settings"
	"github.com/Strob0t/lukthan/internal/port/cache"
	"github.com/Strob0t/lukthan/internal/port/notifier"
	"github.com/Strob0t/lukthan/internal/port/promptapi"
	"github.com/Strob0t/lukthan/internal/port/recorder"
)

// SessionDeps are the adapters a Session is built on. Device, Cache and
// Metrics may be nil.
type SessionDeps struct {
	API       promptapi.API
	Device    recorder.Device
	Cache     cache.Cache
	Notifiers []notifier.Notifier
	Metrics   *cfotel.Metrics
	Logger    *slog.Logger
}

// Session owns every piece of state of one interactive session.
type Session struct {
	API         promptapi.API
	Notify      *NotificationService
	Log         *ConversationLog
	Settings    *SettingsStore
	Gateway     *Gateway
	Attachments *AttachmentPipeline
	Voice       *VoicePipeline
	Wizard      *WizardService
	History     *HistoryService

	logger *slog.Logger
}

// NewSession wires a Session from configuration and adapters.
func NewSession(cfg *config.Config, deps SessionDeps) *Session {
	lg := deps.Logger
	if lg == nil {
		lg = slog.New(slog.DiscardHandler)
	}
	notify := NewNotificationService(lg, deps.Notifiers...)
	log := NewConversationLog()
	store := NewSettingsStore(InitialSettings(cfg.Settings), deps.API, notify, lg)
	gw := NewGateway(deps.API, log, store, notify, deps.Metrics, lg)

	s := &Session{
		API:         deps.API,
		Notify:      notify,
		Log:         log,
		Settings:    store,
		Gateway:     gw,
		Attachments: NewAttachmentPipeline(deps.API, cfg.Attachments, notify, deps.Metrics, lg),
		Wizard:      NewWizardService(gw, store, cfg.Wizard, lg),
		History:     NewHistoryService(deps.API, deps.Cache, cfg.Cache.HistoryTTL, notify, lg),
		logger:      lg,
	}
	if deps.Device != nil {
		s.Voice = NewVoicePipeline(deps.Device, deps.API, cfg.Voice, notify, deps.Metrics, lg)
	}
	return s
}

// InitialSettings converts configured defaults into a settings record.
func InitialSettings(c config.Settings) settings.Settings {
	return settings.Settings{
		Domain:         c.Domain,
		Mode:           settings.Mode(c.Mode),
		TargetAI:       c.TargetAI,
		ExpertiseLevel: c.ExpertiseLevel,
		Language:       c.Language,
	}
}

// Sources returns every event-emitting container for an EventFanout.
func (s *Session) Sources() []EventSource {
	src := []EventSource{s.Log, s.Settings, s.Attachments}
	if s.Voice != nil {
		src = append(src, s.Voice)
	}
	return src
}

// Send sends text with the pending attachment, if any. The attachment is
// consumed once the turn has been attempted, unless another file replaced
// it in the meantime.
func (s *Session) Send(ctx context.Context, text string) (*agent.Result, error) {
	return s.send(ctx, text, s.Gateway.Send)
}

// Optimize is Send through the legacy optimize endpoint.
func (s *Session) Optimize(ctx context.Context, text string) (*agent.Result, error) {
	return s.send(ctx, text, s.Gateway.Optimize)
}

func (s *Session) send(ctx context.Context, text string, fn func(context.Context, SendRequest) (*agent.Result, error)) (*agent.Result, error) {
	att, token := s.Attachments.claim()
	res, err := fn(ctx, SendRequest{Text: text, Attachment: att})
	if errors.Is(err, domain.ErrEmptyInput) || errors.Is(err, domain.ErrBusy) {
		return nil, err
	}
	if att != nil {
		// A file uploaded while the turn was in flight stays pending.
		s.Attachments.takeIf(token)
	}
	return res, err
}

// RegenerateLast resends the turn behind the most recent agent message.
func (s *Session) RegenerateLast(ctx context.Context) (*agent.Result, error) {
	id, ok := s.Log.LastAgent()
	if !ok {
		return nil, fmt.Errorf("regenerate: no agent message: %w", domain.ErrNotFound)
	}
	return s.Gateway.Regenerate(ctx, id)
}

// NewChat empties the conversation and drops the pending attachment.
func (s *Session) NewChat() {
	s.Log.Clear()
	s.Attachments.Take()
	s.Wizard.Reset()
}

// ResetConversation discards the backend's guided conversation state.
func (s *Session) ResetConversation(ctx context.Context) error {
	res, err := s.API.ResetConversation(ctx)
	if err != nil {
		s.logger.Warn("guided conversation reset failed", "error", err)
		s.Notify.Error(ctx, "session.reset", promptapi.Detail(err, "Failed to reset guided conversation."), err)
		return fmt.Errorf("reset conversation: %w", err)
	}
	msg := res.Message
	if msg == "" {
		msg = "Conversation reset."
	}
	s.Notify.Success(ctx, "session.reset", msg)
	return nil
}

// Close releases the microphone and stops background timers.
func (s *Session) Close() error {
	s.Wizard.Close()
	if s.Voice != nil {
		return s.Voice.Close()
	}
	return nil
}
