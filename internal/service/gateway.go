package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	cfotel "github.com/Strob0t/lukthan/internal/adapter/otel"
	"github.com/Strob0t/lukthan/internal/domain"
	"github.com/Strob0t/lukthan/internal/domain/agent"
	"github.com/Strob0t/lukthan/internal/domain/message"
	"github.com/Strob0t/lukthan/internal/domain/settings"
	"github.com/Strob0t/lukthan/internal/domain/wizard"
	"github.com/Strob0t/lukthan/internal/logger"
	"github.com/Strob0t/lukthan/internal/port/promptapi"
)

// ThinkingText is shown while a turn is awaiting its result.
const ThinkingText = "Processing your message..."

const sendFailed = "Failed to process message. Please try again."

// SendRequest is one user turn.
type SendRequest struct {
	Text       string
	Attachment *message.Attachment
	Guided     *wizard.Context
}

// Gateway sends user turns to the backend and records them in the log.
// At most one turn is in flight at a time.
type Gateway struct {
	api      promptapi.API
	log      *ConversationLog
	settings *SettingsStore
	notify   *NotificationService
	metrics  *cfotel.Metrics
	logger   *slog.Logger

	inFlight atomic.Bool
}

// NewGateway creates a Gateway. metrics may be nil.
func NewGateway(api promptapi.API, log *ConversationLog, store *SettingsStore, notify *NotificationService, metrics *cfotel.Metrics, lg *slog.Logger) *Gateway {
	if lg == nil {
		lg = slog.New(slog.DiscardHandler)
	}
	return &Gateway{api: api, log: log, settings: store, notify: notify, metrics: metrics, logger: lg}
}

// Busy reports whether a turn is in flight.
func (g *Gateway) Busy() bool { return g.inFlight.Load() }

// Thinking returns the indicator text and whether it should be shown.
func (g *Gateway) Thinking() (string, bool) {
	if g.inFlight.Load() {
		return ThinkingText, true
	}
	return "", false
}

// Send posts a turn to the chat endpoint.
//
// On success the placeholder is resolved with the result. On failure the
// placeholder is removed, the user message is kept and the error is
// notified and returned.
func (g *Gateway) Send(ctx context.Context, req SendRequest) (*agent.Result, error) {
	return g.run(ctx, "chat", req, g.api.Chat)
}

// Optimize posts a turn to the legacy optimize endpoint. The lifecycle is
// the same as Send.
func (g *Gateway) Optimize(ctx context.Context, req SendRequest) (*agent.Result, error) {
	return g.run(ctx, "optimize", req, g.api.Optimize)
}

// Regenerate drops agent message agentID and everything after it, then
// resends the user message that prompted it. The turn is held from the
// rewind through the resend.
func (g *Gateway) Regenerate(ctx context.Context, agentID string) (*agent.Result, error) {
	if !g.inFlight.CompareAndSwap(false, true) {
		return nil, domain.ErrBusy
	}
	defer g.inFlight.Store(false)

	user, err := g.log.RewindFrom(agentID)
	if err != nil {
		if errors.Is(err, domain.ErrPendingTurn) {
			return nil, domain.ErrBusy
		}
		return nil, fmt.Errorf("regenerate: %w", err)
	}
	logger.From(ctx, g.logger).Debug("regenerating turn", "agent_message_id", agentID, "user_message_id", user.ID)
	return g.turn(ctx, "chat", SendRequest{Text: user.Text, Attachment: user.Attachment}, g.api.Chat)
}

type turnFunc func(context.Context, promptapi.ChatRequest) (*agent.Result, error)

func (g *Gateway) run(ctx context.Context, endpoint string, req SendRequest, call turnFunc) (*agent.Result, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, domain.ErrEmptyInput
	}
	if !g.inFlight.CompareAndSwap(false, true) {
		return nil, domain.ErrBusy
	}
	defer g.inFlight.Store(false)
	return g.turn(ctx, endpoint, req, call)
}

// turn records and posts one user turn. The caller holds inFlight.
func (g *Gateway) turn(ctx context.Context, endpoint string, req SendRequest, call turnFunc) (*agent.Result, error) {
	var att *message.Attachment
	if req.Attachment != nil {
		a := *req.Attachment
		att = &a
	}

	if _, err := g.log.Append(message.Message{Role: message.RoleUser, Text: req.Text, Attachment: att}); err != nil {
		return nil, fmt.Errorf("append user message: %w", err)
	}
	placeholderID, err := g.log.AppendPendingPlaceholder()
	if err != nil {
		return nil, fmt.Errorf("append placeholder: %w", err)
	}

	ctx = logger.WithTurnID(ctx, placeholderID)
	lg := logger.From(ctx, g.logger)
	ctx, span := cfotel.StartTurnSpan(ctx, placeholderID, endpoint, req.Guided != nil)
	defer span.End()
	g.count(ctx, func(m *cfotel.Metrics) metric.Int64Counter { return m.TurnsStarted }, endpoint)
	start := time.Now()

	current := g.settings.Get()
	if req.Guided != nil {
		// Guided submissions are single direct turns on the backend.
		current.Mode = settings.ModeDirect
	}
	chatReq := promptapi.ChatRequest{
		UserInput:     req.Text,
		Settings:      current,
		GuidedContext: req.Guided,
	}
	if att != nil {
		chatReq.FileContent = att.Content
		chatReq.FileType = att.FileType
	}

	res, err := call(ctx, chatReq)
	if err == nil && res == nil {
		err = errors.New("empty response")
	}
	if err != nil {
		g.log.DiscardIfPendingAndLast(placeholderID)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		g.count(ctx, func(m *cfotel.Metrics) metric.Int64Counter { return m.TurnsFailed }, endpoint)
		lg.Warn("turn failed", "endpoint", endpoint, "error", err)
		g.notify.Error(ctx, "gateway."+endpoint, promptapi.Detail(err, sendFailed), err)
		return nil, fmt.Errorf("%s turn: %w", endpoint, err)
	}

	if err := g.log.ResolvePending(placeholderID, res); err != nil {
		// The log was cleared while the turn was in flight.
		lg.Warn("resolve placeholder", "error", err)
		return res, fmt.Errorf("resolve turn: %w", err)
	}

	span.SetAttributes(attribute.String("turn.intent", string(res.Intent)))
	g.count(ctx, func(m *cfotel.Metrics) metric.Int64Counter { return m.TurnsCompleted }, endpoint)
	if g.metrics != nil {
		g.metrics.TurnDuration.Record(ctx, time.Since(start).Seconds(),
			metric.WithAttributes(attribute.String("endpoint", endpoint)))
	}
	lg.Info("turn resolved", "endpoint", endpoint, "intent", res.Intent, "duration", time.Since(start))
	g.notify.Success(ctx, "gateway."+endpoint, agent.Acknowledgment(res.Intent))
	return res, nil
}

func (g *Gateway) count(ctx context.Context, pick func(*cfotel.Metrics) metric.Int64Counter, endpoint string) {
	if g.metrics == nil {
		return
	}
	pick(g.metrics).Add(ctx, 1, metric.WithAttributes(attribute.String("endpoint", endpoint)))
}
