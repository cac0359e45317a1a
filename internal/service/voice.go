package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	cfotel "github.com/Strob0t/lukthan/internal/adapter/otel"
	"github.com/Strob0t/lukthan/internal/config"
	"github.com/Strob0t/lukthan/internal/domain/event"
	"github.com/Strob0t/lukthan/internal/domain/voice"
	"github.com/Strob0t/lukthan/internal/port/promptapi"
	"github.com/Strob0t/lukthan/internal/port/recorder"
)

const (
	micDenied        = "Microphone access denied. Please allow microphone access."
	startFailed      = "Failed to start recording."
	transcribeFailed = "Failed to transcribe voice. Please try again."
)

// errTranscriptionEmpty is returned when the backend answered without usable text.
var errTranscriptionEmpty = errors.New("transcription unsuccessful")

// VoicePipeline records from the microphone and turns speech into text.
// Its state cycles idle, recording, processing, idle.
type VoicePipeline struct {
	mu       sync.Mutex
	state    voice.State
	starting bool
	capture  recorder.Capture
	enc      voice.Encoding
	limit    *time.Timer
	onText   func(string)

	device      recorder.Device
	api         promptapi.API
	maxDuration time.Duration
	notify      *NotificationService
	metrics     *cfotel.Metrics
	obs         observers
	log         *slog.Logger
}

// NewVoicePipeline creates an idle VoicePipeline. metrics may be nil.
func NewVoicePipeline(device recorder.Device, api promptapi.API, cfg config.Voice, notify *NotificationService, metrics *cfotel.Metrics, log *slog.Logger) *VoicePipeline {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &VoicePipeline{
		state:       voice.StateIdle,
		device:      device,
		api:         api,
		maxDuration: cfg.MaxDuration,
		notify:      notify,
		metrics:     metrics,
		log:         log,
	}
}

// OnTranscription sets the callback that receives transcribed text.
func (p *VoicePipeline) OnTranscription(fn func(text string)) {
	p.mu.Lock()
	p.onText = fn
	p.mu.Unlock()
}

// Subscribe registers h for voice.state_changed events.
func (p *VoicePipeline) Subscribe(h event.Handler) (cancel func()) {
	return p.obs.add(h)
}

// State returns the current pipeline state.
func (p *VoicePipeline) State() voice.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Encoding returns the encoding chosen for the current or last recording.
func (p *VoicePipeline) Encoding() voice.Encoding {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enc
}

// Toggle starts recording when idle and stops and transcribes when
// recording. It is ignored while a recording is being processed.
func (p *VoicePipeline) Toggle(ctx context.Context) error {
	p.mu.Lock()
	state, starting := p.state, p.starting
	p.mu.Unlock()

	switch {
	case starting || state == voice.StateProcessing:
		p.log.Debug("voice toggle ignored", "state", state)
		return nil
	case state == voice.StateRecording:
		_, err := p.Stop(ctx)
		return err
	default:
		return p.Start(ctx)
	}
}

// Start acquires the microphone and begins recording.
func (p *VoicePipeline) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.state != voice.StateIdle || p.starting {
		p.mu.Unlock()
		return nil
	}
	p.starting = true
	p.mu.Unlock()

	capture, enc, err := p.open(ctx)

	p.mu.Lock()
	p.starting = false
	if err != nil {
		p.mu.Unlock()
		msg := startFailed
		if errors.Is(err, recorder.ErrPermissionDenied) {
			msg = micDenied
		}
		p.log.Warn("voice recording failed to start", "error", err)
		p.notify.Error(ctx, "voice", msg, err)
		return fmt.Errorf("start recording: %w", err)
	}
	p.capture = capture
	p.enc = enc
	p.state = voice.StateRecording
	if p.maxDuration > 0 {
		p.limit = time.AfterFunc(p.maxDuration, func() { p.expire(capture) })
	}
	p.mu.Unlock()

	p.emitState(voice.StateRecording)
	p.log.Debug("voice recording started", "mime_type", enc.MimeType)
	p.notify.Info(ctx, "voice", "Recording started...")
	return nil
}

func (p *VoicePipeline) open(ctx context.Context) (recorder.Capture, voice.Encoding, error) {
	capture, err := p.device.Open(ctx)
	if err != nil {
		return nil, voice.Encoding{}, err
	}
	enc := voice.Select(p.device.Supports)
	if err := capture.Start(enc.MimeType); err != nil {
		_ = capture.Release()
		return nil, voice.Encoding{}, err
	}
	return capture, enc, nil
}

// Stop ends the recording, releases the microphone and transcribes what
// was captured. The callback set by OnTranscription receives the text
// exactly once on success.
func (p *VoicePipeline) Stop(ctx context.Context) (string, error) {
	p.mu.Lock()
	if p.state != voice.StateRecording {
		p.mu.Unlock()
		return "", nil
	}
	capture, enc, onText := p.capture, p.enc, p.onText
	p.capture = nil
	p.state = voice.StateProcessing
	if p.limit != nil {
		p.limit.Stop()
		p.limit = nil
	}
	p.mu.Unlock()
	p.emitState(voice.StateProcessing)
	defer p.setIdle()

	data, stopErr := capture.Stop()
	if err := capture.Release(); err != nil {
		p.log.Warn("release microphone", "error", err)
	}
	p.notify.Info(ctx, "voice", "Processing audio...")
	if stopErr != nil {
		p.notify.Error(ctx, "voice", transcribeFailed, stopErr)
		return "", fmt.Errorf("stop recording: %w", stopErr)
	}

	text, err := p.Transcribe(ctx, enc, data)
	if err != nil {
		return "", err
	}
	if onText != nil {
		onText(text)
	}
	return text, nil
}

// Transcribe uploads a finished recording and returns its text. Failures
// are notified and returned.
func (p *VoicePipeline) Transcribe(ctx context.Context, enc voice.Encoding, data []byte) (string, error) {
	ctx, span := cfotel.StartTranscribeSpan(ctx, enc.MimeType, len(data))
	defer span.End()

	tr, err := p.api.Transcribe(ctx, promptapi.Upload{
		Filename:    enc.Filename(),
		ContentType: enc.MimeType,
		Body:        bytes.NewReader(data),
	})
	if err == nil && !tr.OK() {
		err = errTranscriptionEmpty
	}
	p.record(ctx, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		msg := promptapi.Detail(err, transcribeFailed)
		if tr != nil && tr.Text != "" {
			msg = tr.Text
		}
		p.log.Warn("transcription failed", "file", enc.Filename(), "bytes", len(data), "error", err)
		p.notify.Error(ctx, "voice", msg, err)
		return "", fmt.Errorf("transcribe: %w", err)
	}

	p.notify.Success(ctx, "voice", "Voice transcribed successfully!")
	return tr.Text, nil
}

// Close stops an active recording without transcribing it and releases
// the microphone.
func (p *VoicePipeline) Close() error {
	p.mu.Lock()
	capture := p.capture
	p.capture = nil
	wasRecording := p.state == voice.StateRecording
	if wasRecording {
		p.state = voice.StateIdle
	}
	if p.limit != nil {
		p.limit.Stop()
		p.limit = nil
	}
	p.mu.Unlock()

	if capture == nil {
		return nil
	}
	_, stopErr := capture.Stop()
	err := errors.Join(stopErr, capture.Release())
	if wasRecording {
		p.emitState(voice.StateIdle)
	}
	return err
}

// expire stops a recording that reached the configured maximum duration.
func (p *VoicePipeline) expire(capture recorder.Capture) {
	p.mu.Lock()
	current := p.capture == capture && p.state == voice.StateRecording
	p.mu.Unlock()
	if !current {
		return
	}
	p.log.Info("voice recording reached max duration", "max_duration", p.maxDuration)
	_, _ = p.Stop(context.Background())
}

func (p *VoicePipeline) setIdle() {
	p.mu.Lock()
	p.state = voice.StateIdle
	p.mu.Unlock()
	p.emitState(voice.StateIdle)
}

func (p *VoicePipeline) emitState(s voice.State) {
	p.obs.emit(event.Event{Type: event.TypeVoiceStateChanged, VoiceState: string(s)})
}

func (p *VoicePipeline) record(ctx context.Context, err error) {
	if p.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	p.metrics.Transcriptions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
