// Package promptapi provides an HTTP client for the prompt-optimization backend.
package promptapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	cfotel "github.com/Strob0t/lukthan/internal/adapter/otel"
	"github.com/Strob0t/lukthan/internal/config"
	"github.com/Strob0t/lukthan/internal/domain/agent"
	"github.com/Strob0t/lukthan/internal/domain/history"
	"github.com/Strob0t/lukthan/internal/domain/voice"
	"github.com/Strob0t/lukthan/internal/port/promptapi"
	"github.com/Strob0t/lukthan/internal/resilience"
)

// Client talks to the backend's /prompts, /files and /voice routes.
type Client struct {
	http              *resty.Client
	breaker           *resilience.Breaker
	timeout           time.Duration
	transcribeTimeout time.Duration
	log               *slog.Logger
}

var _ promptapi.API = (*Client)(nil)

// NewClient creates a client for cfg.BaseURL. Requests are traced through
// the otel transport; a nil logger discards client logs.
func NewClient(cfg config.API, log *slog.Logger) *Client {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Client{
		http: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetHeader("Accept", "application/json").
			SetHeader("User-Agent", cfg.UserAgent).
			SetTransport(cfotel.Transport(nil)),
		timeout:           cfg.Timeout,
		transcribeTimeout: cfg.TranscribeTimeout,
		log:               log.With("component", "promptapi"),
	}
}

// SetBreaker attaches a circuit breaker to all outgoing HTTP calls.
// Client errors (4xx) and caller cancellation do not count as failures.
func (c *Client) SetBreaker(b *resilience.Breaker) {
	b.SetClassifier(isBackendFailure)
	c.breaker = b
}

func isBackendFailure(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *promptapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	return true
}

// Chat sends a turn to POST /prompts/chat.
func (c *Client) Chat(ctx context.Context, req promptapi.ChatRequest) (*agent.Result, error) {
	var out chatResponse
	if err := c.do(ctx, c.timeout, "chat", func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(req).SetResult(&out).Post("/prompts/chat")
	}); err != nil {
		return nil, err
	}
	return out.result(), nil
}

// Optimize sends a turn to the legacy POST /prompts/optimize and remaps the
// reply onto the chat result shape.
func (c *Client) Optimize(ctx context.Context, req promptapi.ChatRequest) (*agent.Result, error) {
	var out optimizeResponse
	if err := c.do(ctx, c.timeout, "optimize", func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(req).SetResult(&out).Post("/prompts/optimize")
	}); err != nil {
		return nil, err
	}
	return out.result(), nil
}

// UploadFile sends f as multipart part "file" to POST /files/upload.
func (c *Client) UploadFile(ctx context.Context, f promptapi.Upload) (*promptapi.Extraction, error) {
	var out promptapi.Extraction
	if err := c.do(ctx, c.timeout, "upload file", func(r *resty.Request) (*resty.Response, error) {
		return r.SetMultipartField("file", f.Filename, f.ContentType, f.Body).
			SetResult(&out).
			Post("/files/upload")
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// Transcribe sends a recording as multipart part "file" to POST /voice/transcribe.
func (c *Client) Transcribe(ctx context.Context, f promptapi.Upload) (*voice.Transcription, error) {
	var out voice.Transcription
	if err := c.do(ctx, c.transcribeTimeout, "transcribe", func(r *resty.Request) (*resty.Response, error) {
		return r.SetMultipartField("file", f.Filename, f.ContentType, f.Body).
			SetResult(&out).
			Post("/voice/transcribe")
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListHistory calls GET /prompts/history?limit=N.
func (c *Client) ListHistory(ctx context.Context, limit int) (*history.Page, error) {
	if limit <= 0 {
		limit = history.DefaultLimit
	}
	var out history.Page
	if err := c.do(ctx, c.timeout, "list history", func(r *resty.Request) (*resty.Response, error) {
		return r.SetQueryParam("limit", strconv.Itoa(limit)).SetResult(&out).Get("/prompts/history")
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSession calls GET /prompts/history/{id}.
func (c *Client) GetSession(ctx context.Context, id int64) (*history.Session, error) {
	var out history.Session
	if err := c.do(ctx, c.timeout, "get session", func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("id", strconv.FormatInt(id, 10)).SetResult(&out).Get("/prompts/history/{id}")
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSession calls DELETE /prompts/history/{id}.
func (c *Client) DeleteSession(ctx context.Context, id int64) error {
	return c.do(ctx, c.timeout, "delete session", func(r *resty.Request) (*resty.Response, error) {
		return r.SetPathParam("id", strconv.FormatInt(id, 10)).Delete("/prompts/history/{id}")
	})
}

// ClearHistory calls DELETE /prompts/history.
func (c *Client) ClearHistory(ctx context.Context) error {
	return c.do(ctx, c.timeout, "clear history", func(r *resty.Request) (*resty.Response, error) {
		return r.Delete("/prompts/history")
	})
}

// ResetConversation calls POST /prompts/reset-conversation.
func (c *Client) ResetConversation(ctx context.Context) (*promptapi.ResetResult, error) {
	var out promptapi.ResetResult
	if err := c.do(ctx, c.timeout, "reset conversation", func(r *resty.Request) (*resty.Response, error) {
		return r.SetResult(&out).Post("/prompts/reset-conversation")
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// do runs one request under the breaker with a per-call deadline and turns
// non-2xx replies into *promptapi.Error.
func (c *Client) do(ctx context.Context, timeout time.Duration, op string, send func(*resty.Request) (*resty.Response, error)) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	call := func() error {
		start := time.Now()
		resp, err := send(c.http.R().SetContext(ctx))
		if err != nil {
			return fmt.Errorf("http request: %w", err)
		}
		c.log.Debug("backend call", "op", op, "status", resp.StatusCode(), "duration", time.Since(start))
		if resp.IsError() {
			return &promptapi.Error{Status: resp.StatusCode(), Detail: parseDetail(resp.Body())}
		}
		return nil
	}

	var err error
	if c.breaker != nil {
		err = c.breaker.Execute(call)
	} else {
		err = call()
	}
	if err != nil {
		c.log.Warn("backend call failed", "op", op, "error", err)
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
