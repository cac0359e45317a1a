package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	cfotel "github.com/Strob0t/lukthan/internal/adapter/otel"
	"github.com/Strob0t/lukthan/internal/config"
	"github.com/Strob0t/lukthan/internal/domain"
	"github.com/Strob0t/lukthan/internal/domain/event"
	"github.com/Strob0t/lukthan/internal/domain/message"
	"github.com/Strob0t/lukthan/internal/port/promptapi"
)

const uploadFailed = "Failed to process file."

// AcceptedExtensions lists the file types the backend extracts text from.
var AcceptedExtensions = []string{
	".pdf", ".doc", ".docx", ".txt", ".md",
	".py", ".js", ".ts", ".tsx", ".jsx", ".java", ".c", ".cpp",
	".css", ".html", ".json", ".xml",
	".png", ".jpg", ".jpeg",
}

// Accepted reports whether name has an extension the backend extracts.
func Accepted(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, a := range AcceptedExtensions {
		if ext == a {
			return true
		}
	}
	return false
}

// AttachmentPipeline uploads files for extraction and holds the single
// attachment waiting to go out with the next turn.
type AttachmentPipeline struct {
	mu      sync.Mutex
	pending *message.Attachment
	gen     uint64 // bumped on every new pending attachment

	api      promptapi.API
	maxBytes int64
	notify   *NotificationService
	metrics  *cfotel.Metrics
	obs      observers
	log      *slog.Logger
}

// NewAttachmentPipeline creates an AttachmentPipeline. metrics may be nil.
func NewAttachmentPipeline(api promptapi.API, cfg config.Attachments, notify *NotificationService, metrics *cfotel.Metrics, log *slog.Logger) *AttachmentPipeline {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &AttachmentPipeline{api: api, maxBytes: cfg.MaxBytes, notify: notify, metrics: metrics, log: log}
}

// Subscribe registers h for attachment.changed events.
func (p *AttachmentPipeline) Subscribe(h event.Handler) (cancel func()) {
	return p.obs.add(h)
}

// UploadPath opens a local file and uploads it.
func (p *AttachmentPipeline) UploadPath(ctx context.Context, path string) (*message.Attachment, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path is chosen by the user
	if err != nil {
		p.notify.Error(ctx, "attachment", uploadFailed, err)
		return nil, fmt.Errorf("open attachment: %w", err)
	}
	defer func() { _ = f.Close() }()
	return p.Upload(ctx, filepath.Base(path), f)
}

// Upload sends the file for extraction and stores the result as the
// pending attachment, replacing any previous one.
func (p *AttachmentPipeline) Upload(ctx context.Context, name string, r io.Reader) (*message.Attachment, error) {
	if !Accepted(name) {
		err := fmt.Errorf("%s: %w", name, domain.ErrUnsupportedFile)
		p.notify.Error(ctx, "attachment", fmt.Sprintf("File type of %q is not supported.", name), err)
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(r, p.maxBytes+1))
	if err != nil {
		p.notify.Error(ctx, "attachment", uploadFailed, err)
		return nil, fmt.Errorf("read attachment: %w", err)
	}
	if int64(len(data)) > p.maxBytes {
		err := fmt.Errorf("%s exceeds %d bytes: %w", name, p.maxBytes, domain.ErrTooLarge)
		p.notify.Error(ctx, "attachment", fmt.Sprintf("File %q is too large.", name), err)
		return nil, err
	}

	mimeType := mimetype.Detect(data).String()
	ctx, span := cfotel.StartUploadSpan(ctx, name, mimeType)
	defer span.End()

	ext, err := p.api.UploadFile(ctx, promptapi.Upload{
		Filename:    name,
		ContentType: mimeType,
		Body:        bytes.NewReader(data),
	})
	p.record(ctx, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.log.Warn("file upload failed", "file", name, "mime_type", mimeType, "error", err)
		p.notify.Error(ctx, "attachment", promptapi.Detail(err, uploadFailed), err)
		return nil, fmt.Errorf("upload %s: %w", name, err)
	}

	att := &message.Attachment{Name: name, Content: ext.Content, FileType: ext.FileType, MimeType: mimeType}
	p.set(att)
	p.log.Info("file processed", "file", name, "mime_type", mimeType, "file_type", ext.FileType, "chars", len(ext.Content))
	p.notify.Success(ctx, "attachment", fmt.Sprintf("File \"%s\" processed successfully!", name))

	out := *att
	return &out, nil
}

// Pending returns a copy of the attachment waiting to be sent, or nil.
func (p *AttachmentPipeline) Pending() *message.Attachment {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending == nil {
		return nil
	}
	a := *p.pending
	return &a
}

// claim returns a copy of the pending attachment and a token identifying it.
func (p *AttachmentPipeline) claim() (*message.Attachment, uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending == nil {
		return nil, p.gen
	}
	a := *p.pending
	return &a, p.gen
}

// takeIf clears the pending attachment only when it is still the one
// identified by token. It reports whether anything was cleared.
func (p *AttachmentPipeline) takeIf(token uint64) bool {
	p.mu.Lock()
	if p.pending == nil || p.gen != token {
		p.mu.Unlock()
		return false
	}
	p.pending = nil
	p.mu.Unlock()

	p.obs.emit(event.Event{Type: event.TypeAttachmentChanged})
	return true
}

// Remove discards the pending attachment. It returns domain.ErrNoAttachment
// when there is none.
func (p *AttachmentPipeline) Remove() error {
	if p.Take() == nil {
		return domain.ErrNoAttachment
	}
	return nil
}

// Take returns the pending attachment and clears it.
func (p *AttachmentPipeline) Take() *message.Attachment {
	p.mu.Lock()
	a := p.pending
	p.pending = nil
	p.mu.Unlock()

	if a != nil {
		p.obs.emit(event.Event{Type: event.TypeAttachmentChanged})
	}
	return a
}

func (p *AttachmentPipeline) set(a *message.Attachment) {
	p.mu.Lock()
	p.gen++
	p.pending = a
	snap := *a
	p.mu.Unlock()

	p.obs.emit(event.Event{Type: event.TypeAttachmentChanged, Attachment: &snap})
}

func (p *AttachmentPipeline) record(ctx context.Context, err error) {
	if p.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	p.metrics.Uploads.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
