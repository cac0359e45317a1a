// Package promptapi defines the port to the remote prompt-optimization backend.
package promptapi

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Strob0t/lukthan/internal/domain/agent"
	"github.com/Strob0t/lukthan/internal/domain/history"
	"github.com/Strob0t/lukthan/internal/domain/settings"
	"github.com/Strob0t/lukthan/internal/domain/voice"
	"github.com/Strob0t/lukthan/internal/domain/wizard"
)

// ChatRequest is one turn sent to the backend.
type ChatRequest struct {
	UserInput     string            `json:"user_input"`
	FileContent   string            `json:"file_content,omitempty"`
	FileType      string            `json:"file_type,omitempty"`
	Settings      settings.Settings `json:"settings"`
	GuidedContext *wizard.Context   `json:"guided_context,omitempty"`
}

// Extraction is the text the backend pulled out of an uploaded file.
type Extraction struct {
	Content  string `json:"content"`
	FileType string `json:"file_type"`
}

// Upload is a file or recording sent as multipart form part "file".
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// ResetResult is the backend's reply to a guided conversation reset.
type ResetResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// API is the port interface for the prompt backend.
type API interface {
	// Chat sends a turn to the intent-detecting chat endpoint.
	Chat(ctx context.Context, req ChatRequest) (*agent.Result, error)

	// Optimize sends a turn to the legacy optimize-only endpoint.
	Optimize(ctx context.Context, req ChatRequest) (*agent.Result, error)

	// UploadFile sends a file for server-side text extraction.
	UploadFile(ctx context.Context, f Upload) (*Extraction, error)

	// Transcribe sends a recording for speech-to-text.
	Transcribe(ctx context.Context, f Upload) (*voice.Transcription, error)

	// ListHistory returns at most limit past sessions, newest first.
	ListHistory(ctx context.Context, limit int) (*history.Page, error)

	// GetSession returns one past session with its versions.
	GetSession(ctx context.Context, id int64) (*history.Session, error)

	// DeleteSession removes one past session.
	DeleteSession(ctx context.Context, id int64) error

	// ClearHistory removes every past session.
	ClearHistory(ctx context.Context) error

	// ResetConversation discards the backend's guided conversation state.
	ResetConversation(ctx context.Context) (*ResetResult, error)
}

// Error is a non-2xx reply from the backend.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("prompt api: status %d", e.Status)
	}
	return fmt.Sprintf("prompt api: status %d: %s", e.Status, e.Detail)
}

// Temporary reports whether the failure is on the server side.
func (e *Error) Temporary() bool { return e.Status >= 500 }

// Detail returns the server-provided detail in err's chain, or fallback when
// there is none.
func Detail(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return fallback
}
