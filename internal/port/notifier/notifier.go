// Package notifier defines the port for transient user-facing notices.
package notifier

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when a notifier is not properly configured.
var ErrNotConfigured = errors.New("notifier: not configured")

// Level is the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is the payload sent through a Notifier.
type Notification struct {
	Message string `json:"message"`
	Level   Level  `json:"level"`
	Source  string `json:"source"` // e.g. "chat.send", "voice.transcribe"
	Err     error  `json:"-"`      // underlying failure, for reporters
}

// Capabilities declares which features a notifier supports.
type Capabilities struct {
	Color        bool `json:"color"`
	ErrorsOnly   bool `json:"errors_only"`
	RemoteReport bool `json:"remote_report"`
}

// Notifier is the port interface for sending notifications.
type Notifier interface {
	// Name returns the unique identifier for this notifier (e.g. "terminal", "sentry").
	Name() string

	// Capabilities returns what this notifier supports.
	Capabilities() Capabilities

	// Send delivers a notification.
	Send(ctx context.Context, n Notification) error
}
