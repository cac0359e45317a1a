// Package service contains the session's state containers and the
// operations that drive them.
package service

import (
	"context"
	"log/slog"

	"github.com/Strob0t/lukthan/internal/port/notifier"
)

// NotificationService dispatches user-facing notices to all registered notifiers.
type NotificationService struct {
	notifiers []notifier.Notifier
	log       *slog.Logger
}

// NewNotificationService creates a NotificationService with the given notifiers.
func NewNotificationService(log *slog.Logger, notifiers ...notifier.Notifier) *NotificationService {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &NotificationService{notifiers: notifiers, log: log}
}

// Notify sends n to every notifier that accepts its level.
// Errors are logged but do not interrupt delivery to other notifiers.
func (s *NotificationService) Notify(ctx context.Context, n notifier.Notification) {
	if s == nil {
		return
	}
	for _, provider := range s.notifiers {
		if provider.Capabilities().ErrorsOnly && n.Level != notifier.LevelError {
			continue
		}
		if err := provider.Send(ctx, n); err != nil {
			s.log.Warn("notification send failed",
				"provider", provider.Name(),
				"source", n.Source,
				"error", err,
			)
			continue
		}
		s.log.Debug("notification sent", "provider", provider.Name(), "source", n.Source)
	}
}

// Success sends a success notice.
func (s *NotificationService) Success(ctx context.Context, source, msg string) {
	s.Notify(ctx, notifier.Notification{Message: msg, Level: notifier.LevelSuccess, Source: source})
}

// Info sends an informational notice.
func (s *NotificationService) Info(ctx context.Context, source, msg string) {
	s.Notify(ctx, notifier.Notification{Message: msg, Level: notifier.LevelInfo, Source: source})
}

// Error sends an error notice carrying the underlying failure for reporters.
func (s *NotificationService) Error(ctx context.Context, source, msg string, err error) {
	s.Notify(ctx, notifier.Notification{Message: msg, Level: notifier.LevelError, Source: source, Err: err})
}

// NotifierCount returns the number of registered notifiers.
func (s *NotificationService) NotifierCount() int {
	return len(s.notifiers)
}
