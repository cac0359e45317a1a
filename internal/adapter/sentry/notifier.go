// Package sentry reports error notices to Sentry.
package sentry

import (
	"context"
	"errors"
	"time"

	sentrygo "github.com/getsentry/sentry-go"

	"github.com/Strob0t/lukthan/internal/config"
	"github.com/Strob0t/lukthan/internal/port/notifier"
)

const providerName = "sentry"

const flushTimeout = 2 * time.Second

// Init configures the global Sentry client. It returns a flush function to
// defer before exit. An empty DSN disables reporting and is not an error.
func Init(cfg config.Sentry, release string) (flush func(), err error) {
	if cfg.DSN == "" {
		return func() {}, nil
	}
	err = sentrygo.Init(sentrygo.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          release,
		AttachStacktrace: true,
	})
	if err != nil {
		return func() {}, err
	}
	return func() { sentrygo.Flush(flushTimeout) }, nil
}

// Notifier captures error notices on a Sentry hub.
type Notifier struct {
	hub *sentrygo.Hub
}

// NewNotifier creates a notifier reporting through hub. A nil hub uses the
// global one.
func NewNotifier(hub *sentrygo.Hub) *Notifier {
	if hub == nil {
		hub = sentrygo.CurrentHub()
	}
	return &Notifier{hub: hub}
}

func (n *Notifier) Name() string { return providerName }

func (n *Notifier) Capabilities() notifier.Capabilities {
	return notifier.Capabilities{ErrorsOnly: true, RemoteReport: true}
}

func (n *Notifier) Send(ctx context.Context, notification notifier.Notification) error {
	if n.hub.Client() == nil {
		return notifier.ErrNotConfigured
	}
	hub := sentrygo.GetHubFromContext(ctx)
	if hub == nil {
		hub = n.hub
	}

	hub.WithScope(func(scope *sentrygo.Scope) {
		scope.SetLevel(sentryLevel(notification.Level))
		scope.SetTag("source", notification.Source)
		scope.SetExtra("notice", notification.Message)

		err := notification.Err
		if err == nil {
			err = errors.New(notification.Message)
		}
		hub.CaptureException(err)
	})
	return nil
}

func sentryLevel(level notifier.Level) sentrygo.Level {
	switch level {
	case notifier.LevelError:
		return sentrygo.LevelError
	case notifier.LevelSuccess, notifier.LevelInfo:
		return sentrygo.LevelInfo
	default:
		return sentrygo.LevelWarning
	}
}
