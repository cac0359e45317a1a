package sentry

import (
	sentrygo "github.com/getsentry/sentry-go"

	"github.com/Strob0t/lukthan/internal/port/notifier"
)

func init() {
	notifier.Register(providerName, func(config map[string]string) (notifier.Notifier, error) {
		if config["dsn"] == "" {
			return NewNotifier(nil), nil
		}
		client, err := sentrygo.NewClient(sentrygo.ClientOptions{
			Dsn:         config["dsn"],
			Environment: config["environment"],
		})
		if err != nil {
			return nil, err
		}
		return NewNotifier(sentrygo.NewHub(client, sentrygo.NewScope())), nil
	})
}
