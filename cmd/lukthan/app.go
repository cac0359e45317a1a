package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Strob0t/lukthan/internal/adapter/execrec"
	cfnats "github.com/Strob0t/lukthan/internal/adapter/nats"
	"github.com/Strob0t/lukthan/internal/adapter/natskv"
	cfotel "github.com/Strob0t/lukthan/internal/adapter/otel"
	promptclient "github.com/Strob0t/lukthan/internal/adapter/promptapi"
	"github.com/Strob0t/lukthan/internal/adapter/ristretto"
	lksentry "github.com/Strob0t/lukthan/internal/adapter/sentry"
	_ "github.com/Strob0t/lukthan/internal/adapter/terminal" // registers the terminal notifier
	"github.com/Strob0t/lukthan/internal/adapter/tiered"
	"github.com/Strob0t/lukthan/internal/config"
	"github.com/Strob0t/lukthan/internal/domain/event"
	"github.com/Strob0t/lukthan/internal/logger"
	"github.com/Strob0t/lukthan/internal/port/broadcast"
	"github.com/Strob0t/lukthan/internal/port/cache"
	"github.com/Strob0t/lukthan/internal/port/messagequeue"
	"github.com/Strob0t/lukthan/internal/port/notifier"
	"github.com/Strob0t/lukthan/internal/resilience"
	"github.com/Strob0t/lukthan/internal/service"
)

// app is one fully wired session and the infrastructure behind it.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	api     *promptclient.Client
	session *service.Session
	queue   *cfnats.Queue
	fanout  *service.EventFanout

	closers []func()
}

// loadConfig reads the configuration and applies the global flags.
func loadConfig(opts *globalOptions, mirrorAddr *string) (*config.Config, error) {
	cfg, err := config.LoadFrom(opts.configPath)
	if err != nil {
		return nil, err
	}
	flags := config.Flags{MirrorAddr: mirrorAddr}
	if opts.apiURL != "" {
		flags.APIBaseURL = &opts.apiURL
	}
	if opts.verbose {
		level := "debug"
		flags.LogLevel = &level
	}
	if err := flags.Apply(cfg); err != nil {
		return nil, fmt.Errorf("config flags: %w", err)
	}
	return cfg, nil
}

// newApp wires a session from cfg. Optional infrastructure (NATS, OTLP
// export, Sentry) that fails to start is logged and skipped.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}

	var logOut io.Writer = os.Stderr
	if cfg.Logging.File != "" {
		f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		logOut = f
		a.onClose(func() { _ = f.Close() })
	}
	log, closer := logger.NewWithWriter(cfg.Logging, logOut)
	a.onClose(closer.Close)
	a.log = log

	flush, err := lksentry.Init(cfg.Sentry, version)
	if err != nil {
		log.Warn("sentry initialization failed", "error", err)
	}
	a.onClose(flush)

	shutdown, err := cfotel.Setup(ctx, cfg.OTEL, log)
	if err != nil {
		log.Warn("otel setup failed, continuing without export", "error", err)
	} else {
		a.onClose(func() {
			if err := shutdown(context.Background()); err != nil {
				log.Warn("otel shutdown", "error", err)
			}
		})
	}
	metrics, err := cfotel.NewMetrics()
	if err != nil {
		log.Warn("otel metrics unavailable", "error", err)
		metrics = nil
	}

	a.api = promptclient.NewClient(cfg.API, log)
	a.api.SetBreaker(resilience.NewBreaker(cfg.Breaker.MaxFailures, cfg.Breaker.Timeout))

	historyCache, err := a.openCache(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	notifiers, err := a.notifiers()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.session = service.NewSession(cfg, service.SessionDeps{
		API:       a.api,
		Device:    execrec.NewDevice(cfg.Voice.Commands, log),
		Cache:     historyCache,
		Notifiers: notifiers,
		Metrics:   metrics,
		Logger:    log,
	})
	a.onClose(func() {
		if err := a.session.Close(); err != nil {
			log.Warn("close session", "error", err)
		}
	})
	return a, nil
}

// openCache builds the history cache: ristretto alone, or ristretto in
// front of a NATS KV bucket when NATS is configured.
func (a *app) openCache(ctx context.Context) (cache.Cache, error) {
	l1, err := ristretto.New(a.cfg.Cache.L1MaxSizeMB)
	if err != nil {
		return nil, fmt.Errorf("history cache: %w", err)
	}
	a.onClose(l1.Close)

	if a.cfg.NATS.URL == "" {
		return l1, nil
	}
	q, err := cfnats.Connect(ctx, a.cfg.NATS.URL, a.log)
	if err != nil {
		a.log.Warn("nats unavailable, events and shared cache disabled", "url", a.cfg.NATS.URL, "error", err)
		return l1, nil
	}
	a.queue = q
	a.onClose(func() {
		if err := q.Drain(); err != nil {
			a.log.Warn("nats drain", "error", err)
		}
	})

	l2, err := natskv.Open(ctx, q.JetStream(), a.cfg.Cache.L2Bucket, a.cfg.Cache.HistoryTTL)
	if err != nil {
		a.log.Warn("nats kv unavailable, using local cache only", "bucket", a.cfg.Cache.L2Bucket, "error", err)
		return l1, nil
	}
	return tiered.New(l1, l2, a.cfg.Cache.HistoryTTL, a.log), nil
}

func (a *app) notifiers() ([]notifier.Notifier, error) {
	wanted := []notifier.Config{{Provider: "terminal"}}
	if a.cfg.Sentry.DSN != "" {
		// The client installed by lksentry.Init is reused.
		wanted = append(wanted, notifier.Config{Provider: "sentry"})
	}
	return notifier.NewAll(wanted...)
}

// startEvents forwards session events to hub (may be nil), NATS when
// connected, and the given local sinks.
func (a *app) startEvents(hub broadcast.Broadcaster, sinks ...event.Handler) {
	var q messagequeue.Queue
	if a.queue != nil {
		q = a.queue
	}
	a.fanout = service.NewEventFanout(hub, q, a.log)
	for _, s := range sinks {
		a.fanout.AddSink(s)
	}
	a.fanout.Attach(a.session.Sources()...)
	a.onClose(a.fanout.Close)
}

func (a *app) onClose(fn func()) { a.closers = append(a.closers, fn) }

// Close releases everything in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
