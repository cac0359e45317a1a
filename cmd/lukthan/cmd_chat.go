package main

import (
	"context"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	cfhttp "github.com/Strob0t/lukthan/internal/adapter/http"
	"github.com/Strob0t/lukthan/internal/adapter/ws"
	"github.com/Strob0t/lukthan/internal/port/broadcast"
)

func newChatCmd(opts *globalOptions) *cobra.Command {
	var mirror string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session.

Plain lines are sent to the backend. Lines starting with / are commands;
type /help for the list. With --mirror the conversation is also served
read-only over HTTP and WebSocket for browser viewers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var mirrorAddr *string
			if cmd.Flags().Changed("mirror") {
				mirrorAddr = &mirror
			}
			cfg, err := loadConfig(opts, mirrorAddr)
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			out := cmd.OutOrStdout()

			var hub *ws.Hub
			var viewers broadcast.Broadcaster
			if cfg.Mirror.Addr != "" {
				hub = ws.NewHub(cfg.Mirror.CORSOrigin, func() any { return cfhttp.Snapshot(a.session) }, a.log)
				defer hub.Close()
				viewers = hub
			}
			a.startEvents(viewers, (&renderer{out: out}).handle)

			g, gctx := errgroup.WithContext(ctx)
			if hub != nil {
				router := cfhttp.NewRouter(
					&cfhttp.Handlers{Session: a.session, Viewers: hub},
					hub.HandleWS, cfg.Mirror, cfg.OTEL.ServiceName, a.log,
				)
				a.log.Info("mirror listening", "addr", cfg.Mirror.Addr)
				g.Go(func() error { return cfhttp.Serve(gctx, cfg.Mirror.Addr, router, a.log) })
			}
			g.Go(func() error {
				defer cancel()
				r := newREPL(a.session, readLines(gctx, cmd.InOrStdin()), out)
				return r.run(gctx)
			})
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&mirror, "mirror", "", "serve the conversation to browsers on this address (e.g. :8787)")
	return cmd
}
