package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	lkmcp "github.com/Strob0t/lukthan/internal/adapter/mcp"
)

func newMCPCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the optimizer as MCP tools over stdio",
		Long: `Run a Model Context Protocol server on stdin/stdout.

Tools: optimize_prompt, list_history, get_history_session.
Resource: lukthan://settings/options.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				srv := lkmcp.NewServer(
					lkmcp.ServerConfig{Name: "lukthan", Version: version},
					lkmcp.ServerDeps{
						Optimizer: a.api,
						History:   a.session.History,
						Settings:  a.session.Settings.Get,
					},
					a.log,
				)
				a.log.Info("mcp server listening on stdio")
				return srv.ServeStdio(ctx, os.Stdin, os.Stdout)
			})
		},
	}
}
