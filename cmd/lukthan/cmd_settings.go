package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Strob0t/lukthan/internal/domain/settings"
	"github.com/Strob0t/lukthan/internal/service"
)

func newSettingsCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect session settings",
		Long: `Inspect the settings new sessions start with.

Defaults come from the configuration file and the LUKTHAN_DOMAIN,
LUKTHAN_MODE, LUKTHAN_TARGET_AI, LUKTHAN_EXPERTISE_LEVEL and
LUKTHAN_LANGUAGE variables.
Inside a chat session, change them with /set key=value.`,
	}
	cmd.AddCommand(newSettingsShowCmd(opts), newSettingsOptionsCmd())
	return cmd
}

func newSettingsShowCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the configured settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts, nil)
			if err != nil {
				return err
			}
			printSettings(cmd.OutOrStdout(), service.InitialSettings(cfg.Settings))
			return nil
		},
	}
}

func newSettingsOptionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "List every allowed settings value as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(settings.AllOptions()); err != nil {
				return fmt.Errorf("encode options: %w", err)
			}
			return nil
		},
	}
}

func newWizardCmd(opts *globalOptions) *cobra.Command {
	var domainName string
	cmd := &cobra.Command{
		Use:   "wizard",
		Short: "Build a prompt step by step",
		Long: `Answer a few questions and describe your requirements; the wizard
turns the answers into a prompt and sends it with its guided context.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if domainName != "" {
					if _, err := a.session.Settings.Update(ctx, settings.Patch{Domain: &domainName}); err != nil {
						return err
					}
				}
				out := cmd.OutOrStdout()
				a.startEvents(nil, (&renderer{out: out}).handle)
				return runWizard(ctx, a.session, readLines(ctx, cmd.InOrStdin()), out)
			})
		},
	}
	cmd.Flags().StringVarP(&domainName, "domain", "d", "", "questionnaire domain (defaults to the configured one)")
	return cmd
}
