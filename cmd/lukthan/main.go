// Command lukthan is a terminal client for the LUKTHAN prompt optimizer.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	apiURL     string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:   "lukthan",
		Short: "LUKTHAN - turn rough ideas into optimized prompts",
		Long: `lukthan is the command-line client for the LUKTHAN prompt optimizer.

It sends your messages to the backend, which detects whether you want a
conversation, an answer or an optimized prompt, and prints the result.

Examples:
  lukthan chat                        # interactive session
  lukthan chat --mirror :8787         # ...viewable in a browser
  lukthan send "write a REST API in Go" --file notes.md
  lukthan history list --limit 5
  lukthan settings options`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "lukthan.yaml", "YAML configuration file")
	root.PersistentFlags().StringVar(&opts.apiURL, "api", "", "backend base URL (overrides config)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newChatCmd(opts),
		newSendCmd(opts),
		newOptimizeCmd(opts),
		newUploadCmd(opts),
		newTranscribeCmd(opts),
		newVoiceCmd(opts),
		newHistoryCmd(opts),
		newResetCmd(opts),
		newWizardCmd(opts),
		newSettingsCmd(opts),
		newMCPCmd(opts),
	)
	return root
}
