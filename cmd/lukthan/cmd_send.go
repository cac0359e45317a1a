package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Strob0t/lukthan/internal/domain/agent"
	"github.com/Strob0t/lukthan/internal/domain/voice"
	"github.com/Strob0t/lukthan/internal/service"
)

// withApp loads configuration, wires an app and runs fn with it.
func withApp(cmd *cobra.Command, opts *globalOptions, fn func(ctx context.Context, a *app) error) error {
	cfg, err := loadConfig(opts, nil)
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(cmd.Context(), a)
}

type turnCmd struct {
	use, short, long string
	send             func(*service.Session) func(context.Context, string) (*agent.Result, error)
}

func newTurnCmd(opts *globalOptions, t turnCmd) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   t.use,
		Short: t.short,
		Long:  t.long,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if file != "" {
					if _, err := a.session.Attachments.UploadPath(ctx, file); err != nil {
						return err
					}
				}
				res, err := t.send(a.session)(ctx, strings.Join(args, " "))
				if err != nil {
					return err
				}
				printResult(cmd.OutOrStdout(), res)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "attach a document to the message")
	return cmd
}

func newSendCmd(opts *globalOptions) *cobra.Command {
	return newTurnCmd(opts, turnCmd{
		use:   "send <message>",
		short: "Send one message and print the reply",
		long: `Send one message to the chat endpoint and print the reply.

The backend decides whether the message is conversation, a question or a
request for an optimized prompt. Use --file to include a document.`,
		send: func(s *service.Session) func(context.Context, string) (*agent.Result, error) { return s.Send },
	})
}

func newOptimizeCmd(opts *globalOptions) *cobra.Command {
	return newTurnCmd(opts, turnCmd{
		use:   "optimize <prompt>",
		short: "Optimize a prompt through the legacy endpoint",
		long:  "Always optimize the input, skipping intent detection.",
		send:  func(s *service.Session) func(context.Context, string) (*agent.Result, error) { return s.Optimize },
	})
}

func newUploadCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <path>",
		Short: "Extract the text of a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				att, err := a.session.Attachments.UploadPath(ctx, args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s (%s, %s)\n\n", att.Name, att.FileType, att.MimeType)
				fmt.Fprintln(out, att.Content)
				return nil
			})
		},
	}
}

func newTranscribeCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Transcribe a recorded audio file",
		Long:  "Transcribe a .webm, .ogg, .mp4 or .wav recording.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(args[0])), ".")
			enc, ok := voice.ForExtension(ext)
			if !ok {
				return fmt.Errorf("unsupported audio format %q", filepath.Ext(args[0]))
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read recording: %w", err)
			}
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				if a.session.Voice == nil {
					return fmt.Errorf("voice input is not available")
				}
				text, err := a.session.Voice.Transcribe(ctx, enc, data)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			})
		},
	}
}

func newVoiceCmd(opts *globalOptions) *cobra.Command {
	var seconds int
	var send bool
	cmd := &cobra.Command{
		Use:   "voice",
		Short: "Record from the microphone and print the transcription",
		Long: `Record from the microphone using the configured recorder command.

Recording stops after --seconds, or when Enter is pressed if --seconds is 0.
With --send the transcription is sent as a chat message.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				p := a.session.Voice
				if p == nil {
					return fmt.Errorf("voice input is not available")
				}
				// A recording that hits the configured maximum is stopped and
				// transcribed in the background.
				got := make(chan string, 1)
				p.OnTranscription(func(text string) {
					select {
					case got <- text:
					default:
					}
				})
				if err := p.Start(ctx); err != nil {
					return err
				}
				if seconds > 0 {
					select {
					case <-ctx.Done():
					case <-time.After(time.Duration(seconds) * time.Second):
					}
				} else {
					fmt.Fprintln(cmd.ErrOrStderr(), "Recording... press Enter to stop.")
					waitForEnter(ctx, cmd.InOrStdin())
				}
				text, err := p.Stop(context.WithoutCancel(ctx))
				if err != nil {
					return err
				}
				if text == "" {
					text = awaitTranscription(p, got)
				}
				if text == "" {
					return fmt.Errorf("no transcription")
				}
				out := cmd.OutOrStdout()
				if !send {
					fmt.Fprintln(out, text)
					return nil
				}
				res, err := a.session.Send(ctx, text)
				if err != nil {
					return err
				}
				printResult(out, res)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&seconds, "seconds", 0, "stop recording after this many seconds")
	cmd.Flags().BoolVar(&send, "send", false, "send the transcription as a chat message")
	return cmd
}

// awaitTranscription waits for a background stop to finish processing.
func awaitTranscription(p *service.VoicePipeline, got <-chan string) string {
	for p.State() != voice.StateIdle {
		time.Sleep(50 * time.Millisecond)
	}
	select {
	case text := <-got:
		return text
	default:
		return ""
	}
}

func waitForEnter(ctx context.Context, r io.Reader) {
	done := make(chan struct{})
	go func() {
		_, _ = bufio.NewReader(r).ReadString('\n')
		close(done)
	}()
	select {
	case <-ctx.Done():
	case <-done:
	}
}

func newResetCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset the guided conversation on the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(ctx context.Context, a *app) error {
				return a.session.ResetConversation(ctx)
			})
		},
	}
}
