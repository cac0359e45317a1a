package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/Strob0t/lukthan/internal/domain"
	"github.com/Strob0t/lukthan/internal/domain/settings"
	"github.com/Strob0t/lukthan/internal/domain/voice"
	"github.com/Strob0t/lukthan/internal/service"
)

const replHelp = `Type a message and press Enter to send it.

  /attach <path>     attach a file to the next message
  /detach            drop the pending attachment
  /voice             start or stop voice input
  /regen             regenerate the last response
  /set key=value     change a setting (domain, mode, target_ai, expertise_level, language)
  /settings          show current settings
  /wizard            guided prompt builder
  /history [n]       list recent optimizations
  /reset             reset the guided conversation on the server
  /clear             start a new chat
  /help              show this help
  /quit              exit`

// slashCommand is one parsed "/name arg" line.
type slashCommand struct {
	name string
	arg  string
}

// parseSlash splits a slash command line. ok is false for plain messages.
func parseSlash(line string) (cmd slashCommand, ok bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") || strings.HasPrefix(line, "//") {
		return slashCommand{}, false
	}
	name, arg, _ := strings.Cut(line[1:], " ")
	return slashCommand{name: strings.ToLower(name), arg: strings.TrimSpace(arg)}, true
}

// parseAssignment parses "key=value" into a settings patch.
func parseAssignment(s string) (settings.Patch, error) {
	var p settings.Patch
	key, value, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(key) == "" {
		return p, fmt.Errorf("expected key=value, got %q", s)
	}
	if err := p.Set(strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
		return p, err
	}
	return p, nil
}

// readLines feeds lines from r until it is exhausted or ctx is done.
func readLines(ctx context.Context, r io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64<<10), 1<<20)
		for sc.Scan() {
			select {
			case ch <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

// repl is the interactive chat loop.
type repl struct {
	s   *service.Session
	in  <-chan string
	out io.Writer

	mu    sync.Mutex
	draft string // transcribed speech waiting to be sent
}

func newREPL(s *service.Session, in <-chan string, out io.Writer) *repl {
	r := &repl{s: s, in: in, out: out}
	if s.Voice != nil {
		s.Voice.OnTranscription(func(text string) {
			r.mu.Lock()
			r.draft = voice.AppendTo(r.draft, text)
			draft := r.draft
			r.mu.Unlock()
			fmt.Fprintf(r.out, "draft: %s\n(press Enter to send it, or type to continue)\n", draft)
		})
	}
	return r
}

func (r *repl) run(ctx context.Context) error {
	fmt.Fprintln(r.out, "LUKTHAN chat. /help lists commands.")
	for {
		fmt.Fprint(r.out, "> ")
		var line string
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-r.in:
			if !ok {
				return nil
			}
			line = l
		}
		if quit := r.dispatch(ctx, line); quit {
			return nil
		}
	}
}

// dispatch handles one input line and reports whether the user quit.
func (r *repl) dispatch(ctx context.Context, line string) bool {
	cmd, isSlash := parseSlash(line)
	if !isSlash {
		r.send(ctx, line)
		return false
	}

	switch cmd.name {
	case "quit", "exit", "q":
		return true
	case "help", "?":
		fmt.Fprintln(r.out, replHelp)
	case "attach":
		if cmd.arg == "" {
			fmt.Fprintln(r.out, "usage: /attach <path>")
			return false
		}
		_, _ = r.s.Attachments.UploadPath(ctx, cmd.arg)
	case "detach":
		if err := r.s.Attachments.Remove(); errors.Is(err, domain.ErrNoAttachment) {
			fmt.Fprintln(r.out, "No attachment to remove.")
		}
	case "voice":
		if r.s.Voice == nil {
			fmt.Fprintln(r.out, "Voice input is not available.")
			return false
		}
		_ = r.s.Voice.Toggle(ctx)
	case "regen":
		if _, err := r.s.RegenerateLast(ctx); err != nil {
			r.explain(err)
		}
	case "set":
		p, err := parseAssignment(cmd.arg)
		if err != nil {
			fmt.Fprintln(r.out, err)
			return false
		}
		next, err := r.s.Settings.Update(ctx, p)
		if err != nil {
			fmt.Fprintln(r.out, err)
			return false
		}
		printSettings(r.out, next)
	case "settings":
		printSettings(r.out, r.s.Settings.Get())
	case "wizard":
		if err := runWizard(ctx, r.s, r.in, r.out); err != nil {
			r.explain(err)
		}
	case "history":
		limit := 10
		if cmd.arg != "" {
			n, err := strconv.Atoi(cmd.arg)
			if err != nil || n < 1 {
				fmt.Fprintln(r.out, "usage: /history [n]")
				return false
			}
			limit = n
		}
		if page, err := r.s.History.List(ctx, limit); err == nil {
			printHistory(r.out, page)
		}
	case "reset":
		_ = r.s.ResetConversation(ctx)
	case "clear", "new":
		r.s.NewChat()
		r.setDraft("")
	default:
		fmt.Fprintf(r.out, "Unknown command /%s. Type /help for a list.\n", cmd.name)
	}
	return false
}

func (r *repl) send(ctx context.Context, line string) {
	r.mu.Lock()
	text := voice.AppendTo(r.draft, strings.TrimSpace(line))
	r.mu.Unlock()
	if strings.TrimSpace(text) == "" {
		return
	}
	if _, err := r.s.Send(ctx, text); err != nil {
		r.explain(err)
		if errors.Is(err, domain.ErrBusy) {
			return
		}
	}
	r.setDraft("")
}

func (r *repl) setDraft(s string) {
	r.mu.Lock()
	r.draft = s
	r.mu.Unlock()
}

// explain prints errors that were not already shown as notices.
func (r *repl) explain(err error) {
	switch {
	case errors.Is(err, domain.ErrBusy):
		fmt.Fprintln(r.out, "Still waiting for the previous response.")
	case errors.Is(err, domain.ErrNotFound):
		fmt.Fprintln(r.out, "Nothing to regenerate yet.")
	case errors.Is(err, domain.ErrInvalidState):
		fmt.Fprintln(r.out, err)
	}
}

func printSettings(w io.Writer, s settings.Settings) {
	fmt.Fprintf(w, "domain=%s mode=%s target_ai=%q expertise_level=%s language=%s\n",
		s.Domain, s.Mode, s.TargetAI, s.ExpertiseLevel, s.Language)
}
