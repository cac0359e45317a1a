// Package terminal implements a notifier.Notifier that prints notices to a
// terminal, colored when the output is a TTY.
package terminal

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"

	"github.com/Strob0t/lukthan/internal/port/notifier"
)

const providerName = "terminal"

const (
	ansiReset = "\033[0m"
	ansiGreen = "\033[32m"
	ansiCyan  = "\033[36m"
	ansiRed   = "\033[31m"
)

// Notifier writes one line per notice.
type Notifier struct {
	mu    sync.Mutex
	out   io.Writer
	color bool
}

// NewNotifier creates a terminal notifier writing to out. Color is enabled
// when out is a terminal and NO_COLOR is unset.
func NewNotifier(out io.Writer) *Notifier {
	if out == nil {
		out = os.Stderr
	}
	return &Notifier{out: out, color: IsTerminal(out) && os.Getenv("NO_COLOR") == ""}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits in int
}

func (n *Notifier) Name() string { return providerName }

func (n *Notifier) Capabilities() notifier.Capabilities {
	return notifier.Capabilities{Color: n.color}
}

func (n *Notifier) Send(_ context.Context, notification notifier.Notification) error {
	tag, color := levelTag(notification.Level)
	line := fmt.Sprintf("%s %s\n", tag, notification.Message)
	if n.color {
		line = color + tag + ansiReset + " " + notification.Message + "\n"
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if _, err := io.WriteString(n.out, line); err != nil {
		return fmt.Errorf("terminal write: %w", err)
	}
	return nil
}

func levelTag(level notifier.Level) (tag, color string) {
	switch level {
	case notifier.LevelSuccess:
		return "[ok]", ansiGreen
	case notifier.LevelError:
		return "[error]", ansiRed
	default:
		return "[info]", ansiCyan
	}
}
