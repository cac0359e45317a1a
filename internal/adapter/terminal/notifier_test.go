package terminal

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/Strob0t/lukthan/internal/port/notifier"
)

var _ notifier.Notifier = (*Notifier)(nil)

func TestSendPlain(t *testing.T) {
	tests := []struct {
		level notifier.Level
		want  string
	}{
		{notifier.LevelSuccess, "[ok] File \"a.txt\" processed successfully!\n"},
		{notifier.LevelInfo, "[info] File \"a.txt\" processed successfully!\n"},
		{notifier.LevelError, "[error] File \"a.txt\" processed successfully!\n"},
	}
	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			var buf bytes.Buffer
			n := NewNotifier(&buf)
			err := n.Send(context.Background(), notifier.Notification{
				Message: `File "a.txt" processed successfully!`,
				Level:   tt.level,
			})
			if err != nil {
				t.Fatal(err)
			}
			if buf.String() != tt.want {
				t.Errorf("got %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestBufferIsNotATerminal(t *testing.T) {
	n := NewNotifier(&bytes.Buffer{})
	if n.Capabilities().Color {
		t.Error("color enabled for a non-terminal writer")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestSendWriteError(t *testing.T) {
	n := NewNotifier(failingWriter{})
	if err := n.Send(context.Background(), notifier.Notification{Message: "x"}); err == nil {
		t.Fatal("expected write error")
	}
}

func TestRegistered(t *testing.T) {
	n, err := notifier.New(providerName, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n.Name() != "terminal" {
		t.Errorf("name = %q", n.Name())
	}
}
