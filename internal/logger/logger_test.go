package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/Strob0t/lukthan/internal/config"
)

func TestNew(t *testing.T) {
	cfg := config.Logging{Level: "debug", Service: "test-svc"}
	l, closer := New(cfg)
	defer closer.Close()
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestNewAsync(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.Logging{Level: "debug", Service: "test-svc", Async: true}
	l, closer := NewWithWriter(cfg, &buf)
	l.Info("queued")
	closer.Close()

	if !bytes.Contains(buf.Bytes(), []byte(`"msg":"queued"`)) {
		t.Errorf("expected flushed record after Close, got %q", buf.String())
	}
}

func TestNewWithWriterServiceAttr(t *testing.T) {
	var buf bytes.Buffer
	l, closer := NewWithWriter(config.Logging{Level: "info", Service: "lukthan"}, &buf)
	defer closer.Close()

	l.Debug("hidden")
	l.Info("shown", "k", "v")

	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec); err != nil {
		t.Fatalf("expected a single JSON record, got %q: %v", buf.String(), err)
	}
	if rec["service"] != "lukthan" {
		t.Errorf("expected service attr, got %v", rec["service"])
	}
	if rec["msg"] != "shown" {
		t.Errorf("expected msg shown, got %v", rec["msg"])
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"debug", "DEBUG"},
		{"info", "INFO"},
		{"warn", "WARN"},
		{"warning", "WARN"},
		{"error", "ERROR"},
		{"unknown", "INFO"},
		{"", "INFO"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := parseLevel(tt.input).String()
			if got != tt.want {
				t.Errorf("parseLevel(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestTurnIDContext(t *testing.T) {
	ctx := context.Background()

	if got := TurnID(ctx); got != "" {
		t.Errorf("expected empty turn ID, got %q", got)
	}

	ctx = WithTurnID(ctx, "turn-123")
	if got := TurnID(ctx); got != "turn-123" {
		t.Errorf("expected turn-123, got %q", got)
	}
}

func TestFromAddsTurnID(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	From(WithTurnID(context.Background(), "t-1"), base).Info("x")
	if !bytes.Contains(buf.Bytes(), []byte(`"turn_id":"t-1"`)) {
		t.Errorf("expected turn_id attr, got %q", buf.String())
	}

	buf.Reset()
	From(context.Background(), base).Info("y")
	if bytes.Contains(buf.Bytes(), []byte("turn_id")) {
		t.Errorf("expected no turn_id attr, got %q", buf.String())
	}
}
