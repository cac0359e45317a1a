// Package execrec captures audio by running an external recorder such as
// ffmpeg or arecord. Each configured command receives the output file path
// as its last argument and must stop cleanly on SIGINT.
package execrec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/Strob0t/lukthan/internal/port/recorder"
)

const (
	defaultStartGrace = 300 * time.Millisecond
	stopTimeout       = 3 * time.Second
)

var permissionMarkers = []string{"permission denied", "access denied", "not permitted"}

// Device runs one capture command per MIME type.
type Device struct {
	commands   map[string][]string
	lookPath   func(string) (string, error)
	startGrace time.Duration
	log        *slog.Logger
}

// NewDevice creates a Device from a MIME type to argv map.
func NewDevice(commands map[string][]string, log *slog.Logger) *Device {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Device{
		commands:   commands,
		lookPath:   exec.LookPath,
		startGrace: defaultStartGrace,
		log:        log,
	}
}

// Supports reports whether a command for mimeType is configured and its
// binary is on PATH.
func (d *Device) Supports(mimeType string) bool {
	argv := d.commands[mimeType]
	if len(argv) == 0 {
		return false
	}
	_, err := d.lookPath(argv[0])
	return err == nil
}

// Open returns a capture session. It fails when no configured recorder is
// installed.
func (d *Device) Open(ctx context.Context) (recorder.Capture, error) {
	for mime := range d.commands {
		if d.Supports(mime) {
			return &capture{dev: d, ctx: ctx}, nil
		}
	}
	return nil, errors.New("execrec: no capture command available")
}

type capture struct {
	dev *Device
	ctx context.Context

	mu      sync.Mutex
	cmd     *exec.Cmd
	path    string
	stderr  bytes.Buffer
	done    chan struct{}
	waitErr error
}

func (c *capture) Start(mimeType string) error {
	argv := c.dev.commands[mimeType]
	if len(argv) == 0 {
		return fmt.Errorf("execrec: no capture command for %s", mimeType)
	}

	f, err := os.CreateTemp("", "lukthan-*.rec")
	if err != nil {
		return fmt.Errorf("execrec: temp file: %w", err)
	}
	path := f.Name()
	_ = f.Close()

	args := append(append([]string{}, argv[1:]...), path)
	cmd := exec.CommandContext(c.ctx, argv[0], args...) //nolint:gosec // command from trusted config
	cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }
	cmd.WaitDelay = stopTimeout

	c.mu.Lock()
	defer c.mu.Unlock()
	cmd.Stderr = &c.stderr
	if err := cmd.Start(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("execrec: start %s: %w", argv[0], err)
	}
	c.cmd, c.path, c.done = cmd, path, make(chan struct{})
	go func() {
		c.waitErr = cmd.Wait()
		close(c.done)
	}()
	c.dev.log.Debug("capture started", "command", argv[0], "pid", cmd.Process.Pid, "mime_type", mimeType)

	select {
	case <-c.done:
		// Exiting within the grace period means the recorder refused to run.
		msg := strings.TrimSpace(c.stderr.String())
		if isPermissionError(msg) {
			return fmt.Errorf("%w: %s", recorder.ErrPermissionDenied, msg)
		}
		if c.waitErr != nil {
			return fmt.Errorf("execrec: %s exited: %w: %s", argv[0], c.waitErr, msg)
		}
	case <-time.After(c.dev.startGrace):
	}
	return nil
}

func (c *capture) Stop() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cmd == nil {
		return nil, errors.New("execrec: capture not started")
	}

	select {
	case <-c.done:
	default:
		if err := c.cmd.Process.Signal(os.Interrupt); err != nil {
			_ = c.cmd.Process.Kill()
		}
		select {
		case <-c.done:
		case <-time.After(stopTimeout):
			c.dev.log.Warn("capture did not stop on interrupt, killing", "pid", c.cmd.Process.Pid)
			_ = c.cmd.Process.Kill()
			<-c.done
		}
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("execrec: read recording: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("execrec: recorder produced no audio: %s", strings.TrimSpace(c.stderr.String()))
	}
	return data, nil
}

func (c *capture) Release() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cmd == nil {
		return nil
	}
	select {
	case <-c.done:
	default:
		_ = c.cmd.Process.Kill()
		<-c.done
	}
	err := os.Remove(c.path)
	c.cmd = nil
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("execrec: remove recording: %w", err)
	}
	return nil
}

func isPermissionError(stderr string) bool {
	s := strings.ToLower(stderr)
	for _, m := range permissionMarkers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
