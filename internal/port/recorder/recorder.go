// Package recorder defines the port to a local audio capture device.
package recorder

import (
	"context"
	"errors"
)

// ErrPermissionDenied is returned by Open when the OS refuses microphone access.
var ErrPermissionDenied = errors.New("recorder: microphone permission denied")

// Device opens capture sessions.
type Device interface {
	// Supports reports whether the device can produce the given MIME type.
	Supports(mimeType string) bool

	// Open acquires the microphone for one capture session.
	Open(ctx context.Context) (Capture, error)
}

// Capture is one acquired microphone session.
type Capture interface {
	// Start begins recording in the given MIME type.
	Start(mimeType string) error

	// Stop ends recording and returns every captured chunk concatenated.
	Stop() ([]byte, error)

	// Release frees the device. It is safe to call more than once and after a failed Start.
	Release() error
}
