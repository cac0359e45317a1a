// Package broadcast defines the port for pushing session events to live viewers.
package broadcast

import "context"

// Broadcaster sends real-time events to all connected viewers.
type Broadcaster interface {
	// BroadcastEvent sends a typed event to all connected viewers.
	BroadcastEvent(ctx context.Context, eventType string, payload any)
}
