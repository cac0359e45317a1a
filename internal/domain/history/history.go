// Package history defines the server-side record of past optimizations.
package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// DefaultLimit is the page size when none is given.
const DefaultLimit = 20

// Item summarizes one past optimization session.
type Item struct {
	ID           int64     `json:"id"`
	RawPrompt    string    `json:"raw_prompt"`
	Domain       string    `json:"domain"`
	TaskType     string    `json:"task_type"`
	QualityScore int       `json:"quality_score"`
	CreatedAt    Timestamp `json:"created_at"`
}

// Page is one listing of sessions.
type Page struct {
	Sessions []Item `json:"sessions"`
	Total    int    `json:"total"`
}

// Version is one optimized variant produced within a session.
type Version struct {
	ID              int64     `json:"id"`
	Label           string    `json:"label"`
	OptimizedPrompt string    `json:"optimized_prompt"`
	WasCopied       bool      `json:"was_copied"`
	Rating          *int      `json:"rating"`
	CreatedAt       Timestamp `json:"created_at"`
}

// Session is a session with its versions.
type Session struct {
	Item
	Versions []Version `json:"versions"`
}

// Timestamp accepts RFC 3339 and the zone-less ISO 8601 the backend emits
// for naive datetimes, which are taken as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognized format %q", s)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}
