package history

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTimestampFormats(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{`"2025-03-01T10:20:30Z"`, time.Date(2025, 3, 1, 10, 20, 30, 0, time.UTC)},
		{`"2025-03-01T10:20:30.5"`, time.Date(2025, 3, 1, 10, 20, 30, 500000000, time.UTC)},
		{`"2025-03-01 10:20:30"`, time.Date(2025, 3, 1, 10, 20, 30, 0, time.UTC)},
		{`null`, time.Time{}},
		{`""`, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var ts Timestamp
			if err := json.Unmarshal([]byte(tt.raw), &ts); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !ts.Equal(tt.want) {
				t.Errorf("got %v, want %v", ts.Time, tt.want)
			}
		})
	}

	var ts Timestamp
	if err := json.Unmarshal([]byte(`"yesterday"`), &ts); err == nil {
		t.Error("expected error for unrecognized format")
	}
}

func TestSessionDecode(t *testing.T) {
	raw := `{
		"id": 7, "raw_prompt": "write a parser", "domain": "coding", "task_type": "code_generation",
		"quality_score": 88, "created_at": "2025-03-01T10:20:30",
		"versions": [{"id": 1, "label": "v1", "optimized_prompt": "You are...", "was_copied": true, "rating": null, "created_at": "2025-03-01T10:20:31"}]
	}`
	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatal(err)
	}
	if s.ID != 7 || s.QualityScore != 88 || len(s.Versions) != 1 {
		t.Fatalf("unexpected session: %+v", s)
	}
	if s.Versions[0].Rating != nil || !s.Versions[0].WasCopied {
		t.Errorf("unexpected version: %+v", s.Versions[0])
	}
}
