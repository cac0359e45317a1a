package agent

// Metadata is the loosely typed analysis block attached to a result.
// The backend adds keys freely; accessors cover the ones clients display.
type Metadata map[string]any

// KeyTopics returns metadata.key_topics.
func (m Metadata) KeyTopics() []string {
	raw, ok := m["key_topics"].([]any)
	if !ok {
		if s, ok := m["key_topics"].([]string); ok {
			return s
		}
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Complexity returns metadata.complexity.
func (m Metadata) Complexity() string { return m.str("complexity") }

// DetectedLanguage returns metadata.detected_language.
func (m Metadata) DetectedLanguage() string { return m.str("detected_language") }

// Error returns metadata.error, set when the backend degraded to a fallback reply.
func (m Metadata) Error() string { return m.str("error") }

// Confidence returns metadata.confidence and whether it was present.
func (m Metadata) Confidence() (float64, bool) {
	switch v := m["confidence"].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

func (m Metadata) str(key string) string {
	s, _ := m[key].(string)
	return s
}
