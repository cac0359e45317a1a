package messagequeue

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidMessage is returned for payloads that do not match their subject.
var ErrInvalidMessage = errors.New("invalid message")

// eventEnvelope is the part of a session event every consumer relies on.
type eventEnvelope struct {
	Type string `json:"type"`
}

// Validate checks that data is JSON and, on event subjects, that it is an
// object whose type field matches the subject suffix. Other subjects only
// need to be valid JSON.
func Validate(subject string, data []byte) error {
	if !json.Valid(data) {
		return fmt.Errorf("%w: not JSON on subject %s", ErrInvalidMessage, subject)
	}
	eventType, ok := strings.CutPrefix(subject, SubjectEvents+".")
	if !ok {
		return nil
	}

	var env eventEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("%w: subject %s: %w", ErrInvalidMessage, subject, err)
	}
	if env.Type != eventType {
		return fmt.Errorf("%w: subject %s carries event type %q", ErrInvalidMessage, subject, env.Type)
	}
	return nil
}
