// Package event defines the change notifications emitted by session state.
package event

import (
	"time"

	"github.com/Strob0t/lukthan/internal/domain/message"
	"github.com/Strob0t/lukthan/internal/domain/settings"
)

// Type identifies the kind of state change.
type Type string

const (
	TypeMessageAppended   Type = "message.appended"
	TypeMessageResolved   Type = "message.resolved"
	TypeMessageDiscarded  Type = "message.discarded"
	TypeMessageTruncated  Type = "message.truncated"
	TypeLogCleared        Type = "log.cleared"
	TypeSettingsChanged   Type = "settings.changed"
	TypeAttachmentChanged Type = "attachment.changed"
	TypeVoiceStateChanged Type = "voice.state_changed"
)

// Event is one state change. Payload fields are set according to Type and
// hold copies, never live state.
type Event struct {
	Type       Type                `json:"type"`
	MessageID  string              `json:"message_id,omitempty"`
	Message    *message.Message    `json:"message,omitempty"`
	Settings   *settings.Settings  `json:"settings,omitempty"`
	Attachment *message.Attachment `json:"attachment,omitempty"`
	VoiceState string              `json:"voice_state,omitempty"`
	At         time.Time           `json:"at"`
}

// Handler receives events synchronously.
type Handler func(Event)
