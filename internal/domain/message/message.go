// Package message defines the entries of a conversation log.
package message

import (
	"slices"
	"time"

	"github.com/Strob0t/lukthan/internal/domain/agent"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// Attachment is a file whose text the backend already extracted. FileType
// is the backend's classification and is what chat requests carry;
// MimeType is sniffed locally.
type Attachment struct {
	Name     string `json:"name"`
	Content  string `json:"content"`
	FileType string `json:"file_type"`
	MimeType string `json:"mime_type"`
}

// Message is one entry in the conversation log.
//
// User messages never change after they are appended. Agent messages start
// as a pending placeholder and are either filled exactly once or removed.
type Message struct {
	ID         string               `json:"id"`
	Role       Role                 `json:"role"`
	Text       string               `json:"text"`
	CreatedAt  time.Time            `json:"created_at"`
	Attachment *Attachment          `json:"attachment,omitempty"`
	Result     *agent.Result        `json:"result,omitempty"`
	Pending    bool                 `json:"pending"`
	Thinking   []agent.ThinkingStep `json:"thinking,omitempty"`
}

// IsPlaceholder reports whether m is an agent message still awaiting its result.
func (m Message) IsPlaceholder() bool {
	return m.Role == RoleAgent && m.Pending
}

// Clone returns a deep copy so readers cannot mutate log state.
func (m Message) Clone() Message {
	if m.Attachment != nil {
		a := *m.Attachment
		m.Attachment = &a
	}
	m.Thinking = slices.Clone(m.Thinking)
	m.Result = m.Result.Clone()
	return m
}
