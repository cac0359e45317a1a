package service

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Strob0t/lukthan/internal/domain"
	"github.com/Strob0t/lukthan/internal/domain/agent"
	"github.com/Strob0t/lukthan/internal/domain/event"
	"github.com/Strob0t/lukthan/internal/domain/message"
)

// ConversationLog is the ordered message list of one session.
//
// At most one message is pending and it is always the tail: appends are
// refused while a placeholder awaits its result. Every mutation re-reads
// current state under the lock; callers refer to messages by id only.
type ConversationLog struct {
	mu   sync.Mutex
	msgs []message.Message
	obs  observers

	now   func() time.Time
	newID func() string
}

// NewConversationLog creates an empty log.
func NewConversationLog() *ConversationLog {
	return &ConversationLog{
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Subscribe registers h for every change. Handlers run synchronously after
// the mutation, outside the log's lock.
func (l *ConversationLog) Subscribe(h event.Handler) (cancel func()) {
	return l.obs.add(h)
}

// Append adds a user message and returns its assigned id.
func (l *ConversationLog) Append(m message.Message) (string, error) {
	if m.Role != message.RoleUser {
		return "", fmt.Errorf("append %s message: %w", m.Role, domain.ErrInvalidState)
	}

	l.mu.Lock()
	if l.pendingLocked() >= 0 {
		l.mu.Unlock()
		return "", domain.ErrPendingTurn
	}
	m.ID = l.newID()
	m.CreatedAt = l.now()
	m.Pending = false
	l.msgs = append(l.msgs, m)
	snap := m.Clone()
	l.mu.Unlock()

	l.obs.emit(event.Event{Type: event.TypeMessageAppended, MessageID: snap.ID, Message: &snap})
	return snap.ID, nil
}

// AppendPendingPlaceholder adds an empty agent message awaiting its result.
func (l *ConversationLog) AppendPendingPlaceholder() (string, error) {
	l.mu.Lock()
	if l.pendingLocked() >= 0 {
		l.mu.Unlock()
		return "", domain.ErrPendingTurn
	}
	m := message.Message{
		ID:        l.newID(),
		Role:      message.RoleAgent,
		CreatedAt: l.now(),
		Pending:   true,
		Thinking:  []agent.ThinkingStep{},
	}
	l.msgs = append(l.msgs, m)
	snap := m.Clone()
	l.mu.Unlock()

	l.obs.emit(event.Event{Type: event.TypeMessageAppended, MessageID: snap.ID, Message: &snap})
	return snap.ID, nil
}

// ResolvePending fills the placeholder id with res.
func (l *ConversationLog) ResolvePending(id string, res *agent.Result) error {
	l.mu.Lock()
	i := l.indexLocked(id)
	if i < 0 {
		l.mu.Unlock()
		return fmt.Errorf("resolve %s: %w", id, domain.ErrNotFound)
	}
	if !l.msgs[i].IsPlaceholder() {
		l.mu.Unlock()
		return fmt.Errorf("resolve %s: %w", id, domain.ErrNotPending)
	}

	m := &l.msgs[i]
	m.Text = res.Text()
	m.Result = res.Clone()
	m.Thinking = slices.Clone(res.Thinking)
	m.Pending = false
	snap := m.Clone()
	l.mu.Unlock()

	l.obs.emit(event.Event{Type: event.TypeMessageResolved, MessageID: id, Message: &snap})
	return nil
}

// DiscardIfPendingAndLast removes id only when it is still a pending
// placeholder at the tail. It reports whether anything was removed.
func (l *ConversationLog) DiscardIfPendingAndLast(id string) bool {
	l.mu.Lock()
	last := len(l.msgs) - 1
	if last < 0 || l.msgs[last].ID != id || !l.msgs[last].IsPlaceholder() {
		l.mu.Unlock()
		return false
	}
	l.msgs = l.msgs[:last]
	l.mu.Unlock()

	l.obs.emit(event.Event{Type: event.TypeMessageDiscarded, MessageID: id})
	return true
}

// RewindFrom finds the user message nearest before agent message agentID,
// truncates from agentID onward and returns a copy of that user message.
// The log is unchanged when either message is missing or agentID is pending.
func (l *ConversationLog) RewindFrom(agentID string) (message.Message, error) {
	l.mu.Lock()
	i := l.indexLocked(agentID)
	if i < 0 || l.msgs[i].Role != message.RoleAgent {
		l.mu.Unlock()
		return message.Message{}, fmt.Errorf("agent message %s: %w", agentID, domain.ErrNotFound)
	}
	if l.msgs[i].Pending {
		l.mu.Unlock()
		return message.Message{}, domain.ErrPendingTurn
	}
	j := i - 1
	for j >= 0 && l.msgs[j].Role != message.RoleUser {
		j--
	}
	if j < 0 {
		l.mu.Unlock()
		return message.Message{}, fmt.Errorf("user message before %s: %w", agentID, domain.ErrNotFound)
	}
	user := l.msgs[j].Clone()
	l.msgs = l.msgs[:i]
	l.mu.Unlock()

	l.obs.emit(event.Event{Type: event.TypeMessageTruncated, MessageID: agentID})
	return user, nil
}

// Clear empties the log.
func (l *ConversationLog) Clear() {
	l.mu.Lock()
	l.msgs = nil
	l.mu.Unlock()

	l.obs.emit(event.Event{Type: event.TypeLogCleared})
}

// Snapshot returns a deep copy of every message in order.
func (l *ConversationLog) Snapshot() []message.Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]message.Message, len(l.msgs))
	for i := range l.msgs {
		out[i] = l.msgs[i].Clone()
	}
	return out
}

// Get returns a copy of message id.
func (l *ConversationLog) Get(id string) (message.Message, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.indexLocked(id); i >= 0 {
		return l.msgs[i].Clone(), true
	}
	return message.Message{}, false
}

// Len returns the number of messages.
func (l *ConversationLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.msgs)
}

// Pending returns the id of the pending placeholder, if any.
func (l *ConversationLog) Pending() (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i := l.pendingLocked(); i >= 0 {
		return l.msgs[i].ID, true
	}
	return "", false
}

// LastAgent returns the id of the most recent resolved agent message.
func (l *ConversationLog) LastAgent() (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.msgs) - 1; i >= 0; i-- {
		if l.msgs[i].Role == message.RoleAgent && !l.msgs[i].Pending {
			return l.msgs[i].ID, true
		}
	}
	return "", false
}

func (l *ConversationLog) indexLocked(id string) int {
	for i := range l.msgs {
		if l.msgs[i].ID == id {
			return i
		}
	}
	return -1
}

// pendingLocked returns the index of the pending placeholder or -1. Only the
// tail can be pending.
func (l *ConversationLog) pendingLocked() int {
	last := len(l.msgs) - 1
	if last >= 0 && l.msgs[last].IsPlaceholder() {
		return last
	}
	return -1
}
