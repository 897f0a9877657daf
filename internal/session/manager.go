// Copyright (c) 2024-2025 Bogdan Development
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session provides conversation identity and the ordered message log.
package session

import (
	"sync"

	"github.com/Bogdan27357/ai-assistant-bogdan-development-sub000/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrDispatchInFlight is returned when a second dispatch is started while one
// is already pending for the session. At most one dispatch may be in flight
// at a time so log order always matches wall-clock send order.
var ErrDispatchInFlight = &SessionError{Message: "a dispatch is already in flight for this session"}

// ErrBrokenAlternation is returned when an append would break the strict
// user/assistant alternation of the log.
var ErrBrokenAlternation = &SessionError{Message: "append would break user/assistant alternation"}

// SessionError represents a session-level error.
type SessionError struct {
	Message string
}

// Error implements the error interface.
func (e *SessionError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing session errors.
func (e *SessionError) Is(target error) bool {
	t, ok := target.(*SessionError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager owns one conversation: its lazily created identity, its ordered
// message log, and the single-in-flight dispatch gate. All methods are safe
// for concurrent use.
type Manager struct {
	mu sync.Mutex

	sess     model.Session
	log      []*model.Message
	inFlight bool
}

// NewManager creates a manager for a not-yet-started conversation.
// The session identity is generated lazily on first use.
func NewManager() *Manager {
	return &Manager{}
}

// GetOrCreate returns the conversation's session, generating a fresh unique
// identifier exactly once. Idempotent within the conversation's lifetime;
// no network or disk side effects.
func (m *Manager) GetOrCreate() model.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sess.IsZero() {
		m.sess = model.NewSession()
	}
	return m.sess
}

// Reset abandons the current conversation: the log is cleared and the next
// GetOrCreate call yields a new session identity.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = model.Session{}
	m.log = nil
	m.inFlight = false
}

// =============================================================================
// MESSAGE LOG
// =============================================================================

// Append adds a message to the end of the log. Messages are immutable once
// appended; insertion order is the display order and the provider history
// order. Appending a message with the same role as the current tail returns
// ErrBrokenAlternation.
func (m *Manager) Append(msg *model.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n := len(m.log); n > 0 && m.log[n-1].Role == msg.Role {
		return ErrBrokenAlternation
	}
	m.log = append(m.log, msg)
	return nil
}

// Retract removes msg from the log if it is the current tail. It exists to
// undo a user turn whose dispatch was abandoned before any reply arrived, so
// the session can accept the next send. Returns false when msg is no longer
// the tail.
func (m *Manager) Retract(msg *model.Message) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n := len(m.log); n > 0 && m.log[n-1] == msg {
		m.log = m.log[:n-1]
		return true
	}
	return false
}

// History returns a snapshot of the full message log in insertion order.
func (m *Manager) History() []*model.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Message, len(m.log))
	copy(out, m.log)
	return out
}

// HistoryWindow returns the last max messages in insertion order.
// A non-positive max returns the full log.
func (m *Manager) HistoryWindow(max int) []*model.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.log)
	if max <= 0 || max >= n {
		out := make([]*model.Message, n)
		copy(out, m.log)
		return out
	}
	out := make([]*model.Message, max)
	copy(out, m.log[n-max:])
	return out
}

// Len returns the number of messages in the log.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.log)
}

// LastRole returns the role of the most recent message, or "" for an empty log.
func (m *Manager) LastRole() model.Role {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.log) == 0 {
		return ""
	}
	return m.log[len(m.log)-1].Role
}

// =============================================================================
// DISPATCH GATE
// =============================================================================

// BeginDispatch acquires the session's single dispatch slot. It fails with
// ErrDispatchInFlight when a dispatch is already pending; callers disable
// the send control while holding the slot.
func (m *Manager) BeginDispatch() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inFlight {
		return ErrDispatchInFlight
	}
	m.inFlight = true
	return nil
}

// EndDispatch releases the dispatch slot. Safe to call when no dispatch is
// pending.
func (m *Manager) EndDispatch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight = false
}

// DispatchPending reports whether a dispatch currently holds the slot.
func (m *Manager) DispatchPending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inFlight
}
