// Copyright (c) 2024-2025 Bogdan Development
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// SESSION TYPE
// =============================================================================

// Session is the identity of one conversation. The ID is generated once,
// client-side, and is the join key for persisted messages. A session is never
// mutated; abandoning a conversation simply discards it.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// NewSession creates a session with a fresh globally unique identifier.
func NewSession() Session {
	return Session{
		ID:        "session-" + uuid.NewString(),
		CreatedAt: time.Now(),
	}
}

// IsZero reports whether the session has been created yet.
func (s Session) IsZero() bool {
	return s.ID == ""
}
