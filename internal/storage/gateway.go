// Copyright (c) 2024-2025 Bogdan Development
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides durable message persistence for the assistant.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Bogdan27357/ai-assistant-bogdan-development-sub000/internal/model"
)

// =============================================================================
// STORED MESSAGE TYPE
// =============================================================================

// Row is one persisted message.
type Row struct {
	ID         int64
	SessionID  string
	ProviderID string
	Role       model.Role
	Content    string
	CreatedAt  time.Time
}

// SessionInfo summarizes one stored session for history listings.
type SessionInfo struct {
	ID           string
	MessageCount int
	FirstAt      time.Time
	LastAt       time.Time
	Preview      string
}

// =============================================================================
// GATEWAY
// =============================================================================

// Gateway persists messages to a SQLite database. Writes are synchronous
// and serialized so stored order always matches conversation order.
type Gateway struct {
	mu          sync.Mutex
	db          *sql.DB
	journalPath string
}

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id  TEXT NOT NULL,
	provider_id TEXT NOT NULL DEFAULT '',
	role        TEXT NOT NULL,
	content     TEXT NOT NULL,
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, id);
`

// Open opens (creating if needed) the message database at path.
func Open(path string) (*Gateway, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer keeps inserts ordered and sidesteps SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Gateway{db: db}, nil
}

// WithJournal sets a fallback journal file. Rows that fail to reach the
// database are appended there as JSON lines so nothing is silently lost.
func (g *Gateway) WithJournal(path string) *Gateway {
	g.journalPath = path
	return g
}

// Close closes the underlying database.
func (g *Gateway) Close() error {
	return g.db.Close()
}

// =============================================================================
// WRITE OPERATIONS
// =============================================================================

// Append stores one message. On database failure the row goes to the
// journal file instead, and the original error is returned so the caller
// can log it.
func (g *Gateway) Append(sessionID, providerID string, role model.Role, content string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now().UTC()
	_, err := g.db.Exec(
		`INSERT INTO messages (session_id, provider_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		sessionID, providerID, role.String(), content, now.Format(time.RFC3339Nano),
	)
	if err != nil {
		g.journal(Row{SessionID: sessionID, ProviderID: providerID, Role: role, Content: content, CreatedAt: now})
		return fmt.Errorf("failed to store message: %w", err)
	}
	return nil
}

// journal appends a lost row to the journal file, best effort.
func (g *Gateway) journal(row Row) {
	if g.journalPath == "" {
		return
	}
	f, err := os.OpenFile(g.journalPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	defer f.Close()

	line, err := json.Marshal(struct {
		SessionID  string    `json:"session_id"`
		ProviderID string    `json:"provider_id"`
		Role       string    `json:"role"`
		Content    string    `json:"content"`
		CreatedAt  time.Time `json:"created_at"`
	}{row.SessionID, row.ProviderID, row.Role.String(), row.Content, row.CreatedAt})
	if err != nil {
		return
	}
	f.Write(append(line, '\n'))
}

// =============================================================================
// READ OPERATIONS
// =============================================================================

// History returns every stored message of a session in insertion order.
func (g *Gateway) History(sessionID string) ([]Row, error) {
	rows, err := g.db.Query(
		`SELECT id, session_id, provider_id, role, content, created_at FROM messages WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		var role, created string
		if err := rows.Scan(&r.ID, &r.SessionID, &r.ProviderID, &role, &r.Content, &created); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		r.Role = model.Role(role)
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Sessions lists stored sessions, most recently active first.
func (g *Gateway) Sessions() ([]SessionInfo, error) {
	rows, err := g.db.Query(`
		SELECT session_id, COUNT(*), MIN(created_at), MAX(created_at),
		       (SELECT content FROM messages m2 WHERE m2.session_id = m.session_id AND m2.role = 'user' ORDER BY m2.id LIMIT 1)
		FROM messages m GROUP BY session_id ORDER BY MAX(id) DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionInfo
	for rows.Next() {
		var info SessionInfo
		var first, last string
		var preview sql.NullString
		if err := rows.Scan(&info.ID, &info.MessageCount, &first, &last, &preview); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		info.FirstAt, _ = time.Parse(time.RFC3339Nano, first)
		info.LastAt, _ = time.Parse(time.RFC3339Nano, last)
		if preview.Valid {
			info.Preview = preview.String
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// ExportText renders a session as a plain-text transcript suitable for
// saving or sharing.
func (g *Gateway) ExportText(sessionID string) (string, error) {
	history, err := g.History(sessionID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, row := range history {
		b.WriteString("[")
		b.WriteString(row.Role.DisplayName())
		b.WriteString("] ")
		b.WriteString(row.Content)
		b.WriteString("\n")
	}
	return b.String(), nil
}
