// Copyright (c) 2024-2025 Bogdan Development
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides durable message persistence for the assistant.
//
// Messages are stored in a SQLite database, one row per message, with
// insertion order preserved so the stored log reads exactly like the
// conversation did.
//
// # Key Types
//
//   - Gateway: synchronous message store over SQLite
//   - Row: one persisted message
//   - SessionInfo: per-session summary for history listings
//
// # Usage
//
// Open the store and append messages:
//
//	gw, err := storage.Open(path)
//	err = gw.Append(sessionID, "yandex-gpt", model.RoleUser, "привет")
//
// Reload or export a past session:
//
//	rows, err := gw.History(sessionID)
//	text, err := gw.ExportText(sessionID)
//
// # Failure Handling
//
// Persistence never blocks a conversation. A failed insert is journaled to
// a JSON-lines fallback file when one is configured, and the error is
// returned for logging.
package storage
