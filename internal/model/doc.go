// Copyright (c) 2024-2025 Bogdan Development
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures shared across the conversation
// core: sessions, messages, roles, and attachments.
//
// # Key Types
//
//   - Session: identity of one conversation (opaque unique ID)
//   - Message: immutable user/assistant turn, insertion-ordered
//   - Attachment: base64-encoded uploaded file, owned by one message
//
// Types in this package carry no behavior beyond construction and
// formatting helpers; the state machines that manipulate them live in the
// session, router, and voice packages.
package model
