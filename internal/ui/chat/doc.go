// Copyright (c) 2024-2025 Bogdan Development
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view for the assistant TUI.
//
// The view is a single Bubble Tea model: a viewport holding the rendered
// conversation, a textarea for input, and a status line showing activity,
// the provider that answered last, voice state, and transient notices.
//
// Sends are refused while a dispatch is in flight, matching the session's
// single-dispatch slot. Provider switch notices arrive as messages from the
// dispatcher's notice handler and show as a toast for a few seconds.
//
// Assistant replies render as markdown through glamour; user turns render
// verbatim with attachment chips underneath.
package chat
