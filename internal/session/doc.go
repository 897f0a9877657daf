// Copyright (c) 2024-2025 Bogdan Development
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session manages one conversation's identity and message log.
//
// # Key Types
//
//   - Manager: lazily creates the session identity, owns the ordered log,
//     and gates dispatches so at most one is in flight per session
//
// # Invariants
//
// The log strictly alternates user and assistant turns; Append refuses any
// message that would break the alternation. The session identifier is
// generated exactly once per conversation and only changes on Reset.
package session
