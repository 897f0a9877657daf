// Copyright (c) 2024-2025 Bogdan Development
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package router implements dispatch with provider fallback.
//
// # Key Types
//
//   - Router: tries candidate providers in order until one replies
//   - Result: reply text plus which provider answered and whether it switched
//   - Notice: informational event for a mid-chain provider switch
//   - DispatchError: terminal failure carrying the most actionable cause
//
// # Dispatch Flow
//
// A dispatch snapshots the provider chain once, appends the user's turn to
// the session, and then walks the chain making exactly one attempt per
// candidate. The preferred provider goes first; the rest follow in fixed
// priority order. A success from any non-preferred candidate produces a
// switch notice so the user knows a backup answered. When every candidate
// fails, the session receives one synthetic assistant message with a
// remediation hint chosen from the most actionable failure observed.
//
// Persistence is best effort. Rows that fail to write are logged and the
// conversation continues in memory.
package router
