// Copyright (c) 2024-2025 Bogdan Development
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across the assistant.
//
// # Key Functions
//
//   - AtomicWriteFile: crash-safe file writing with fsync
//
// # Usage
//
//	// Write files atomically to prevent data loss
//	err := util.AtomicWriteFile(path, data, 0600)
package util
