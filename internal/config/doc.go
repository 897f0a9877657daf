// Copyright (c) 2024-2025 Bogdan Development
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for
// the assistant.
//
// # Key Types
//
//   - Config: main configuration structure with all settings
//   - UserPreferences: per-user context passed into dispatch and voice
//   - ProviderConfig: one AI backend (endpoint, credential, enablement)
//   - SpeechConfig / AttachmentConfig / StorageConfig: subsystem settings
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (ASSISTANT_*)
//   - ~/.assistant/config.toml
//   - Built-in defaults
//
// # Hot Reload
//
// Watch observes the config file and delivers validated snapshots to a
// callback, so provider enablement and credential changes apply without a
// restart. Invalid files are skipped and the previous snapshot stays live.
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Access settings:
//
//	preferred := cfg.Preferences.PreferredProvider
//	limit := cfg.Attachments.MaxSizeBytes
package config
