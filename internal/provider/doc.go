// Copyright (c) 2024-2025 Bogdan Development
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package provider adapts interchangeable AI backends to one contract.
//
// # Key Types
//
//   - Adapter: send ordered history plus new input, get reply or classified error
//   - Config: per-backend endpoint, credential, and enablement
//   - Registry: fixed-priority provider list with last-writer-wins updates
//   - Error / ErrorKind: classified failures driving router fallback
//
// # Adapters
//
// Three concrete adapters ship in this package: YandexGPT (role/text
// messages, result.alternatives envelope), GigaChat (OpenAI-compatible
// shape, bearer token), and OpenRouter (multimodal, attachments inline in
// the request body). All adapters make exactly one attempt per Send call;
// retrying against a different provider is the router's responsibility.
//
// Credentials are presented as opaque strings and never logged; log lines
// carry a SHA-256 fingerprint instead.
package provider
