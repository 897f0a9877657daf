// Copyright (c) 2024-2025 Bogdan Development
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package speech is the HTTP client for the universal speech endpoint.
//
// One endpoint handles both directions, selected by an action field:
// "stt" carries base64 audio and answers with a transcript, "tts" carries
// text and answers with base64 audio. The provider field routes to either
// the Yandex or the Sber speech backend.
//
// Failures classify as recognition, synthesis, or unreachable so the voice
// state machines can recover to the right state without string matching.
package speech
