// Copyright (c) 2024-2025 Bogdan Development
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package voice implements hands-free interaction on top of the speech
// endpoint client.
//
// # Key Types
//
//   - InputController: idle -> listening -> processing -> idle
//   - OutputController: idle -> speaking -> idle, newest utterance wins
//   - Guard: single audio device arbitration between the two
//
// # Device Policy
//
// The two controllers share one audio device through the Guard. Playback
// has priority: starting to speak interrupts active listening, because a
// reply played into a live microphone would be transcribed back. Listening
// never preempts; a listen request during playback is refused with
// ErrDeviceUnavailable.
//
// The hardware itself sits behind the CaptureDevice and PlaybackDevice
// interfaces, so the state machines are testable without audio hardware
// and the reference client can plug in whatever backend the platform has.
package voice
