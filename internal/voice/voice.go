// Copyright (c) 2024-2025 Bogdan Development
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package voice implements the speech input and output state machines and
// the arbitration between them over the audio device.
package voice

import (
	"context"
	"errors"
)

// =============================================================================
// STATES
// =============================================================================

// State is the observable phase of a voice controller.
type State int

const (
	// StateIdle means no voice activity.
	StateIdle State = iota
	// StateListening means the microphone is capturing.
	StateListening
	// StateProcessing means captured audio is being recognized.
	StateProcessing
	// StateSpeaking means synthesized audio is playing.
	StateSpeaking
)

// String returns the state name for logging and UI badges.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateProcessing:
		return "processing"
	case StateSpeaking:
		return "speaking"
	default:
		return "unknown"
	}
}

// =============================================================================
// ERRORS
// =============================================================================

// VoiceError is a classified voice pipeline failure.
type VoiceError struct {
	Message string
}

func (e *VoiceError) Error() string { return e.Message }

// Is supports errors.Is against the package sentinels.
func (e *VoiceError) Is(target error) bool {
	var other *VoiceError
	if errors.As(target, &other) {
		return e.Message == other.Message
	}
	return false
}

var (
	// ErrDeviceUnavailable means the audio device is held by the other
	// direction; starting to listen while a reply is being spoken, for
	// example.
	ErrDeviceUnavailable = &VoiceError{Message: "audio device unavailable"}

	// ErrBusy means the controller is already mid-operation.
	ErrBusy = &VoiceError{Message: "voice operation already in progress"}

	// ErrInterrupted means listening was cut short by playback taking the
	// device; the partial recording is discarded.
	ErrInterrupted = &VoiceError{Message: "listening interrupted by playback"}
)

// =============================================================================
// INTERFACES
// =============================================================================

// Recognizer turns captured audio into text.
type Recognizer interface {
	Recognize(ctx context.Context, audio []byte, lang string) (string, error)
}

// Synthesizer turns reply text into playable audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// CaptureDevice records from the microphone. Record blocks until ctx is
// canceled, delivering interim chunks to onChunk when non-nil, and returns
// everything captured so far.
type CaptureDevice interface {
	Record(ctx context.Context, onChunk func([]byte)) ([]byte, error)
}

// PlaybackDevice plays audio through the speaker. Play blocks until the
// audio finishes or ctx is canceled.
type PlaybackDevice interface {
	Play(ctx context.Context, audio []byte) error
}
