// Copyright (c) 2024-2025 Bogdan Development
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view for the assistant TUI.
//
// This file defines the Bubble Tea message types used by the view.
package chat

import (
	"github.com/Bogdan27357/ai-assistant-bogdan-development-sub000/internal/router"
	"github.com/Bogdan27357/ai-assistant-bogdan-development-sub000/internal/voice"
)

// DispatchDoneMsg reports the outcome of a dispatch started by a send.
type DispatchDoneMsg struct {
	Result router.Result
	Err    error
}

// SwitchNoticeMsg surfaces a provider switch as a transient toast.
type SwitchNoticeMsg struct {
	Notice router.Notice
}

// ToastExpiredMsg clears the current toast.
type ToastExpiredMsg struct{}

// TranscriptMsg delivers the final transcript of a voice capture.
type TranscriptMsg struct {
	Text string
	Err  error
}

// VoiceStateMsg reflects a voice controller state change in the status bar.
type VoiceStateMsg struct {
	State voice.State
}

// ExportDoneMsg reports a transcript export.
type ExportDoneMsg struct {
	Path string
	Err  error
}

// StatusMsg sets a transient status line message.
type StatusMsg struct {
	Text string
}

// RefreshMsg re-renders the conversation while a dispatch is in flight, so
// the user's own turn shows up before the reply lands.
type RefreshMsg struct{}
