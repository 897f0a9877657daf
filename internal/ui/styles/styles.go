// Copyright (c) 2024-2025 Bogdan Development
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the assistant TUI.
// All colors use Lip Gloss AdaptiveColor for automatic light/dark detection.
package styles

import "github.com/charmbracelet/lipgloss"

// =============================================================================
// PALETTE
// =============================================================================

// Blue - brand color, user messages
var Blue = lipgloss.AdaptiveColor{Light: "#2563EB", Dark: "#60A5FA"}

// Violet - assistant messages
var Violet = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}

// Emerald - success, active provider indicator
var Emerald = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}

// Amber - switch notices, warnings
var Amber = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}

// Rose - errors
var Rose = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}

// TextPrimary - main body text
var TextPrimary = lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#CDD6F4"}

// TextMuted - hints, timestamps, status line
var TextMuted = lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6C7086"}

// Overlay - borders and separators
var Overlay = lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#313244"}

// =============================================================================
// MESSAGE STYLES
// =============================================================================

// UserLabel renders the "You" prefix on user turns.
var UserLabel = lipgloss.NewStyle().Foreground(Blue).Bold(true)

// AssistantLabel renders the "Assistant" prefix on replies.
var AssistantLabel = lipgloss.NewStyle().Foreground(Violet).Bold(true)

// NoticeStyle renders synthetic assistant messages and switch notices.
var NoticeStyle = lipgloss.NewStyle().Foreground(Amber).Italic(true)

// ErrorStyle renders error text.
var ErrorStyle = lipgloss.NewStyle().Foreground(Rose).Bold(true)

// AttachmentStyle renders attachment chips under a user message.
var AttachmentStyle = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)

// =============================================================================
// CHROME STYLES
// =============================================================================

// Header renders the title bar.
var Header = lipgloss.NewStyle().
	Foreground(Blue).
	Bold(true).
	BorderStyle(lipgloss.NormalBorder()).
	BorderBottom(true).
	BorderForeground(Overlay)

// StatusBar renders the bottom status line.
var StatusBar = lipgloss.NewStyle().Foreground(TextMuted)

// StatusActive highlights the provider that answered last.
var StatusActive = lipgloss.NewStyle().Foreground(Emerald).Bold(true)

// VoiceBadge renders the voice state indicator.
var VoiceBadge = lipgloss.NewStyle().Foreground(Amber).Bold(true)

// InputBox frames the text entry area.
var InputBox = lipgloss.NewStyle().
	BorderStyle(lipgloss.RoundedBorder()).
	BorderForeground(Overlay).
	Padding(0, 1)

// InputBoxFocused highlights the entry area while it can accept a send.
var InputBoxFocused = InputBox.BorderForeground(Blue)
