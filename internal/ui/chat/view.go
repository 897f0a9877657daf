// Copyright (c) 2024-2025 Bogdan Development
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/Bogdan27357/ai-assistant-bogdan-development-sub000/internal/model"
	"github.com/Bogdan27357/ai-assistant-bogdan-development-sub000/internal/ui/styles"
	"github.com/Bogdan27357/ai-assistant-bogdan-development-sub000/internal/voice"
)

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(styles.Header.Width(m.width).Render("AI Assistant"))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	inputBox := styles.InputBoxFocused
	if m.busy {
		inputBox = styles.InputBox
	}
	b.WriteString(inputBox.Width(m.width - 2).Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(m.statusLine())

	return b.String()
}

// statusLine composes the bottom line: activity, provider, voice badge,
// toast or status text.
func (m Model) statusLine() string {
	var parts []string

	if m.busy {
		parts = append(parts, m.spin.View()+"thinking")
	}
	if m.lastProvider != "" {
		parts = append(parts, styles.StatusActive.Render(m.lastProvider))
	}
	if tokens := conversationTokens(m.sess.History()); tokens > 0 {
		parts = append(parts, styles.AttachmentStyle.Render(fmt.Sprintf("~%d tok", tokens)))
	}
	if m.voiceState != voice.StateIdle {
		parts = append(parts, styles.VoiceBadge.Render("voice: "+m.voiceState.String()))
	}
	if len(m.pending) > 0 {
		parts = append(parts, styles.AttachmentStyle.Render(fmt.Sprintf("%d file(s) staged", len(m.pending))))
	}
	if m.toast != "" {
		parts = append(parts, styles.NoticeStyle.Render(m.toast))
	} else if m.status != "" {
		parts = append(parts, m.status)
	} else {
		parts = append(parts, "Enter send · C-l voice · C-n new · C-e export · C-c quit")
	}

	return styles.StatusBar.Render(strings.Join(parts, "  "))
}

// conversationTokens sums the rough token estimates of every message, for
// the status line.
func conversationTokens(history []*model.Message) int {
	total := 0
	for _, msg := range history {
		total += msg.EstimateTokens()
	}
	return total
}

// refreshViewport re-renders the conversation into the viewport.
func (m *Model) refreshViewport() {
	history := m.sess.History()
	if len(history) == 0 {
		m.viewport.SetContent(styles.StatusBar.Render("\n  Start the conversation below."))
		return
	}

	var b strings.Builder
	for _, msg := range history {
		b.WriteString(m.renderMessage(msg))
		b.WriteString("\n")
	}
	m.viewport.SetContent(b.String())
}

// renderMessage renders one conversation turn.
func (m *Model) renderMessage(msg *model.Message) string {
	var b strings.Builder

	switch {
	case msg.IsNotice:
		b.WriteString(styles.NoticeStyle.Render(msg.Content))
		b.WriteString("\n")

	case msg.Role == model.RoleUser:
		b.WriteString(styles.UserLabel.Render(msg.Role.DisplayName()))
		b.WriteString("\n")
		b.WriteString(msg.Content)
		b.WriteString("\n")
		for _, att := range msg.Attachments {
			b.WriteString(styles.AttachmentStyle.Render(fmt.Sprintf("  [%s, %d bytes]", att.Name, att.SizeBytes)))
			b.WriteString("\n")
		}

	default:
		b.WriteString(styles.AssistantLabel.Render(msg.Role.DisplayName()))
		b.WriteString("\n")
		b.WriteString(m.renderMarkdown(msg.Content))
	}

	return b.String()
}

// renderMarkdown renders assistant replies through glamour, falling back to
// plain text before the first resize or on render failure.
func (m *Model) renderMarkdown(content string) string {
	if m.renderer == nil {
		return content + "\n"
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return content + "\n"
	}
	return out
}
