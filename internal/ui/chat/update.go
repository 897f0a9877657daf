// Copyright (c) 2024-2025 Bogdan Development
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Bogdan27357/ai-assistant-bogdan-development-sub000/internal/model"
)

const toastDuration = 4 * time.Second

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keyMap.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keyMap.Submit):
			return m.submit()

		case key.Matches(msg, m.keyMap.NewSession):
			m.sess.Reset()
			m.pending = nil
			m.status = "Started a new session"
			m.refreshViewport()
			return m, nil

		case key.Matches(msg, m.keyMap.Listen):
			return m.startListening()

		case key.Matches(msg, m.keyMap.StopVoice):
			if m.listening && m.listen != nil {
				m.listen.Stop()
			} else if m.speak != nil {
				m.speak.Stop()
			}
			return m, nil

		case key.Matches(msg, m.keyMap.Export):
			return m, m.exportCmd()
		}

	case DispatchDoneMsg:
		m.busy = false
		if msg.Err != nil {
			// The session already holds the remediation notice; the
			// status line just points at it.
			m.status = "Request failed"
		} else {
			m.lastProvider = msg.Result.UsedProviderID
			if m.speak != nil && m.prefs.VoiceEnabled {
				cmds = append(cmds, m.speakCmd(msg.Result.Reply))
			}
		}
		m.refreshViewport()
		m.viewport.GotoBottom()

	case SwitchNoticeMsg:
		m.toast = msg.Notice.Text
		cmds = append(cmds, tea.Tick(toastDuration, func(time.Time) tea.Msg {
			return ToastExpiredMsg{}
		}))

	case ToastExpiredMsg:
		m.toast = ""

	case TranscriptMsg:
		m.listening = false
		if msg.Err != nil {
			m.status = "Voice input failed: " + msg.Err.Error()
		} else if msg.Text != "" {
			m.input.SetValue(msg.Text)
			m.status = "Transcript ready, press Enter to send"
		} else {
			m.status = "Heard nothing"
		}

	case VoiceStateMsg:
		m.voiceState = msg.State

	case ExportDoneMsg:
		if msg.Err != nil {
			m.status = "Export failed: " + msg.Err.Error()
		} else {
			m.status = "Transcript saved to " + msg.Path
		}

	case StatusMsg:
		m.status = msg.Text

	case RefreshMsg:
		m.refreshViewport()
		m.viewport.GotoBottom()
		if m.busy {
			cmds = append(cmds, refreshTick())
		}

	default:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit sends the typed input, unless a dispatch is already in flight.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.busy {
		m.status = "Still waiting for the previous reply"
		return m, nil
	}

	text := strings.TrimSpace(m.input.Value())
	if text == "" && len(m.pending) == 0 {
		return m, nil
	}

	if strings.HasPrefix(text, "/") {
		return m.runCommand(text)
	}

	attachments := m.pending
	m.pending = nil
	m.input.Reset()
	m.busy = true
	m.status = ""

	return m, tea.Batch(m.spin.Tick, refreshTick(), m.dispatchCmd(text, attachments))
}

// refreshTick schedules the next conversation re-render.
func refreshTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return RefreshMsg{}
	})
}

// dispatchCmd runs one dispatch off the UI goroutine.
func (m Model) dispatchCmd(text string, attachments []model.Attachment) tea.Cmd {
	sess, disp, prefs := m.sess, m.disp, m.prefs
	return func() tea.Msg {
		res, err := disp.Dispatch(context.Background(), sess, text, attachments, prefs)
		return DispatchDoneMsg{Result: res, Err: err}
	}
}

// startListening begins voice capture if a voice input path is wired.
func (m Model) startListening() (tea.Model, tea.Cmd) {
	if m.listen == nil {
		m.status = "Voice input is not available"
		return m, nil
	}
	if m.listening {
		return m, nil
	}
	m.listening = true
	m.status = "Listening... press C-s to stop"

	listen, lang := m.listen, m.prefs.Language
	return m, func() tea.Msg {
		text, err := listen.Listen(context.Background(), lang)
		return TranscriptMsg{Text: text, Err: err}
	}
}

// speakCmd plays a reply in the background.
func (m Model) speakCmd(text string) tea.Cmd {
	speak, voiceName, enabled := m.speak, m.prefs.Voice, m.prefs.VoiceEnabled
	return func() tea.Msg {
		if err := speak.SpeakReply(context.Background(), text, voiceName, enabled); err != nil {
			return StatusMsg{Text: "Voice output failed: " + err.Error()}
		}
		return nil
	}
}

// exportCmd writes the current session transcript next to the database.
func (m Model) exportCmd() tea.Cmd {
	if m.store == nil {
		return func() tea.Msg {
			return ExportDoneMsg{Err: fmt.Errorf("no storage configured")}
		}
	}
	store, sessionID := m.store, m.sess.GetOrCreate().ID
	return func() tea.Msg {
		path, err := exportTranscript(store, sessionID)
		return ExportDoneMsg{Path: path, Err: err}
	}
}
