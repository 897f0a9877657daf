// Copyright (c) 2024-2025 Bogdan Development
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Bogdan27357/ai-assistant-bogdan-development-sub000/internal/model"
	"github.com/Bogdan27357/ai-assistant-bogdan-development-sub000/internal/storage"
)

// Command is a parsed slash command.
type Command struct {
	Name string
	Args []string
}

// ParseCommand splits a "/name arg..." line. Returns ok=false for ordinary
// text.
func ParseCommand(text string) (Command, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return Command{}, false
	}
	fields := strings.Fields(text[1:])
	if len(fields) == 0 {
		return Command{}, false
	}
	return Command{Name: strings.ToLower(fields[0]), Args: fields[1:]}, true
}

const helpText = `Commands:
  /attach <path>     stage a file for the next message
  /provider <id>     prefer a provider (yandex-gpt, gigachat, openrouter)
  /voice on|off      toggle spoken replies
  /new               start a new session
  /export            save the transcript
  /help              show this help`

// runCommand executes a slash command typed into the input box.
func (m Model) runCommand(text string) (tea.Model, tea.Cmd) {
	cmd, ok := ParseCommand(text)
	if !ok {
		return m, nil
	}
	m.input.Reset()

	switch cmd.Name {
	case "help":
		m.status = helpText

	case "attach":
		if len(cmd.Args) == 0 {
			m.status = "Usage: /attach <path>"
			break
		}
		path := strings.Join(cmd.Args, " ")
		att, err := m.attachFile(path)
		if err != nil {
			m.status = "Attach failed: " + err.Error()
			break
		}
		m.pending = append(m.pending, att)
		m.status = fmt.Sprintf("Attached %s (%d bytes)", att.Name, att.SizeBytes)

	case "provider":
		if len(cmd.Args) != 1 {
			m.status = "Usage: /provider <id>"
			break
		}
		m.prefs.PreferredProvider = cmd.Args[0]
		m.status = "Preferred provider set to " + cmd.Args[0]

	case "voice":
		if len(cmd.Args) != 1 || (cmd.Args[0] != "on" && cmd.Args[0] != "off") {
			m.status = "Usage: /voice on|off"
			break
		}
		m.prefs.VoiceEnabled = cmd.Args[0] == "on"
		if m.prefs.VoiceEnabled {
			m.status = "Replies will be spoken"
		} else {
			m.status = "Voice output off"
			if m.speak != nil {
				m.speak.Stop()
			}
		}

	case "new":
		m.sess.Reset()
		m.pending = nil
		m.status = "Started a new session"
		m.refreshViewport()

	case "export":
		return m, m.exportCmd()

	default:
		m.status = "Unknown command /" + cmd.Name + ", try /help"
	}
	return m, nil
}

// attachFile reads and encodes a local file through the codec.
func (m Model) attachFile(path string) (model.Attachment, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.Attachment{}, err
	}
	mimeType := mime.TypeByExtension(filepath.Ext(path))
	return m.codec.Encode(filepath.Base(path), mimeType, raw)
}

// exportTranscript writes the session transcript to a timestamped file in
// the same directory tree as the database.
func exportTranscript(store *storage.Gateway, sessionID string) (string, error) {
	text, err := store.ExportText(sessionID)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", fmt.Errorf("nothing to export yet")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".assistant", "exports")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, "transcript-"+time.Now().Format("20060102-150405")+".txt")
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return "", err
	}
	return path, nil
}
