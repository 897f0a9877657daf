// Copyright (c) 2024-2025 Bogdan Development
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/Bogdan27357/ai-assistant-bogdan-development-sub000/internal/attachment"
	"github.com/Bogdan27357/ai-assistant-bogdan-development-sub000/internal/config"
	"github.com/Bogdan27357/ai-assistant-bogdan-development-sub000/internal/model"
	"github.com/Bogdan27357/ai-assistant-bogdan-development-sub000/internal/router"
	"github.com/Bogdan27357/ai-assistant-bogdan-development-sub000/internal/session"
	"github.com/Bogdan27357/ai-assistant-bogdan-development-sub000/internal/storage"
	"github.com/Bogdan27357/ai-assistant-bogdan-development-sub000/internal/ui/styles"
	"github.com/Bogdan27357/ai-assistant-bogdan-development-sub000/internal/voice"
)

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// Dimensions
	width  int
	height int

	// UI components
	viewport viewport.Model
	input    textarea.Model
	spin     spinner.Model
	keyMap   KeyMap
	renderer *glamour.TermRenderer

	// Core wiring
	sess   *session.Manager
	disp   *router.Router
	prefs  config.UserPreferences
	store  *storage.Gateway
	codec  *attachment.Codec
	speak  *voice.OutputController
	listen *voice.InputController

	// Attachments staged for the next send
	pending []model.Attachment

	// Display state
	busy         bool
	listening    bool
	voiceState   voice.State
	toast        string
	status       string
	lastProvider string
}

// Options carries the optional collaborators for the chat view.
type Options struct {
	Store  *storage.Gateway
	Speak  *voice.OutputController
	Listen *voice.InputController
}

// New creates the chat view over a session and dispatcher.
func New(sess *session.Manager, disp *router.Router, prefs config.UserPreferences, codec *attachment.Codec, opts Options) Model {
	input := textarea.New()
	input.Placeholder = "Ask anything, or /help for commands"
	input.ShowLineNumbers = false
	input.SetHeight(3)
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(styles.Violet)

	return Model{
		viewport: viewport.New(0, 0),
		input:    input,
		spin:     spin,
		keyMap:   DefaultKeyMap(),
		sess:     sess,
		disp:     disp,
		prefs:    prefs,
		codec:    codec,
		store:    opts.Store,
		speak:    opts.Speak,
		listen:   opts.Listen,
	}
}

// SetPreferences swaps in a new preference snapshot, applied from the next
// dispatch onward.
func (m *Model) SetPreferences(prefs config.UserPreferences) {
	m.prefs = prefs
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spin.Tick)
}

// resize recomputes layout and rebuilds the markdown renderer for the new
// wrap width.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	inputHeight := m.input.Height() + 2
	chromeHeight := 2 + 1 // header and status line
	m.viewport.Width = width
	m.viewport.Height = height - inputHeight - chromeHeight
	m.input.SetWidth(width - 4)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(min(width-4, 100)),
	)
	if err == nil {
		m.renderer = renderer
	}
	m.refreshViewport()
}
