// Copyright (c) 2024-2025 Bogdan Development
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"testing"

	"github.com/Bogdan27357/ai-assistant-bogdan-development-sub000/internal/model"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input    string
		wantName string
		wantArgs int
		wantOK   bool
	}{
		{"/help", "help", 0, true},
		{"/attach notes.txt", "attach", 1, true},
		{"/ATTACH notes.txt", "attach", 1, true},
		{"  /voice on  ", "voice", 1, true},
		{"plain text", "", 0, false},
		{"/", "", 0, false},
		{"", "", 0, false},
	}

	for _, tt := range tests {
		cmd, ok := ParseCommand(tt.input)
		if ok != tt.wantOK {
			t.Errorf("ParseCommand(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			continue
		}
		if !ok {
			continue
		}
		if cmd.Name != tt.wantName {
			t.Errorf("ParseCommand(%q) name = %q, want %q", tt.input, cmd.Name, tt.wantName)
		}
		if len(cmd.Args) != tt.wantArgs {
			t.Errorf("ParseCommand(%q) args = %d, want %d", tt.input, len(cmd.Args), tt.wantArgs)
		}
	}
}

func TestConversationTokens(t *testing.T) {
	if got := conversationTokens(nil); got != 0 {
		t.Errorf("empty history tokens = %d, want 0", got)
	}

	history := []*model.Message{
		model.NewUserMessage("abcdefgh"),
		model.NewAssistantMessage("12345678"),
	}
	if got := conversationTokens(history); got != 4 {
		t.Errorf("tokens = %d, want 4", got)
	}
}
