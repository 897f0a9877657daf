// Copyright (c) 2024-2025 Bogdan Development
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"sync"
	"testing"

	"github.com/Bogdan27357/ai-assistant-bogdan-development-sub000/internal/model"
)

func TestManager_GetOrCreateIdempotent(t *testing.T) {
	m := NewManager()

	first := m.GetOrCreate()
	second := m.GetOrCreate()

	if first.IsZero() {
		t.Fatal("GetOrCreate returned zero session")
	}
	if first.ID != second.ID {
		t.Errorf("session ID changed between calls: %q then %q", first.ID, second.ID)
	}
}

func TestManager_GetOrCreateConcurrent(t *testing.T) {
	m := NewManager()

	var wg sync.WaitGroup
	ids := make([]string, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = m.GetOrCreate().ID
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(ids); i++ {
		if ids[i] != ids[0] {
			t.Fatalf("concurrent GetOrCreate produced different IDs: %q vs %q", ids[0], ids[i])
		}
	}
}

func TestManager_ResetYieldsNewIdentity(t *testing.T) {
	m := NewManager()

	first := m.GetOrCreate()
	m.Append(model.NewUserMessage("hi"))
	m.Reset()

	if m.Len() != 0 {
		t.Errorf("log should be empty after Reset, has %d messages", m.Len())
	}
	second := m.GetOrCreate()
	if first.ID == second.ID {
		t.Error("Reset should yield a new session identity")
	}
}

func TestManager_AppendAlternation(t *testing.T) {
	m := NewManager()

	if err := m.Append(model.NewUserMessage("q1")); err != nil {
		t.Fatalf("first user append failed: %v", err)
	}
	if err := m.Append(model.NewUserMessage("q2")); !errors.Is(err, ErrBrokenAlternation) {
		t.Fatalf("expected ErrBrokenAlternation, got %v", err)
	}
	if err := m.Append(model.NewAssistantMessage("a1")); err != nil {
		t.Fatalf("assistant append failed: %v", err)
	}
	if err := m.Append(model.NewAssistantMessage("a2")); !errors.Is(err, ErrBrokenAlternation) {
		t.Fatalf("expected ErrBrokenAlternation, got %v", err)
	}

	// Log must still strictly alternate.
	history := m.History()
	if len(history) != 2 {
		t.Fatalf("log length = %d, want 2", len(history))
	}
	if history[0].Role != model.RoleUser || history[1].Role != model.RoleAssistant {
		t.Error("log does not alternate user, assistant")
	}
}

func TestManager_RetractRemovesTail(t *testing.T) {
	m := NewManager()

	abandoned := model.NewUserMessage("abandoned")
	if err := m.Append(abandoned); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if !m.Retract(abandoned) {
		t.Fatal("Retract should remove the tail message")
	}
	if m.Len() != 0 {
		t.Errorf("log length = %d after retract, want 0", m.Len())
	}

	// The retracted turn no longer blocks the next user message.
	if err := m.Append(model.NewUserMessage("again")); err != nil {
		t.Fatalf("append after retract failed: %v", err)
	}
}

func TestManager_RetractOnlyMatchesTail(t *testing.T) {
	m := NewManager()

	first := model.NewUserMessage("q")
	m.Append(first)
	m.Append(model.NewAssistantMessage("a"))

	if m.Retract(first) {
		t.Error("Retract must refuse a message that is not the tail")
	}
	if m.Len() != 2 {
		t.Errorf("log length = %d, want 2", m.Len())
	}
	if m.Retract(model.NewUserMessage("other")) {
		t.Error("Retract must refuse a message never appended")
	}
}

func TestManager_HistoryWindow(t *testing.T) {
	m := NewManager()
	for i := 0; i < 5; i++ {
		m.Append(model.NewUserMessage("q"))
		m.Append(model.NewAssistantMessage("a"))
	}

	tests := []struct {
		max  int
		want int
	}{
		{0, 10},
		{-1, 10},
		{4, 4},
		{10, 10},
		{100, 10},
	}
	for _, tt := range tests {
		if got := len(m.HistoryWindow(tt.max)); got != tt.want {
			t.Errorf("HistoryWindow(%d) returned %d messages, want %d", tt.max, got, tt.want)
		}
	}

	// The window keeps the most recent messages and their order.
	window := m.HistoryWindow(3)
	if window[len(window)-1].Role != model.RoleAssistant {
		t.Error("window should end with the latest message")
	}
}

func TestManager_HistoryIsSnapshot(t *testing.T) {
	m := NewManager()
	m.Append(model.NewUserMessage("q"))

	history := m.History()
	m.Append(model.NewAssistantMessage("a"))

	if len(history) != 1 {
		t.Error("earlier snapshot should not grow with later appends")
	}
}

func TestManager_DispatchGate(t *testing.T) {
	m := NewManager()

	if err := m.BeginDispatch(); err != nil {
		t.Fatalf("first BeginDispatch failed: %v", err)
	}
	if !m.DispatchPending() {
		t.Error("DispatchPending should be true while slot is held")
	}
	if err := m.BeginDispatch(); !errors.Is(err, ErrDispatchInFlight) {
		t.Fatalf("expected ErrDispatchInFlight, got %v", err)
	}

	m.EndDispatch()
	if m.DispatchPending() {
		t.Error("DispatchPending should be false after EndDispatch")
	}
	if err := m.BeginDispatch(); err != nil {
		t.Errorf("BeginDispatch after release failed: %v", err)
	}
}

func TestManager_EndDispatchIdleIsSafe(t *testing.T) {
	m := NewManager()
	m.EndDispatch() // no-op
	if err := m.BeginDispatch(); err != nil {
		t.Errorf("BeginDispatch failed after idle EndDispatch: %v", err)
	}
}
