// Copyright (c) 2024-2025 Bogdan Development
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Bogdan27357/ai-assistant-bogdan-development-sub000/internal/model"
)

func openTestGateway(t *testing.T) *Gateway {
	t.Helper()
	gw, err := Open(filepath.Join(t.TempDir(), "messages.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { gw.Close() })
	return gw
}

func TestGateway_AppendAndHistory(t *testing.T) {
	gw := openTestGateway(t)

	turns := []struct {
		role    model.Role
		content string
	}{
		{model.RoleUser, "как дела?"},
		{model.RoleAssistant, "хорошо, спасибо"},
		{model.RoleUser, "отлично"},
	}
	for _, turn := range turns {
		if err := gw.Append("s1", "yandex-gpt", turn.role, turn.content); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	rows, err := gw.History("s1")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(rows) != len(turns) {
		t.Fatalf("History returned %d rows, want %d", len(rows), len(turns))
	}
	for i, row := range rows {
		if row.Role != turns[i].role || row.Content != turns[i].content {
			t.Errorf("row %d = {%s %q}, want {%s %q}", i, row.Role, row.Content, turns[i].role, turns[i].content)
		}
		if row.ProviderID != "yandex-gpt" {
			t.Errorf("row %d provider = %q", i, row.ProviderID)
		}
	}
}

func TestGateway_HistoryIsolatesSessions(t *testing.T) {
	gw := openTestGateway(t)

	if err := gw.Append("s1", "p", model.RoleUser, "first session"); err != nil {
		t.Fatal(err)
	}
	if err := gw.Append("s2", "p", model.RoleUser, "second session"); err != nil {
		t.Fatal(err)
	}

	rows, err := gw.History("s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Content != "first session" {
		t.Errorf("s1 history leaked across sessions: %+v", rows)
	}
}

func TestGateway_HistoryUnknownSession(t *testing.T) {
	gw := openTestGateway(t)
	rows, err := gw.History("missing")
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("expected empty history, got %d rows", len(rows))
	}
}

func TestGateway_Sessions(t *testing.T) {
	gw := openTestGateway(t)

	gw.Append("old", "p", model.RoleUser, "старый вопрос")
	gw.Append("old", "p", model.RoleAssistant, "ответ")
	gw.Append("recent", "p", model.RoleUser, "новый вопрос")

	infos, err := gw.Sessions()
	if err != nil {
		t.Fatalf("Sessions: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("Sessions returned %d, want 2", len(infos))
	}
	if infos[0].ID != "recent" {
		t.Errorf("most recent session first, got %q", infos[0].ID)
	}
	if infos[1].MessageCount != 2 {
		t.Errorf("old session count = %d, want 2", infos[1].MessageCount)
	}
	if infos[1].Preview != "старый вопрос" {
		t.Errorf("preview = %q, want first user message", infos[1].Preview)
	}
}

func TestGateway_ExportText(t *testing.T) {
	gw := openTestGateway(t)

	gw.Append("s1", "p", model.RoleUser, "привет")
	gw.Append("s1", "p", model.RoleAssistant, "здравствуйте")

	text, err := gw.ExportText("s1")
	if err != nil {
		t.Fatalf("ExportText: %v", err)
	}
	want := "[You] привет\n[Assistant] здравствуйте\n"
	if text != want {
		t.Errorf("ExportText = %q, want %q", text, want)
	}
}

func TestGateway_JournalOnFailure(t *testing.T) {
	dir := t.TempDir()
	gw, err := Open(filepath.Join(dir, "messages.db"))
	if err != nil {
		t.Fatal(err)
	}
	journal := filepath.Join(dir, "messages.journal")
	gw.WithJournal(journal)

	// Closing the database forces the insert to fail.
	gw.Close()

	if err := gw.Append("s1", "p", model.RoleUser, "lost row"); err == nil {
		t.Fatal("Append on a closed database should error")
	}

	data, err := os.ReadFile(journal)
	if err != nil {
		t.Fatalf("journal file should exist: %v", err)
	}
	if !strings.Contains(string(data), "lost row") {
		t.Errorf("journal missing the failed row: %q", data)
	}
}

func TestGateway_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.db")

	gw, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	gw.Append("s1", "p", model.RoleUser, "durable")
	gw.Close()

	gw2, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer gw2.Close()

	rows, err := gw2.History("s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Content != "durable" {
		t.Errorf("rows after reopen = %+v", rows)
	}
}
