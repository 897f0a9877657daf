// Copyright (c) 2024-2025 Bogdan Development
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const watchWait = 3 * time.Second

func TestWatch_DeliversNewSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	if err := SaveTOML(cfg, path); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snapshots := make(chan *Config, 1)
	go Watch(ctx, path, func(c *Config) {
		select {
		case snapshots <- c:
		default:
		}
	})

	// Give the watcher a moment to register before the write lands.
	time.Sleep(100 * time.Millisecond)

	cfg.Preferences.MaxHistory = 25
	if err := SaveTOML(cfg, path); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-snapshots:
		if got.Preferences.MaxHistory != 25 {
			t.Errorf("MaxHistory = %d, want 25", got.Preferences.MaxHistory)
		}
	case <-time.After(watchWait):
		t.Fatal("no snapshot delivered after config save")
	}
}

func TestWatch_SkipsInvalidSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	if err := SaveTOML(cfg, path); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snapshots := make(chan *Config, 2)
	go Watch(ctx, path, func(c *Config) { snapshots <- c })

	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(path, []byte("not [valid toml"), 0600); err != nil {
		t.Fatal(err)
	}
	// Let the debounce fire and the broken file get rejected.
	time.Sleep(2 * watchDebounce)

	cfg.Preferences.PreferredProvider = "gigachat"
	if err := SaveTOML(cfg, path); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-snapshots:
		if got.Preferences.PreferredProvider != "gigachat" {
			t.Errorf("PreferredProvider = %q, want %q (broken snapshot must be skipped)",
				got.Preferences.PreferredProvider, "gigachat")
		}
	case <-time.After(watchWait):
		t.Fatal("no snapshot delivered after valid save")
	}
}

func TestWatch_StopsOnContextCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := SaveTOML(Default(), path); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, path, func(*Config) {}) }()

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Watch returned %v, want context.Canceled", err)
		}
	case <-time.After(watchWait):
		t.Fatal("Watch did not stop after cancel")
	}
}
