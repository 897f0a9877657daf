// AI assistant TUI - a terminal client for the conversation core.
//
// Copyright (c) 2024-2025 Bogdan Development
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Bogdan27357/ai-assistant-bogdan-development-sub000/internal/attachment"
	"github.com/Bogdan27357/ai-assistant-bogdan-development-sub000/internal/config"
	"github.com/Bogdan27357/ai-assistant-bogdan-development-sub000/internal/provider"
	"github.com/Bogdan27357/ai-assistant-bogdan-development-sub000/internal/router"
	"github.com/Bogdan27357/ai-assistant-bogdan-development-sub000/internal/session"
	"github.com/Bogdan27357/ai-assistant-bogdan-development-sub000/internal/speech"
	"github.com/Bogdan27357/ai-assistant-bogdan-development-sub000/internal/storage"
	"github.com/Bogdan27357/ai-assistant-bogdan-development-sub000/internal/ui/chat"
	"github.com/Bogdan27357/ai-assistant-bogdan-development-sub000/internal/voice"
)

// Version information (set at build time)
var (
	Version   = "1.0.0"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "version") {
		fmt.Printf("assistant %s (%s)\n", Version, GitCommit)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	store, err := openStorage(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open message storage: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	registry := buildRegistry(cfg)
	sess := session.NewManager()
	disp := router.New(registry).WithPersister(store)

	codec := attachment.NewCodecWithLimit(cfg.Attachments.MaxSizeBytes)

	opts := chat.Options{Store: store}
	speakCtrl, listenCtrl := buildVoice(cfg)
	opts.Speak = speakCtrl
	opts.Listen = listenCtrl

	program := tea.NewProgram(
		chat.New(sess, disp, cfg.Preferences, codec, opts),
		tea.WithAltScreen(),
	)

	disp.WithNoticeHandler(func(n router.Notice) {
		program.Send(chat.SwitchNoticeMsg{Notice: n})
	})
	if speakCtrl != nil {
		speakCtrl.WithStateHandler(func(s voice.State) {
			program.Send(chat.VoiceStateMsg{State: s})
		})
	}
	if listenCtrl != nil {
		listenCtrl.WithStateHandler(func(s voice.State) {
			program.Send(chat.VoiceStateMsg{State: s})
		})
		listenCtrl.WithPartialHandler(func(text string) {
			program.Send(chat.StatusMsg{Text: "Hearing: " + text})
		})
	}

	// Config edits apply without a restart: provider enablement and
	// credentials reach the registry before the next dispatch.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watchConfig(ctx, registry, program)

	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// openStorage opens the SQLite gateway with its journal fallback.
func openStorage(cfg *config.Config) (*storage.Gateway, error) {
	path, err := cfg.StoragePath()
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(path)
	if err != nil {
		return nil, err
	}
	if journal, err := cfg.JournalPath(); err == nil {
		store.WithJournal(journal)
	}
	return store, nil
}

// buildRegistry registers one adapter per configured provider, in the
// priority order the config lists them.
func buildRegistry(cfg *config.Config) *provider.Registry {
	registry := provider.NewRegistry()
	for _, p := range cfg.Providers {
		adapter := adapterFor(p)
		if adapter == nil {
			log.Printf("config: no adapter for provider %q, skipping", p.ID)
			continue
		}
		registry.Register(provider.Config{
			ID:          p.ID,
			DisplayName: p.DisplayName,
			Endpoint:    p.Endpoint,
			Credential:  p.APIKey,
			Enabled:     p.Enabled,
		}, adapter)
	}
	return registry
}

func adapterFor(p config.ProviderConfig) provider.Adapter {
	switch p.ID {
	case provider.YandexGPTID:
		return provider.NewYandexGPT()
	case provider.GigaChatID:
		return provider.NewGigaChat()
	case provider.OpenRouterID:
		return provider.NewOpenRouter().WithModel(p.Model)
	default:
		return nil
	}
}

// buildVoice wires the voice controllers when a speech endpoint is
// configured. Audio moves through files until a platform audio backend is
// plugged in: recording reads ASSISTANT_AUDIO_IN, playback writes
// ASSISTANT_AUDIO_OUT.
func buildVoice(cfg *config.Config) (*voice.OutputController, *voice.InputController) {
	if cfg.Speech.Endpoint == "" {
		return nil, nil
	}

	client := speech.NewClient(cfg.Speech.Endpoint).WithProvider(cfg.Speech.Provider)
	guard := voice.NewGuard()

	var listen *voice.InputController
	if in := os.Getenv("ASSISTANT_AUDIO_IN"); in != "" {
		listen = voice.NewInputController(guard, &fileCapture{path: in}, client)
	}

	out := os.Getenv("ASSISTANT_AUDIO_OUT")
	if out == "" {
		out = os.DevNull
	}
	speak := voice.NewOutputController(guard, &filePlayback{path: out}, client)

	return speak, listen
}

// watchConfig pushes config file edits into the registry and the UI.
func watchConfig(ctx context.Context, registry *provider.Registry, program *tea.Program) {
	path, err := config.ConfigPath()
	if err != nil {
		return
	}
	err = config.Watch(ctx, path, func(cfg *config.Config) {
		for _, p := range cfg.Providers {
			registry.Update(provider.Config{
				ID:          p.ID,
				DisplayName: p.DisplayName,
				Endpoint:    p.Endpoint,
				Credential:  p.APIKey,
				Enabled:     p.Enabled,
			})
		}
		program.Send(chat.StatusMsg{Text: "Configuration reloaded"})
	})
	if err != nil && ctx.Err() == nil {
		log.Printf("config: watcher stopped: %v", err)
	}
}

// =============================================================================
// FILE-BACKED AUDIO DEVICES
// =============================================================================

// fileCapture reads a prepared audio file in place of a microphone.
type fileCapture struct {
	path string
}

func (f *fileCapture) Record(ctx context.Context, onChunk func([]byte)) ([]byte, error) {
	audio, err := os.ReadFile(f.path)
	if err != nil {
		return nil, err
	}
	if onChunk != nil {
		onChunk(audio)
	}
	return audio, nil
}

// filePlayback writes synthesized audio to a file in place of a speaker.
type filePlayback struct {
	path string
}

func (f *filePlayback) Play(ctx context.Context, audio []byte) error {
	return os.WriteFile(f.path, audio, 0644)
}
