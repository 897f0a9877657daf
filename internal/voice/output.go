// Copyright (c) 2024-2025 Bogdan Development
// SPDX-License-Identifier: AGPL-3.0-or-later

package voice

import (
	"context"
	"sync"
)

// OutputController runs the speaker side: synthesize a reply and play it.
// Requests supersede each other; the newest utterance always wins.
type OutputController struct {
	mu     sync.Mutex
	state  State
	gen    uint64
	cancel context.CancelFunc

	guard   *Guard
	device  PlaybackDevice
	synth   Synthesizer
	onState func(State)
}

// NewOutputController wires playback hardware to a synthesizer under the
// shared device guard.
func NewOutputController(guard *Guard, device PlaybackDevice, synth Synthesizer) *OutputController {
	return &OutputController{
		guard:  guard,
		device: device,
		synth:  synth,
		state:  StateIdle,
	}
}

// WithStateHandler registers a callback for state transitions.
func (c *OutputController) WithStateHandler(fn func(State)) *OutputController {
	c.onState = fn
	return c
}

// State returns the current controller state.
func (c *OutputController) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Speak synthesizes text and plays it, blocking until playback completes.
// A newer Speak or a Stop cancels the current utterance; a superseded or
// stopped utterance returns nil, since the caller asked for exactly that.
// Taking the device interrupts any active listening.
func (c *OutputController) Speak(ctx context.Context, text, voiceName string) error {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	utterCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	release := c.guard.AcquirePlayback(cancel)
	defer release()
	defer cancel()

	c.setStateIf(gen, StateSpeaking)
	defer c.finishIf(gen)

	audio, err := c.synth.Synthesize(utterCtx, text, voiceName)
	if err != nil {
		if utterCtx.Err() != nil && ctx.Err() == nil {
			return nil
		}
		return err
	}

	err = c.device.Play(utterCtx, audio)
	if utterCtx.Err() != nil && ctx.Err() == nil {
		return nil
	}
	return err
}

// SpeakReply speaks an assistant reply when the user has voice output
// enabled; otherwise it does nothing.
func (c *OutputController) SpeakReply(ctx context.Context, text, voiceName string, voiceEnabled bool) error {
	if !voiceEnabled || text == "" {
		return nil
	}
	return c.Speak(ctx, text, voiceName)
}

// Stop cancels the current utterance. Stopping while idle does nothing.
func (c *OutputController) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel == nil {
		return
	}
	c.cancel()
	c.cancel = nil
}

// setStateIf applies the transition only while gen is still the newest
// utterance, so a superseded Speak cannot clobber its successor's state.
func (c *OutputController) setStateIf(gen uint64, s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return
	}
	c.state = s
	if c.onState != nil {
		c.onState(s)
	}
}

// finishIf returns to idle and clears the cancel slot for the newest
// utterance only.
func (c *OutputController) finishIf(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return
	}
	c.state = StateIdle
	c.cancel = nil
	if c.onState != nil {
		c.onState(StateIdle)
	}
}
