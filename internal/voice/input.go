// Copyright (c) 2024-2025 Bogdan Development
// SPDX-License-Identifier: AGPL-3.0-or-later

package voice

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// InputController runs the microphone side: idle, listening, processing,
// back to idle. One listen at a time.
type InputController struct {
	mu      sync.Mutex
	state   State
	stopped bool
	cancel  context.CancelFunc

	guard      *Guard
	device     CaptureDevice
	recognizer Recognizer
	onState    func(State)
	onChunk    func([]byte)
	onPartial  func(string)

	partialBusy atomic.Bool
}

// NewInputController wires capture hardware to a recognizer under the
// shared device guard.
func NewInputController(guard *Guard, device CaptureDevice, recognizer Recognizer) *InputController {
	return &InputController{
		guard:      guard,
		device:     device,
		recognizer: recognizer,
		state:      StateIdle,
	}
}

// WithStateHandler registers a callback for state transitions. The callback
// runs synchronously on the listening goroutine; keep it cheap.
func (c *InputController) WithStateHandler(fn func(State)) *InputController {
	c.onState = fn
	return c
}

// WithChunkHandler registers a callback receiving interim audio chunks
// while recording, for level meters and waveforms.
func (c *InputController) WithChunkHandler(fn func([]byte)) *InputController {
	c.onChunk = fn
	return c
}

// WithPartialHandler registers a callback receiving interim transcripts
// while recording. Each partial comes from recognizing the audio captured
// so far; at most one partial recognition runs at a time and stale results
// are dropped. Only the final transcript reaches the send path.
func (c *InputController) WithPartialHandler(fn func(string)) *InputController {
	c.onPartial = fn
	return c
}

// State returns the current controller state.
func (c *InputController) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Listen records from the microphone until Stop is called or ctx ends,
// then recognizes the captured audio and returns the transcript.
//
// The device is released as soon as recording finishes, before recognition
// starts, so a reply can begin playing while the transcript is still being
// computed. Silent audio yields an empty transcript with no error.
//
// Listening interrupted by playback returns ErrInterrupted and discards
// the recording. Whatever happens, the controller ends back at idle.
func (c *InputController) Listen(ctx context.Context, lang string) (string, error) {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return "", ErrBusy
	}
	recCtx, cancel := context.WithCancel(ctx)
	release, err := c.guard.AcquireCapture(cancel)
	if err != nil {
		c.mu.Unlock()
		cancel()
		return "", err
	}
	c.cancel = cancel
	c.stopped = false
	c.setStateLocked(StateListening)
	c.mu.Unlock()

	audio, recErr := c.device.Record(recCtx, c.chunkSink(recCtx, lang))
	release()
	cancel()

	c.mu.Lock()
	stopped := c.stopped
	c.cancel = nil
	c.mu.Unlock()

	if recErr != nil && !errors.Is(recErr, context.Canceled) {
		c.setState(StateIdle)
		return "", &VoiceError{Message: "recording failed: " + recErr.Error()}
	}
	if ctx.Err() != nil {
		c.setState(StateIdle)
		return "", ctx.Err()
	}
	if recCtx.Err() != nil && !stopped {
		c.setState(StateIdle)
		return "", ErrInterrupted
	}
	if len(audio) == 0 {
		c.setState(StateIdle)
		return "", nil
	}

	c.setState(StateProcessing)
	text, err := c.recognizer.Recognize(ctx, audio, lang)
	c.setState(StateIdle)
	if err != nil {
		return "", err
	}
	return text, nil
}

// chunkSink builds the per-chunk callback for one recording: it forwards
// raw chunks to the chunk handler and feeds the partial transcript preview
// from the audio accumulated so far.
func (c *InputController) chunkSink(recCtx context.Context, lang string) func([]byte) {
	if c.onChunk == nil && c.onPartial == nil {
		return nil
	}

	var mu sync.Mutex
	var captured []byte

	return func(chunk []byte) {
		if c.onChunk != nil {
			c.onChunk(chunk)
		}
		if c.onPartial == nil {
			return
		}

		mu.Lock()
		captured = append(captured, chunk...)
		snapshot := append([]byte(nil), captured...)
		mu.Unlock()

		// Skip this partial rather than queue behind a slow recognizer.
		if !c.partialBusy.CompareAndSwap(false, true) {
			return
		}
		go func() {
			defer c.partialBusy.Store(false)
			text, err := c.recognizer.Recognize(recCtx, snapshot, lang)
			if err == nil && text != "" && recCtx.Err() == nil {
				c.onPartial(text)
			}
		}()
	}
}

// Stop ends an active recording gracefully; the captured audio still goes
// to recognition. A Stop while not listening does nothing.
func (c *InputController) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateListening || c.cancel == nil {
		return
	}
	c.stopped = true
	c.cancel()
}

func (c *InputController) setState(s State) {
	c.mu.Lock()
	c.setStateLocked(s)
	c.mu.Unlock()
}

func (c *InputController) setStateLocked(s State) {
	c.state = s
	if c.onState != nil {
		c.onState(s)
	}
}
