// Copyright (c) 2024-2025 Bogdan Development
// SPDX-License-Identifier: AGPL-3.0-or-later

package voice

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// TEST FIXTURES
// =============================================================================

// fakeCapture blocks until its context ends, then hands back canned audio.
type fakeCapture struct {
	audio   []byte
	started chan struct{}
}

func (f *fakeCapture) Record(ctx context.Context, onChunk func([]byte)) ([]byte, error) {
	if f.started != nil {
		close(f.started)
		f.started = nil
	}
	if onChunk != nil {
		onChunk([]byte("chunk"))
	}
	<-ctx.Done()
	return f.audio, nil
}

type fakeRecognizer struct {
	text string
	err  error
}

func (f *fakeRecognizer) Recognize(ctx context.Context, audio []byte, lang string) (string, error) {
	return f.text, f.err
}

// fakePlayback records what it was asked to play and optionally blocks.
type fakePlayback struct {
	mu      sync.Mutex
	played  [][]byte
	block   bool
	started chan struct{}
}

func (f *fakePlayback) Play(ctx context.Context, audio []byte) error {
	f.mu.Lock()
	f.played = append(f.played, audio)
	started := f.started
	f.started = nil
	f.mu.Unlock()
	if started != nil {
		close(started)
	}
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

func (f *fakePlayback) playedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.played)
}

type fakeSynth struct {
	audio []byte
	err   error
}

func (f *fakeSynth) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]byte(text+":"), f.audio...), f.err
}

// =============================================================================
// INPUT CONTROLLER TESTS
// =============================================================================

func TestInput_ListenStopReturnsTranscript(t *testing.T) {
	guard := NewGuard()
	started := make(chan struct{})
	cap := &fakeCapture{audio: []byte("recorded"), started: started}
	var states []State
	ctrl := NewInputController(guard, cap, &fakeRecognizer{text: "привет"}).
		WithStateHandler(func(s State) { states = append(states, s) })

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := ctrl.Listen(context.Background(), "ru")
		done <- result{text, err}
	}()

	<-started
	assert.Equal(t, StateListening, ctrl.State())
	ctrl.Stop()

	res := <-done
	require.NoError(t, res.err)
	assert.Equal(t, "привет", res.text)
	assert.Equal(t, StateIdle, ctrl.State())
	assert.Equal(t, []State{StateListening, StateProcessing, StateIdle}, states)
	assert.Equal(t, "none", guard.Holder(), "device must be released")
}

func TestInput_EmptyAudioIsNotAnError(t *testing.T) {
	guard := NewGuard()
	started := make(chan struct{})
	ctrl := NewInputController(guard, &fakeCapture{started: started}, &fakeRecognizer{text: "never"})

	done := make(chan string, 1)
	go func() {
		text, err := ctrl.Listen(context.Background(), "ru")
		require.NoError(t, err)
		done <- text
	}()
	<-started
	ctrl.Stop()
	assert.Empty(t, <-done, "silence yields an empty transcript")
}

func TestInput_BusyWhileListening(t *testing.T) {
	guard := NewGuard()
	started := make(chan struct{})
	ctrl := NewInputController(guard, &fakeCapture{audio: []byte("a"), started: started}, &fakeRecognizer{})

	go ctrl.Listen(context.Background(), "ru")
	<-started

	_, err := ctrl.Listen(context.Background(), "ru")
	assert.ErrorIs(t, err, ErrBusy)
	ctrl.Stop()
}

func TestInput_RefusedWhileSpeaking(t *testing.T) {
	guard := NewGuard()
	started := make(chan struct{})
	play := &fakePlayback{block: true, started: started}
	out := NewOutputController(guard, play, &fakeSynth{audio: []byte("wav")})

	go out.Speak(context.Background(), "reply", "alena")
	<-started

	in := NewInputController(guard, &fakeCapture{}, &fakeRecognizer{})
	_, err := in.Listen(context.Background(), "ru")
	assert.ErrorIs(t, err, ErrDeviceUnavailable)
	assert.Equal(t, "playback", guard.Holder(), "speaking must survive the refused listen")
	out.Stop()
}

func TestInput_InterruptedByPlayback(t *testing.T) {
	guard := NewGuard()
	started := make(chan struct{})
	ctrl := NewInputController(guard, &fakeCapture{audio: []byte("partial"), started: started}, &fakeRecognizer{text: "never"})

	errCh := make(chan error, 1)
	go func() {
		_, err := ctrl.Listen(context.Background(), "ru")
		errCh <- err
	}()
	<-started

	out := NewOutputController(guard, &fakePlayback{}, &fakeSynth{audio: []byte("wav")})
	require.NoError(t, out.Speak(context.Background(), "urgent", "alena"))

	assert.ErrorIs(t, <-errCh, ErrInterrupted, "preempted recording must be discarded")
	assert.Equal(t, StateIdle, ctrl.State())
}

func TestInput_ChunkHandler(t *testing.T) {
	guard := NewGuard()
	started := make(chan struct{})
	var chunks int
	var mu sync.Mutex
	ctrl := NewInputController(guard, &fakeCapture{audio: []byte("a"), started: started}, &fakeRecognizer{}).
		WithChunkHandler(func([]byte) { mu.Lock(); chunks++; mu.Unlock() })

	done := make(chan struct{})
	go func() { ctrl.Listen(context.Background(), "ru"); close(done) }()
	<-started
	ctrl.Stop()
	<-done

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, chunks)
}

func TestInput_PartialHandler(t *testing.T) {
	guard := NewGuard()
	started := make(chan struct{})
	partials := make(chan string, 1)
	ctrl := NewInputController(guard, &fakeCapture{audio: []byte("full"), started: started}, &fakeRecognizer{text: "при"}).
		WithPartialHandler(func(text string) { partials <- text })

	done := make(chan struct{})
	go func() { ctrl.Listen(context.Background(), "ru"); close(done) }()
	<-started

	assert.Equal(t, "при", <-partials, "interim audio must produce a preview transcript")
	ctrl.Stop()
	<-done
}

func TestInput_StopWhileIdleIsNoop(t *testing.T) {
	ctrl := NewInputController(NewGuard(), &fakeCapture{}, &fakeRecognizer{})
	ctrl.Stop()
	assert.Equal(t, StateIdle, ctrl.State())
}

// =============================================================================
// OUTPUT CONTROLLER TESTS
// =============================================================================

func TestOutput_SpeakPlaysSynthesizedAudio(t *testing.T) {
	guard := NewGuard()
	play := &fakePlayback{}
	ctrl := NewOutputController(guard, play, &fakeSynth{audio: []byte("wav")})

	require.NoError(t, ctrl.Speak(context.Background(), "hello", "alena"))
	require.Equal(t, 1, play.playedCount())
	assert.Equal(t, "hello:wav", string(play.played[0]))
	assert.Equal(t, StateIdle, ctrl.State())
	assert.Equal(t, "none", guard.Holder())
}

func TestOutput_NewestUtteranceWins(t *testing.T) {
	guard := NewGuard()
	started := make(chan struct{})
	play := &fakePlayback{block: true, started: started}
	ctrl := NewOutputController(guard, play, &fakeSynth{audio: []byte("wav")})

	errCh := make(chan error, 1)
	go func() { errCh <- ctrl.Speak(context.Background(), "first", "alena") }()
	<-started

	play.mu.Lock()
	play.block = false
	play.mu.Unlock()

	require.NoError(t, ctrl.Speak(context.Background(), "second", "alena"))
	assert.NoError(t, <-errCh, "a superseded utterance is not an error")

	play.mu.Lock()
	last := string(play.played[len(play.played)-1])
	play.mu.Unlock()
	assert.Equal(t, "second:wav", last)
	assert.Equal(t, StateIdle, ctrl.State())
}

func TestOutput_StopCancelsPlayback(t *testing.T) {
	guard := NewGuard()
	started := make(chan struct{})
	play := &fakePlayback{block: true, started: started}
	ctrl := NewOutputController(guard, play, &fakeSynth{audio: []byte("wav")})

	errCh := make(chan error, 1)
	go func() { errCh <- ctrl.Speak(context.Background(), "long reply", "alena") }()
	<-started

	ctrl.Stop()
	assert.NoError(t, <-errCh, "a stopped utterance is not an error")
	assert.Equal(t, StateIdle, ctrl.State())
}

func TestOutput_StopWhileIdleIsNoop(t *testing.T) {
	ctrl := NewOutputController(NewGuard(), &fakePlayback{}, &fakeSynth{})
	ctrl.Stop()
	assert.Equal(t, StateIdle, ctrl.State())
}

func TestOutput_SpeakReplyGatedByPreference(t *testing.T) {
	guard := NewGuard()
	play := &fakePlayback{}
	ctrl := NewOutputController(guard, play, &fakeSynth{audio: []byte("wav")})

	require.NoError(t, ctrl.SpeakReply(context.Background(), "reply", "alena", false))
	assert.Zero(t, play.playedCount(), "voice output disabled must not synthesize")

	require.NoError(t, ctrl.SpeakReply(context.Background(), "reply", "alena", true))
	assert.Equal(t, 1, play.playedCount())
}

func TestOutput_SynthesisErrorSurfaces(t *testing.T) {
	ctrl := NewOutputController(NewGuard(), &fakePlayback{}, &fakeSynth{err: assert.AnError})
	err := ctrl.Speak(context.Background(), "text", "alena")
	assert.Error(t, err)
	assert.Equal(t, StateIdle, ctrl.State())
}

// =============================================================================
// GUARD TESTS
// =============================================================================

func TestGuard_StaleReleaseDoesNotFreeNewHold(t *testing.T) {
	g := NewGuard()

	var interrupted bool
	release, err := g.AcquireCapture(func() { interrupted = true })
	require.NoError(t, err)

	_ = g.AcquirePlayback(func() {})
	assert.True(t, interrupted, "playback must interrupt capture")

	release()
	assert.Equal(t, "playback", g.Holder(), "stale capture release must not free the device")
}

func TestGuard_CaptureNeverPreempts(t *testing.T) {
	g := NewGuard()
	_ = g.AcquirePlayback(func() {})

	_, err := g.AcquireCapture(func() {})
	assert.ErrorIs(t, err, ErrDeviceUnavailable)
}

func TestGuard_ReleaseFreesDevice(t *testing.T) {
	g := NewGuard()
	release, err := g.AcquireCapture(func() {})
	require.NoError(t, err)
	release()
	assert.Equal(t, "none", g.Holder())

	_, err = g.AcquireCapture(func() {})
	assert.NoError(t, err)
}

func TestGuard_ConcurrentAcquireRelease(t *testing.T) {
	g := NewGuard()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if release, err := g.AcquireCapture(func() {}); err == nil {
				time.Sleep(time.Millisecond)
				release()
			}
		}()
		go func() {
			defer wg.Done()
			release := g.AcquirePlayback(func() {})
			release()
		}()
	}
	wg.Wait()
}
