// Copyright (c) 2024-2025 Bogdan Development
// SPDX-License-Identifier: AGPL-3.0-or-later

package voice

import (
	"context"
	"sync"
)

type deviceOwner int

const (
	ownerNone deviceOwner = iota
	ownerCapture
	ownerPlayback
)

// Guard arbitrates the single audio device between capture and playback.
//
// The policy is asymmetric. Playback always wins: acquiring it interrupts
// an active capture, because speaking a reply into a live microphone would
// have the assistant transcribe itself. Capture never preempts; a listen
// request while audio is playing is refused.
type Guard struct {
	mu        sync.Mutex
	owner     deviceOwner
	gen       uint64
	interrupt context.CancelFunc
}

// NewGuard creates a device guard with the device free.
func NewGuard() *Guard {
	return &Guard{}
}

// AcquireCapture takes the device for recording. interrupt is invoked if
// playback later preempts this hold. The returned release is safe to call
// after preemption; it only frees the device if this hold still owns it.
func (g *Guard) AcquireCapture(interrupt context.CancelFunc) (release func(), err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.owner != ownerNone {
		return nil, ErrDeviceUnavailable
	}
	g.owner = ownerCapture
	g.interrupt = interrupt
	g.gen++
	return g.releaseFunc(g.gen), nil
}

// AcquirePlayback takes the device for playing audio, interrupting any
// active capture or prior playback hold.
func (g *Guard) AcquirePlayback(interrupt context.CancelFunc) (release func()) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.owner != ownerNone && g.interrupt != nil {
		g.interrupt()
	}
	g.owner = ownerPlayback
	g.interrupt = interrupt
	g.gen++
	return g.releaseFunc(g.gen)
}

// Holder reports which side currently owns the device. Intended for tests
// and status displays.
func (g *Guard) Holder() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch g.owner {
	case ownerCapture:
		return "capture"
	case ownerPlayback:
		return "playback"
	default:
		return "none"
	}
}

func (g *Guard) releaseFunc(gen uint64) func() {
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.gen != gen {
			// Preempted; the device belongs to someone else now.
			return
		}
		g.owner = ownerNone
		g.interrupt = nil
	}
}
