// Copyright (c) 2024-2025 Bogdan Development
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package provider defines the uniform contract to interchangeable AI
// backends and the concrete adapters that implement it.
package provider

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"github.com/Bogdan27357/ai-assistant-bogdan-development-sub000/internal/model"
)

// =============================================================================
// ERROR KINDS
// =============================================================================

// ErrorKind classifies a provider failure for routing decisions.
type ErrorKind int

const (
	// KindUnknown is an unclassified failure.
	KindUnknown ErrorKind = iota
	// KindNetworkFailure covers transport errors and provider-side 5xx.
	KindNetworkFailure
	// KindMalformedResponse covers unparseable envelopes and empty replies.
	KindMalformedResponse
	// KindQuotaExceeded covers rate limits and exhausted credit.
	KindQuotaExceeded
	// KindMissingCredential covers absent, rejected, or expired credentials.
	KindMissingCredential
)

// String returns the human-readable name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindNetworkFailure:
		return "NetworkFailure"
	case KindMalformedResponse:
		return "MalformedResponse"
	case KindQuotaExceeded:
		return "QuotaExceeded"
	case KindMissingCredential:
		return "MissingCredential"
	default:
		return "Unknown"
	}
}

// Actionability ranks kinds by how directly the user can fix them.
// A missing credential beats a generic network error when a terminal
// dispatch error has to pick one dominant cause.
func (k ErrorKind) Actionability() int {
	switch k {
	case KindMissingCredential:
		return 4
	case KindQuotaExceeded:
		return 3
	case KindMalformedResponse:
		return 2
	case KindNetworkFailure:
		return 1
	default:
		return 0
	}
}

// Error is a classified provider failure. Adapters never swallow failures:
// every non-success produces an Error, never a silent empty reply.
type Error struct {
	Provider string
	Kind     ErrorKind
	Status   int
	Message  string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (HTTP %d): %s", e.Provider, e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Message)
}

// KindOf extracts the error kind from any error chain.
// Non-provider errors classify as KindNetworkFailure when they stem from
// transport (context errors included), otherwise KindUnknown.
func KindOf(err error) ErrorKind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindNetworkFailure
	}
	return KindUnknown
}

// =============================================================================
// ADAPTER CONTRACT
// =============================================================================

// Adapter normalizes one backend's request/response shape. Send serializes
// the ordered history plus the new input into the backend's wire format,
// attaches encoded files where the backend supports them, and parses the
// success or error envelope into a reply string or a classified *Error.
//
// The Config is passed per call so credential and endpoint updates are
// last-writer-wins and visible to the next dispatch, never mid-flight.
type Adapter interface {
	ID() string
	Send(ctx context.Context, cfg Config, history []*model.Message, input string, attachments []model.Attachment) (string, error)
}

// =============================================================================
// PROVIDER CONFIG
// =============================================================================

// Config describes one supported backend. Enabled=false or an absent
// credential removes the provider from the fallback chain at dispatch time.
type Config struct {
	ID          string
	DisplayName string
	Endpoint    string
	Credential  string
	Enabled     bool
}

// CredentialPresent reports whether a credential is configured.
func (c Config) CredentialPresent() bool {
	return c.Credential != ""
}

// Dispatchable reports whether the provider may appear in a fallback chain.
func (c Config) Dispatchable() bool {
	return c.Enabled && c.CredentialPresent()
}

// CredentialFingerprint returns a short SHA-256 fingerprint of the
// credential for logging. The credential itself is never logged.
func (c Config) CredentialFingerprint() string {
	if c.Credential == "" {
		return "none"
	}
	h := sha256.Sum256([]byte(c.Credential))
	return hex.EncodeToString(h[:4])
}

// =============================================================================
// REGISTRY
// =============================================================================

// Candidate pairs an adapter with a snapshot of its config for one dispatch.
type Candidate struct {
	Config  Config
	Adapter Adapter
}

// Registry holds the known providers in fixed priority order. Config updates
// are last-writer-wins; each dispatch takes a snapshot via Candidates.
type Registry struct {
	mu       sync.RWMutex
	order    []string
	configs  map[string]Config
	adapters map[string]Adapter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		configs:  make(map[string]Config),
		adapters: make(map[string]Adapter),
	}
}

// Register adds a provider at the end of the priority order.
// Registering an existing ID replaces its config and adapter in place.
func (r *Registry) Register(cfg Config, a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.configs[cfg.ID]; !exists {
		r.order = append(r.order, cfg.ID)
	}
	r.configs[cfg.ID] = cfg
	r.adapters[cfg.ID] = a
}

// Update replaces the config for a registered provider. Unknown IDs are
// ignored. The change is visible to the next Candidates call, never to a
// dispatch already in flight.
func (r *Registry) Update(cfg Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.configs[cfg.ID]; exists {
		r.configs[cfg.ID] = cfg
	}
}

// Config returns the current config for a provider ID.
func (r *Registry) Config(id string) (Config, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.configs[id]
	return cfg, ok
}

// IDs returns the provider IDs in priority order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Candidates builds the ordered fallback chain for one dispatch: the
// preferred provider first (when dispatchable), then the remaining
// dispatchable providers in registry priority order.
func (r *Registry) Candidates(preferredID string) []Candidate {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Candidate
	appendIf := func(id string) {
		cfg, ok := r.configs[id]
		if !ok || !cfg.Dispatchable() {
			return
		}
		out = append(out, Candidate{Config: cfg, Adapter: r.adapters[id]})
	}

	appendIf(preferredID)
	for _, id := range r.order {
		if id == preferredID {
			continue
		}
		appendIf(id)
	}
	return out
}
