// Copyright (c) 2024-2025 Bogdan Development
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package router dispatches user turns across an ordered provider fallback
// chain.
package router

import (
	"context"
	"log"

	"github.com/Bogdan27357/ai-assistant-bogdan-development-sub000/internal/config"
	"github.com/Bogdan27357/ai-assistant-bogdan-development-sub000/internal/model"
	"github.com/Bogdan27357/ai-assistant-bogdan-development-sub000/internal/provider"
	"github.com/Bogdan27357/ai-assistant-bogdan-development-sub000/internal/session"
)

// Persister records messages to durable storage. The router treats it as
// fire-and-forget: failures are logged loudly, never propagated, so
// conversation continuity always wins over durability.
type Persister interface {
	Append(sessionID, providerID string, role model.Role, content string) error
}

// =============================================================================
// ROUTER
// =============================================================================

// Router resolves a provider order for each dispatch and tries candidates in
// sequence until one succeeds or the chain is exhausted.
type Router struct {
	providers *provider.Registry
	persist   Persister
	onNotice  func(Notice)
}

// New creates a router over the given provider registry.
func New(providers *provider.Registry) *Router {
	return &Router{providers: providers}
}

// WithPersister sets the durable message store.
func (r *Router) WithPersister(p Persister) *Router {
	r.persist = p
	return r
}

// WithNoticeHandler sets the handler for informational notices such as a
// mid-chain provider switch. Surfacing the switch notice is required
// behavior, so wiring a handler is expected in any interactive caller.
func (r *Router) WithNoticeHandler(fn func(Notice)) *Router {
	r.onNotice = fn
	return r
}

// =============================================================================
// DISPATCH
// =============================================================================

// Dispatch runs one full attempt to get an assistant reply for one user
// turn, trying each candidate provider at most once.
//
// The call is atomic with respect to the session log: the user message is
// appended before the first provider attempt, the assistant message only on
// overall success, and on overall failure a single synthetic assistant
// message carrying the remediation hint, so the log always stays a strict
// alternation of turns. At most one dispatch may hold a session's slot;
// concurrent calls fail with session.ErrDispatchInFlight.
//
// Cancellation: when ctx is canceled mid-chain the dispatch returns the
// context error without appending an assistant message. The just-appended
// user turn is retracted so the log never ends on an unanswered user
// message and the session stays sendable; the slot is released.
func (r *Router) Dispatch(ctx context.Context, sess *session.Manager, input string, attachments []model.Attachment, prefs config.UserPreferences) (Result, error) {
	if err := sess.BeginDispatch(); err != nil {
		return Result{}, err
	}
	defer sess.EndDispatch()

	sessionID := sess.GetOrCreate().ID
	history := sess.HistoryWindow(prefs.MaxHistory)
	candidates := r.providers.Candidates(prefs.PreferredProvider)

	// The user's turn enters the log before dispatch starts.
	userMsg := model.NewUserMessage(input, attachments...)
	if err := sess.Append(userMsg); err != nil {
		return Result{}, err
	}
	r.persistRow(sessionID, r.turnProviderID(prefs.PreferredProvider, candidates), model.RoleUser, userMsg.Content)

	if len(candidates) == 0 {
		derr := &DispatchError{Dominant: provider.KindMissingCredential}
		r.appendFailureNotice(sess, sessionID, derr)
		return Result{}, derr
	}

	var attempts []Attempt
	for _, cand := range candidates {
		reply, err := cand.Adapter.Send(ctx, cand.Config, history, input, attachments)
		if err == nil {
			return r.finishSuccess(sess, sessionID, prefs.PreferredProvider, cand, reply, attempts), nil
		}

		// An abandoned dispatch stops here: no synthetic message, the
		// user turn comes back out so the next send is not refused, and
		// the slot is released by the deferred EndDispatch.
		if ctx.Err() != nil {
			sess.Retract(userMsg)
			return Result{}, ctx.Err()
		}

		kind := provider.KindOf(err)
		attempts = append(attempts, Attempt{ProviderID: cand.Config.ID, Kind: kind, Err: err})
		log.Printf("dispatch: provider %s (key %s) failed (%s), trying next candidate",
			cand.Config.ID, cand.Config.CredentialFingerprint(), kind)
	}

	derr := &DispatchError{Dominant: dominantKind(attempts), Attempts: attempts}
	r.appendFailureNotice(sess, sessionID, derr)
	return Result{Attempts: attempts}, derr
}

// finishSuccess appends and persists the assistant turn and emits the
// switch notice when the reply did not come from the preferred provider.
func (r *Router) finishSuccess(sess *session.Manager, sessionID, preferredID string, cand provider.Candidate, reply string, attempts []Attempt) Result {
	usedID := cand.Config.ID
	attempts = append(attempts, Attempt{ProviderID: usedID})

	if err := sess.Append(model.NewAssistantMessage(reply)); err != nil {
		log.Printf("dispatch: failed to append assistant message: %v", err)
	}
	r.persistRow(sessionID, usedID, model.RoleAssistant, reply)

	switched := preferredID != "" && usedID != preferredID
	if switched && r.onNotice != nil {
		r.onNotice(Notice{
			FromProviderID: preferredID,
			ToProviderID:   usedID,
			Text:           "Switched to backup assistant: " + cand.Config.DisplayName,
		})
	}

	return Result{
		Reply:          reply,
		UsedProviderID: usedID,
		Switched:       switched,
		Attempts:       attempts,
	}
}

// appendFailureNotice appends the single synthetic assistant message for a
// terminal dispatch failure, keeping the log alternation intact.
func (r *Router) appendFailureNotice(sess *session.Manager, sessionID string, derr *DispatchError) {
	notice := model.NewErrorNotice(derr.Remediation())
	if err := sess.Append(notice); err != nil {
		log.Printf("dispatch: failed to append error notice: %v", err)
		return
	}
	r.persistRow(sessionID, "", model.RoleAssistant, notice.Content)
}

// persistRow writes one message row, logging failures instead of surfacing
// them.
func (r *Router) persistRow(sessionID, providerID string, role model.Role, content string) {
	if r.persist == nil {
		return
	}
	if err := r.persist.Append(sessionID, providerID, role, content); err != nil {
		log.Printf("persist: failed to append %s message for session %s: %v", role, sessionID, err)
	}
}

// turnProviderID picks the provider id recorded for the user's turn: the
// preferred provider when set, otherwise the head of the chain.
func (r *Router) turnProviderID(preferredID string, candidates []provider.Candidate) string {
	if preferredID != "" {
		return preferredID
	}
	if len(candidates) > 0 {
		return candidates[0].Config.ID
	}
	return ""
}

// dominantKind picks the most actionable error kind among the attempts.
// A user-fixable missing credential outranks a generic network failure even
// when both occurred.
func dominantKind(attempts []Attempt) provider.ErrorKind {
	dominant := provider.KindUnknown
	for _, a := range attempts {
		if a.Kind.Actionability() > dominant.Actionability() {
			dominant = a.Kind
		}
	}
	return dominant
}
