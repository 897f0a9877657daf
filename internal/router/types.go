// Copyright (c) 2024-2025 Bogdan Development
// SPDX-License-Identifier: AGPL-3.0-or-later

package router

import (
	"github.com/Bogdan27357/ai-assistant-bogdan-development-sub000/internal/provider"
)

// ============================================================================
// DISPATCH RESULT TYPES
// ============================================================================

// Attempt records one provider tried during a single dispatch. Attempts are
// ephemeral: they are discarded when the dispatch resolves, except as part
// of the final error summary.
type Attempt struct {
	ProviderID string
	Kind       provider.ErrorKind
	Err        error
}

// Result is the outcome of a successful dispatch.
type Result struct {
	// Reply is the assistant's reply text.
	Reply string
	// UsedProviderID identifies the provider that produced the reply.
	UsedProviderID string
	// Switched is true when the reply came from a provider other than the
	// preferred one; callers surface this as a non-fatal notice.
	Switched bool
	// Attempts lists the providers tried, in order, including the success.
	Attempts []Attempt
}

// Notice is an informational, non-blocking event emitted during dispatch.
type Notice struct {
	// FromProviderID is the provider the dispatch was asked to use.
	FromProviderID string
	// ToProviderID is the provider that actually answered.
	ToProviderID string
	// Text is the user-facing notice text.
	Text string
}

// ============================================================================
// DISPATCH ERROR
// ============================================================================

// DispatchError is the terminal error returned when every candidate in the
// fallback chain failed. Dominant carries the most actionable underlying
// kind so the user-facing remediation hint is the one the user can act on.
type DispatchError struct {
	Dominant provider.ErrorKind
	Attempts []Attempt
}

// Error implements the error interface.
func (e *DispatchError) Error() string {
	if len(e.Attempts) == 0 {
		return "no providers available for dispatch"
	}
	return "all providers failed; dominant cause: " + e.Dominant.String()
}

// Remediation returns the user-facing hint for the dominant error kind.
// The hint names what the user can fix, never a raw stack trace.
func (e *DispatchError) Remediation() string {
	switch e.Dominant {
	case provider.KindMissingCredential:
		return "The assistant could not sign in to any AI service. Open settings and configure an API credential, then try again."
	case provider.KindQuotaExceeded:
		return "The request limit for the configured AI services has been reached. Wait a moment and try again, or switch to another assistant in the menu."
	case provider.KindMalformedResponse:
		return "The AI service returned an unexpected answer. Please try again; if the problem persists, switch to another assistant."
	case provider.KindNetworkFailure:
		return "Could not reach any AI service. Check your connectivity and try again."
	default:
		return "Something went wrong while contacting the AI services. Please try again."
	}
}
