// Copyright (c) 2024-2025 Bogdan Development
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Configuration constants shared by all HTTP adapters.
const (
	// DefaultTimeout is the default timeout for provider requests.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// Response size limit prevents memory exhaustion on a broken backend.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB
)

// sharedHTTPClient is the pooled HTTP client used by every adapter.
// Connection pooling reduces TCP handshake overhead across fallback chains.
var sharedHTTPClient = &http.Client{
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	},
	Timeout: DefaultTimeout,
}

// newAdapterLimiter builds the client-side rate limiter adapters use so a
// failing-over dispatch cannot hammer one backend: 3 requests burst,
// refilling once per second.
func newAdapterLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(time.Second), 3)
}

// apiErrorEnvelope matches the common {"error": {...}} failure body. Some
// backends send a bare string instead, so both shapes are tried.
type apiErrorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type apiErrorString struct {
	Error string `json:"error"`
}

// readResponse reads the response body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	limited := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// classifyStatus maps a non-2xx response to a classified *Error.
func classifyStatus(providerID string, status int, body []byte) *Error {
	message := extractErrorMessage(body)

	var kind ErrorKind
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = KindMissingCredential
	case status == http.StatusPaymentRequired || status == http.StatusTooManyRequests:
		kind = KindQuotaExceeded
	case status >= 500:
		kind = KindNetworkFailure
	default:
		kind = KindMalformedResponse
	}

	return &Error{Provider: providerID, Kind: kind, Status: status, Message: message}
}

// extractErrorMessage pulls a human-readable message out of an error body.
func extractErrorMessage(body []byte) string {
	var env apiErrorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error.Message != "" {
		return env.Error.Message
	}
	var str apiErrorString
	if err := json.Unmarshal(body, &str); err == nil && str.Error != "" {
		return str.Error
	}
	msg := string(body)
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

// postJSON performs one rate-limited JSON POST and returns the raw success
// body. Failures come back as classified *Error values; there is exactly one
// attempt per call, fallback across providers is the router's job.
func postJSON(ctx context.Context, limiter *rate.Limiter, providerID, endpoint string, headers map[string]string, reqBody any) ([]byte, error) {
	if !limiter.Allow() {
		return nil, &Error{
			Provider: providerID,
			Kind:     KindQuotaExceeded,
			Message:  "client-side rate limit exceeded",
		}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := sharedHTTPClient.Do(req)

	// Clear Authorization immediately after the request to keep it out of logs.
	req.Header.Del("Authorization")

	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &Error{
			Provider: providerID,
			Kind:     KindNetworkFailure,
			Message:  err.Error(),
		}
	}
	defer resp.Body.Close()

	log.Printf("provider %s: %d %s (%v)", providerID, resp.StatusCode, resp.Status, time.Since(start))

	body, err := readResponse(resp)
	if err != nil {
		return nil, &Error{
			Provider: providerID,
			Kind:     KindMalformedResponse,
			Status:   resp.StatusCode,
			Message:  err.Error(),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classifyStatus(providerID, resp.StatusCode, body)
	}
	return body, nil
}
