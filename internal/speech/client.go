// Copyright (c) 2024-2025 Bogdan Development
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package speech talks to the universal speech endpoint handling both
// recognition and synthesis.
package speech

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single speech request.
const DefaultTimeout = 30 * time.Second

// MaxResponseSize caps a speech response body. Synthesized audio for a chat
// reply fits comfortably under this.
const MaxResponseSize = 20 * 1024 * 1024

// ProviderYandex and ProviderSber select the speech backend behind the
// endpoint.
const (
	ProviderYandex = "yandex"
	ProviderSber   = "sber"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrorKind classifies speech failures for the voice state machines.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindRecognitionFailure means audio could not be turned into text.
	KindRecognitionFailure
	// KindSynthesisFailure means text could not be turned into audio.
	KindSynthesisFailure
	// KindUnreachable means the endpoint did not answer.
	KindUnreachable
)

// Error is a classified speech endpoint failure.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string { return "speech: " + e.Message }

// Is reports kind equality so errors.Is works on sentinel comparisons.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Kind == other.Kind
	}
	return false
}

// KindOf extracts the classified kind from err.
func KindOf(err error) ErrorKind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}

// =============================================================================
// CLIENT
// =============================================================================

// Client calls the speech endpoint. The zero value is not usable; construct
// with NewClient.
type Client struct {
	endpoint string
	provider string
	http     *http.Client
}

// NewClient creates a speech client for the given endpoint URL.
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		provider: ProviderYandex,
		http: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				DialContext:         (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
				MaxIdleConns:        4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// WithProvider selects the backend the endpoint should route to.
func (c *Client) WithProvider(provider string) *Client {
	if provider != "" {
		c.provider = provider
	}
	return c
}

type speechRequest struct {
	Action   string `json:"action"`
	Provider string `json:"provider"`
	Audio    string `json:"audio,omitempty"`
	Text     string `json:"text,omitempty"`
	Voice    string `json:"voice,omitempty"`
	Language string `json:"language,omitempty"`
}

type speechResponse struct {
	Result string `json:"result"`
	Audio  string `json:"audio"`
	Error  string `json:"error"`
}

// Recognize sends captured audio and returns the transcript. An empty
// transcript for silent audio is not an error.
func (c *Client) Recognize(ctx context.Context, audio []byte, lang string) (string, error) {
	if len(audio) == 0 {
		return "", &Error{Kind: KindRecognitionFailure, Message: "no audio to recognize"}
	}
	req := speechRequest{
		Action:   "stt",
		Provider: c.provider,
		Audio:    base64.StdEncoding.EncodeToString(audio),
		Language: lang,
	}
	resp, err := c.post(ctx, req, KindRecognitionFailure)
	if err != nil {
		return "", err
	}
	return resp.Result, nil
}

// Synthesize turns reply text into audio bytes ready for playback.
func (c *Client) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if text == "" {
		return nil, &Error{Kind: KindSynthesisFailure, Message: "no text to synthesize"}
	}
	req := speechRequest{
		Action:   "tts",
		Provider: c.provider,
		Text:     text,
		Voice:    voice,
	}
	resp, err := c.post(ctx, req, KindSynthesisFailure)
	if err != nil {
		return nil, err
	}
	if resp.Audio == "" {
		return nil, &Error{Kind: KindSynthesisFailure, Message: "response contained no audio"}
	}
	audio, err := base64.StdEncoding.DecodeString(resp.Audio)
	if err != nil {
		return nil, &Error{Kind: KindSynthesisFailure, Message: "audio payload is not valid base64"}
	}
	return audio, nil
}

// post performs one request against the endpoint, classifying failures with
// the caller's kind.
func (c *Client) post(ctx context.Context, req speechRequest, failKind ErrorKind) (*speechResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &Error{Kind: failKind, Message: "failed to encode request: " + err.Error()}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Kind: KindUnreachable, Message: "failed to build request: " + err.Error()}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &Error{Kind: KindUnreachable, Message: "request failed: " + err.Error()}
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, MaxResponseSize))
	if err != nil {
		return nil, &Error{Kind: KindUnreachable, Message: "failed to read response: " + err.Error()}
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, &Error{
			Kind:    failKind,
			Message: fmt.Sprintf("endpoint returned %d", httpResp.StatusCode),
		}
	}

	var resp speechResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, &Error{Kind: failKind, Message: "failed to parse response: " + err.Error()}
	}
	if resp.Error != "" {
		return nil, &Error{Kind: failKind, Message: resp.Error}
	}
	return &resp, nil
}
