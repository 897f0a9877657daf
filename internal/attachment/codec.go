// Copyright (c) 2024-2025 Bogdan Development
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package attachment encodes uploaded files for transport to providers.
package attachment

import (
	"encoding/base64"
	"fmt"

	"github.com/Bogdan27357/ai-assistant-bogdan-development-sub000/internal/model"
)

// DefaultMaxSizeBytes is the default attachment size ceiling (5MB).
// Files at or above the ceiling are rejected before encoding.
const DefaultMaxSizeBytes = 5 * 1024 * 1024

// ErrTooLarge is returned when a file exceeds the configured size ceiling.
// Use errors.Is(err, ErrTooLarge) to check for this error.
var ErrTooLarge = &CodecError{Message: "attachment exceeds size ceiling"}

// CodecError represents an attachment encoding error.
type CodecError struct {
	Message string
}

// Error implements the error interface.
func (e *CodecError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing codec errors.
func (e *CodecError) Is(target error) bool {
	t, ok := target.(*CodecError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// =============================================================================
// CODEC
// =============================================================================

// Codec turns raw uploaded files into transportable attachments.
// Encoding is a lossless, deterministic byte-preserving transform so the
// payload survives any provider's JSON transport unchanged.
type Codec struct {
	// MaxSizeBytes is the size ceiling; files at or above it are rejected.
	MaxSizeBytes int64
}

// NewCodec creates a codec with the default size ceiling.
func NewCodec() *Codec {
	return &Codec{MaxSizeBytes: DefaultMaxSizeBytes}
}

// NewCodecWithLimit creates a codec with a custom size ceiling.
// A non-positive limit falls back to the default.
func NewCodecWithLimit(maxSizeBytes int64) *Codec {
	if maxSizeBytes <= 0 {
		maxSizeBytes = DefaultMaxSizeBytes
	}
	return &Codec{MaxSizeBytes: maxSizeBytes}
}

// Encode validates and encodes a raw file into an attachment.
// The size check runs before any encoding work so oversized uploads are
// rejected cheaply with ErrTooLarge.
func (c *Codec) Encode(name, mimeType string, raw []byte) (model.Attachment, error) {
	if int64(len(raw)) >= c.MaxSizeBytes {
		return model.Attachment{}, fmt.Errorf("%w: %s is %d bytes (ceiling %d)",
			ErrTooLarge, name, len(raw), c.MaxSizeBytes)
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	return model.Attachment{
		Name:      name,
		MimeType:  mimeType,
		SizeBytes: int64(len(raw)),
		Payload:   base64.StdEncoding.EncodeToString(raw),
	}, nil
}

// Decode recovers the original bytes from an attachment payload.
// Attachments are write-once and provider-bound, so decoding is only needed
// for prompt inlining of text files and for round-trip verification.
func Decode(a model.Attachment) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(a.Payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode attachment %s: %w", a.Name, err)
	}
	return raw, nil
}
