// Copyright (c) 2024-2025 Bogdan Development
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// ATTACHMENT TYPE
// =============================================================================

// Attachment is an uploaded file encoded for transport. Created at upload
// time by the attachment codec, immutable, owned by the message it was
// attached to. Payload is the base64 form of the original bytes; SizeBytes
// is the size of the raw file before encoding.
type Attachment struct {
	Name      string `json:"name"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
	Payload   string `json:"payload"`
}

// IsText reports whether the attachment carries a text payload that adapters
// may inline into the prompt for providers without multimodal support.
func (a Attachment) IsText() bool {
	switch a.MimeType {
	case "text/plain", "text/markdown", "text/csv", "application/json":
		return true
	}
	return len(a.MimeType) > 5 && a.MimeType[:5] == "text/"
}
