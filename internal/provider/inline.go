// Copyright (c) 2024-2025 Bogdan Development
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/Bogdan27357/ai-assistant-bogdan-development-sub000/internal/model"
)

// inlineAttachments folds text attachments into the prompt for backends
// without multimodal input. Text payloads are decoded and embedded between
// file markers; binary files are listed by name so the model at least knows
// they exist. Payloads are never re-encoded.
func inlineAttachments(input string, attachments []model.Attachment) string {
	if len(attachments) == 0 {
		return input
	}

	var sb strings.Builder
	sb.WriteString(input)
	sb.WriteString("\n\nUploaded files for analysis:")

	for _, att := range attachments {
		if att.IsText() {
			raw, err := base64.StdEncoding.DecodeString(att.Payload)
			if err != nil {
				sb.WriteString(fmt.Sprintf("\n\n--- File: %s (unreadable) ---", att.Name))
				continue
			}
			sb.WriteString(fmt.Sprintf("\n\n--- File: %s ---\n%s\n--- End of file ---", att.Name, raw))
			continue
		}
		sb.WriteString(fmt.Sprintf("\n\n--- File: %s (%s, %d bytes, binary) ---", att.Name, att.MimeType, att.SizeBytes))
	}
	return sb.String()
}
