// Copyright (c) 2024-2025 Bogdan Development
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"encoding/json"

	"golang.org/x/time/rate"

	"github.com/Bogdan27357/ai-assistant-bogdan-development-sub000/internal/model"
)

// GigaChatID is the registry ID of the GigaChat adapter.
const GigaChatID = "gigachat"

// =============================================================================
// GIGACHAT ADAPTER
// =============================================================================

// GigaChat adapts Sber's GigaChat chat-completions API. The wire shape is
// OpenAI-compatible ({role, content} messages, choices in the reply); the
// credential is a bearer access token. No multimodal input, so attachments
// are inlined into the prompt.
type GigaChat struct {
	limiter *rate.Limiter
}

// NewGigaChat creates the GigaChat adapter.
func NewGigaChat() *GigaChat {
	return &GigaChat{limiter: newAdapterLimiter()}
}

// ID returns the provider ID.
func (g *GigaChat) ID() string { return GigaChatID }

type gigaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type gigaRequest struct {
	Model       string        `json:"model"`
	Messages    []gigaMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type gigaResponse struct {
	Choices []struct {
		Message      gigaMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

// Send implements Adapter.
func (g *GigaChat) Send(ctx context.Context, cfg Config, history []*model.Message, input string, attachments []model.Attachment) (string, error) {
	req := gigaRequest{
		Model:       "GigaChat",
		Temperature: 0.7,
		MaxTokens:   1000,
	}

	for _, msg := range history {
		req.Messages = append(req.Messages, gigaMessage{
			Role:    msg.Role.String(),
			Content: msg.Content,
		})
	}
	req.Messages = append(req.Messages, gigaMessage{
		Role:    model.RoleUser.String(),
		Content: inlineAttachments(input, attachments),
	})

	headers := map[string]string{
		"Authorization": "Bearer " + cfg.Credential,
	}

	body, err := postJSON(ctx, g.limiter, GigaChatID, cfg.Endpoint, headers, req)
	if err != nil {
		return "", err
	}

	var resp gigaResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &Error{
			Provider: GigaChatID,
			Kind:     KindMalformedResponse,
			Message:  "failed to parse response: " + err.Error(),
		}
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &Error{
			Provider: GigaChatID,
			Kind:     KindMalformedResponse,
			Message:  "response contained no choices",
		}
	}
	return resp.Choices[0].Message.Content, nil
}
