// Copyright (c) 2024-2025 Bogdan Development
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"encoding/json"

	"golang.org/x/time/rate"

	"github.com/Bogdan27357/ai-assistant-bogdan-development-sub000/internal/model"
)

// OpenRouterID is the registry ID of the OpenRouter adapter.
const OpenRouterID = "openrouter"

// DefaultOpenRouterModel is used when no model override is configured.
const DefaultOpenRouterModel = "openrouter/auto"

// =============================================================================
// OPENROUTER ADAPTER
// =============================================================================

// OpenRouter adapts the OpenRouter chat-completions API, which fronts many
// upstream models behind one endpoint. This backend accepts multimodal
// input, so attachments ride inline in the same JSON body as the message
// instead of being folded into the prompt.
type OpenRouter struct {
	model   string
	limiter *rate.Limiter
}

// NewOpenRouter creates the OpenRouter adapter with the default model.
func NewOpenRouter() *OpenRouter {
	return &OpenRouter{model: DefaultOpenRouterModel, limiter: newAdapterLimiter()}
}

// WithModel overrides the model identifier sent upstream.
func (o *OpenRouter) WithModel(model string) *OpenRouter {
	if model != "" {
		o.model = model
	}
	return o
}

// ID returns the provider ID.
func (o *OpenRouter) ID() string { return OpenRouterID }

type openRouterMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// wireAttachment is the inline attachment shape carried next to the message.
type wireAttachment struct {
	Name      string `json:"name"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
	Payload   string `json:"payload"`
}

type openRouterRequest struct {
	Model       string              `json:"model"`
	Messages    []openRouterMessage `json:"messages"`
	Stream      bool                `json:"stream"`
	Attachments []wireAttachment    `json:"attachments,omitempty"`
}

type openRouterResponse struct {
	Choices []struct {
		Message      openRouterMessage `json:"message"`
		FinishReason string            `json:"finish_reason"`
	} `json:"choices"`
}

// Send implements Adapter.
func (o *OpenRouter) Send(ctx context.Context, cfg Config, history []*model.Message, input string, attachments []model.Attachment) (string, error) {
	req := openRouterRequest{
		Model:  o.model,
		Stream: false,
	}

	for _, msg := range history {
		req.Messages = append(req.Messages, openRouterMessage{
			Role:    msg.Role.String(),
			Content: msg.Content,
		})
	}
	req.Messages = append(req.Messages, openRouterMessage{
		Role:    model.RoleUser.String(),
		Content: input,
	})
	for _, att := range attachments {
		req.Attachments = append(req.Attachments, wireAttachment{
			Name:      att.Name,
			MimeType:  att.MimeType,
			SizeBytes: att.SizeBytes,
			Payload:   att.Payload,
		})
	}

	headers := map[string]string{
		"Authorization": "Bearer " + cfg.Credential,
	}

	body, err := postJSON(ctx, o.limiter, OpenRouterID, cfg.Endpoint, headers, req)
	if err != nil {
		return "", err
	}

	var resp openRouterResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &Error{
			Provider: OpenRouterID,
			Kind:     KindMalformedResponse,
			Message:  "failed to parse response: " + err.Error(),
		}
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &Error{
			Provider: OpenRouterID,
			Kind:     KindMalformedResponse,
			Message:  "response contained no choices",
		}
	}
	return resp.Choices[0].Message.Content, nil
}
