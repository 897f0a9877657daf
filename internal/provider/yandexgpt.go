// Copyright (c) 2024-2025 Bogdan Development
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"encoding/json"

	"golang.org/x/time/rate"

	"github.com/Bogdan27357/ai-assistant-bogdan-development-sub000/internal/model"
)

// YandexGPTID is the registry ID of the YandexGPT adapter.
const YandexGPTID = "yandex-gpt"

// =============================================================================
// YANDEXGPT ADAPTER
// =============================================================================

// YandexGPT adapts the YandexGPT completion API. The backend takes messages
// as {role, text} pairs and wraps the reply in result.alternatives; no
// multimodal input, so attachments are inlined into the prompt.
type YandexGPT struct {
	limiter *rate.Limiter
}

// NewYandexGPT creates the YandexGPT adapter.
func NewYandexGPT() *YandexGPT {
	return &YandexGPT{limiter: newAdapterLimiter()}
}

// ID returns the provider ID.
func (y *YandexGPT) ID() string { return YandexGPTID }

type yandexMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type yandexRequest struct {
	ModelURI          string `json:"modelUri,omitempty"`
	CompletionOptions struct {
		Temperature float64 `json:"temperature"`
		MaxTokens   int     `json:"maxTokens"`
	} `json:"completionOptions"`
	Messages []yandexMessage `json:"messages"`
}

type yandexResponse struct {
	Result struct {
		Alternatives []struct {
			Message struct {
				Role string `json:"role"`
				Text string `json:"text"`
			} `json:"message"`
		} `json:"alternatives"`
	} `json:"result"`
}

// Send implements Adapter.
func (y *YandexGPT) Send(ctx context.Context, cfg Config, history []*model.Message, input string, attachments []model.Attachment) (string, error) {
	req := yandexRequest{}
	req.CompletionOptions.Temperature = 0.7
	req.CompletionOptions.MaxTokens = 1000

	for _, msg := range history {
		req.Messages = append(req.Messages, yandexMessage{
			Role: msg.Role.String(),
			Text: msg.Content,
		})
	}
	req.Messages = append(req.Messages, yandexMessage{
		Role: model.RoleUser.String(),
		Text: inlineAttachments(input, attachments),
	})

	headers := map[string]string{
		"Authorization": "Api-Key " + cfg.Credential,
	}

	body, err := postJSON(ctx, y.limiter, YandexGPTID, cfg.Endpoint, headers, req)
	if err != nil {
		return "", err
	}

	var resp yandexResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &Error{
			Provider: YandexGPTID,
			Kind:     KindMalformedResponse,
			Message:  "failed to parse response: " + err.Error(),
		}
	}
	if len(resp.Result.Alternatives) == 0 || resp.Result.Alternatives[0].Message.Text == "" {
		return "", &Error{
			Provider: YandexGPTID,
			Kind:     KindMalformedResponse,
			Message:  "response contained no alternatives",
		}
	}
	return resp.Result.Alternatives[0].Message.Text, nil
}
