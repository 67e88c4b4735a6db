// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm wraps the OpenAI-compatible chat API used for keyword
// generation and match analysis, and provides the retry policy and the
// defensive JSON extraction both stages share.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pdiddy/bookwatch/pkg/types"
)

// ChatBackend abstracts the chat completion call so tests can supply a mock.
type ChatBackend interface {
	Chat(ctx context.Context, system, user string) (string, error)
}

// Client calls an OpenAI-compatible chat endpoint.
type Client struct {
	api *openai.Client
	cfg types.LLMConfig
}

// NewClient builds a Client from the configuration. A non-empty BaseURL
// redirects the SDK to an OpenAI-compatible gateway.
func NewClient(cfg types.LLMConfig) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	return &Client{
		api: openai.NewClientWithConfig(apiCfg),
		cfg: cfg,
	}
}

// Chat sends one system+user exchange and returns the assistant text.
// The request asks for a JSON object response; callers still run the
// result through ExtractJSON since gateways do not all honor the format
// hint.
func (c *Client) Chat(ctx context.Context, system, user string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// IsTransient reports whether err is worth retrying: rate limits,
// server-side errors, timeouts, and connection failures. Anything else
// (bad request, auth failure, unparseable response) is permanent.
func IsTransient(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
		return false
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return true
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
