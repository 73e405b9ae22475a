package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/nutriguard/internal/domain/analysis"
)

const (
	maxTokens    = 2048
	DefaultModel = "gpt-4o-mini"

	// shorter keys are placeholders, never real provider keys
	minKeyLength = 10
)

// Client implements analysis.Model on top of any OpenAI-compatible chat endpoint.
type Client struct {
	api    *openai.Client
	apiKey string
	Model  string
}

// NewClient builds a client. An empty baseURL means the public OpenAI API; httpClient may be nil.
func NewClient(apiKey, baseURL, model string, httpClient *http.Client) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{api: openai.NewClientWithConfig(cfg), apiKey: apiKey, Model: model}
}

func (c *Client) Complete(ctx context.Context, p analysis.Prompt) (string, error) {
	// no usable key, no request
	if !usableKey(c.apiKey) {
		return "", analysis.ErrMissingCredentials
	}

	req := openai.ChatCompletionRequest{
		Model: c.Model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.System},
			{Role: openai.ChatMessageRoleUser, Content: p.User},
		},
	}
	// reasoning models (o1/o3/o4/gpt-5*) take MaxCompletionTokens instead of MaxTokens
	if isReasoningModel(c.Model) {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: completion has no choices", analysis.ErrMalformedOutput)
	}
	return resp.Choices[0].Message.Content, nil
}

func isReasoningModel(model string) bool {
	for _, p := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, p) {
			return true
		}
	}
	return false
}

func classify(err error) error {
	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	if status == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w: %w", analysis.ErrTransportFailure, analysis.ErrQuotaExceeded, err)
	}
	return fmt.Errorf("%w: failed to create chat completion: %w", analysis.ErrTransportFailure, err)
}

func usableKey(key string) bool {
	return len(strings.TrimSpace(key)) >= minKeyLength
}
