// Package openai talks to OpenAI-compatible chat completion endpoints.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/spigell/cv-ranker/internal/ai"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-3.5-turbo"
	defaultTimeout = 2 * time.Minute

	completionsPath = "/chat/completions"
)

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float32   `json:"temperature"`
	MaxTokens   int32     `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// APIError is a non-2xx answer of the completion endpoint.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.Type != "" {
		return fmt.Sprintf("status %d (%s): %s", e.StatusCode, e.Type, msg)
	}
	return fmt.Sprintf("status %d: %s", e.StatusCode, msg)
}

// Config describes the endpoint and credentials.
type Config struct {
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
	Settings ai.Settings
}

// Client implements ai.Completer over the chat completions API.
type Client struct {
	http     *resty.Client
	settings ai.Settings
}

func New(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	settings := cfg.Settings.WithDefaults()
	if strings.TrimSpace(settings.Model) == "" {
		settings.Model = defaultModel
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{http: httpClient, settings: settings}, nil
}

// Complete sends the system instruction and prompt and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	messages := make([]message, 0, 2)
	if system := strings.TrimSpace(c.settings.SystemInstruction); system != "" {
		messages = append(messages, message{Role: "system", Content: system})
	}
	messages = append(messages, message{Role: "user", Content: prompt})

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model:       c.settings.Model,
			Messages:    messages,
			Temperature: *c.settings.Temperature,
			MaxTokens:   c.settings.MaxOutputTokens,
		}).
		SetResult(&chatResponse{}).
		SetError(&errorResponse{}).
		Post(completionsPath)
	if err != nil {
		return "", fmt.Errorf("chat completion request: %w", err)
	}

	if resp.IsError() {
		apiErr := &APIError{StatusCode: resp.StatusCode()}
		if body, ok := resp.Error().(*errorResponse); ok && body != nil {
			apiErr.Type = body.Error.Type
			apiErr.Message = body.Error.Message
		}
		return "", apiErr
	}

	result, ok := resp.Result().(*chatResponse)
	if !ok || result == nil {
		return "", fmt.Errorf("malformed chat completion response: %s", resp.Status())
	}

	if len(result.Choices) == 0 {
		return "", fmt.Errorf("malformed chat completion response: no choices")
	}

	content := strings.TrimSpace(result.Choices[0].Message.Content)
	if content == "" {
		return "", ai.ErrEmptyResponse
	}

	return content, nil
}

func (c *Client) Model() string {
	return c.settings.Model
}
