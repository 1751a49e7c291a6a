// Package llm provides chat completion clients for the structuring stage.
// The primary client speaks the OpenAI chat completions protocol against
// any compatible endpoint; a Gemini client is available as an alternate
// provider.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"marketbrief/internal/config"
)

const (
	// DefaultEndpoint is the OpenAI API base used when no endpoint is
	// configured.
	DefaultEndpoint = "https://api.openai.com/v1"
	// DefaultDeployment is the default chat model (or Azure deployment)
	// name.
	DefaultDeployment = "gpt-4o-mini"
	// DefaultMaxTokens bounds completion length for structuring calls.
	DefaultMaxTokens = 3000
	// DefaultTemperature keeps extraction output close to deterministic.
	DefaultTemperature = 0.2
)

// Completer generates a chat completion from a system and user prompt.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Config holds settings for the OpenAI-compatible chat client.
type Config struct {
	Endpoint    string
	APIKey      string
	Deployment  string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// ChatClient calls an OpenAI-compatible chat completions endpoint.
type ChatClient struct {
	endpoint    string
	apiKey      string
	deployment  string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
}

// NewChatClient creates a chat completion client. Zero-valued config
// fields fall back to the package defaults.
func NewChatClient(cfg Config) *ChatClient {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Deployment == "" {
		cfg.Deployment = DefaultDeployment
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	return &ChatClient{
		endpoint:    strings.TrimSuffix(cfg.Endpoint, "/"),
		apiKey:      cfg.APIKey,
		deployment:  cfg.Deployment,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{Timeout: cfg.Timeout},
	}
}

// Message represents a single chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest represents a chat completions request
type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

// chatResponse represents a chat completions response
type chatResponse struct {
	ID      string       `json:"id"`
	Choices []chatChoice `json:"choices"`
	Usage   *chatUsage   `json:"usage,omitempty"`
}

type chatChoice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason,omitempty"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Complete sends a system and user prompt pair and returns the assistant
// message content.
func (c *ChatClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	request := chatRequest{
		Model: c.deployment,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	reqBody, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint+"/chat/completions", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat completions API error (status %d): %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in chat completion response")
	}

	return chatResp.Choices[0].Message.Content, nil
}

// New builds a completion client for the configured AI provider. The
// default provider is "openai"; "gemini" selects the Gemini client.
func New(ctx context.Context, cfg config.AI) (Completer, error) {
	switch cfg.Provider {
	case "", "openai":
		if cfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("openAI API key is required. Set OPENAI_API_KEY environment variable or ai.openai.api_key in config file")
		}
		timeout, err := time.ParseDuration(cfg.OpenAI.Timeout)
		if err != nil || timeout <= 0 {
			timeout = 60 * time.Second
		}
		return NewChatClient(Config{
			Endpoint:    cfg.OpenAI.Endpoint,
			APIKey:      cfg.OpenAI.APIKey,
			Deployment:  cfg.OpenAI.Deployment,
			MaxTokens:   cfg.OpenAI.MaxTokens,
			Temperature: cfg.OpenAI.Temperature,
			Timeout:     timeout,
		}), nil
	case "gemini":
		return NewGeminiClient(ctx, GeminiConfig{
			APIKey:      cfg.Gemini.APIKey,
			Model:       cfg.Gemini.Model,
			MaxTokens:   cfg.Gemini.MaxTokens,
			Temperature: cfg.Gemini.Temperature,
		})
	default:
		return nil, fmt.Errorf("unknown AI provider %q (expected openai or gemini)", cfg.Provider)
	}
}
