package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultGeminiModel is the Gemini model used when none is configured.
const DefaultGeminiModel = "gemini-2.5-flash-preview-05-20"

// GeminiConfig holds settings for the Gemini client.
type GeminiConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
}

// GeminiClient generates chat completions through the Gemini API.
type GeminiClient struct {
	modelName   string
	maxTokens   int32
	temperature float32
	gClient     *genai.Client
}

// NewGeminiClient creates a Gemini-backed completion client.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required. Set GEMINI_API_KEY environment variable or ai.gemini.api_key in config file.\nGet your API key from: https://makersuite.google.com/app/apikey")
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = DefaultGeminiModel
	}

	gClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	maxTokens := int32(cfg.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = int32(DefaultMaxTokens)
	}
	temperature := float32(cfg.Temperature)
	if temperature <= 0 {
		temperature = float32(DefaultTemperature)
	}

	return &GeminiClient{
		modelName:   modelName,
		maxTokens:   maxTokens,
		temperature: temperature,
		gClient:     gClient,
	}, nil
}

// Complete sends the prompt pair to Gemini. The system prompt rides along
// as a system instruction.
func (c *GeminiClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: userPrompt}},
		Role:  "user",
	}}

	config := &genai.GenerateContentConfig{
		MaxOutputTokens: c.maxTokens,
		Temperature:     genai.Ptr(c.temperature),
	}
	if systemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		}
	}

	resp, err := c.gClient.Models.GenerateContent(ctx, c.modelName, contents, config)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model")
	}

	return text, nil
}

// ModelName returns the Gemini model this client targets.
func (c *GeminiClient) ModelName() string {
	return c.modelName
}
