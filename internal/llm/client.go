package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const rankingSystemPrompt = "You are a DeFi scan-target ranker. Respond only with a JSON array of strings."

// Config holds client settings for the OpenAI-compatible oracle.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	Temperature float32
	MaxTokens   int
}

// Client ranks candidates via an OpenAI-compatible chat endpoint.
type Client struct {
	api         *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
}

// NewClient creates a client from config.
func NewClient(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("llm: API key is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gpt-4o-mini"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 400
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	openaiCfg := openai.DefaultConfig(apiKey)
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		openaiCfg.BaseURL = baseURL
	}

	return &Client{
		api:         openai.NewClientWithConfig(openaiCfg),
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   maxTokens,
		timeout:     timeout,
	}, nil
}

// Rank sends the prompt as a single-shot chat completion.
func (c *Client) Rank(ctx context.Context, prompt string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("llm: client is nil")
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: rankingSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	resp, err := c.api.CreateChatCompletion(ctxWithTimeout, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm: empty response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
