package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	DefaultBaseURL      = "https://api.groq.com/openai/v1"
	DefaultModel        = "meta-llama/llama-4-scout-17b-16e-instruct"
	DefaultTemperature  = 0.7
	DefaultSystemPrompt = "You are a helpful insurance quote assistant. Ask for missing information if needed."
	DefaultTimeout      = 30 * time.Second
)

// ErrNotConfigured is returned by Reply when no API key was provided.
var ErrNotConfigured = errors.New("llm api key not configured")

// Config holds the connection settings of an OpenAI-compatible endpoint.
type Config struct {
	APIKey       string
	BaseURL      string
	Model        string
	Temperature  float64
	SystemPrompt string
	Timeout      time.Duration
}

func (c *Config) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Temperature == 0 {
		c.Temperature = DefaultTemperature
	}
	if c.SystemPrompt == "" {
		c.SystemPrompt = DefaultSystemPrompt
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
}

// Client implements ports.ReplyGenerator over the chat completions API.
type Client struct {
	client openai.Client
	cfg    Config
}

// New creates a client. Extra request options (HTTP client, headers) are appended
// after the ones derived from cfg.
func New(cfg Config, opts ...option.RequestOption) *Client {
	cfg.applyDefaults()

	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
		option.WithRequestTimeout(cfg.Timeout),
	}
	reqOpts = append(reqOpts, opts...)

	return &Client{
		client: openai.NewClient(reqOpts...),
		cfg:    cfg,
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.cfg.Model
}

// Reply asks the model for a single response to the user's message.
func (c *Client) Reply(ctx context.Context, message string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", ErrNotConfigured
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(c.cfg.SystemPrompt),
			openai.UserMessage(message),
		},
		Temperature: openai.Float(c.cfg.Temperature),
	}

	response, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no response choices returned")
	}

	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}
