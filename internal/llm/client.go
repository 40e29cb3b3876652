package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/sirupsen/logrus"
)

// Client talks to an OpenAI-compatible chat completions endpoint (Groq by default).
type Client struct {
	api     openai.Client
	model   string
	timeout time.Duration
	retry   RetryConfig
	logger  *logrus.Logger
}

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

func NewClient(config Config, logger *logrus.Logger) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(config.APIKey),
		// retries are ours so they stay inside the call timeout
		option.WithMaxRetries(0),
	}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}

	return &Client{
		api:     openai.NewClient(opts...),
		model:   config.Model,
		timeout: timeout,
		retry:   DefaultRetryConfig(),
		logger:  logger,
	}
}

// Complete sends a single user prompt and returns the assistant's text.
// The whole call, retries included, is bounded by the client timeout.
func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(0.1),
		MaxTokens:   openai.Int(maxTokens),
	}

	c.logger.WithFields(logrus.Fields{
		"model":       c.model,
		"prompt_size": len(prompt),
	}).Debug("Making LLM completion request")

	var content string
	err := c.retryOperation(ctx, func() error {
		completion, err := c.api.Chat.Completions.New(ctx, params)
		if err != nil {
			return err
		}
		if len(completion.Choices) == 0 {
			return fmt.Errorf("empty response from LLM")
		}
		content = strings.TrimSpace(completion.Choices[0].Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("LLM completion failed: %w", err)
	}

	c.logger.WithFields(logrus.Fields{
		"model":         c.model,
		"response_size": len(content),
	}).Debug("LLM response received")

	return content, nil
}

// Ping lists models to confirm the endpoint and credential work.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if _, err := c.api.Models.List(ctx); err != nil {
		return fmt.Errorf("LLM ping failed: %w", err)
	}
	return nil
}
