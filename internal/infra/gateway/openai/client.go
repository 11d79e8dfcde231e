package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/kislikjeka/walletscope/internal/platform/report"
	"github.com/kislikjeka/walletscope/pkg/logger"
)

const (
	requestTimeout = 60 * time.Second
	DefaultModel   = goopenai.GPT4o
	temperature    = 0.2
)

// Client generates wallet reports with the OpenAI chat completion API
type Client struct {
	api    *goopenai.Client
	model  string
	logger *logger.Logger
}

// Compile-time check that Client implements report.Generator
var _ report.Generator = (*Client)(nil)

// NewClient creates a new OpenAI report generator. An empty baseURL keeps the public API.
func NewClient(apiKey, model, baseURL string, log *logger.Logger) *Client {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: requestTimeout}

	if model == "" {
		model = DefaultModel
	}

	return &Client{
		api:    goopenai.NewClientWithConfig(cfg),
		model:  model,
		logger: log.WithField("component", "openai"),
	}
}

// Generate asks the model for a JSON report about the wallet and decodes it.
func (c *Client) Generate(ctx context.Context, req report.Request) (*report.Report, error) {
	prompt, err := report.UserPrompt(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: report.SystemInstruction},
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: temperature,
	})
	if err != nil {
		var apiErr *goopenai.APIError
		if errors.As(err, &apiErr) {
			c.logger.Error("API error", "status_code", apiErr.HTTPStatusCode, "type", apiErr.Type)
		}
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, report.ErrEmptyResponse
	}
	content := resp.Choices[0].Message.Content

	c.logger.Debug("API response",
		"model", resp.Model,
		"total_tokens", resp.Usage.TotalTokens,
		"duration_ms", time.Since(start).Milliseconds())

	rep, err := report.Decode([]byte(content), req.WalletAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to decode completion: %w", err)
	}
	if rep.Summary == "" {
		rep.Summary = strings.Join(rep.AIInsights, " ")
	}
	return rep, nil
}
