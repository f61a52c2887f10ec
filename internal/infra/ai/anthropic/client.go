package anthropic

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/bryanwahyu/textanalyzer/internal/domain/ai"
)

const (
	defaultModel     = "claude-haiku-4-5"
	defaultMaxTokens = 1024
)

// Client implements ai.Client with the Anthropic Messages API.
type Client struct {
	api    anthropic.Client
	apiKey string
	s      ai.Settings
}

var _ ai.Client = (*Client)(nil)

func NewClient(s ai.Settings) *Client {
	if s.Model == "" {
		s.Model = defaultModel
	}
	if s.MaxTokens <= 0 {
		s.MaxTokens = defaultMaxTokens
	}
	opts := []option.RequestOption{
		option.WithAPIKey(s.APIKey),
		// One attempt per request; callers decide whether to retry.
		option.WithMaxRetries(0),
	}
	if s.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(s.BaseURL))
	}
	if s.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(s.Timeout))
	}
	return &Client{api: anthropic.NewClient(opts...), apiKey: s.APIKey, s: s}
}

func (c *Client) Model() string { return c.s.Model }

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", &ai.ConfigurationError{Provider: ai.ProviderAnthropic, Missing: "ANTHROPIC_API_KEY"}
	}

	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.s.Model),
		MaxTokens:   int64(c.s.MaxTokens),
		Temperature: anthropic.Float(c.s.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", &ai.UpstreamError{Provider: ai.ProviderAnthropic, Err: fmt.Errorf("create message: %w", err)}
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(text.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", &ai.UpstreamError{Provider: ai.ProviderAnthropic, Err: ai.ErrEmptyReply}
	}
	return b.String(), nil
}
