package openai

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/bryanwahyu/textanalyzer/internal/domain/ai"
)

const (
	defaultModel     = openai.GPT4oMini
	defaultMaxTokens = 1024
)

// Client implements ai.Client with the OpenAI chat completions API.
type Client struct {
	api    *openai.Client
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
	cfg := openai.DefaultConfig(s.APIKey)
	if s.BaseURL != "" {
		cfg.BaseURL = s.BaseURL
	}
	return &Client{api: openai.NewClientWithConfig(cfg), apiKey: s.APIKey, s: s}
}

func (c *Client) Model() string { return c.s.Model }

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", &ai.ConfigurationError{Provider: ai.ProviderOpenAI, Missing: "OPENAI_API_KEY"}
	}
	if c.s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.s.Timeout)
		defer cancel()
	}

	req := openai.ChatCompletionRequest{
		Model: c.s.Model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	// Reasoning models (o1/o3/o4/gpt-5*) take MaxCompletionTokens and reject
	// a custom temperature.
	if isReasoningModel(c.s.Model) {
		req.MaxCompletionTokens = c.s.MaxTokens
	} else {
		req.MaxTokens = c.s.MaxTokens
		req.Temperature = requestTemperature(c.s.Temperature)
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", &ai.UpstreamError{Provider: ai.ProviderOpenAI, Err: fmt.Errorf("create chat completion: %w", err)}
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", &ai.UpstreamError{Provider: ai.ProviderOpenAI, Err: ai.ErrEmptyReply}
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

// requestTemperature maps t onto the request field. The field is omitempty,
// so a configured 0 is sent as the smallest positive float32 instead of
// being dropped in favor of the API default.
func requestTemperature(t float64) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}
