package gemini

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/bryanwahyu/textanalyzer/internal/domain/ai"
)

const (
	defaultModel     = "gemini-2.0-flash"
	defaultMaxTokens = 1024
)

// Client implements ai.Client with the Gemini API. The underlying genai
// client is created on first use and shared by every later call.
type Client struct {
	s ai.Settings

	once    sync.Once
	api     *genai.Client
	initErr error
}

var _ ai.Client = (*Client)(nil)

func NewClient(s ai.Settings) *Client {
	if s.Model == "" {
		s.Model = defaultModel
	}
	if s.MaxTokens <= 0 {
		s.MaxTokens = defaultMaxTokens
	}
	return &Client{s: s}
}

func (c *Client) Model() string { return c.s.Model }

func (c *Client) models() (*genai.Client, error) {
	c.once.Do(func() {
		cfg := &genai.ClientConfig{
			APIKey:  c.s.APIKey,
			Backend: genai.BackendGeminiAPI,
		}
		if c.s.BaseURL != "" {
			cfg.HTTPOptions = genai.HTTPOptions{BaseURL: c.s.BaseURL}
		}
		c.api, c.initErr = genai.NewClient(context.Background(), cfg)
	})
	return c.api, c.initErr
}

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.s.APIKey == "" {
		return "", &ai.ConfigurationError{Provider: ai.ProviderGemini, Missing: "GEMINI_API_KEY"}
	}
	api, err := c.models()
	if err != nil {
		return "", &ai.ConfigurationError{Provider: ai.ProviderGemini, Missing: fmt.Sprintf("usable client (%v)", err)}
	}
	if c.s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.s.Timeout)
		defer cancel()
	}

	resp, err := api.Models.GenerateContent(ctx, c.s.Model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(c.s.Temperature)),
		MaxOutputTokens:  int32(c.s.MaxTokens),
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return "", &ai.UpstreamError{Provider: ai.ProviderGemini, Err: fmt.Errorf("generate content: %w", err)}
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", &ai.UpstreamError{Provider: ai.ProviderGemini, Err: ai.ErrEmptyReply}
	}
	return text, nil
}
