package ai

import "time"

const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Settings configure a single provider client.
type Settings struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	// Timeout bounds one round trip. Zero leaves the call unbounded.
	Timeout time.Duration
}
