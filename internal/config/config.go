package config

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bryanwahyu/textanalyzer/internal/domain/ai"
	"github.com/bryanwahyu/textanalyzer/internal/infra/ai/prompt"
)

type Config struct {
	Server struct {
		Port           int           `yaml:"port"`
		ReadTimeout    time.Duration `yaml:"readTimeout"`
		WriteTimeout   time.Duration `yaml:"writeTimeout"`
		IdleTimeout    time.Duration `yaml:"idleTimeout"`
		AllowedOrigins []string      `yaml:"allowedOrigins"`
	} `yaml:"server"`

	LLM struct {
		Provider    string        `yaml:"provider"`
		APIKey      string        `yaml:"apiKey"`
		Model       string        `yaml:"model"`
		BaseURL     string        `yaml:"baseURL"`
		Temperature *float64      `yaml:"temperature"`
		MaxTokens   int           `yaml:"maxTokens"`
		Timeout     time.Duration `yaml:"timeout"`
	} `yaml:"llm"`

	Notify struct {
		WebhookURL string        `yaml:"webhookURL"`
		Timeout    time.Duration `yaml:"timeout"`
	} `yaml:"notify"`

	Log struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`
}

// Default returns a config with every optional value filled in.
func Default() *Config {
	var c Config
	c.Server.Port = 8080
	c.Server.ReadTimeout = 15 * time.Second
	// The model call dominates request latency.
	c.Server.WriteTimeout = 90 * time.Second
	c.Server.IdleTimeout = 60 * time.Second
	c.Server.AllowedOrigins = []string{"http://localhost:3000"}
	c.LLM.Provider = ai.ProviderGemini
	c.LLM.Timeout = 60 * time.Second
	c.Notify.Timeout = 10 * time.Second
	c.Log.Level = "info"
	return &c
}

// Load reads the YAML file at path on top of Default, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// apiKeyEnv names the environment variable holding each provider's key.
var apiKeyEnv = map[string]string{
	ai.ProviderGemini:    "GEMINI_API_KEY",
	ai.ProviderOpenAI:    "OPENAI_API_KEY",
	ai.ProviderAnthropic: "ANTHROPIC_API_KEY",
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	str("LLM_PROVIDER", &c.LLM.Provider)
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if env, ok := apiKeyEnv[c.LLM.Provider]; ok {
		str(env, &c.LLM.APIKey)
	}
	str("LLM_MODEL", &c.LLM.Model)
	str("LLM_BASE_URL", &c.LLM.BaseURL)
	str("N8N_WEBHOOK_URL", &c.Notify.WebhookURL)
	str("NOTIFY_WEBHOOK_URL", &c.Notify.WebhookURL)
	str("LOG_LEVEL", &c.Log.Level)

	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v, ok := lookup("LLM_TEMPERATURE"); ok && v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("LLM_TEMPERATURE: %w", err)
		}
		c.LLM.Temperature = &t
	}
	if v, ok := lookup("CORS_ALLOWED_ORIGINS"); ok && v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.Server.AllowedOrigins = origins
	}
	return nil
}

// Validate checks values that would otherwise fail at request time. A
// missing API key is allowed; every analysis then reports a configuration
// error instead.
func (c *Config) Validate() error {
	if _, ok := apiKeyEnv[c.LLM.Provider]; !ok {
		return fmt.Errorf("llm.provider %q is not one of gemini, openai, anthropic", c.LLM.Provider)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if t := c.Temperature(); t < 0 || t > 2 {
		return fmt.Errorf("llm.temperature %v out of range [0, 2]", t)
	}
	if c.LLM.MaxTokens < 0 || c.LLM.MaxTokens > math.MaxInt32 {
		return fmt.Errorf("llm.maxTokens %d out of range [0, %d]", c.LLM.MaxTokens, math.MaxInt32)
	}
	if c.LLM.BaseURL != "" {
		if err := ValidateURL(c.LLM.BaseURL); err != nil {
			return fmt.Errorf("llm.baseURL: %w", err)
		}
	}
	if c.Notify.WebhookURL != "" {
		if err := ValidateURL(c.Notify.WebhookURL); err != nil {
			return fmt.Errorf("notify.webhookURL: %w", err)
		}
	}
	return nil
}

// ValidateURL accepts absolute http and https URLs.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme: %q (allowed: http, https)", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("URL has no host")
	}
	return nil
}

// Temperature is the configured sampling temperature or the prompt default.
func (c *Config) Temperature() float64 {
	if c.LLM.Temperature == nil {
		return prompt.Temperature
	}
	return *c.LLM.Temperature
}

// APIKeyEnv names the environment variable for the configured provider.
func (c *Config) APIKeyEnv() string {
	return apiKeyEnv[c.LLM.Provider]
}

// LLMSettings converts the llm section for a provider client.
func (c *Config) LLMSettings() ai.Settings {
	return ai.Settings{
		APIKey:      c.LLM.APIKey,
		Model:       c.LLM.Model,
		BaseURL:     c.LLM.BaseURL,
		Temperature: c.Temperature(),
		MaxTokens:   c.LLM.MaxTokens,
		Timeout:     c.LLM.Timeout,
	}
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
