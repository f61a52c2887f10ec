package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	appanalysis "github.com/bryanwahyu/textanalyzer/internal/application/analysis"
	"github.com/bryanwahyu/textanalyzer/internal/config"
	"github.com/bryanwahyu/textanalyzer/internal/domain/ai"
	"github.com/bryanwahyu/textanalyzer/internal/infra/ai/anthropic"
	"github.com/bryanwahyu/textanalyzer/internal/infra/ai/gemini"
	"github.com/bryanwahyu/textanalyzer/internal/infra/ai/openai"
	"github.com/bryanwahyu/textanalyzer/internal/infra/notify"
	"github.com/bryanwahyu/textanalyzer/internal/logging"
	"github.com/bryanwahyu/textanalyzer/internal/middleware"
)

// app holds the process-wide collaborators. Everything in it is built once
// and never mutated afterwards.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	metrics  *middleware.Metrics
	notifier notify.Dispatcher
	svc      *appanalysis.Service
}

func buildApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, err
	}

	client, err := newModelClient(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.LLM.APIKey == "" {
		logger.Warn("model credential missing, every analysis will fail until it is set",
			zap.String("provider", cfg.LLM.Provider),
			zap.String("env", cfg.APIKeyEnv()),
		)
	}

	metrics := middleware.NewMetrics()
	notifier := notify.New(cfg.Notify.WebhookURL,
		notify.WithTimeout(cfg.Notify.Timeout),
		notify.WithLogger(logger.Named("notify")),
		notify.WithMetrics(metrics),
	)

	return &app{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		notifier: notifier,
		svc:      appanalysis.NewService(client, notifier, metrics, logger.Named("analysis")),
	}, nil
}

func newModelClient(cfg *config.Config) (ai.Client, error) {
	s := cfg.LLMSettings()
	switch cfg.LLM.Provider {
	case ai.ProviderGemini:
		return gemini.NewClient(s), nil
	case ai.ProviderOpenAI:
		return openai.NewClient(s), nil
	case ai.ProviderAnthropic:
		return anthropic.NewClient(s), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

// llmCheck reports a missing credential on /healthz without touching the
// network.
func (a *app) llmCheck(context.Context) error {
	if a.cfg.LLM.APIKey == "" {
		return &ai.ConfigurationError{Provider: a.cfg.LLM.Provider, Missing: a.cfg.APIKeyEnv()}
	}
	return nil
}
