package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bryanwahyu/textanalyzer/internal/application"
	"github.com/bryanwahyu/textanalyzer/internal/domain/ai"
	domain "github.com/bryanwahyu/textanalyzer/internal/domain/analysis"
	"github.com/bryanwahyu/textanalyzer/internal/infra/ai/prompt"
)

// Service runs the text-analysis pipeline. It holds no per-request state
// and is safe for concurrent use. Only Client is required.
type Service struct {
	Client   ai.Client
	Notifier domain.Notifier
	Metrics  domain.Recorder
	Clock    application.Clock
	Logger   *zap.Logger
}

func NewService(client ai.Client, notifier domain.Notifier, metrics domain.Recorder, logger *zap.Logger) *Service {
	return &Service{
		Client:   client,
		Notifier: notifier,
		Metrics:  metrics,
		Clock:    application.SystemClock{},
		Logger:   logger,
	}
}

// Analyze validates text, asks the model for sentiment, topics and a
// summary, and returns the assembled result. Validation problems come back
// as *ValidationError; everything else that stops the pipeline comes back
// as *FailedError. The notification, if any, is not awaited.
func (s *Service) Analyze(ctx context.Context, text string) (res *domain.Result, err error) {
	id := uuid.NewString()
	log := s.logger().With(zap.String("analysis_id", id))
	start := s.now()

	defer func() {
		if r := recover(); r != nil {
			log.Error("analysis panicked", zap.Any("panic", r), zap.Stack("stack"))
			s.observe(false)
			res, err = nil, &domain.FailedError{Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	input, err := domain.ValidateText(text)
	if err != nil {
		log.Info("analysis rejected", zap.Error(err))
		return nil, err
	}

	words, chars := domain.CountText(input)

	reply, err := s.Client.Complete(ctx, prompt.Build(input))
	if err != nil {
		log.Error("model call failed",
			zap.Error(err),
			zap.Duration("elapsed", s.now().Sub(start)),
		)
		s.observe(false)
		return nil, &domain.FailedError{Err: err}
	}

	fields, ok := Normalize(reply)
	if !ok {
		log.Warn("model reply is not a JSON object, using raw reply as summary",
			zap.Int("reply_len", len(reply)),
		)
		log.Debug("unparsed model reply", zap.String("reply", reply))
		if s.Metrics != nil {
			s.Metrics.ObserveFallback()
		}
	}

	result := domain.Result{
		WordCount: words,
		CharCount: chars,
		Sentiment: fields.Sentiment,
		Topics:    fields.Topics,
		Summary:   fields.Summary,
		Timestamp: domain.FormatTimestamp(s.now()),
	}

	if s.Notifier != nil {
		s.Notifier.Notify(ctx, id, input, result)
	}

	s.observe(true)
	log.Info("analysis completed",
		zap.Int("chars", chars),
		zap.String("sentiment", string(result.Sentiment)),
		zap.Bool("parsed", ok),
		zap.Duration("elapsed", s.now().Sub(start)),
	)
	return &result, nil
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}

func (s *Service) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *Service) observe(ok bool) {
	if s.Metrics != nil {
		s.Metrics.ObserveAnalysis(ok)
	}
}
