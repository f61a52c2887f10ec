package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bryanwahyu/textanalyzer/internal/domain/analysis"
)

// Source tags every payload so receivers can tell where it came from.
const Source = "ai-text-analyzer"

const defaultTimeout = 10 * time.Second

// Payload is the JSON body posted to the webhook.
type Payload struct {
	OriginalText string          `json:"originalText"`
	Analysis     analysis.Result `json:"analysis"`
	Source       string          `json:"source"`
	Timestamp    string          `json:"timestamp"`
}

// Dispatcher is a Notifier whose in-flight deliveries can be drained.
type Dispatcher interface {
	analysis.Notifier
	Wait(ctx context.Context) error
}

// Option configures a Webhook.
type Option func(*Webhook)

func WithTimeout(d time.Duration) Option {
	return func(w *Webhook) { w.timeout = d }
}

func WithHTTPClient(c *http.Client) Option {
	return func(w *Webhook) { w.client = c }
}

func WithLogger(l *zap.Logger) Option {
	return func(w *Webhook) { w.logger = l }
}

func WithMetrics(r analysis.Recorder) Option {
	return func(w *Webhook) { w.metrics = r }
}

// New returns a Webhook for url, or Nop when url is empty.
func New(url string, opts ...Option) Dispatcher {
	if url == "" {
		return Nop{}
	}
	return NewWebhook(url, opts...)
}

// Webhook posts each finished analysis to a URL in the background.
// Failures are logged and dropped; nothing is retried.
type Webhook struct {
	url     string
	client  *http.Client
	timeout time.Duration
	logger  *zap.Logger
	metrics analysis.Recorder

	mu       sync.Mutex
	draining bool
	wg       sync.WaitGroup
}

var _ Dispatcher = (*Webhook)(nil)

func NewWebhook(url string, opts ...Option) *Webhook {
	w := &Webhook{
		url:     url,
		client:  http.DefaultClient,
		timeout: defaultTimeout,
		logger:  zap.NewNop(),
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Notify starts delivery and returns immediately. The delivery outlives
// ctx cancellation but is bounded by the webhook timeout. Once Wait has
// been called, new deliveries are dropped.
func (w *Webhook) Notify(ctx context.Context, id, text string, res analysis.Result) {
	w.mu.Lock()
	if w.draining {
		w.mu.Unlock()
		w.logger.Warn("webhook draining, notification dropped", zap.String("analysis_id", id))
		w.observe(false)
		return
	}
	w.wg.Add(1)
	w.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	go func() {
		defer w.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				w.logger.Error("webhook delivery panicked", zap.String("analysis_id", id), zap.Any("panic", r))
				w.observe(false)
			}
		}()

		start := time.Now()
		if err := w.deliver(ctx, id, text, res); err != nil {
			w.logger.Warn("webhook delivery failed",
				zap.String("analysis_id", id),
				zap.Error(err),
				zap.Duration("elapsed", time.Since(start)),
			)
			w.observe(false)
			return
		}
		w.logger.Debug("webhook delivered", zap.String("analysis_id", id), zap.Duration("elapsed", time.Since(start)))
		w.observe(true)
	}()
}

func (w *Webhook) deliver(ctx context.Context, id, text string, res analysis.Result) error {
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	body, err := json.Marshal(Payload{
		OriginalText: text,
		Analysis:     res,
		Source:       Source,
		Timestamp:    analysis.FormatTimestamp(time.Now()),
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Analysis-ID", id)

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook responded %d", resp.StatusCode)
	}
	return nil
}

// Wait stops accepting deliveries and blocks until every started one has
// finished or ctx is done.
func (w *Webhook) Wait(ctx context.Context) error {
	w.mu.Lock()
	w.draining = true
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Webhook) observe(ok bool) {
	if w.metrics != nil {
		w.metrics.ObserveNotification(ok)
	}
}

// Nop is used when no webhook is configured.
type Nop struct{}

func (Nop) Notify(context.Context, string, string, analysis.Result) {}

func (Nop) Wait(context.Context) error { return nil }
