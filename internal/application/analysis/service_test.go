package analysis

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/bryanwahyu/textanalyzer/internal/application"
	"github.com/bryanwahyu/textanalyzer/internal/domain/ai"
	domain "github.com/bryanwahyu/textanalyzer/internal/domain/analysis"
	"github.com/bryanwahyu/textanalyzer/internal/infra/notify"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type notification struct {
	id, text string
	res      domain.Result
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notification
}

func (n *recordingNotifier) Notify(_ context.Context, id, text string, res domain.Result) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{id: id, text: text, res: res})
}

type recorder struct {
	mu                 sync.Mutex
	ok, failed, parsed int
	fallbacks          int
}

func (r *recorder) ObserveAnalysis(ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ok {
		r.ok++
	} else {
		r.failed++
	}
}
func (r *recorder) ObserveFallback()         { r.mu.Lock(); r.fallbacks++; r.mu.Unlock() }
func (r *recorder) ObserveNotification(bool) {}

const reply = `{"sentiment":"Positive","topics":"service, quality","summary":"Great experience."}`

func newService(client ai.Client) (*Service, *recordingNotifier, *recorder) {
	n := &recordingNotifier{}
	r := &recorder{}
	return &Service{Client: client, Notifier: n, Metrics: r}, n, r
}

func TestAnalyze_WellFormedReply(t *testing.T) {
	mock := ai.NewMockClient(ai.MockReply{Content: reply})
	svc, n, rec := newService(mock)
	svc.Clock = fixedClock{time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)}

	res, err := svc.Analyze(context.Background(), "  The service was great and the quality superb.  ")
	require.NoError(t, err)

	assert.Equal(t, domain.Result{
		WordCount: 8,
		CharCount: 45,
		Sentiment: domain.SentimentPositive,
		Topics:    "service, quality",
		Summary:   "Great experience.",
		Timestamp: "2026-05-06T07:08:09.000Z",
	}, *res)

	prompts := mock.Prompts()
	require.Len(t, prompts, 1)
	assert.Contains(t, prompts[0], `"The service was great and the quality superb."`)

	require.Len(t, n.sent, 1)
	assert.Equal(t, "The service was great and the quality superb.", n.sent[0].text)
	assert.Equal(t, *res, n.sent[0].res)
	assert.NotEmpty(t, n.sent[0].id)
	assert.Equal(t, 1, rec.ok)
}

func TestAnalyze_FencedReplyMatchesPlain(t *testing.T) {
	clock := fixedClock{time.Now()}
	plain, _, _ := newService(ai.NewMockClient(ai.MockReply{Content: reply}))
	fenced, _, _ := newService(ai.NewMockClient(ai.MockReply{Content: "```json\n" + reply + "\n```"}))
	plain.Clock, fenced.Clock = clock, clock

	a, err := plain.Analyze(context.Background(), "some text")
	require.NoError(t, err)
	b, err := fenced.Analyze(context.Background(), "some text")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestAnalyze_NonJSONReplyDegrades(t *testing.T) {
	raw := "I cannot comply with this request."
	svc, _, rec := newService(ai.NewMockClient(ai.MockReply{Content: raw}))

	res, err := svc.Analyze(context.Background(), "hello there")
	require.NoError(t, err)
	assert.Equal(t, domain.SentimentUnknown, res.Sentiment)
	assert.Empty(t, res.Topics)
	assert.Equal(t, raw, res.Summary)
	assert.Equal(t, 2, res.WordCount)
	assert.Equal(t, 1, rec.fallbacks)
	assert.Equal(t, 1, rec.ok)
}

func TestAnalyze_ValidationFailsBeforeModelCall(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		reason string
	}{
		{"empty", "", domain.ReasonEmpty},
		{"whitespace", " \n\t  ", domain.ReasonEmpty},
		{"too long", strings.Repeat("a", domain.MaxTextLength+1), domain.ReasonTooLong},
		{"too long words", strings.Repeat("ab ", 2000), domain.ReasonTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := ai.NewMockClient(ai.MockReply{Content: reply})
			svc, n, _ := newService(mock)

			res, err := svc.Analyze(context.Background(), tt.input)
			assert.Nil(t, res)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.reason, verr.Reason)
			assert.True(t, domain.IsUserFacing(err))
			assert.Zero(t, mock.Calls())
			assert.Empty(t, n.sent)
		})
	}
}

func TestAnalyze_UpstreamFailureReturnsNoResult(t *testing.T) {
	upstream := &ai.UpstreamError{Provider: "mock", Err: errors.New("connection reset")}
	svc, n, rec := newService(ai.NewMockClient(ai.MockReply{Err: upstream}))

	res, err := svc.Analyze(context.Background(), "some text")
	assert.Nil(t, res)

	var failed *domain.FailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, domain.FailedMessage, err.Error())

	var up *ai.UpstreamError
	assert.ErrorAs(t, err, &up)
	assert.False(t, domain.IsUserFacing(err))
	assert.Empty(t, n.sent)
	assert.Equal(t, 1, rec.failed)
}

func TestAnalyze_ConfigurationFailure(t *testing.T) {
	cfgErr := &ai.ConfigurationError{Provider: "gemini", Missing: "GEMINI_API_KEY"}
	svc, _, _ := newService(ai.NewMockClient(ai.MockReply{Err: cfgErr}))

	_, err := svc.Analyze(context.Background(), "some text")

	var failed *domain.FailedError
	require.ErrorAs(t, err, &failed)
	var got *ai.ConfigurationError
	assert.ErrorAs(t, err, &got)
	assert.NotContains(t, err.Error(), "GEMINI_API_KEY")
}

type panickingClient struct{}

func (panickingClient) Complete(context.Context, string) (string, error) { panic("kaboom") }

func TestAnalyze_PanicBecomesFailedError(t *testing.T) {
	svc, _, rec := newService(panickingClient{})

	res, err := svc.Analyze(context.Background(), "some text")
	assert.Nil(t, res)

	var failed *domain.FailedError
	require.ErrorAs(t, err, &failed)
	assert.NotContains(t, err.Error(), "kaboom")
	assert.Equal(t, 1, rec.failed)
}

func TestAnalyze_TimestampNotBeforeStart(t *testing.T) {
	svc := &Service{Client: ai.NewMockClient(ai.MockReply{Content: reply})}

	start := time.Now()
	res, err := svc.Analyze(context.Background(), "some text")
	require.NoError(t, err)

	ts, err := time.Parse(time.RFC3339, res.Timestamp)
	require.NoError(t, err)
	assert.False(t, ts.Before(start), "timestamp %s before start %s", ts, start)
	assert.True(t, strings.HasSuffix(res.Timestamp, "Z"))
}

func TestAnalyze_TimestampNotBeforeStart_SubMillisecondClock(t *testing.T) {
	begin := time.Date(2026, 1, 1, 0, 0, 0, 500*int(time.Microsecond), time.UTC)
	var mu sync.Mutex
	next := begin
	svc := &Service{
		Client: ai.NewMockClient(ai.MockReply{Content: reply}),
		Clock: application.ClockFunc(func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			now := next
			next = next.Add(100 * time.Microsecond)
			return now
		}),
	}

	res, err := svc.Analyze(context.Background(), "some text")
	require.NoError(t, err)

	ts, err := time.Parse(time.RFC3339Nano, res.Timestamp)
	require.NoError(t, err)
	assert.False(t, ts.Before(begin), "timestamp %s before start %s", res.Timestamp, begin.Format(time.RFC3339Nano))
	assert.Equal(t, "2026-01-01T00:00:00.001Z", res.Timestamp)
}

func TestAnalyze_NotificationFailureDoesNotAffectResult(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	clock := fixedClock{time.Now()}
	webhook := notify.NewWebhook(srv.URL)
	withHook := &Service{Client: ai.NewMockClient(ai.MockReply{Content: reply}), Notifier: webhook, Clock: clock}
	without := &Service{Client: ai.NewMockClient(ai.MockReply{Content: reply}), Clock: clock}

	start := time.Now()
	got, err := withHook.Analyze(context.Background(), "some text")
	elapsed := time.Since(start)
	require.NoError(t, err)
	assert.Less(t, elapsed, 500*time.Millisecond, "webhook must not be awaited")

	want, err := without.Analyze(context.Background(), "some text")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	close(release)
	require.NoError(t, webhook.Wait(context.Background()))
}

func TestAnalyze_NeverLogsInputText(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	secret := "my very private diary entry"

	svc := &Service{
		Client: ai.NewMockClient(ai.MockReply{Content: "not json"}),
		Logger: zap.New(core),
	}
	_, err := svc.Analyze(context.Background(), secret)
	require.NoError(t, err)

	require.NotZero(t, logs.Len())
	for _, entry := range logs.All() {
		assert.NotContains(t, entry.Message, secret)
		for _, f := range entry.Context {
			assert.NotContains(t, f.String, secret)
		}
	}
	assert.Equal(t, 1, logs.FilterMessageSnippet("raw reply as summary").Len())
}

func TestAnalyze_ConcurrentRequestsAreIndependent(t *testing.T) {
	svc, n, rec := newService(ai.NewMockClient(ai.MockReply{Content: reply}))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			text := strings.Repeat("w ", i+1)
			res, err := svc.Analyze(context.Background(), text)
			if assert.NoError(t, err) {
				assert.Equal(t, i+1, res.WordCount)
			}
		}(i)
	}
	wg.Wait()
	assert.Len(t, n.sent, 20)
	assert.Equal(t, 20, rec.ok)
}
