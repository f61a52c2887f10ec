package middleware

import (
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/bryanwahyu/textanalyzer/internal/domain/analysis"
)

// Metrics stores application counters. The zero value is not usable; call
// NewMetrics.
type Metrics struct {
	RequestsTotal      atomic.Uint64
	RequestsInProgress atomic.Int64
	RequestsSuccess    atomic.Uint64
	RequestsFailed     atomic.Uint64

	AnalysesTotal       atomic.Uint64
	AnalysesFailed      atomic.Uint64
	ParseFallbacks      atomic.Uint64
	NotificationsSent   atomic.Uint64
	NotificationsFailed atomic.Uint64

	StartTime time.Time
}

var _ analysis.Recorder = (*Metrics)(nil)

func NewMetrics() *Metrics {
	return &Metrics{StartTime: time.Now()}
}

func (m *Metrics) ObserveAnalysis(ok bool) {
	m.AnalysesTotal.Add(1)
	if !ok {
		m.AnalysesFailed.Add(1)
	}
}

func (m *Metrics) ObserveFallback() {
	m.ParseFallbacks.Add(1)
}

func (m *Metrics) ObserveNotification(ok bool) {
	if ok {
		m.NotificationsSent.Add(1)
	} else {
		m.NotificationsFailed.Add(1)
	}
}

// Snapshot returns current metrics
func (m *Metrics) Snapshot() map[string]interface{} {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return map[string]interface{}{
		"requests_total":       m.RequestsTotal.Load(),
		"requests_in_progress": m.RequestsInProgress.Load(),
		"requests_success":     m.RequestsSuccess.Load(),
		"requests_failed":      m.RequestsFailed.Load(),
		"analyses_total":       m.AnalysesTotal.Load(),
		"analyses_failed":      m.AnalysesFailed.Load(),
		"parse_fallbacks":      m.ParseFallbacks.Load(),
		"notifications_sent":   m.NotificationsSent.Load(),
		"notifications_failed": m.NotificationsFailed.Load(),
		"uptime_seconds":       time.Since(m.StartTime).Seconds(),
		"memory": map[string]interface{}{
			"alloc_bytes":       mem.Alloc,
			"total_alloc_bytes": mem.TotalAlloc,
			"sys_bytes":         mem.Sys,
			"num_gc":            mem.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// Middleware tracks request metrics
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.RequestsTotal.Add(1)
		m.RequestsInProgress.Add(1)
		defer m.RequestsInProgress.Add(-1)

		wrapped := wrap(w)
		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode >= 200 && wrapped.statusCode < 400 {
			m.RequestsSuccess.Add(1)
		} else {
			m.RequestsFailed.Add(1)
		}
	})
}

// Handler returns metrics as JSON
func (m *Metrics) Handler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, m.Snapshot())
}
