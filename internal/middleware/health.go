package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Check is one named dependency probe for /healthz.
type Check struct {
	Name string
	Run  func(ctx context.Context) error
}

type healthReport struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]checkResult `json:"checks"`
}

type checkResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Health runs every check and answers 503 if any of them fails.
func Health(checks ...Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		report := healthReport{
			Status:    "healthy",
			Timestamp: time.Now().UTC(),
			Checks:    make(map[string]checkResult, len(checks)),
		}
		for _, c := range checks {
			if err := c.Run(ctx); err != nil {
				report.Status = "unhealthy"
				report.Checks[c.Name] = checkResult{Status: "unhealthy", Message: err.Error()}
				continue
			}
			report.Checks[c.Name] = checkResult{Status: "healthy"}
		}

		code := http.StatusOK
		if report.Status != "healthy" {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, report)
	}
}

// Ready reports that the process accepts traffic.
func Ready(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
	})
}

// Live is the cheapest liveness probe.
func Live(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
