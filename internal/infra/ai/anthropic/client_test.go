package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/textanalyzer/internal/domain/ai"
)

type content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func newTestServer(t *testing.T, status int, blocks []content, captured *map[string]any) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if captured != nil {
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err == nil {
				*captured = body
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`))
			return
		}
		if blocks == nil {
			blocks = []content{}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":          "msg_test",
			"type":        "message",
			"role":        "assistant",
			"model":       defaultModel,
			"content":     blocks,
			"stop_reason": "end_turn",
			"usage":       map[string]any{"input_tokens": 10, "output_tokens": 5},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestComplete_JoinsTextBlocks(t *testing.T) {
	var captured map[string]any
	srv, _ := newTestServer(t, http.StatusOK, []content{
		{Type: "text", Text: `{"sentiment":`},
		{Type: "text", Text: `"Negative"}`},
	}, &captured)

	c := NewClient(ai.Settings{APIKey: "k", BaseURL: srv.URL, Temperature: 0.3})
	got, err := c.Complete(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, `{"sentiment":"Negative"}`, got)

	assert.Equal(t, defaultModel, captured["model"])
	assert.Equal(t, float64(defaultMaxTokens), captured["max_tokens"])
	assert.InDelta(t, 0.3, captured["temperature"], 0.001)
}

func TestComplete_MissingKeyFailsBeforeNetwork(t *testing.T) {
	srv, hits := newTestServer(t, http.StatusOK, nil, nil)

	c := NewClient(ai.Settings{BaseURL: srv.URL})
	_, err := c.Complete(context.Background(), "p")

	var cfgErr *ai.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Zero(t, hits.Load())
}

func TestComplete_ErrorIsSingleAttempt(t *testing.T) {
	srv, hits := newTestServer(t, http.StatusServiceUnavailable, nil, nil)

	c := NewClient(ai.Settings{APIKey: "k", BaseURL: srv.URL})
	_, err := c.Complete(context.Background(), "p")

	var up *ai.UpstreamError
	require.ErrorAs(t, err, &up)
	assert.Equal(t, int32(1), hits.Load())
}

func TestComplete_EmptyContent(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusOK, nil, nil)

	c := NewClient(ai.Settings{APIKey: "k", BaseURL: srv.URL})
	_, err := c.Complete(context.Background(), "p")
	assert.ErrorIs(t, err, ai.ErrEmptyReply)
}

func TestNewClient_ModelOverride(t *testing.T) {
	c := NewClient(ai.Settings{APIKey: "k", Model: "claude-sonnet-4-5"})
	assert.Equal(t, "claude-sonnet-4-5", c.Model())
}
