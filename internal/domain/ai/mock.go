package ai

import (
	"context"
	"sync"
)

// MockReply is a canned answer for MockClient.
type MockReply struct {
	Content string
	Err     error
}

// MockClient is a test double that replays canned replies in order and
// keeps returning the last one once exhausted. It records every prompt.
type MockClient struct {
	mu      sync.Mutex
	replies []MockReply
	prompts []string
	idx     int
}

var _ Client = (*MockClient)(nil)

func NewMockClient(replies ...MockReply) *MockClient {
	return &MockClient{replies: replies}
}

func (m *MockClient) Complete(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.prompts = append(m.prompts, prompt)
	if len(m.replies) == 0 {
		return "", &UpstreamError{Provider: "mock", Err: ErrEmptyReply}
	}

	r := m.replies[m.idx]
	if m.idx < len(m.replies)-1 {
		m.idx++
	}
	if r.Err != nil {
		return "", r.Err
	}
	return r.Content, nil
}

// Calls returns how many times Complete was invoked.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// Prompts returns a copy of every prompt received.
func (m *MockClient) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}
