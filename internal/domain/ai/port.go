package ai

import "context"

// Client sends one rendered prompt to a hosted model and returns the raw
// text of its reply. Implementations make a single attempt per call.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
