package ai

import (
	"errors"
	"fmt"
)

// ConfigurationError means the model client has no usable credential or
// endpoint. It is returned before any network call is attempted.
type ConfigurationError struct {
	Provider string
	Missing  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s is not configured", e.Provider, e.Missing)
}

// UpstreamError means the remote model call failed, timed out or came back
// without content.
type UpstreamError struct {
	Provider string
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: upstream call failed", e.Provider)
	}
	return fmt.Sprintf("%s: upstream call failed: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ErrEmptyReply is wrapped by UpstreamError when the model answered with no
// text at all.
var ErrEmptyReply = errors.New("model returned no content")
