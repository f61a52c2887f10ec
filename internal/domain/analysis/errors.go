package analysis

import (
	"errors"
	"fmt"
)

const (
	ReasonEmpty   = "empty"
	ReasonTooLong = "too_long"

	// FailedMessage is the only text a caller sees when analysis fails for
	// reasons it cannot correct.
	FailedMessage = "Failed to analyze text. Please try again."
)

// ValidationError reports caller-supplied text that cannot be analyzed.
// Its message is safe to show verbatim.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case ReasonEmpty:
		return "Text is required"
	case ReasonTooLong:
		return fmt.Sprintf("Text too long (max %d characters)", MaxTextLength)
	default:
		return "Invalid text"
	}
}

// FailedError aborts a request after validation passed. Error() never
// leaks the cause; Unwrap exposes it for classification and logging.
type FailedError struct {
	Err error
}

func (e *FailedError) Error() string { return FailedMessage }

func (e *FailedError) Unwrap() error { return e.Err }

// IsUserFacing reports whether err carries a message the caller can act on.
func IsUserFacing(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
