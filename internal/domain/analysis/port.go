package analysis

import "context"

// Notifier forwards a finished analysis to an external target. Notify must
// return without waiting for delivery and must never fail the caller.
type Notifier interface {
	Notify(ctx context.Context, id, text string, res Result)
}

// Recorder receives pipeline outcome counts.
type Recorder interface {
	ObserveAnalysis(ok bool)
	ObserveFallback()
	ObserveNotification(ok bool)
}
