// internal/browser/context.go
package browser

import (
	"context"
	"time"
)

// CombineContext derives a context from master that is additionally canceled
// when op is. Chromedp stores the CDP target on the context, so operational
// deadlines must be layered on top of the session context rather than
// replacing it.
func CombineContext(master, op context.Context) (context.Context, context.CancelFunc) {
	combined, cancel := context.WithCancel(master)
	go func() {
		select {
		case <-op.Done():
			cancel()
		case <-combined.Done():
		}
	}()
	return combined, cancel
}

type valueOnlyContext struct{ context.Context }

func (valueOnlyContext) Deadline() (time.Time, bool) { return time.Time{}, false }
func (valueOnlyContext) Done() <-chan struct{}       { return nil }
func (valueOnlyContext) Err() error                  { return nil }

// Detach keeps the parent's values (the CDP target) while dropping its
// cancellation, for cleanup work that must outlive a canceled operation.
func Detach(ctx context.Context) context.Context {
	return valueOnlyContext{ctx}
}
