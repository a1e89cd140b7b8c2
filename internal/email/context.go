package email

import (
	"context"
	"time"
)

// DetachedContext keeps request values such as the logger but drops the
// parent's cancellation, so post-commit work outlives the handler.
func DetachedContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	parent = context.WithoutCancel(parent)
	return context.WithTimeout(parent, timeout)
}
