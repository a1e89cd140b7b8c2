package availability

import (
	"context"
	"time"

	"github.com/codr1/Courtbook/internal/schedule"
)

// Invalidator drops cached read models after a commit changes a court's time axis.
type Invalidator interface {
	Invalidate(ctx context.Context, courtID int64, loc *time.Location, intervals ...schedule.Interval)
}

// FreedListener is told when a commitment is released so watchers of that
// time can be informed.
type FreedListener interface {
	NotifyFreed(ctx context.Context, courtID int64, freed schedule.Interval)
}

type nopHooks struct{}

func (nopHooks) Invalidate(context.Context, int64, *time.Location, ...schedule.Interval) {}
func (nopHooks) NotifyFreed(context.Context, int64, schedule.Interval) {}

// NopHooks satisfies both hook interfaces and does nothing.
var NopHooks = nopHooks{}
