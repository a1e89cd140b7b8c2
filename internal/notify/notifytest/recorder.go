// Package notifytest records notifier calls for engine tests.
package notifytest

import (
	"context"
	"sync"

	"github.com/codr1/Courtbook/internal/email"
	"github.com/codr1/Courtbook/internal/notify"
)

type Notification struct {
	UserID  int64
	Kind    notify.Kind
	Payload any
}

type Recorder struct {
	mu            sync.Mutex
	Notifications []Notification
	Emails        []email.Message
}

func (r *Recorder) Notify(_ context.Context, userID int64, kind notify.Kind, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Notifications = append(r.Notifications, Notification{UserID: userID, Kind: kind, Payload: payload})
}

func (r *Recorder) EnqueueEmail(_ context.Context, msg email.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Emails = append(r.Emails, msg)
}

// Kinds lists the recorded notification kinds in call order.
func (r *Recorder) Kinds() []notify.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notify.Kind, 0, len(r.Notifications))
	for _, n := range r.Notifications {
		out = append(out, n.Kind)
	}
	return out
}

// Count returns how many notifications of kind were recorded.
func (r *Recorder) Count(kind notify.Kind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, rec := range r.Notifications {
		if rec.Kind == kind {
			n++
		}
	}
	return n
}
