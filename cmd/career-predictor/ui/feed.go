package ui

import (
	"sync"

	"career-predictor/internal/career/lifecycle"
	"career-predictor/internal/career/notify"
)

// Feed carries controller callbacks into the bubbletea loop. State changes are
// coalesced: the model always re-reads the latest snapshot.
type Feed struct {
	changed chan struct{}
	toasts  chan notify.Notification
	done    chan struct{}
	once    sync.Once
}

func NewFeed() *Feed {
	return &Feed{
		changed: make(chan struct{}, 1),
		toasts:  make(chan notify.Notification, 16),
		done:    make(chan struct{}),
	}
}

// Notifier returns a notifier that queues toasts; when the queue is full the
// toast is dropped.
func (f *Feed) Notifier() notify.Notifier {
	return notify.Func(func(n notify.Notification) {
		select {
		case f.toasts <- n:
		default:
		}
	})
}

// Observe is registered with Controller.Subscribe.
func (f *Feed) Observe(lifecycle.Snapshot) {
	select {
	case f.changed <- struct{}{}:
	default:
	}
}

// Close releases any command still waiting on the feed.
func (f *Feed) Close() {
	f.once.Do(func() { close(f.done) })
}
