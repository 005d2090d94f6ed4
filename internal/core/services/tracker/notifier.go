package tracker

import (
	"context"
	"log/slog"

	"github.com/lcalzada-xor/wifitrack/internal/telemetry"
)

// notifier runs listener callbacks on a dedicated goroutine so they never
// execute under the snapshot lock and never block the reconciliation worker.
// Posted tasks run in FIFO order.
type notifier struct {
	tasks chan func()
}

func newNotifier(size int) *notifier {
	return &notifier{tasks: make(chan func(), size)}
}

func (n *notifier) start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case task := <-n.tasks:
				task()
			}
		}
	}()
}

// post enqueues a callback. A full queue drops the notification rather than
// stalling the worker; the next cycle re-notifies anyway.
func (n *notifier) post(task func()) {
	select {
	case n.tasks <- task:
	default:
		slog.Warn("listener queue full, dropping notification")
		telemetry.EventsDropped.WithLabelValues("listener_queue_full").Inc()
	}
}
