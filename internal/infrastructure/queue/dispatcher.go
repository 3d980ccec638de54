package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/talentoplus/hr-system/internal/api/metrics"
	"github.com/talentoplus/hr-system/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
)

// Dispatcher fans notifications out to a fixed set of workers using
// consistent hashing on the recipient, so notifications for the same
// person are delivered in the order they were enqueued.
type Dispatcher struct {
	workers  []chan ports.Notification
	delivery ports.Notifier
	log      zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers
// delivering through the given Notifier. If numWorkers <= 0,
// defaultWorkers is used.
func NewDispatcher(numWorkers int, delivery ports.Notifier, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan ports.Notification, numWorkers),
		delivery: delivery,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.Notification, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Send enqueues a notification for asynchronous delivery. The call is
// non-blocking up to channelBuffer capacity and never reports delivery
// failures back to the caller.
func (d *Dispatcher) Send(_ context.Context, n ports.Notification) error {
	i := d.shardIndex(n.Recipient)
	d.workers[i] <- n
	metrics.NotificationsQueueDepth.WithLabelValues(strconv.Itoa(i)).Set(float64(len(d.workers[i])))
	return nil
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(recipient string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(recipient))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.Notification) {
	worker := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			metrics.NotificationsQueueDepth.WithLabelValues(worker).Set(float64(len(ch)))
			if err := d.delivery.Send(ctx, n); err != nil {
				metrics.NotificationsSentTotal.WithLabelValues("failed").Inc()
				d.log.Error().Err(err).
					Str("recipient", n.Recipient).
					Int("worker_id", id).
					Msg("notification delivery failed")
				continue
			}
			metrics.NotificationsSentTotal.WithLabelValues("sent").Inc()
		}
	}
}
