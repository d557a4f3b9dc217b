package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/shipment-tracker/internal/api/metrics"
	"github.com/99minutos/shipment-tracker/internal/core/domain"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
	publishTimeout = 5 * time.Second
)

// Publisher hands a push job to the realtime transport.
type Publisher interface {
	Publish(ctx context.Context, job domain.PushJob) error
}

// Dispatcher routes push jobs to a fixed set of workers using consistent
// hashing on the shipment id, guaranteeing per-shipment delivery ordering.
type Dispatcher struct {
	workers   []chan domain.PushJob
	publisher Publisher
	log       zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, publisher Publisher, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:   make([]chan domain.PushJob, numWorkers),
		publisher: publisher,
		log:       log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.PushJob, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends a job to the worker responsible for its shipment. When that
// worker's buffer is full the job is dropped: realtime pushes are best effort
// and the write that produced them has already been committed.
func (d *Dispatcher) Enqueue(job domain.PushJob) {
	idx := d.shardIndex(job.ShipmentID)
	select {
	case d.workers[idx] <- job:
		metrics.PushQueueDepth.WithLabelValues(strconv.Itoa(idx)).Inc()
	default:
		d.log.Warn().
			Str("shipment_id", job.ShipmentID).
			Int("worker_id", idx).
			Msg("push queue full, dropping job")
	}
}

// shardIndex maps a shipment id deterministically to a worker index.
func (d *Dispatcher) shardIndex(shipmentID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(shipmentID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.PushJob) {
	depth := metrics.PushQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			depth.Dec()
			d.publish(ctx, id, job)
		}
	}
}

func (d *Dispatcher) publish(ctx context.Context, worker int, job domain.PushJob) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	start := time.Now()
	err := d.publisher.Publish(ctx, job)
	result := "ok"
	if err != nil {
		result = "error"
		d.log.Error().Err(err).
			Str("shipment_id", job.ShipmentID).
			Int("worker_id", worker).
			Msg("push publish failed")
	}
	metrics.PushPublishDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
}
