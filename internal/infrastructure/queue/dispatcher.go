package queue

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/rs/zerolog"

	"github.com/aniwa/aniwa-server/internal/api/metrics"
	"github.com/aniwa/aniwa-server/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
)

// Dispatcher routes metadata sync jobs to a fixed set of workers using
// consistent hashing on the source ID, so repeated syncs of the same series
// are processed in order and never race each other.
type Dispatcher struct {
	workers []chan ports.SyncJobInput
	service ports.SyncService
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.SyncService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.SyncJobInput, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.SyncJobInput, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends a job to the worker responsible for its source ID.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(job ports.SyncJobInput) {
	d.workers[d.shardIndex(job.SourceID)] <- job
}

// shardIndex maps a source ID deterministically to a worker index.
func (d *Dispatcher) shardIndex(sourceID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sourceID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.SyncJobInput) {
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-ch:
			if !ok {
				return
			}
			start := time.Now()
			if err := d.service.Process(ctx, job); err != nil {
				metrics.SyncDuration.WithLabelValues("error").Observe(time.Since(start).Seconds())
				d.log.Error().Err(err).
					Str("source_id", job.SourceID).
					Int("worker_id", id).
					Msg("metadata sync failed")
				continue
			}
			metrics.SyncDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())
		}
	}
}
