package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lumen-ai/api-platform/internal/api/metrics"
	"github.com/lumen-ai/api-platform/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	recordTimeout  = 5 * time.Second
)

// Dispatcher records usage reports off the request path. Reports for the
// same account always land on the same worker so balance-affecting writes for
// one account are applied in order.
type Dispatcher struct {
	workers  []chan ports.UsageInput
	recorder ports.UsageRecorder
	log      zerolog.Logger
	wg       sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, recorder ports.UsageRecorder, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan ports.UsageInput, numWorkers),
		recorder: recorder,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.UsageInput, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers drain what is already queued
// and stop when ctx is cancelled. Wait blocks until they have returned.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker started by Start has exited.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue hands usage to the worker owning its account. It never blocks: a
// report is dropped and logged when that worker's channel is full.
func (d *Dispatcher) Enqueue(usage ports.UsageInput) {
	idx := d.shardIndex(usage.AccountID)
	select {
	case d.workers[idx] <- usage:
		metrics.UsageQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.UsageDroppedTotal.Inc()
		d.log.Warn().
			Int64("account_id", usage.AccountID).
			Int("worker_id", idx).
			Msg("usage queue full, dropping report")
	}
}

// shardIndex maps an account id deterministically to a worker index.
func (d *Dispatcher) shardIndex(accountID int64) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strconv.FormatInt(accountID, 10)))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.UsageInput) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			d.drain(id, ch)
			return
		case usage := <-ch:
			metrics.UsageQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			d.record(context.Background(), id, usage)
		}
	}
}

// drain records reports still buffered at shutdown.
func (d *Dispatcher) drain(id int, ch <-chan ports.UsageInput) {
	for {
		select {
		case usage := <-ch:
			d.record(context.Background(), id, usage)
		default:
			metrics.UsageQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(0)
			return
		}
	}
}

func (d *Dispatcher) record(parent context.Context, id int, usage ports.UsageInput) {
	ctx, cancel := context.WithTimeout(parent, recordTimeout)
	defer cancel()

	if err := d.recorder.RecordUsage(ctx, usage); err != nil {
		metrics.UsageErrorsTotal.Inc()
		d.log.Error().Err(err).
			Int64("account_id", usage.AccountID).
			Int64("key_id", usage.KeyID).
			Int("worker_id", id).
			Msg("usage recording failed")
	}
}
