package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hirehub/jobboard/internal/core/ports"
	"github.com/hirehub/jobboard/internal/pkg/metrics"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
	effectTimeout  = 10 * time.Second
)

// Dispatcher runs best-effort side effects on a fixed set of workers,
// sharded by effect key so effects for one key run in enqueue order.
type Dispatcher struct {
	workers []chan ports.SideEffect
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.SideEffect, numWorkers),
		log:     log.With().Str("component", "dispatcher").Logger(),
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.SideEffect, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue hands the effect to the worker responsible for its key. It never
// blocks: when the worker's buffer is full the effect is dropped.
func (d *Dispatcher) Enqueue(effect ports.SideEffect) {
	idx := d.shardIndex(effect.Key)
	select {
	case d.workers[idx] <- effect:
		metrics.SideEffectQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.PartialFailuresTotal.WithLabelValues(effect.Name).Inc()
		d.log.Warn().Str("effect", effect.Name).Str("key", effect.Key).Int("worker_id", idx).Msg("side effect dropped, queue full")
	}
}

// shardIndex maps a key deterministically to a worker index.
func (d *Dispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.SideEffect) {
	defer d.wg.Done()
	depth := metrics.SideEffectQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case effect := <-ch:
			depth.Set(float64(len(ch)))
			d.run(ctx, id, effect)
		}
	}
}

func (d *Dispatcher) run(ctx context.Context, id int, effect ports.SideEffect) {
	ctx, cancel := context.WithTimeout(ctx, effectTimeout)
	defer cancel()

	if err := effect.Run(ctx); err != nil {
		metrics.PartialFailuresTotal.WithLabelValues(effect.Name).Inc()
		d.log.Warn().Err(err).
			Str("effect", effect.Name).
			Str("key", effect.Key).
			Int("worker_id", id).
			Msg("side effect failed")
	}
}
