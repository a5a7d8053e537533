// Package flowdriver runs the producer/consumer pipeline of spec.md
// §4.9: a producer steps a Source forward once per simulated tick,
// pushing each generated order onto a bounded queue; a consumer drains
// the queue, submits each order, and records the ack. Grounded on
// zappabad-stockcraft/internal/trader/runner.Runner for the goroutine
// lifecycle (closed channel + sync.Once + sync.WaitGroup) and on
// original_source's GenerationThread/OrderSubmissionThread for the
// producer-steps-forward / consumer-drains-to-empty split.
package flowdriver

import (
	"context"
	"sync"
	"time"

	"github.com/stockcraft/marketsim/internal/wire"
)

// Submitter sends one order to the exchange and returns its ack. A
// transport.Client-backed implementation and an in-process
// dispatcher-backed implementation both satisfy this without either
// package depending on flowdriver.
type Submitter interface {
	Submit(ctx context.Context, order wire.Order) (wire.OrderAck, error)
}

// Config controls one Driver run.
type Config struct {
	// Steps is the total number of producer ticks
	// (duration / dt in spec.md §4.9's terms).
	Steps int
	// StepInterval paces the producer between ticks.
	StepInterval time.Duration
	// QueueCapacity bounds the shared order queue; the producer
	// blocks once it is full (backpressure).
	QueueCapacity int
	// RequestTimeout bounds each Submit call.
	RequestTimeout time.Duration
}

// Result is one submitted order's outcome, recorded by the consumer.
type Result struct {
	Order wire.Order
	Ack   wire.OrderAck
	Err   error
}

// Driver runs one Source's producer against one Submitter's consumer.
type Driver struct {
	cfg       Config
	source    Source
	submitter Submitter

	queue chan wire.Order

	results   []Result
	resultsMu sync.Mutex

	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New constructs a Driver. cfg.QueueCapacity is floored at 1 so the
// channel is always a valid bounded queue.
func New(cfg Config, source Source, submitter Submitter) *Driver {
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = 1
	}
	return &Driver{
		cfg:       cfg,
		source:    source,
		submitter: submitter,
		queue:     make(chan wire.Order, cfg.QueueCapacity),
		closed:    make(chan struct{}),
	}
}

// Run starts the producer and consumer goroutines and blocks until
// the producer completes its configured step count and the consumer
// has drained the queue to empty, or until ctx is cancelled.
func (d *Driver) Run(ctx context.Context) []Result {
	d.wg.Add(2)
	go d.produce(ctx)
	go d.consume(ctx)
	d.wg.Wait()

	d.resultsMu.Lock()
	defer d.resultsMu.Unlock()
	return d.results
}

// Stop signals both goroutines to exit at their next opportunity and
// waits for them to join. Any pending queue push or pop is unblocked.
func (d *Driver) Stop() {
	d.closeOnce.Do(func() { close(d.closed) })
	d.wg.Wait()
}

func (d *Driver) produce(ctx context.Context) {
	defer d.wg.Done()
	defer close(d.queue)

	ticker := time.NewTicker(d.cfg.StepInterval)
	defer ticker.Stop()

	for step := 0; step < d.cfg.Steps; step++ {
		select {
		case <-d.closed:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		orders, err := d.source.Step()
		if err != nil {
			// Programmer-error class per spec.md §7: a Source should
			// never fail on valid parameters. Stop rather than emit
			// garbage orders.
			return
		}
		for _, o := range orders {
			select {
			case d.queue <- o:
			case <-d.closed:
				return
			case <-ctx.Done():
				return
			}
		}
	}
}

func (d *Driver) consume(ctx context.Context) {
	defer d.wg.Done()

	for {
		select {
		case o, ok := <-d.queue:
			if !ok {
				return
			}
			d.submitOne(ctx, o)
		case <-d.closed:
			d.drain(ctx)
			return
		}
	}
}

func (d *Driver) submitOne(ctx context.Context, o wire.Order) {
	reqCtx := ctx
	var cancel context.CancelFunc
	if d.cfg.RequestTimeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, d.cfg.RequestTimeout)
		defer cancel()
	}

	ack, err := d.submitter.Submit(reqCtx, o)

	d.resultsMu.Lock()
	d.results = append(d.results, Result{Order: o, Ack: ack, Err: err})
	d.resultsMu.Unlock()
}

// drain submits whatever is left in the queue after a stop signal,
// matching the teacher's "producer ends, consumer drains to empty"
// contract, then exits.
func (d *Driver) drain(ctx context.Context) {
	for {
		select {
		case o, ok := <-d.queue:
			if !ok {
				return
			}
			d.submitOne(ctx, o)
		default:
			return
		}
	}
}

// Results returns a snapshot of every recorded submission outcome so
// far.
func (d *Driver) Results() []Result {
	d.resultsMu.Lock()
	defer d.resultsMu.Unlock()
	out := make([]Result, len(d.results))
	copy(out, d.results)
	return out
}
