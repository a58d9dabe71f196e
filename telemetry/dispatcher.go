package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/playmark/playmark/log"
)

const (
	queueSize      = 64
	DefaultTimeout = 10 * time.Second
)

type job struct {
	name string
	call func(ctx context.Context) error
}

// Dispatcher delivers telemetry in the background, in submission order.
// Submitting never blocks and never reports delivery failures to the caller;
// failures are logged and dropped.
type Dispatcher struct {
	sink    Sink
	timeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	queue  chan job
	done   chan struct{}

	mu       sync.Mutex
	closed   bool
	draining bool
	pending  int
	// idle is closed whenever pending is zero.
	idle chan struct{}
}

// NewDispatcher starts a dispatcher delivering to sink. Each delivery is bounded by timeout.
func NewDispatcher(parent context.Context, sink Sink, timeout time.Duration) *Dispatcher {
	if sink == nil {
		sink = Nop{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithCancel(parent)
	d := &Dispatcher{
		sink:    sink,
		timeout: timeout,
		ctx:     ctx,
		cancel:  cancel,
		queue:   make(chan job, queueSize),
		done:    make(chan struct{}),
		idle:    make(chan struct{}),
	}
	close(d.idle)

	go d.run()
	return d
}

// Consumption queues a consumption event. It reports whether the event was accepted.
func (d *Dispatcher) Consumption(event ConsumptionEvent) bool {
	return d.submit(job{
		name: fmt.Sprintf("%s event for %s", event.EventType, event.ItemID),
		call: func(ctx context.Context) error { return d.sink.Consumption(ctx, event) },
	})
}

// Checkpoint queues a checkpoint. It reports whether the checkpoint was accepted.
func (d *Dispatcher) Checkpoint(checkpoint Checkpoint) bool {
	return d.submit(job{
		name: fmt.Sprintf("checkpoint %.2f for %s", checkpoint.Location, checkpoint.ItemID),
		call: func(ctx context.Context) error { return d.sink.Checkpoint(ctx, checkpoint) },
	})
}

func (d *Dispatcher) submit(j job) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed || d.draining {
		return false
	}

	select {
	case d.queue <- j:
		// The worker settles under mu, so it cannot see this job before it is counted.
		if d.pending == 0 {
			d.idle = make(chan struct{})
		}
		d.pending++
		return true
	default:
		log.Warnf("telemetry queue full, dropping %s", j.name)
		return false
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)

	for j := range d.queue {
		d.deliver(j)
		d.settle()
	}
}

func (d *Dispatcher) settle() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending--
	if d.pending == 0 {
		close(d.idle)
	}
}

func (d *Dispatcher) deliver(j job) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("telemetry sink panicked on %s: %v", j.name, r)
		}
	}()

	// Torn down while queued.
	if d.ctx.Err() != nil {
		return
	}

	ctx, cancel := context.WithTimeout(d.ctx, d.timeout)
	defer cancel()

	if err := j.call(ctx); err != nil {
		log.Warnf("telemetry %s failed: %v", j.name, err)
		return
	}
	log.Tracef("telemetry %s delivered", j.name)
}

// Wait blocks until everything submitted so far has been delivered or dropped.
func (d *Dispatcher) Wait() {
	<-d.idleSignal()
}

// Drain stops accepting telemetry and waits up to timeout for what is queued to be delivered.
// It reports whether the queue emptied in time. A timeout of zero waits without a deadline.
func (d *Dispatcher) Drain(timeout time.Duration) bool {
	d.mu.Lock()
	d.draining = true
	idle := d.idle
	d.mu.Unlock()

	if timeout <= 0 {
		<-idle
		return true
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-idle:
		return true
	case <-timer.C:
		log.Warnf("telemetry still pending after %s, giving up", timeout)
		return false
	}
}

func (d *Dispatcher) idleSignal() <-chan struct{} {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.idle
}

// Close stops accepting telemetry, abandons anything still queued and waits for the worker to exit.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.cancel()
	close(d.queue)
	d.mu.Unlock()

	<-d.done
}
