package alert

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"wildfire-sim/internal/sensor"
	"wildfire-sim/internal/telemetry"
)

const (
	DefaultWorkers   = 4
	DefaultQueueSize = 64
)

// DispatcherOptions configures a Dispatcher.
type DispatcherOptions struct {
	Workers   int
	QueueSize int
	Log       *slog.Logger
}

// Stats counts dispatcher outcomes.
type Stats struct {
	Delivered int64 `json:"delivered"`
	Failed    int64 `json:"failed"`
	Dropped   int64 `json:"dropped"`
}

type job struct {
	alerts []sensor.Alert
	state  *telemetry.StateRow
}

// Dispatcher hands alerts and state rows to writers on a pool of background
// workers. Sending never blocks the caller: when the queue is full the item
// is dropped and logged. Write errors are logged and counted, never retried
// and never returned to the sender.
type Dispatcher struct {
	alerts AlertWriter
	states StateWriter
	log    *slog.Logger

	jobs   chan job
	g      errgroup.Group
	mu     sync.RWMutex
	closed bool

	delivered atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

// NewDispatcher starts the worker pool. Either writer may be nil.
func NewDispatcher(aw AlertWriter, sw StateWriter, opts DispatcherOptions) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}
	d := &Dispatcher{
		alerts: aw,
		states: sw,
		log:    opts.Log,
		jobs:   make(chan job, opts.QueueSize),
	}
	for i := 0; i < opts.Workers; i++ {
		d.g.Go(func() error {
			for j := range d.jobs {
				d.handle(j)
			}
			return nil
		})
	}
	return d
}

func (d *Dispatcher) handle(j job) {
	switch {
	case len(j.alerts) > 0:
		if d.alerts != nil {
			d.writeAlerts(j.alerts)
		}
	case j.state != nil:
		if d.states == nil {
			return
		}
		if err := d.states.WriteState(*j.state); err != nil {
			d.log.Warn("state write failed", "sim_time", j.state.SimTime, "err", err)
			d.failed.Add(1)
			return
		}
		d.delivered.Add(1)
	}
}

// writeAlerts delivers one batch, through WriteAlerts when the writer
// supports it. A failed batch counts every alert in it as failed.
func (d *Dispatcher) writeAlerts(batch []sensor.Alert) {
	n := int64(len(batch))
	if bw, ok := d.alerts.(batchAlertWriter); ok {
		if err := bw.WriteAlerts(batch); err != nil {
			d.log.Warn("alert batch delivery failed", "alerts", n, "err", err)
			d.failed.Add(n)
			return
		}
		d.delivered.Add(n)
		return
	}
	for _, a := range batch {
		if err := d.alerts.WriteAlert(a); err != nil {
			d.log.Warn("alert delivery failed", "node", a.SenderID, "err", err)
			d.failed.Add(1)
			continue
		}
		d.delivered.Add(1)
	}
}

func (d *Dispatcher) enqueue(j job, what string, items int64) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false
	}
	select {
	case d.jobs <- j:
		return true
	default:
		d.dropped.Add(items)
		d.log.Warn("dispatch queue full, dropping", "kind", what)
		return false
	}
}

// SendAlerts queues a copy of the alerts of one tick as a single batch and
// reports whether it was queued. An empty batch is ignored.
func (d *Dispatcher) SendAlerts(batch []sensor.Alert) bool {
	if len(batch) == 0 {
		return true
	}
	cp := append([]sensor.Alert(nil), batch...)
	return d.enqueue(job{alerts: cp}, "alerts", int64(len(cp)))
}

// SendState queues a copy of row. It reports whether the row was queued.
func (d *Dispatcher) SendState(row telemetry.StateRow) bool {
	return d.enqueue(job{state: &row}, "state", 1)
}

// Stats returns a snapshot of the outcome counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Delivered: d.delivered.Load(),
		Failed:    d.failed.Load(),
		Dropped:   d.dropped.Load(),
	}
}

// Close stops accepting work, drains the queue and waits for the workers.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()
	return d.g.Wait()
}
