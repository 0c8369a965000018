package alert

import (
	"errors"
	"sync"
	"testing"

	"wildfire-sim/internal/logging"
	"wildfire-sim/internal/sensor"
)

func TestDispatcherDeliversAndDrains(t *testing.T) {
	cw := &collectWriter{}
	d := NewDispatcher(cw, cw, DispatcherOptions{Workers: 3, QueueSize: 100, Log: logging.Discard()})
	for i := 0; i < 20; i++ {
		if !d.SendAlerts([]sensor.Alert{testAlert(float64(i))}) {
			t.Fatalf("alert %d not queued", i)
		}
		d.SendState(testState(float64(i)))
	}
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}
	if na, ns := cw.counts(); na != 20 || ns != 20 {
		t.Fatalf("delivered %d alerts %d states", na, ns)
	}
	if s := d.Stats(); s.Delivered != 40 || s.Failed != 0 || s.Dropped != 0 {
		t.Fatalf("unexpected stats %+v", s)
	}
	if d.SendAlerts([]sensor.Alert{testAlert(99)}) {
		t.Fatalf("send after close accepted")
	}
	if err := d.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

// blockingWriter holds every write until release is closed.
type blockingWriter struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingWriter) WriteAlert(sensor.Alert) error {
	b.once.Do(func() { close(b.started) })
	<-b.release
	return nil
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	bw := &blockingWriter{started: make(chan struct{}), release: make(chan struct{})}
	d := NewDispatcher(bw, nil, DispatcherOptions{Workers: 1, QueueSize: 1, Log: logging.Discard()})

	d.SendAlerts([]sensor.Alert{testAlert(1)})
	<-bw.started // worker busy, queue empty
	if !d.SendAlerts([]sensor.Alert{testAlert(2)}) {
		t.Fatalf("queue slot should be free")
	}
	if d.SendAlerts([]sensor.Alert{testAlert(3)}) {
		t.Fatalf("full queue accepted alert")
	}
	close(bw.release)
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}
	if s := d.Stats(); s.Dropped != 1 || s.Delivered != 2 {
		t.Fatalf("unexpected stats %+v", s)
	}
}

func TestDispatcherCountsFailures(t *testing.T) {
	cw := &collectWriter{err: errors.New("backend down")}
	d := NewDispatcher(cw, nil, DispatcherOptions{Log: logging.Discard()})
	d.SendAlerts([]sensor.Alert{testAlert(1)})
	d.SendState(testState(1)) // no state writer: ignored
	d.Close()
	if s := d.Stats(); s.Failed != 1 || s.Delivered != 0 {
		t.Fatalf("unexpected stats %+v", s)
	}
}

// batchWriter records the size of every batch it receives.
type batchWriter struct {
	collectWriter
	batches []int
}

func (b *batchWriter) WriteAlerts(rows []sensor.Alert) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.batches = append(b.batches, len(rows))
	b.alerts = append(b.alerts, rows...)
	return b.err
}

func TestDispatcherSendsTickAsOneBatch(t *testing.T) {
	bw := &batchWriter{}
	plain := &collectWriter{}
	d := NewDispatcher(NewMultiWriter([]AlertWriter{bw, plain}, nil), nil,
		DispatcherOptions{Workers: 1, Log: logging.Discard()})

	if !d.SendAlerts(nil) {
		t.Fatalf("empty batch should be accepted")
	}
	if !d.SendAlerts([]sensor.Alert{testAlert(1), testAlert(1), testAlert(1)}) {
		t.Fatalf("batch not queued")
	}
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}
	if len(bw.batches) != 1 || bw.batches[0] != 3 {
		t.Fatalf("expected one batch of 3, got %v", bw.batches)
	}
	if n, _ := plain.counts(); n != 3 {
		t.Fatalf("non-batch writer got %d alerts", n)
	}
	if s := d.Stats(); s.Delivered != 3 || s.Failed != 0 {
		t.Fatalf("unexpected stats %+v", s)
	}
}

func TestDispatcherCountsFailedBatch(t *testing.T) {
	bw := &batchWriter{collectWriter: collectWriter{err: errors.New("backend down")}}
	d := NewDispatcher(bw, nil, DispatcherOptions{Log: logging.Discard()})
	d.SendAlerts([]sensor.Alert{testAlert(1), testAlert(2)})
	d.Close()
	if s := d.Stats(); s.Failed != 2 || s.Delivered != 0 {
		t.Fatalf("unexpected stats %+v", s)
	}
}
