package alert

import (
	"errors"
	"io"

	"wildfire-sim/internal/sensor"
	"wildfire-sim/internal/telemetry"
)

// MultiWriter fan-outs alerts and state rows to multiple writers.
type MultiWriter struct {
	alertWriters []AlertWriter
	stateWriters []StateWriter
}

// NewMultiWriter creates a new MultiWriter. Nil entries are skipped.
func NewMultiWriter(aws []AlertWriter, sws []StateWriter) *MultiWriter {
	mw := &MultiWriter{}
	for _, w := range aws {
		if w != nil {
			mw.alertWriters = append(mw.alertWriters, w)
		}
	}
	for _, w := range sws {
		if w != nil {
			mw.stateWriters = append(mw.stateWriters, w)
		}
	}
	return mw
}

// WriteAlert sends an alert to all alert writers. Every writer is tried;
// the errors are joined.
func (mw *MultiWriter) WriteAlert(a sensor.Alert) error {
	var errs []error
	for _, w := range mw.alertWriters {
		if err := w.WriteAlert(a); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// WriteAlerts sends multiple alerts to all writers, using batch if supported.
func (mw *MultiWriter) WriteAlerts(rows []sensor.Alert) error {
	var errs []error
	for _, w := range mw.alertWriters {
		if bw, ok := w.(batchAlertWriter); ok {
			if err := bw.WriteAlerts(rows); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		for _, r := range rows {
			if err := w.WriteAlert(r); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// WriteState sends a state row to all state writers.
func (mw *MultiWriter) WriteState(row telemetry.StateRow) error {
	var errs []error
	for _, w := range mw.stateWriters {
		if err := w.WriteState(row); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every distinct writer that implements io.Closer.
func (mw *MultiWriter) Close() error {
	seen := make(map[any]bool)
	var errs []error
	closeOne := func(w any) {
		c, ok := w.(io.Closer)
		if !ok || seen[w] {
			return
		}
		seen[w] = true
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, w := range mw.alertWriters {
		closeOne(w)
	}
	for _, w := range mw.stateWriters {
		closeOne(w)
	}
	return errors.Join(errs...)
}
