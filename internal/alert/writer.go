package alert

import (
	"wildfire-sim/internal/sensor"
	"wildfire-sim/internal/telemetry"
)

// AlertWriter handles sensor alerts.
type AlertWriter interface {
	WriteAlert(sensor.Alert) error
}

// Optional: alert writers may support batch mode.
type batchAlertWriter interface {
	WriteAlerts([]sensor.Alert) error
}

// StateWriter handles per-tick simulation state rows.
type StateWriter interface {
	WriteState(telemetry.StateRow) error
}

// Writer handles both alerts and state rows.
type Writer interface {
	AlertWriter
	StateWriter
}
