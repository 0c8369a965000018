package alert

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"wildfire-sim/internal/sensor"
	"wildfire-sim/internal/telemetry"
)

func testAlert(simTime float64) sensor.Alert {
	return sensor.Alert{
		SenderID:     uuid.MustParse("6fd2a1d2-7d17-4ef5-9e1c-2a9d6b4e0c11"),
		Kind:         sensor.KindMaster,
		Row:          5,
		Col:          5,
		Temperature:  72.5,
		CO2Level:     1830,
		FireDetected: true,
		SimTime:      simTime,
		Timestamp:    time.Unix(int64(simTime), 0).UTC(),
	}
}

func testState(simTime float64) telemetry.StateRow {
	return telemetry.StateRow{
		SimTime:   simTime,
		Strategy:  "slow",
		WindSpeed: 2,
		Trees:     200,
		Burning:   3,
		Sensors:   1,
		Timestamp: time.Unix(int64(simTime), 0).UTC(),
	}
}

// collectWriter records everything written to it.
type collectWriter struct {
	mu     sync.Mutex
	alerts []sensor.Alert
	states []telemetry.StateRow
	err    error
	closed bool
}

func (c *collectWriter) WriteAlert(a sensor.Alert) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alerts = append(c.alerts, a)
	return c.err
}

func (c *collectWriter) WriteState(r telemetry.StateRow) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states = append(c.states, r)
	return c.err
}

func (c *collectWriter) Close() error {
	c.closed = true
	return nil
}

func (c *collectWriter) counts() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.alerts), len(c.states)
}
