// Row types written to the alert and state sinks.
package telemetry

import (
	"os"
	"time"
)

// StateRow summarises the simulation after one tick.
type StateRow struct {
	SimTime       float64   `json:"sim_time"`
	Strategy      string    `json:"strategy"`       // TAG
	WindSpeed     float64   `json:"wind_speed"`     // FIELD
	WindDirection float64   `json:"wind_direction"` // FIELD
	Empty         int       `json:"empty"`
	Trees         int       `json:"trees"`
	Burning       int       `json:"burning"`
	Burnt         int       `json:"burnt"`
	Sensors       int       `json:"sensors"`
	ActiveSensors int       `json:"active_sensors"`
	AlertsEmitted int       `json:"alerts_emitted"`
	Timestamp     time.Time `json:"ts"` // TIME INDEX
}

// Fire reports whether any cell was burning at the end of the tick.
func (r StateRow) Fire() bool { return r.Burning > 0 }

// AlertTableName holds the GreptimeDB table for sensor alerts. It defaults
// to "wildfire_alerts" and can be overridden via GREPTIMEDB_ALERT_TABLE.
var AlertTableName = tableName("GREPTIMEDB_ALERT_TABLE", "wildfire_alerts")

// StateTableName holds the GreptimeDB table for state rows. It defaults
// to "wildfire_state" and can be overridden via GREPTIMEDB_STATE_TABLE.
var StateTableName = tableName("GREPTIMEDB_STATE_TABLE", "wildfire_state")

func tableName(env, def string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	return def
}

func (StateRow) TableName() string { return StateTableName }
