package alert

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"wildfire-sim/internal/sensor"
	"wildfire-sim/internal/telemetry"
)

const defaultGreptimePort = 4001

// greptimeClient is the subset of the ingester client the writer needs.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes alerts and state rows to GreptimeDB via the ingester client.
type GreptimeDBWriter struct {
	client     greptimeClient
	alertTable string
	stateTable string
	log        *slog.Logger
}

// NewGreptimeDBWriter connects to endpoint ("host" or "host:port"). Empty
// table names fall back to the telemetry defaults.
func NewGreptimeDBWriter(endpoint, database, alertTable, stateTable string, log *slog.Logger) (*GreptimeDBWriter, error) {
	host, port, err := splitEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	cfg := greptime.NewConfig(host).WithPort(port).WithDatabase(database)
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("greptime client: %w", err)
	}
	if alertTable == "" {
		alertTable = telemetry.AlertTableName
	}
	if stateTable == "" {
		stateTable = telemetry.StateTableName
	}
	if log == nil {
		log = slog.Default()
	}
	return &GreptimeDBWriter{client: client, alertTable: alertTable, stateTable: stateTable, log: log}, nil
}

func splitEndpoint(endpoint string) (string, int, error) {
	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		// no port given
		return endpoint, defaultGreptimePort, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("greptime endpoint %q: bad port", endpoint)
	}
	return host, port, nil
}

// WriteAlert inserts a single alert.
func (w *GreptimeDBWriter) WriteAlert(a sensor.Alert) error {
	return w.WriteAlerts([]sensor.Alert{a})
}

// WriteAlerts inserts multiple alerts.
func (w *GreptimeDBWriter) WriteAlerts(rows []sensor.Alert) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := table.New(w.alertTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("node_id", types.STRING)
	tbl.AddTagColumn("kind", types.STRING)
	tbl.AddFieldColumn("row", types.INT64)
	tbl.AddFieldColumn("col", types.INT64)
	tbl.AddFieldColumn("temperature", types.FLOAT64)
	tbl.AddFieldColumn("co2_level", types.FLOAT64)
	tbl.AddFieldColumn("fire_detected", types.BOOLEAN)
	tbl.AddFieldColumn("sim_time", types.FLOAT64)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	for _, a := range rows {
		if err := tbl.AddRow(
			a.SenderID.String(),
			string(a.Kind),
			int64(a.Row),
			int64(a.Col),
			a.Temperature,
			a.CO2Level,
			a.FireDetected,
			a.SimTime,
			a.Timestamp,
		); err != nil {
			return err
		}
	}
	return w.write(tbl, w.alertTable, len(rows))
}

// WriteState inserts a single state row.
func (w *GreptimeDBWriter) WriteState(row telemetry.StateRow) error {
	return w.WriteStates([]telemetry.StateRow{row})
}

// WriteStates inserts multiple state rows.
func (w *GreptimeDBWriter) WriteStates(rows []telemetry.StateRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := table.New(w.stateTable)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("strategy", types.STRING)
	tbl.AddFieldColumn("sim_time", types.FLOAT64)
	tbl.AddFieldColumn("wind_speed", types.FLOAT64)
	tbl.AddFieldColumn("wind_direction", types.FLOAT64)
	tbl.AddFieldColumn("empty", types.INT64)
	tbl.AddFieldColumn("trees", types.INT64)
	tbl.AddFieldColumn("burning", types.INT64)
	tbl.AddFieldColumn("burnt", types.INT64)
	tbl.AddFieldColumn("sensors", types.INT64)
	tbl.AddFieldColumn("active_sensors", types.INT64)
	tbl.AddFieldColumn("alerts_emitted", types.INT64)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	for _, r := range rows {
		if err := tbl.AddRow(
			r.Strategy,
			r.SimTime,
			r.WindSpeed,
			r.WindDirection,
			int64(r.Empty),
			int64(r.Trees),
			int64(r.Burning),
			int64(r.Burnt),
			int64(r.Sensors),
			int64(r.ActiveSensors),
			int64(r.AlertsEmitted),
			r.Timestamp,
		); err != nil {
			return err
		}
	}
	return w.write(tbl, w.stateTable, len(rows))
}

func (w *GreptimeDBWriter) write(tbl *table.Table, name string, n int) error {
	if _, err := w.client.Write(context.Background(), tbl); err != nil {
		w.log.Error("greptime write failed", "table", name, "err", err)
		return err
	}
	w.log.Debug("greptime write", "table", name, "rows", n)
	return nil
}
