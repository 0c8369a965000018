// ColorStdoutWriter prints human-friendly, colorized alerts to STDOUT.
package alert

import (
	"fmt"
	"io"
	"os"
	"sync"
	"text/tabwriter"
	"time"

	"wildfire-sim/internal/config"
	"wildfire-sim/internal/sensor"
	"wildfire-sim/internal/telemetry"
)

const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorWhite   = "\x1b[37m"
	colorGray    = "\x1b[90m"
)

// ColorStdoutWriter prints alerts and state rows using ANSI colors.
type ColorStdoutWriter struct {
	cfg  *config.Config
	mu   sync.Mutex
	out  io.Writer
	once sync.Once
}

// NewColorStdoutWriter creates a ColorStdoutWriter writing to os.Stdout.
func NewColorStdoutWriter(cfg *config.Config) *ColorStdoutWriter {
	return &ColorStdoutWriter{cfg: cfg, out: os.Stdout}
}

func (w *ColorStdoutWriter) printOverview() {
	if w.cfg == nil {
		return
	}
	c := w.cfg
	fmt.Fprintln(w.out, "Simulation Configuration:")
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Grid:\t%dx%d (%.2f km/cell)\n", c.Grid.Width, c.Grid.Height, c.Grid.CellSizeKm)
	fmt.Fprintf(tw, "Strategy:\t%s\n", c.Simulation.Strategy)
	fmt.Fprintf(tw, "Step Time (s):\t%.2f\n", c.Simulation.StepTime)
	fmt.Fprintf(tw, "Wind:\t%.1f m/s @ %.0f°\n", c.Wind.InitialSpeed, c.Wind.InitialDirection)
	fmt.Fprintf(tw, "Humidity:\t%.0f%%\n", c.Environment.Humidity)
	fmt.Fprintf(tw, "Alert Thresholds:\t%.0f°C / %.0f ppm\n", c.Sensors.TemperatureThreshold, c.Sensors.CO2Threshold)
	fmt.Fprintf(tw, "Cooldown (s):\t%.0f\n", c.Sensors.TransmissionCooldown)
	tw.Flush()
	fmt.Fprintln(w.out)
}

func kindColor(k sensor.Kind) string {
	if k == sensor.KindMaster {
		return colorMagenta
	}
	return colorCyan
}

// alertLine renders an alert with ANSI colors. Shared with the TUI.
func alertLine(a sensor.Alert) string {
	fire := colorYellow + "no-fire" + colorReset
	if a.FireDetected {
		fire = colorRed + "FIRE" + colorReset
	}
	return fmt.Sprintf("%s[%s]%s %sALERT%s %snode=%s%s %s%s%s %spos=(%d,%d)%s %stemp=%.1f%s %sco2=%.0f%s %st=%.1fs%s %s",
		colorGray, a.Timestamp.Format(time.RFC3339), colorReset,
		colorRed, colorReset,
		colorWhite, a.SenderID, colorReset,
		kindColor(a.Kind), a.Kind, colorReset,
		colorBlue, a.Row, a.Col, colorReset,
		colorYellow, a.Temperature, colorReset,
		colorGreen, a.CO2Level, colorReset,
		colorGray, a.SimTime, colorReset,
		fire)
}

func stateLine(row telemetry.StateRow) string {
	return fmt.Sprintf("%s[%s]%s %sSTATE%s t=%.1fs strategy=%s %swind=%.1fm/s@%.0f°%s trees=%d %sburning=%d%s %sburnt=%d%s sensors=%d/%d alerts=%d",
		colorGray, row.Timestamp.Format(time.RFC3339), colorReset,
		colorBlue, colorReset,
		row.SimTime, row.Strategy,
		colorCyan, row.WindSpeed, row.WindDirection, colorReset,
		row.Trees,
		colorRed, row.Burning, colorReset,
		colorGray, row.Burnt, colorReset,
		row.ActiveSensors, row.Sensors, row.AlertsEmitted)
}

// WriteAlert prints a sensor alert to STDOUT.
func (w *ColorStdoutWriter) WriteAlert(a sensor.Alert) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.once.Do(w.printOverview)
	_, err := fmt.Fprintln(w.out, alertLine(a))
	return err
}

// WriteState prints simulation state metrics to STDOUT.
func (w *ColorStdoutWriter) WriteState(row telemetry.StateRow) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.once.Do(w.printOverview)
	_, err := fmt.Fprintln(w.out, stateLine(row))
	return err
}
