package alert

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"wildfire-sim/internal/sensor"
	"wildfire-sim/internal/telemetry"
)

// JSONStdoutWriter prints alerts and state rows as JSON lines to STDOUT.
type JSONStdoutWriter struct {
	mu  sync.Mutex
	out io.Writer
}

// NewJSONStdoutWriter creates a JSONStdoutWriter writing to os.Stdout.
func NewJSONStdoutWriter() *JSONStdoutWriter {
	return &JSONStdoutWriter{out: os.Stdout}
}

type jsonLine struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

func (w *JSONStdoutWriter) emit(kind string, v any) error {
	data, err := json.Marshal(jsonLine{Type: kind, Data: v})
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err = fmt.Fprintln(w.out, string(data))
	return err
}

// WriteAlert outputs an alert in JSON format.
func (w *JSONStdoutWriter) WriteAlert(a sensor.Alert) error {
	return w.emit("alert", a)
}

// WriteState outputs a state row in JSON format.
func (w *JSONStdoutWriter) WriteState(row telemetry.StateRow) error {
	return w.emit("state", row)
}
