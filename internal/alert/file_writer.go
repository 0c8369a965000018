package alert

import (
	"encoding/json"
	"errors"
	"os"
	"sync"

	"wildfire-sim/internal/sensor"
	"wildfire-sim/internal/telemetry"
)

// FileWriter writes alerts and state rows to JSONL files.
type FileWriter struct {
	mu        sync.Mutex
	alertFile *os.File
	stateFile *os.File
	alertEnc  *json.Encoder
	stateEnc  *json.Encoder
}

// NewFileWriter creates a FileWriter. statePath may be empty to skip state rows.
func NewFileWriter(alertPath, statePath string) (*FileWriter, error) {
	af, err := os.Create(alertPath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{alertFile: af, alertEnc: json.NewEncoder(af)}
	if statePath != "" {
		sf, err := os.Create(statePath)
		if err != nil {
			af.Close()
			return nil, err
		}
		fw.stateFile = sf
		fw.stateEnc = json.NewEncoder(sf)
	}
	return fw, nil
}

// WriteAlert logs a single alert.
func (f *FileWriter) WriteAlert(a sensor.Alert) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.alertEnc.Encode(a)
}

// WriteState logs a simulation state row, if enabled.
func (f *FileWriter) WriteState(row telemetry.StateRow) error {
	if f.stateEnc == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stateEnc.Encode(row)
}

// Close closes any underlying files.
func (f *FileWriter) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	var errs []error
	if f.alertFile != nil {
		errs = append(errs, f.alertFile.Close())
	}
	if f.stateFile != nil {
		errs = append(errs, f.stateFile.Close())
	}
	return errors.Join(errs...)
}
