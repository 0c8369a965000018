package alert

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"wildfire-sim/internal/sensor"
)

// ReplayLog replays alerts from a JSONL stream r to writer. A speed >0
// scales the original gaps between alert timestamps; speed <= 0 replays
// without delay.
func ReplayLog(r io.Reader, writer AlertWriter, speed float64) (int, error) {
	dec := json.NewDecoder(r)
	var prev time.Time
	n := 0
	for {
		var a sensor.Alert
		if err := dec.Decode(&a); err != nil {
			if err == io.EOF {
				return n, nil
			}
			return n, err
		}
		if !prev.IsZero() && speed > 0 {
			diff := a.Timestamp.Sub(prev)
			if speed != 1 {
				diff = time.Duration(float64(diff) / speed)
			}
			if diff > 0 {
				time.Sleep(diff)
			}
		}
		if err := writer.WriteAlert(a); err != nil {
			return n, err
		}
		n++
		prev = a.Timestamp
	}
}

// ReplayLogFile opens a file and replays its alerts.
func ReplayLogFile(path string, writer AlertWriter, speed float64) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return ReplayLog(f, writer, speed)
}
