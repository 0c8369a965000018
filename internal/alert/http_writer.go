package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"wildfire-sim/internal/sensor"
)

// HTTPWriter posts alert payloads to the alert backend. It is the only
// writer that leaves the process; failures are returned, never retried.
type HTTPWriter struct {
	url    string
	client *http.Client
	log    *slog.Logger
}

// NewHTTPWriter creates an HTTPWriter posting to url with the given timeout.
func NewHTTPWriter(url string, timeout time.Duration, log *slog.Logger) *HTTPWriter {
	if log == nil {
		log = slog.Default()
	}
	return &HTTPWriter{
		url:    url,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// WriteAlert posts a's payload as JSON.
func (w *HTTPWriter) WriteAlert(a sensor.Alert) error {
	body, err := json.Marshal(a.Payload())
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("post alert %s: %w", a.SenderID, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("post alert %s: backend returned %s", a.SenderID, resp.Status)
	}
	w.log.Info("alert delivered", "node", a.SenderID, "status", resp.StatusCode)
	return nil
}
