package alert

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wildfire-sim/internal/logging"
	"wildfire-sim/internal/sensor"
)

func TestHTTPWriterPostsPayload(t *testing.T) {
	got := make(chan sensor.Payload, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		var p sensor.Payload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		got <- p
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	w := NewHTTPWriter(srv.URL, time.Second, logging.Discard())
	a := testAlert(6)
	if err := w.WriteAlert(a); err != nil {
		t.Fatal(err)
	}
	p := <-got
	if p.UUID != a.SenderID.String() || p.Source != "simulated" || p.Temperature != a.Temperature || p.CO2Level != a.CO2Level {
		t.Fatalf("unexpected payload %+v", p)
	}
}

func TestHTTPWriterReportsBackendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	w := NewHTTPWriter(srv.URL, time.Second, logging.Discard())
	if err := w.WriteAlert(testAlert(6)); err == nil {
		t.Fatalf("expected error for 503")
	}
}

func TestHTTPWriterUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	w := NewHTTPWriter(url, 200*time.Millisecond, logging.Discard())
	if err := w.WriteAlert(testAlert(6)); err == nil {
		t.Fatalf("expected connection error")
	}
}
