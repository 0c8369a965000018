package admin

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"wildfire-sim/internal/alert"
	"wildfire-sim/internal/config"
	"wildfire-sim/internal/logging"
	"wildfire-sim/internal/sensor"
	"wildfire-sim/internal/sim"
)

func newTestServer(t *testing.T) (*Server, *alert.Bus) {
	t.Helper()
	cfg := config.Default()
	cfg.Simulation.InitialDensity = 0
	bus := alert.NewBus()
	s, err := sim.New(cfg, sim.Options{Bus: bus, Rand: rand.New(rand.NewSource(1)), Log: logging.Discard()})
	if err != nil {
		t.Fatalf("new simulator: %v", err)
	}
	srv := NewServer(s, bus, logging.Discard())
	t.Cleanup(func() {
		srv.hub.Close()
		s.Close()
		bus.Close()
	})
	return srv, bus
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, sim.Status) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	var st sim.Status
	json.Unmarshal(w.Body.Bytes(), &st)
	return w, st
}

func TestHandleState(t *testing.T) {
	srv, _ := newTestServer(t)
	w, _ := do(t, srv.Handler(), http.MethodGet, "/state", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status OK, got %v", w.Code)
	}
	var v sim.View
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if v.Width != 20 || v.Height != 20 || len(v.Cells) != 400 {
		t.Errorf("unexpected view %dx%d with %d cells", v.Width, v.Height, len(v.Cells))
	}
	if v.Counts["empty"] != 400 {
		t.Errorf("expected an empty forest, got %v", v.Counts)
	}
}

func TestCellAndIgnite(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	w, st := do(t, h, http.MethodPost, "/ignite", `{"row":2,"col":2}`)
	if w.Code != http.StatusConflict || st.Applied {
		t.Fatalf("igniting empty cell: %d %+v", w.Code, st)
	}
	w, st = do(t, h, http.MethodPost, "/cell", `{"row":2,"col":2,"state":"tree"}`)
	if w.Code != http.StatusOK || !st.Applied {
		t.Fatalf("planting tree: %d %+v", w.Code, st)
	}
	w, _ = do(t, h, http.MethodPost, "/ignite", `{"row":2,"col":2}`)
	if w.Code != http.StatusOK {
		t.Fatalf("igniting tree: %d", w.Code)
	}
	if c, _ := srv.Sim.Cell(2, 2); c.State.String() != "burning" {
		t.Fatalf("cell is %s", c.State)
	}
	if w, _ = do(t, h, http.MethodPost, "/ignite", `{"row":40,"col":2}`); w.Code != http.StatusBadRequest {
		t.Fatalf("out of bounds answered %d", w.Code)
	}
	if w, _ = do(t, h, http.MethodPost, "/cell", `{"row":1,"col":1,"state":"lava"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("unknown state answered %d", w.Code)
	}
}

func TestSensorPlacement(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	if w, _ := do(t, h, http.MethodPost, "/sensor", `{"row":4,"col":4,"kind":"master"}`); w.Code != http.StatusOK {
		t.Fatalf("placement answered %d", w.Code)
	}
	if w, _ := do(t, h, http.MethodPost, "/sensor", `{"row":4,"col":4,"kind":"slave"}`); w.Code != http.StatusConflict {
		t.Fatalf("duplicate answered %d", w.Code)
	}
	if w, _ := do(t, h, http.MethodPost, "/sensor", `{"row":5,"col":4,"kind":"relay"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("bad kind answered %d", w.Code)
	}
	if n := len(srv.Sim.Nodes()); n != 1 {
		t.Fatalf("expected 1 node, got %d", n)
	}
}

func TestWindAndStrategy(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()
	if w, _ := do(t, h, http.MethodPost, "/wind/speed", `{"speed":3}`); w.Code != http.StatusOK {
		t.Fatalf("wind speed answered %d", w.Code)
	}
	if w, _ := do(t, h, http.MethodPost, "/wind/direction", `{"direction":450}`); w.Code != http.StatusOK {
		t.Fatalf("wind direction answered %d", w.Code)
	}
	if wind := srv.Sim.Wind(); wind.Speed != 3 || wind.Direction != 90 {
		t.Fatalf("unexpected wind %+v", wind)
	}
	if w, _ := do(t, h, http.MethodPost, "/wind/speed", `{}`); w.Code != http.StatusBadRequest {
		t.Fatalf("missing speed answered %d", w.Code)
	}
	if w, _ := do(t, h, http.MethodPost, "/wind/speed", `{"speed":-1}`); w.Code != http.StatusBadRequest {
		t.Fatalf("negative speed answered %d", w.Code)
	}
	if w, _ := do(t, h, http.MethodPost, "/strategy", `{"strategy":"fast"}`); w.Code != http.StatusOK {
		t.Fatalf("strategy answered %d", w.Code)
	}
	if w, _ := do(t, h, http.MethodPost, "/strategy", `{"strategy":"medium"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("unknown strategy answered %d", w.Code)
	}
}

func TestStepStartStopBackReset(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Handler()

	if w, _ := do(t, h, http.MethodPost, "/step", ""); w.Code != http.StatusOK {
		t.Fatalf("step answered %d", w.Code)
	}
	if w, _ := do(t, h, http.MethodPost, "/step", `{"dt":1.5}`); w.Code != http.StatusOK {
		t.Fatalf("step with dt answered %d", w.Code)
	}
	if got := srv.Sim.SimTime(); got != 2 {
		t.Fatalf("expected t=2, got %v", got)
	}
	if w, _ := do(t, h, http.MethodPost, "/step", `{"dt":-1}`); w.Code != http.StatusBadRequest {
		t.Fatalf("negative step answered %d", w.Code)
	}
	if w, _ := do(t, h, http.MethodPost, "/back", ""); w.Code != http.StatusOK {
		t.Fatalf("back answered %d", w.Code)
	}
	if w, _ := do(t, h, http.MethodPost, "/start", ""); w.Code != http.StatusOK {
		t.Fatalf("start answered %d", w.Code)
	}
	if w, _ := do(t, h, http.MethodPost, "/step", ""); w.Code != http.StatusConflict {
		t.Fatalf("step while running answered %d", w.Code)
	}
	if w, _ := do(t, h, http.MethodPost, "/stop", ""); w.Code != http.StatusOK {
		t.Fatalf("stop answered %d", w.Code)
	}
	if w, _ := do(t, h, http.MethodPost, "/stop", ""); w.Code != http.StatusConflict {
		t.Fatalf("second stop answered %d", w.Code)
	}
	if w, _ := do(t, h, http.MethodPost, "/reset", `{"density":1}`); w.Code != http.StatusOK {
		t.Fatalf("reset answered %d", w.Code)
	}
	if v := srv.Sim.State(); v.Counts["tree"] != 400 || v.SimTime != 0 {
		t.Fatalf("unexpected state after reset: %v t=%v", v.Counts, v.SimTime)
	}
	if w, _ := do(t, h, http.MethodGet, "/start", ""); w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET /start answered %d", w.Code)
	}
}

func TestHandleIndex(t *testing.T) {
	srv, _ := newTestServer(t)
	srv.Sim.PlaceSensorNode(1, 1, sensor.KindMaster)
	w, _ := do(t, srv.Handler(), http.MethodGet, "/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status OK, got %v", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Wildfire Simulation") || !strings.Contains(body, "master") {
		t.Fatalf("unexpected page: %s", body)
	}
}

func TestAlertStream(t *testing.T) {
	srv, bus := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for srv.hub.Clients() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	want := sensor.Alert{SenderID: uuid.New(), Kind: sensor.KindSlave, Row: 3, Col: 4, Temperature: 70, CO2Level: 1600, FireDetected: true, SimTime: 12}
	bus.Publish(want)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got sensor.Alert
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read alert: %v", err)
	}
	if got.SenderID != want.SenderID || got.Row != 3 || !got.FireDetected {
		t.Fatalf("unexpected alert %+v", got)
	}
}
