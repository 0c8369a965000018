// Package admin serves the HTTP control surface of a running simulation.
package admin

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"time"

	"wildfire-sim/internal/alert"
	"wildfire-sim/internal/grid"
	"wildfire-sim/internal/propagation"
	"wildfire-sim/internal/sensor"
	"wildfire-sim/internal/sim"
)

type Server struct {
	Sim *sim.Simulator
	hub *Hub
	tpl *template.Template
	log *slog.Logger
	srv *http.Server
}

//go:embed templates/index.html
var content embed.FS

// NewServer builds the handlers. bus may be nil, which disables /ws.
func NewServer(s *sim.Simulator, bus *alert.Bus, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	tpl := template.Must(template.New("index.html").ParseFS(content, "templates/index.html"))
	srv := &Server{Sim: s, tpl: tpl, log: log}
	if bus != nil {
		srv.hub = NewHub(bus, log)
	}
	return srv
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /state", s.handleState)
	mux.HandleFunc("POST /cell", s.handleCell)
	mux.HandleFunc("POST /ignite", s.handleIgnite)
	mux.HandleFunc("POST /sensor", s.handleSensor)
	mux.HandleFunc("POST /wind/speed", s.handleWindSpeed)
	mux.HandleFunc("POST /wind/direction", s.handleWindDirection)
	mux.HandleFunc("POST /strategy", s.handleStrategy)
	mux.HandleFunc("POST /step", s.handleStep)
	mux.HandleFunc("POST /start", s.handleStart)
	mux.HandleFunc("POST /stop", s.handleStop)
	mux.HandleFunc("POST /reset", s.handleReset)
	mux.HandleFunc("POST /back", s.handleBack)
	if s.hub != nil {
		mux.Handle("GET /ws", s.hub)
	}
	return mux
}

// Start listens on addr until Shutdown.
func (s *Server) Start(addr string) error {
	s.srv = &http.Server{Addr: addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	s.log.Info("admin server listening", "addr", addr)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the listener and disconnects stream clients.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.hub != nil {
		s.hub.Close()
	}
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tpl.Execute(w, s.Sim.State()); err != nil {
		s.log.Error("render index", "error", err)
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sim.State())
}

type cellRequest struct {
	Row   int        `json:"row"`
	Col   int        `json:"col"`
	State grid.State `json:"state"`
}

func (s *Server) handleCell(w http.ResponseWriter, r *http.Request) {
	var req cellRequest
	if !s.decode(w, r, &req) {
		return
	}
	st, err := s.Sim.SetCellState(req.Row, req.Col, req.State)
	s.reply(w, st, err)
}

func (s *Server) handleIgnite(w http.ResponseWriter, r *http.Request) {
	var req cellRequest
	if !s.decode(w, r, &req) {
		return
	}
	st, err := s.Sim.IgniteCell(req.Row, req.Col)
	s.reply(w, st, err)
}

type sensorRequest struct {
	Row  int    `json:"row"`
	Col  int    `json:"col"`
	Kind string `json:"kind"`
}

func (s *Server) handleSensor(w http.ResponseWriter, r *http.Request) {
	var req sensorRequest
	if !s.decode(w, r, &req) {
		return
	}
	kind, err := sensor.ParseKind(req.Kind)
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}
	st, err := s.Sim.PlaceSensorNode(req.Row, req.Col, kind)
	s.reply(w, st, err)
}

type windRequest struct {
	Speed     *float64 `json:"speed,omitempty"`
	Direction *float64 `json:"direction,omitempty"`
}

func (s *Server) handleWindSpeed(w http.ResponseWriter, r *http.Request) {
	var req windRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Speed == nil {
		s.fail(w, http.StatusBadRequest, errors.New("missing speed"))
		return
	}
	st, err := s.Sim.SetWindSpeed(*req.Speed)
	s.reply(w, st, err)
}

func (s *Server) handleWindDirection(w http.ResponseWriter, r *http.Request) {
	var req windRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Direction == nil {
		s.fail(w, http.StatusBadRequest, errors.New("missing direction"))
		return
	}
	st, err := s.Sim.SetWindDirection(*req.Direction)
	s.reply(w, st, err)
}

func (s *Server) handleStrategy(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Strategy string `json:"strategy"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	kind, err := propagation.ParseKind(req.Strategy)
	if err != nil {
		s.fail(w, http.StatusBadRequest, err)
		return
	}
	st, err := s.Sim.SetStrategy(kind)
	s.reply(w, st, err)
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DT float64 `json:"dt"`
	}
	if !s.decodeOptional(w, r, &req) {
		return
	}
	st, err := s.Sim.Step(req.DT)
	s.reply(w, st, err)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	s.reply(w, s.Sim.Start(), nil)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.reply(w, s.Sim.Stop(), nil)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	req := struct {
		Density float64 `json:"density"`
	}{Density: s.Sim.Config().Simulation.InitialDensity}
	if !s.decodeOptional(w, r, &req) {
		return
	}
	st, err := s.Sim.Reset(req.Density)
	s.reply(w, st, err)
}

func (s *Server) handleBack(w http.ResponseWriter, r *http.Request) {
	st, err := s.Sim.GoBack()
	s.reply(w, st, err)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.fail(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return false
	}
	return true
}

// decodeOptional accepts an empty body and keeps v's defaults.
func (s *Server) decodeOptional(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.ContentLength == 0 {
		return true
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		s.fail(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return false
	}
	return true
}

// reply writes a Status. Rejected actions answer 409, invariant
// violations 400.
func (s *Server) reply(w http.ResponseWriter, st sim.Status, err error) {
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, sim.ErrOutOfBounds) || errors.Is(err, sim.ErrInvalidValue) || errors.Is(err, sim.ErrNegativeElapsed) {
			code = http.StatusBadRequest
		}
		s.fail(w, code, err)
		return
	}
	code := http.StatusOK
	if !st.Applied {
		code = http.StatusConflict
	}
	writeJSON(w, code, st)
}

func (s *Server) fail(w http.ResponseWriter, code int, err error) {
	if code >= http.StatusInternalServerError {
		s.log.Error("admin request failed", "error", err)
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
