// Package httpapi exposes a Y86-64 simulator over HTTP: upload a .yo
// program, single-step it, run it to completion, or reset it.
package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	y86 "github.com/user-none/go-y86"
)

// Server wraps a single y86.CPU behind a mutex, serializing every
// request against it so concurrent HTTP requests can't interleave
// reads and writes of the same CPU state.
type Server struct {
	mu     sync.Mutex
	cpu    *y86.CPU
	driver *y86.Driver
	log    *logrus.Logger

	stepCap      int
	maxUploadMB  int64
	instructions int
}

// Option configures a Server at construction time.
type Option func(*Server)

// WithStepCap overrides the driver's instruction cap (default
// y86.DefaultStepCap).
func WithStepCap(cap int) Option {
	return func(s *Server) { s.stepCap = cap }
}

// WithMaxUploadMB overrides the maximum accepted upload size in
// megabytes (default 16).
func WithMaxUploadMB(mb int64) Option {
	return func(s *Server) { s.maxUploadMB = mb }
}

// WithLogger overrides the server's logrus logger.
func WithLogger(l *logrus.Logger) Option {
	return func(s *Server) { s.log = l }
}

// NewServer returns a Server with an empty, unloaded CPU.
func NewServer(opts ...Option) *Server {
	s := &Server{
		cpu:         y86.New(),
		driver:      y86.NewDriver(),
		log:         logrus.StandardLogger(),
		stepCap:     y86.DefaultStepCap,
		maxUploadMB: 16,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.driver.Log = s.log
	return s
}

// Router builds the gorilla/mux router for the four API endpoints.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/upload", s.handleUpload).Methods(http.MethodPost)
	r.HandleFunc("/api/step", s.handleStep).Methods(http.MethodPost)
	r.HandleFunc("/api/run", s.handleRun).Methods(http.MethodPost)
	r.HandleFunc("/api/reset", s.handleReset).Methods(http.MethodPost)
	return r
}

// stateJSON is the JSON shape of one Snapshot, with its own key names
// (registers/flags/pc/status/memory) independent of FinalState's YAML
// field names: this is a polling shape for a browser UI, not the
// structured file output.
type stateJSON struct {
	PC     uint64           `json:"pc"`
	REG    map[string]int64 `json:"registers"`
	CC     ccJSON           `json:"flags"`
	Memory map[string]int64 `json:"memory"`
	Status string           `json:"status"`
}

type ccJSON struct {
	ZF int `json:"ZF"`
	SF int `json:"SF"`
	OF int `json:"OF"`
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func snapshotJSON(snap y86.Snapshot) stateJSON {
	fs := y86.BuildFinalState(snap)
	mem := make(map[string]int64, len(fs.MEM))
	for addr, v := range fs.MEM {
		mem[fmt.Sprintf("%d", addr)] = v
	}
	return stateJSON{
		PC:     fs.PC,
		REG:    fs.REG,
		CC:     ccJSON{ZF: boolInt(fs.CC.ZF()), SF: boolInt(fs.CC.SF()), OF: boolInt(fs.CC.OF())},
		Memory: mem,
		Status: snap.Status.String(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadMB<<20)
	if err := r.ParseMultipartForm(s.maxUploadMB << 20); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("no file part: %w", err))
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("no file part: %w", err))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	image, err := y86.ParseYO(string(content))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(image) == 0 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("no valid instructions found in file"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.cpu.Load(image); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.instructions = 0

	history, err := s.driver.RunAll(s.cpu, s.stepCap)
	if err != nil {
		s.log.WithError(err).Warn("httpapi: upload run did not reach a terminal status")
	}
	s.instructions = len(history) - 1

	writeJSON(w, http.StatusOK, map[string]any{
		"message":    "program executed and output generated successfully",
		"states":     toJSONStates(history),
		"statistics": s.statistics(),
	})
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	running, _ := s.cpu.Step()
	if running {
		s.instructions++
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    running,
		"state":      snapshotJSON(s.cpu.Snapshot()),
		"statistics": s.statistics(),
	})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.driver.RunAll(s.cpu, s.stepCap)
	if err != nil {
		s.log.WithError(err).Warn("httpapi: run did not reach a terminal status")
	}
	s.instructions += len(history) - 1

	writeJSON(w, http.StatusOK, map[string]any{
		"states":     toJSONStates(history),
		"statistics": s.statistics(),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cpu.Reset()
	s.instructions = 0

	writeJSON(w, http.StatusOK, map[string]string{"message": "simulator reset successfully"})
}

func (s *Server) statistics() map[string]any {
	return map[string]any{
		"instruction_count": s.instructions,
		"status":            s.cpu.Status().String(),
	}
}

func toJSONStates(history []y86.Snapshot) []stateJSON {
	states := make([]stateJSON, len(history))
	for i, snap := range history {
		states[i] = snapshotJSON(snap)
	}
	return states
}
