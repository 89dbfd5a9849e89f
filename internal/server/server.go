package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mnightingale/tablefsm"
	"github.com/mnightingale/tablefsm/internal/logging"
)

const defaultMaxBody = 1 << 20

// Config wires a machine into the HTTP service.
type Config struct {
	Machine   *tablefsm.Machine
	Delimiter byte  // frame delimiter, default tablefsm.DefaultDelimiter
	MaxBody   int64 // request body limit in bytes, default 1 MiB

	Metrics  *tablefsm.Metrics
	Gatherer prometheus.Gatherer // served on /metrics when set
	Logger   *slog.Logger
}

// Server serves parse requests for a single machine.
type Server struct {
	machine *tablefsm.Machine
	fsm     tablefsm.FSM
	cfg     Config
	logger  *slog.Logger
}

// MachineInfo is the JSON body of GET /machine.
type MachineInfo struct {
	Name      string `json:"name"`
	Symbols   int    `json:"symbols"`
	Cutoff    int    `json:"cutoff"`
	Delimiter int    `json:"delimiter"`
}

// NewHandler creates the HTTP handler for cfg.Machine.
func NewHandler(cfg Config) (http.Handler, error) {
	if cfg.Machine == nil {
		return nil, errors.New("server: no machine configured")
	}
	fsm, err := cfg.Machine.FSM()
	if err != nil {
		return nil, err
	}
	if cfg.Delimiter == 0 {
		cfg.Delimiter = tablefsm.DefaultDelimiter
	}
	if cfg.MaxBody <= 0 {
		cfg.MaxBody = defaultMaxBody
	}

	s := &Server{
		machine: cfg.Machine,
		fsm:     fsm,
		cfg:     cfg,
		logger:  cfg.Logger,
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/parse", s.Parse)
	r.Get("/machine", s.Describe)
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	return r, nil
}

// Parse handles POST /parse. The body is a sequence of delimiter-terminated
// frames; the response body is their concatenated output.
func (s *Server) Parse(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, fmt.Sprintf("body exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		s.logger.Warn("Parse: failed to read body", "error", err)
		return
	}

	var out bytes.Buffer
	pw := tablefsm.NewWriter(&out, s.fsm,
		tablefsm.WithWriterDelimiter(s.cfg.Delimiter),
		tablefsm.WithWriterMetrics(s.cfg.Metrics),
	)
	_, err = pw.Write(body)
	if err == nil {
		err = pw.Close()
	}
	if err != nil {
		if errors.Is(err, tablefsm.ErrIncomplete) || errors.Is(err, tablefsm.ErrInvalidConfig) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			s.logger.Debug("Parse: rejected", "error", err)
			return
		}
		http.Error(w, "Parse failed", http.StatusInternalServerError)
		s.logger.Error("Parse failed", "error", err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("X-Frames", strconv.FormatInt(pw.Frames(), 10))
	w.Write(out.Bytes())
}

// Describe handles GET /machine.
func (s *Server) Describe(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(MachineInfo{
		Name:      s.machine.Name,
		Symbols:   s.machine.NumSymbols,
		Cutoff:    s.machine.Cutoff,
		Delimiter: int(s.cfg.Delimiter),
	})
}
