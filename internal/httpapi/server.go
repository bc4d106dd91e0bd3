package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/netpulse/netpulse/internal/domain"
	"github.com/netpulse/netpulse/internal/engine"
	apimw "github.com/netpulse/netpulse/internal/httpapi/middleware"
)

// Server exposes the engine's statically declared operations over HTTP.
// It holds no state of its own beyond the engine handle.
type Server struct {
	Logger          *zap.Logger
	Engine          *engine.Engine
	DefaultInterval time.Duration
}

func NewServer(l *zap.Logger, e *engine.Engine, defaultInterval time.Duration) *Server {
	return &Server{Logger: l, Engine: e, DefaultInterval: defaultInterval}
}

// Router wires reads behind any key and mutations behind admin keys.
func (s *Server) Router(keys apimw.Keys, rpm, burst int) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)
	r.Use(apimw.RateLimit(rpm, burst))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(apimw.RequireAny(keys))
			r.Get("/targets", s.handleListTargets)
			r.Get("/targets/{id}", s.handleGetTarget)
			r.Get("/targets/{id}/status", s.handleStatus)
			r.Get("/targets/{id}/history", s.handleHistory)
		})
		r.Group(func(r chi.Router) {
			r.Use(apimw.RequireAdmin(keys))
			r.Post("/targets", s.handleAddTarget)
			r.Patch("/targets/{id}", s.handleUpdateTarget)
			r.Delete("/targets/{id}", s.handleRemoveTarget)
		})
	})

	return r
}

// ---- payloads ----

type targetPayload struct {
	Host              string `json:"host"`
	Port              int    `json:"port"`
	Protocol          string `json:"protocol"`
	IntervalMS        *int   `json:"interval_ms"`
	TimeoutMS         *int   `json:"timeout_ms"`
	SuccessThreshold  *int   `json:"success_threshold"`
	FailureThreshold  *int   `json:"failure_threshold"`
	DegradedLatencyMS *int   `json:"degraded_latency_ms"`
}

type targetResponse struct {
	ID                string    `json:"id"`
	Host              string    `json:"host"`
	Port              int       `json:"port,omitempty"`
	Protocol          string    `json:"protocol"`
	IntervalMS        int64     `json:"interval_ms"`
	TimeoutMS         int64     `json:"timeout_ms"`
	SuccessThreshold  int       `json:"success_threshold"`
	FailureThreshold  int       `json:"failure_threshold"`
	DegradedLatencyMS int64     `json:"degraded_latency_ms,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

func toResponse(t domain.Target) targetResponse {
	return targetResponse{
		ID:                string(t.ID),
		Host:              t.Host,
		Port:              t.Port,
		Protocol:          string(t.Protocol),
		IntervalMS:        t.Interval.Milliseconds(),
		TimeoutMS:         t.Timeout.Milliseconds(),
		SuccessThreshold:  t.SuccessThreshold,
		FailureThreshold:  t.FailureThreshold,
		DegradedLatencyMS: t.DegradedLatency.Milliseconds(),
		CreatedAt:         t.CreatedAt,
	}
}

// ---- handlers ----

func (s *Server) handleAddTarget(w http.ResponseWriter, r *http.Request) {
	var p targetPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSONError(w, http.StatusBadRequest, "bad payload")
		return
	}

	spec := domain.TargetSpec{
		Host:     p.Host,
		Port:     p.Port,
		Protocol: domain.Protocol(p.Protocol),
		Interval: s.DefaultInterval,
	}
	if p.IntervalMS != nil {
		spec.Interval = time.Duration(*p.IntervalMS) * time.Millisecond
	}
	if p.TimeoutMS != nil {
		spec.Timeout = time.Duration(*p.TimeoutMS) * time.Millisecond
	}
	if p.SuccessThreshold != nil {
		spec.SuccessThreshold = *p.SuccessThreshold
	}
	if p.FailureThreshold != nil {
		spec.FailureThreshold = *p.FailureThreshold
	}
	if p.DegradedLatencyMS != nil {
		spec.DegradedLatency = time.Duration(*p.DegradedLatencyMS) * time.Millisecond
	}

	t, err := s.Engine.AddTarget(spec)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.Logger.Info("api_target_added",
		zap.String("target_id", string(t.ID)),
		zap.String("address", t.Address()),
	)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toResponse(t))
}

func (s *Server) handleListTargets(w http.ResponseWriter, r *http.Request) {
	ts := s.Engine.Targets()
	out := make([]targetResponse, 0, len(ts))
	for _, t := range ts {
		out = append(out, toResponse(t))
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (s *Server) handleGetTarget(w http.ResponseWriter, r *http.Request) {
	id := domain.TargetID(chi.URLParam(r, "id"))
	t, err := s.Engine.Target(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toResponse(t))
}

func (s *Server) handleUpdateTarget(w http.ResponseWriter, r *http.Request) {
	id := domain.TargetID(chi.URLParam(r, "id"))
	var p targetPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSONError(w, http.StatusBadRequest, "bad payload")
		return
	}

	var patch domain.TargetPatch
	if p.IntervalMS != nil {
		d := time.Duration(*p.IntervalMS) * time.Millisecond
		patch.Interval = &d
	}
	if p.TimeoutMS != nil {
		d := time.Duration(*p.TimeoutMS) * time.Millisecond
		patch.Timeout = &d
	}
	patch.SuccessThreshold = p.SuccessThreshold
	patch.FailureThreshold = p.FailureThreshold
	if p.DegradedLatencyMS != nil {
		d := time.Duration(*p.DegradedLatencyMS) * time.Millisecond
		patch.DegradedLatency = &d
	}

	t, err := s.Engine.UpdateTarget(id, patch)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toResponse(t))
}

func (s *Server) handleRemoveTarget(w http.ResponseWriter, r *http.Request) {
	id := domain.TargetID(chi.URLParam(r, "id"))
	if err := s.Engine.RemoveTarget(id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := domain.TargetID(chi.URLParam(r, "id"))
	st, err := s.Engine.Status(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(st)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := domain.TargetID(chi.URLParam(r, "id"))
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeJSONError(w, http.StatusBadRequest, "bad limit")
			return
		}
		limit = n
	}

	results, err := s.Engine.History(id, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if results == nil {
		results = []domain.ProbeResult{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(results)
}

// ---- error mapping ----

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, err.Error())
	default:
		writeJSONError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSONError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
