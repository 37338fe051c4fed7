package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/iafilius/DoggiesWorld/src/analysis"
	"github.com/iafilius/DoggiesWorld/src/types"
)

// Server exposes metrics and read-only breed statistics over HTTP.
type Server struct {
	metrics    *Metrics
	store      analysis.Querier
	logger     *zap.Logger
	router     http.Handler
	httpServer *http.Server
}

func NewServer(addr string, m *Metrics, q analysis.Querier, l *zap.Logger) *Server {
	s := &Server{metrics: m, store: q, logger: l}
	s.router = s.setupRouter()
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) setupRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))
	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/averages", s.handleAverages)
		r.Get("/averages/{metric}", s.handleAverage)
	})
	return r
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start serves until Shutdown; it returns nil after a clean shutdown.
func (s *Server) Start() error {
	s.logger.Info("status server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

type averageResponse struct {
	Metric string  `json:"metric"`
	Value  float64 `json:"value"`
	Unit   string  `json:"unit"`
}

type healthResponse struct {
	Status string `json:"status"`
	Breeds int    `json:"breeds"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.Count(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Breeds: n})
}

func (s *Server) handleAverages(w http.ResponseWriter, r *http.Request) {
	out := make([]averageResponse, 0, len(types.Metrics))
	for _, m := range types.Metrics {
		a, err := analysis.AverageOf(r.Context(), s.store, m)
		if errors.Is(err, analysis.ErrNoData) {
			s.writeError(w, http.StatusNotFound, err)
			return
		}
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
		out = append(out, averageResponse{Metric: a.Name, Value: a.Value, Unit: a.Unit})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAverage(w http.ResponseWriter, r *http.Request) {
	m, err := types.ParseMetric(chi.URLParam(r, "metric"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	a, err := analysis.AverageOf(r.Context(), s.store, m)
	if errors.Is(err, analysis.ErrNoData) {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, averageResponse{Metric: a.Name, Value: a.Value, Unit: a.Unit})
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= 500 {
		s.logger.Error("status request failed", zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
