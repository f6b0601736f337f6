package httpx

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/JoseGlez23/runX-API3/services/outbox-worker/internal/metrics"
	httpmetrics "github.com/JoseGlez23/runX-API3/shared/pkg/metrics"
)

// Server exposes the worker's health, metrics and backlog size.
type Server struct {
	Pending func(ctx context.Context) (int, error)
	Log     zerolog.Logger
}

type pendingResp struct {
	Pending int `json:"pending"`
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(httpmetrics.Middleware("outbox-worker"))
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/outbox/pending", s.pending)
	return r
}

func (s *Server) pending(w http.ResponseWriter, r *http.Request) {
	n, err := s.Pending(r.Context())
	if err != nil {
		s.Log.Error().Err(err).Msg("count pending failed")
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	metrics.OutboxPending.Set(float64(n))
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(pendingResp{Pending: n})
}
