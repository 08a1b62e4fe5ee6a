package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	apimw "github.com/hamed0406/sitewatch/internal/httpapi/middleware"
	"github.com/hamed0406/sitewatch/internal/metrics"
	"github.com/hamed0406/sitewatch/internal/repo"
)

// Server is the optional read-only status listener. It never mutates state.
type Server struct {
	Logger  *zap.Logger
	Store   repo.StateStore
	Metrics *metrics.Metrics
}

func NewServer(l *zap.Logger, store repo.StateStore, m *metrics.Metrics) *Server {
	return &Server{Logger: l, Store: store, Metrics: m}
}

type RouterOptions struct {
	APIKeys []string
	RPM     int
	Burst   int
}

func (s *Server) Router(opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "X-API-Key"},
	}))
	r.Use(apimw.RateLimit(opts.RPM, opts.Burst))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(apimw.RequireKey(opts.APIKeys))
		r.Get("/api/status", s.handleStatus)
		r.Get("/api/status/down", s.handleDown)
	})

	return r
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Store.Snapshot())
}

func (s *Server) handleDown(w http.ResponseWriter, r *http.Request) {
	snap := s.Store.Snapshot()
	out := snap[:0]
	for _, st := range snap {
		if !st.LastKnownUp {
			out = append(out, st)
		}
	}
	writeJSON(w, out)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// ListenAndServe serves handler on addr until ctx is cancelled, then shuts
// down gracefully.
func ListenAndServe(ctx context.Context, log *zap.Logger, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("status_listen", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		log.Info("status_stopped")
		return nil
	}
}

// RunOptional runs the status listener and only logs a failure, so a busy
// port never stops the monitor.
func RunOptional(ctx context.Context, log *zap.Logger, addr string, handler http.Handler) {
	if err := ListenAndServe(ctx, log, addr, handler); err != nil {
		log.Error("status_failed", zap.String("addr", addr), zap.Error(err))
	}
}
