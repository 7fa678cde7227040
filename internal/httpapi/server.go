// Package httpapi exposes the map controller over HTTP so a thin web client
// can drive the same map as the terminal host.
package httpapi

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"parcelmap/internal/mapview"
	"parcelmap/internal/metrics"
)

// Server owns a controller and serialises every request through one mutex;
// the controller itself is not safe for concurrent use.
type Server struct {
	log     zerolog.Logger
	metrics *metrics.Metrics

	mu  sync.Mutex
	ctl *mapview.Controller

	api huma.API
}

func New(log zerolog.Logger, ctl *mapview.Controller, m *metrics.Metrics) *Server {
	if m != nil {
		ctl.SetObserver(m)
	}
	return &Server{log: log, metrics: m, ctl: ctl}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Use(s.accessLog)

	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", s.metrics.Handler())

	cfg := huma.DefaultConfig("parcelmap API", "1.0.0")
	cfg.Info.Description = "Drives the parcel map: view, popup, pointer readout, layers and search."
	cfg.CreateHooks = []func(huma.Config) huma.Config{}
	s.api = humachi.New(r, cfg)
	s.register(s.api)

	return r
}

// OpenAPI returns the API description.
func (s *Server) OpenAPI() *huma.OpenAPI {
	if s.api == nil {
		s.Router()
	}
	return s.api.OpenAPI()
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		path := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			path = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.metrics.ObserveHTTPRequest(r.Method, path, status, time.Since(start))
		s.log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("http_request")
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
}
