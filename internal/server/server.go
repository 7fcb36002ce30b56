// Package server publishes the local registry as a manifest over HTTP, so
// another release-tui can use it as an http manifest source.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/litescript/ls-release-tui/internal/activity"
	"github.com/litescript/ls-release-tui/internal/log"
	"github.com/litescript/ls-release-tui/internal/manifest"
	"github.com/litescript/ls-release-tui/internal/release"
	"github.com/litescript/ls-release-tui/internal/version"
)

const namespace = "release_tui"

// Server serves the published manifest. Publishing is safe while serving.
type Server struct {
	router    *chi.Mux
	published atomic.Pointer[manifest.Manifest]

	registry *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	entries  prometheus.Gauge
}

// New creates a server with an empty manifest and its own metrics registry.
func New() *Server {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	s := &Server{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Requests served, by route and status",
		}, []string{"route", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		entries: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "published_releases",
			Help:      "Number of releases in the published manifest",
		}),
	}
	s.published.Store(&manifest.Manifest{})
	s.router = s.routes()
	return s
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/manifest.json", s.serveManifest(manifest.FormatJSON, "application/json"))
	r.Get("/manifest.yaml", s.serveManifest(manifest.FormatYAML, "application/yaml"))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Publish replaces the served manifest.
func (s *Server) Publish(m manifest.Manifest) {
	if m.LatestVersion == "" {
		m.LatestVersion = m.Latest()
	}
	s.published.Store(&m)
	s.entries.Set(float64(len(m.Releases)))
	log.Debug(log.CatServer, "published manifest", "latest", m.LatestVersion, "releases", len(m.Releases))
}

// Published returns the manifest currently served.
func (s *Server) Published() manifest.Manifest {
	return *s.published.Load()
}

// ReleasesChanged publishes the session's releases, newest first.
func (s *Server) ReleasesChanged(items []release.Item, latest *release.Entry) {
	m := manifest.Manifest{Releases: make([]release.Entry, len(items))}
	for i, it := range items {
		m.Releases[i] = it.Entry
	}
	if latest != nil {
		m.LatestVersion = latest.Version
	}
	s.Publish(m)
}

// Reconciled is ignored; the server only publishes.
func (s *Server) Reconciled(version.UpdateInfo) {}

// Logged is ignored; activity stays local.
func (s *Server) Logged(activity.Entry) {}

// Notify writes the message to the debug log.
func (s *Server) Notify(sev activity.Severity, msg string) {
	if sev == activity.SeverityError {
		log.Warn(log.CatServer, msg)
		return
	}
	log.Info(log.CatServer, msg)
}

func (s *Server) serveManifest(format manifest.Format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := manifest.Encode(s.Published(), format)
		if err != nil {
			log.ErrorErr(log.CatServer, "encode manifest failed", err)
			http.Error(w, "encode manifest", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "no-cache")
		w.Write(data)
	}
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
		s.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ListenAndServe serves on addr until ctx is done, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(log.CatServer, "listening", "addr", addr)
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
		return srv.Shutdown(shutdownCtx)
	}
}
