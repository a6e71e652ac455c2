// Package metrics exposes counters about commands and status endpoint fetches.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Fetch results
const (
	ResultOK         = "ok"
	ResultFetchError = "fetch_error"
	ResultParseError = "parse_error"
	ResultEmpty      = "empty"
)

type Metrics struct {
	registry      *prometheus.Registry
	commands      *prometheus.CounterVec
	fetches       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	charts        prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opendaoc_commands_total",
			Help: "Commands handled, by command name.",
		}, []string{"command"}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "opendaoc_fetches_total",
			Help: "Status endpoint fetches, by server and result.",
		}, []string{"server", "result"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "opendaoc_fetch_duration_seconds",
			Help:    "Time spent fetching and parsing a status endpoint.",
			Buckets: prometheus.DefBuckets,
		}, []string{"server"}),
		charts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "opendaoc_charts_rendered_total",
			Help: "Pie charts rendered.",
		}),
	}
	m.registry.MustRegister(m.commands, m.fetches, m.fetchDuration, m.charts)
	return m
}

func (m *Metrics) Command(name string) {
	m.commands.WithLabelValues(name).Inc()
}

func (m *Metrics) Fetch(server string, result string, elapsed time.Duration) {
	m.fetches.WithLabelValues(server, result).Inc()
	m.fetchDuration.WithLabelValues(server).Observe(elapsed.Seconds())
}

func (m *Metrics) ChartRendered() {
	m.charts.Inc()
}

func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// Handler serves /metrics and /healthz
func (m *Metrics) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	return r
}

// Serve listens on addr until ctx is done
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msg(fmt.Sprintf("Metrics listening on %s", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics listener: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
