package observability

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"hotel_catalog/internal/domain"
)

const namespace = "hotel_catalog"

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	StoreQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "store_queries_total", Help: "Store operations by outcome."},
		[]string{"op", "outcome"}, // outcome: ok|not_found|constraint|invalid|timeout|error
	)
	StoreLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "store_query_duration_seconds",
			Help:    "Store operation duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)
	SeedFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "seed_fetches_total", Help: "Seed document fetch attempts."},
		[]string{"source", "status"},
	)
	SeedLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "seed_fetch_duration_seconds",
			Help:    "Seed document fetch duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)
	BootstrapRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "bootstrap_runs_total", Help: "Catalog bootstrap runs."},
		[]string{"result"}, // result: seeded|skipped|locked|failed
	)
)

// Serve exposes /metrics on its own listener. An empty addr disables it.
// The server stops when ctx is done.
func Serve(ctx context.Context, addr string, reg *prometheus.Registry) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", MetricsHandler(reg))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Str("addr", addr).Msg("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, StoreQueries, StoreLatency, SeedFetches, SeedLatency, BootstrapRuns)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveQuery(op string, err error, dur time.Duration) {
	StoreQueries.WithLabelValues(op, Outcome(err)).Inc()
	StoreLatency.WithLabelValues(op).Observe(dur.Seconds())
}

// ObserveSeedFetch records one fetch attempt; status 0 means a transport error.
func ObserveSeedFetch(source string, status int, dur time.Duration) {
	SeedFetches.WithLabelValues(source, strconv.Itoa(status)).Inc()
	SeedLatency.WithLabelValues(source).Observe(dur.Seconds())
}

func ObserveBootstrap(result string) { BootstrapRuns.WithLabelValues(result).Inc() }

// Outcome buckets err into a low-cardinality label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrConstraintViolation):
		return "constraint"
	case errors.Is(err, domain.ErrValidation):
		return "invalid"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	}
	return "error"
}
