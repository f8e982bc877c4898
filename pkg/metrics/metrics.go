// Package metrics exposes the storefront's Prometheus metrics. The metrics
// themselves are defined with promauto in the packages that record them
// (client, cache, inflight) to keep those packages self-contained.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Registry is the registerer every storefront metric is recorded in.
var Registry = prometheus.DefaultRegisterer

// Gatherer serves Registry's metrics.
var Gatherer = prometheus.DefaultGatherer

// Handler returns the /metrics handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(Gatherer, promhttp.HandlerOpts{})
}

// Server exposes /metrics on an address for the lifetime of a command.
type Server struct {
	srv      *http.Server
	listener net.Listener
	logger   zerolog.Logger
}

// Listen binds addr and starts serving /metrics in the background.
func Listen(addr string, logger zerolog.Logger) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listen %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())

	s := &Server{
		srv:      &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		listener: ln,
		logger:   logger,
	}

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("Metrics server failed")
		}
	}()

	s.logger.Info().Str("addr", ln.Addr().String()).Msg("Serving metrics")
	return s, nil
}

// Addr returns the bound address.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Shutdown stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Metrics Documentation
//
// Request Metrics (pkg/client):
//   - storefront_requests_total{endpoint, status} (Counter): requests by endpoint and HTTP status
//     ("network_error" and "cancelled" for calls without a status)
//   - storefront_request_duration_seconds{endpoint} (Histogram): request duration by endpoint
//   - storefront_errors_total{kind} (Counter): failures by kind (unreachable, backend)
//
// Cache Metrics (pkg/cache):
//   - storefront_cache_hits_total{partition} (Counter)
//   - storefront_cache_misses_total{partition} (Counter)
//   - storefront_cache_shared_loads_total{partition} (Counter): callers served by another caller's fetch
//   - storefront_cache_invalidations_total{partition} (Counter)
//   - storefront_cache_decode_failures_total{partition} (Counter): 2xx bodies that did not decode, never cached
//   - storefront_cache_errors_total{operation} (Counter): store failures
//
// In-flight Metrics (pkg/inflight):
//   - storefront_operations_in_flight (Gauge)
//   - storefront_duplicate_submissions_total (Counter)
//
// Example Prometheus Queries:
//
//   # Cache Hit Rate
//   sum(rate(storefront_cache_hits_total[5m])) /
//   (sum(rate(storefront_cache_hits_total[5m])) + sum(rate(storefront_cache_misses_total[5m])))
//
//   # Backend Error Rate
//   rate(storefront_errors_total{kind="backend"}[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(storefront_request_duration_seconds_bucket[5m]))
