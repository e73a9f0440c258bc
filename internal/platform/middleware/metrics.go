// Copyright (c) 2026 Identra. All rights reserved.
// Author: p.melnikov@identra.dev

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// # Prometheus Collectors

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "identra_http_requests_total",
			Help: "Total number of HTTP requests processed.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "identra_http_request_duration_seconds",
			Help:    "Latency distribution of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "identra_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		},
	)
)

// Metrics records Prometheus metrics for every request.
//
// The path label uses the chi route pattern (e.g. "/api/v1/users/{id}")
// rather than the raw URL to keep label cardinality bounded.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

		startTime := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrappedWriter := &statusRecorder{ResponseWriter: writer, status: http.StatusOK}
		next.ServeHTTP(wrappedWriter, request)

		routePattern := chi.RouteContext(request.Context()).RoutePattern()
		if routePattern == "" {
			routePattern = "unmatched"
		}

		httpRequestsTotal.WithLabelValues(
			request.Method,
			routePattern,
			strconv.Itoa(wrappedWriter.status),
		).Inc()

		httpRequestDuration.WithLabelValues(
			request.Method,
			routePattern,
		).Observe(time.Since(startTime).Seconds())
	})
}
