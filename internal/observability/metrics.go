// Package observability exposes Prometheus metrics for the classification
// and record pipeline, with an optional HTTP listener.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Mark0fPride/app-cnn/internal/logging"
)

// Classification outcomes for the classifications counter.
const (
	OutcomeRecognized    = "recognized"
	OutcomeNotRecognized = "not_recognized"
	OutcomeError         = "error"
)

var (
	// ClassificationsTotal counts classification attempts by outcome.
	ClassificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mushroom_classifications_total",
		Help: "Number of classification attempts by outcome.",
	}, []string{"outcome"})

	// InferenceDuration observes end-to-end classification latency,
	// including image preprocessing and the forward pass.
	InferenceDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mushroom_inference_duration_seconds",
		Help:    "Classification latency in seconds.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	})

	// CorrectionsTotal counts manual label corrections applied.
	CorrectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mushroom_corrections_total",
		Help: "Number of manual label corrections applied.",
	})

	// StoreErrorsTotal counts record store operation failures.
	StoreErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mushroom_store_errors_total",
		Help: "Number of record store operation failures.",
	})
)

// StartServer starts the telemetry endpoint on listen and returns the
// server. Callers shut it down with Server.Close.
func StartServer(listen string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              listen,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error("telemetry endpoint failed", "listen", listen, "error", err)
		}
	}()
	return server
}
