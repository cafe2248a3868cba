// Package metrics registers the Prometheus collectors shared across the
// service. Collectors are registered once on the default registry and
// exposed through the router's /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsTotal counts prediction runs by terminal status.
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "foldpanel_runs_total",
		Help: "Prediction runs by terminal status.",
	}, []string{"status"})

	// RunDuration observes wall-clock duration of prediction runs.
	RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "foldpanel_run_duration_seconds",
		Help:    "Wall-clock duration of prediction runs.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})

	// StagedInputs counts accepted input uploads.
	StagedInputs = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foldpanel_staged_inputs_total",
		Help: "Input payloads staged for prediction.",
	})

	// ArtifactDownloads counts artifact download requests served.
	ArtifactDownloads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foldpanel_artifact_downloads_total",
		Help: "Artifact downloads served byte-exact from disk.",
	})

	// LoginFailures counts rejected credential checks.
	LoginFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "foldpanel_login_failures_total",
		Help: "Login attempts rejected by the credential gate.",
	})
)
