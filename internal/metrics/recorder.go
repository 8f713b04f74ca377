package metrics

import "time"

// Recorder defines observability hooks for build metrics. The batch build
// command injects NoopRecorder; the preview server injects the Prometheus
// implementation.
type Recorder interface {
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome string) // outcome: success|failure|skipped
	SetPages(n int)
	SetAssets(n int)
}

// Build outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeSkipped = "skipped" // serve mode: fingerprints unchanged, rebuild skipped
)

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuildDuration(time.Duration) {}
func (NoopRecorder) IncBuildOutcome(string)             {}
func (NoopRecorder) SetPages(int)                       {}
func (NoopRecorder) SetAssets(int)                      {}
