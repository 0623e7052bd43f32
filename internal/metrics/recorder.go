package metrics

import "time"

// ResultLabel enumerates page result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailed  ResultLabel = "failed"
)

// BuildOutcomeLabel enumerates final build outcomes.
type BuildOutcomeLabel string

const (
	BuildOutcomeSuccess  BuildOutcomeLabel = "success"
	BuildOutcomeDegraded BuildOutcomeLabel = "degraded" // built with missing fragments
	BuildOutcomeFailed   BuildOutcomeLabel = "failed"
	BuildOutcomeCanceled BuildOutcomeLabel = "canceled"
)

// Recorder defines observability hooks for page builds.
type Recorder interface {
	ObservePageDuration(d time.Duration)
	IncPageResult(result ResultLabel)
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome BuildOutcomeLabel)
	SetTemplatesMissing(n int)
	AddBrokenLinks(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObservePageDuration(time.Duration)  {}
func (NoopRecorder) IncPageResult(ResultLabel)          {}
func (NoopRecorder) ObserveBuildDuration(time.Duration) {}
func (NoopRecorder) IncBuildOutcome(BuildOutcomeLabel)  {}
func (NoopRecorder) SetTemplatesMissing(int)            {}
func (NoopRecorder) AddBrokenLinks(int)                 {}
