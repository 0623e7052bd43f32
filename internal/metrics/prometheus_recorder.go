package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "pagebuilder"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	pageDuration     prom.Histogram
	pageResults      *prom.CounterVec
	buildDuration    prom.Histogram
	buildOutcome     *prom.CounterVec
	templatesMissing prom.Gauge
	brokenLinks      prom.Counter
}

// NewPrometheusRecorder constructs the metrics and registers them on reg
// (a fresh registry when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		pageDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "page_duration_seconds",
			Help:      "Time to render and write a single page",
			Buckets:   prom.ExponentialBuckets(0.0005, 2, 12),
		}),
		pageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "page_results_total",
			Help:      "Generated pages by result",
		}, []string{"result"}),
		buildDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total site build duration",
			Buckets:   prom.DefBuckets,
		}),
		buildOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"}),
		templatesMissing: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "template_fragments_missing",
			Help:      "Template fragments that failed to load in the last build",
		}),
		brokenLinks: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "broken_links_total",
			Help:      "Broken internal links found by link checks",
		}),
	}
	reg.MustRegister(pr.pageDuration, pr.pageResults, pr.buildDuration, pr.buildOutcome, pr.templatesMissing, pr.brokenLinks)
	return pr
}

func (p *PrometheusRecorder) ObservePageDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.pageDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPageResult(result ResultLabel) {
	if p == nil {
		return
	}
	p.pageResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcomeLabel) {
	if p == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) SetTemplatesMissing(n int) {
	if p == nil {
		return
	}
	p.templatesMissing.Set(float64(n))
}

func (p *PrometheusRecorder) AddBrokenLinks(n int) {
	if p == nil || n <= 0 {
		return
	}
	p.brokenLinks.Add(float64(n))
}
