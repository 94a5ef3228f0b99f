// Package metrics is the counter/gauge/histogram sink the commit layer
// reports to for operational visibility. It keeps the same shape this
// repo's other components use for instrumentation, so a caller can wire in
// whatever backend the deployment already runs (Prometheus, StatsD, or
// none).
package metrics

// Collector captures counters, gauges, and histograms tagged with labels.
type Collector interface {
	IncCounter(name string, labels map[string]string, delta float64)
	SetGauge(name string, labels map[string]string, value float64)
	ObserveHistogram(name string, labels map[string]string, value float64)
}

// Noop discards every observation. It is the default Collector so callers
// that do not care about metrics never need a nil check.
type Noop struct{}

func (Noop) IncCounter(string, map[string]string, float64)      {}
func (Noop) SetGauge(string, map[string]string, float64)        {}
func (Noop) ObserveHistogram(string, map[string]string, float64) {}
