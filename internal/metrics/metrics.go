// Package metrics exposes per-method latency and outcome counters via
// github.com/hashicorp/go-metrics, the same library the teacher uses for
// its own transaction-application telemetry (x/vm/keeper/msg_server.go:
// metrics.Label + cosmos-sdk's telemetry.IncrCounterWithLabels wrapper
// around it). This gateway has no cosmos-sdk telemetry package to wrap,
// so it talks to go-metrics directly.
package metrics

import (
	"time"

	"github.com/hashicorp/go-metrics"
)

// Recorder records dispatch-level outcomes. Held as an interface so
// tests can substitute a no-op or observing implementation.
type Recorder interface {
	RecordDispatch(method string, d time.Duration, outcome string)
	RecordCacheResult(method string, hit bool)
	RecordRateLimited(method string)
	RecordUpstreamError(endpoint string, statusCode int)
}

// GoMetrics is the production Recorder, backed by a process-wide
// hashicorp/go-metrics sink.
type GoMetrics struct{}

func NewGoMetrics() *GoMetrics { return &GoMetrics{} }

func (GoMetrics) RecordDispatch(method string, d time.Duration, outcome string) {
	labels := []metrics.Label{
		{Name: "method", Value: method},
		{Name: "outcome", Value: outcome},
	}
	metrics.MeasureSinceWithLabels([]string{"relay", "dispatch", "duration"}, time.Now().Add(-d), labels)
	metrics.IncrCounterWithLabels([]string{"relay", "dispatch", "total"}, 1, labels)
}

func (GoMetrics) RecordCacheResult(method string, hit bool) {
	status := "miss"
	if hit {
		status = "hit"
	}
	metrics.IncrCounterWithLabels([]string{"relay", "cache", "total"}, 1, []metrics.Label{
		{Name: "method", Value: method},
		{Name: "result", Value: status},
	})
}

func (GoMetrics) RecordRateLimited(method string) {
	metrics.IncrCounterWithLabels([]string{"relay", "ratelimit", "rejected"}, 1, []metrics.Label{
		{Name: "method", Value: method},
	})
}

func (GoMetrics) RecordUpstreamError(endpoint string, statusCode int) {
	metrics.IncrCounterWithLabels([]string{"relay", "mirror", "errors"}, 1, []metrics.Label{
		{Name: "endpoint", Value: endpoint},
		{Name: "status", Value: httpStatusBucket(statusCode)},
	})
}

func httpStatusBucket(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

// NewSink builds the process-wide in-memory metrics sink, mirroring the
// teacher's telemetry bootstrap pattern of wiring a metrics.Config once
// at startup.
func NewSink(serviceName string) (*metrics.InmemSink, error) {
	sink := metrics.NewInmemSink(10*time.Second, time.Minute)
	cfg := metrics.DefaultConfig(serviceName)
	cfg.EnableHostname = false
	if _, err := metrics.NewGlobal(cfg, sink); err != nil {
		return nil, err
	}
	return sink, nil
}
