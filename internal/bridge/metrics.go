package bridge

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/Garsondee/Fortress-Command/internal/bridge"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// bridgeMetrics are recorded through the global meter provider, which is a
// no-op unless the host installs one.
type bridgeMetrics struct {
	side     attribute.KeyValue
	requests metric.Int64Counter
	failures metric.Int64Counter
	queued   metric.Int64Counter
	executed metric.Int64Counter
	latency  metric.Float64Histogram
}

func newBridgeMetrics(side string) (*bridgeMetrics, error) {
	m := meter()
	bm := &bridgeMetrics{side: attribute.String("side", side)}

	var err error
	bm.requests, err = m.Int64Counter(
		"bridge.requests",
		metric.WithDescription("Situation reports sent to the decider"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating requests counter: %w", err)
	}
	bm.failures, err = m.Int64Counter(
		"bridge.failures",
		metric.WithDescription("Decider calls that failed in transport or parsing"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating failures counter: %w", err)
	}
	bm.queued, err = m.Int64Counter(
		"bridge.actions.queued",
		metric.WithDescription("Actions accepted into the command queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating queued counter: %w", err)
	}
	bm.executed, err = m.Int64Counter(
		"bridge.actions.executed",
		metric.WithDescription("Actions drained from the queue into the funnel"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating executed counter: %w", err)
	}
	bm.latency, err = m.Float64Histogram(
		"bridge.latency",
		metric.WithDescription("Wall-clock time from report to reply"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating latency histogram: %w", err)
	}
	return bm, nil
}

func (m *bridgeMetrics) request() {
	m.requests.Add(context.Background(), 1, metric.WithAttributes(m.side))
}

func (m *bridgeMetrics) failure(reason string) {
	m.failures.Add(context.Background(), 1,
		metric.WithAttributes(m.side, attribute.String("reason", reason)))
}

func (m *bridgeMetrics) enqueue(n int) {
	m.queued.Add(context.Background(), int64(n), metric.WithAttributes(m.side))
}

func (m *bridgeMetrics) execute(cmd string) {
	m.executed.Add(context.Background(), 1,
		metric.WithAttributes(m.side, attribute.String("command", cmd)))
}

func (m *bridgeMetrics) observeLatency(secs float64) {
	m.latency.Record(context.Background(), secs, metric.WithAttributes(m.side))
}
