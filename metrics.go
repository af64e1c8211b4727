package rmap

import (
	"fmt"

	vm "github.com/VictoriaMetrics/metrics"
	gometrics "github.com/rcrowley/go-metrics"
)

// clientMetrics bundles the counters and the latency timer scoped to a
// single Client instance by its configured name. Counters use
// VictoriaMetrics/metrics (process-wide registry, cheap label
// formatting); round-trip latency uses rcrowley/go-metrics' Timer for
// percentile reporting, a distinct concern the counters don't cover.
type clientMetrics struct {
	name string

	requestsByOp     func(op string) *vm.Counter
	bytesSentTotal   *vm.Counter
	bytesRecvTotal   *vm.Counter
	reconnectsTotal  *vm.Counter
	errorsByOp       func(op, kind string) *vm.Counter
	roundTripLatency gometrics.Timer
}

func newClientMetrics(name string) *clientMetrics {
	return &clientMetrics{
		name:             name,
		bytesSentTotal:   vm.GetOrCreateCounter(fmt.Sprintf(`rmap_bytes_sent_total{client=%q}`, name)),
		bytesRecvTotal:   vm.GetOrCreateCounter(fmt.Sprintf(`rmap_bytes_received_total{client=%q}`, name)),
		reconnectsTotal:  vm.GetOrCreateCounter(fmt.Sprintf(`rmap_reconnects_total{client=%q}`, name)),
		roundTripLatency: gometrics.NewTimer(),
		requestsByOp: func(op string) *vm.Counter {
			return vm.GetOrCreateCounter(fmt.Sprintf(`rmap_requests_total{client=%q,op=%q}`, name, op))
		},
		errorsByOp: func(op, kind string) *vm.Counter {
			return vm.GetOrCreateCounter(fmt.Sprintf(`rmap_errors_total{client=%q,op=%q,kind=%q}`, name, op, kind))
		},
	}
}

func (m *clientMetrics) recordRequest(op string, sent int) {
	m.requestsByOp(op).Inc()
	m.bytesSentTotal.Add(sent)
}

// recordResponse records the decoded byte length of a response frame
// actually read off the wire. Called separately from recordRequest
// since a request may have no response (expectsResp == false) or may
// fail before one arrives.
func (m *clientMetrics) recordResponse(recv int) {
	if recv > 0 {
		m.bytesRecvTotal.Add(recv)
	}
}

func (m *clientMetrics) recordError(op string, kind string) {
	m.errorsByOp(op, kind).Inc()
}

func (m *clientMetrics) recordReconnect() {
	m.reconnectsTotal.Inc()
}

// LatencySnapshot exposes the latency timer's percentile summary for
// the CLI's perf subcommand.
type LatencySnapshot struct {
	Count  int64
	MeanNS float64
	P50NS  float64
	P95NS  float64
	P99NS  float64
	MaxNS  int64
}

// LatencySnapshot returns the current round-trip latency distribution
// observed by this client.
func (c *Client[K, V]) LatencySnapshot() LatencySnapshot {
	t := c.metrics.roundTripLatency
	ps := t.Percentiles([]float64{0.5, 0.95, 0.99})
	return LatencySnapshot{
		Count:  t.Count(),
		MeanNS: t.Mean(),
		P50NS:  ps[0],
		P95NS:  ps[1],
		P99NS:  ps[2],
		MaxNS:  t.Max(),
	}
}
