// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package metrics holds the Prometheus collectors for tpbridge: outbound
// TargetProcess requests, connectivity gate evaluations and MCP tool
// calls. Collectors
// register with the default registry; [Handler] serves them.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Request outcomes recorded in RequestsTotal.
const (
	OutcomeOK                 = "ok"
	OutcomeUpstreamError      = "upstream_error"
	OutcomeConnectivityDenied = "connectivity_denied"
	OutcomeTransportError     = "transport_error"
	OutcomeDecodeError        = "decode_error"
)

// Gate evaluation sources recorded in GateChecksTotal.
const (
	SourceDisabled = "disabled"
	SourceNoHosts  = "no_hosts"
	SourceCache    = "cache"
	SourceProbe    = "probe"
)

var (
	// RequestsTotal counts TargetProcess requests by endpoint and outcome.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tpbridge_requests_total",
			Help: "Total number of TargetProcess API requests",
		},
		[]string{"endpoint", "outcome"},
	)

	// RequestDuration tracks TargetProcess request latency in seconds,
	// from the gate check to the decoded body.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tpbridge_request_duration_seconds",
			Help:    "Duration of TargetProcess API requests in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint"},
	)

	// UpstreamStatusTotal counts non-2xx responses by status code.
	UpstreamStatusTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tpbridge_upstream_errors_total",
			Help: "Total number of non-2xx TargetProcess responses by status code",
		},
		[]string{"status"},
	)

	// GateChecksTotal counts connectivity gate evaluations by how the
	// answer was produced and what it was.
	GateChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tpbridge_gate_checks_total",
			Help: "Total number of connectivity gate evaluations",
		},
		[]string{"source", "reachable"},
	)

	// GateProbesTotal counts individual host probe attempts by method
	// (tcp, dns) and result.
	GateProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tpbridge_gate_probes_total",
			Help: "Total number of connectivity probe attempts",
		},
		[]string{"method", "result"},
	)

	// ToolCallsTotal counts MCP tools/call invocations by tool and
	// outcome ("ok" or the error category).
	ToolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tpbridge_tool_calls_total",
			Help: "Total number of MCP tool calls",
		},
		[]string{"tool", "outcome"},
	)
)

// RecordRequest records one finished TargetProcess request.
func RecordRequest(endpoint, outcome string, durationSeconds float64) {
	RequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	RequestDuration.WithLabelValues(endpoint).Observe(durationSeconds)
}

// RecordUpstreamStatus records a non-2xx response status.
func RecordUpstreamStatus(statusCode int) {
	UpstreamStatusTotal.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordGateCheck records one gate evaluation.
func RecordGateCheck(source string, reachable bool) {
	GateChecksTotal.WithLabelValues(source, strconv.FormatBool(reachable)).Inc()
}

// RecordGateProbe records one probe attempt against a host.
func RecordGateProbe(method string, ok bool) {
	result := "fail"
	if ok {
		result = "ok"
	}
	GateProbesTotal.WithLabelValues(method, result).Inc()
}

// RecordToolCall records one MCP tool call.
func RecordToolCall(tool, outcome string) {
	ToolCallsTotal.WithLabelValues(tool, outcome).Inc()
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
