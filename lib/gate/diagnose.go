// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gate

import (
	"context"
	"time"
)

// HostStatus is the outcome of probing one check host.
type HostStatus struct {
	Host      string `json:"host"`
	TCP       bool   `json:"tcp"`
	DNS       bool   `json:"dns"`
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// Reachable reports whether either probe passed.
func (s HostStatus) Reachable() bool { return s.TCP || s.DNS }

// Diagnose probes every host, without stopping at the first success and
// without touching the cache, and reports the result per host. The DNS
// probe only runs for hosts whose TCP probe failed, mirroring Check.
func (g *Gate) Diagnose(ctx context.Context, hosts []string) []HostStatus {
	statuses := make([]HostStatus, 0, len(hosts))
	for _, host := range hosts {
		status := HostStatus{Host: host}
		start := g.clock.Now()

		dialErr := g.dial(ctx, host)
		status.TCP = dialErr == nil
		if !status.TCP {
			lookupErr := g.lookup(ctx, host)
			status.DNS = lookupErr == nil
			if !status.DNS {
				status.Error = lookupErr.Error()
			}
		}

		status.LatencyMs = g.clock.Now().Sub(start).Milliseconds()
		if status.LatencyMs < 0 {
			status.LatencyMs = 0
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// Remaining returns how long the cached entry stays valid at now, or
// zero when there is no valid entry.
func (g *Gate) Remaining(now time.Time) time.Duration {
	entry := g.entry.Load()
	if !entry.IsValid(now) {
		return 0
	}
	return entry.ExpiresAt.Sub(now)
}
