// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gate

import (
	"context"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"github.com/bureau-foundation/tpbridge/lib/clock"
	"github.com/bureau-foundation/tpbridge/lib/metrics"
)

const (
	// CacheTTL is how long a probe result is reused.
	CacheTTL = 30 * time.Second

	// ProbeTimeout bounds each TCP connect and each DNS lookup.
	ProbeTimeout = 3 * time.Second

	// ProbePort is the TCP port dialed on each check host.
	ProbePort = "443"
)

// Policy decides whether the gate applies and which hosts it probes.
type Policy struct {
	// Required enables the gate. When false every check passes.
	Required bool

	// Hosts are probed in order. An empty list passes.
	Hosts []string
}

// Entry is a cached probe result.
type Entry struct {
	Reachable bool      `json:"reachable"`
	CheckedAt time.Time `json:"checked_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsValid reports whether the entry may still be served at now.
func (e *Entry) IsValid(now time.Time) bool {
	return e != nil && now.Before(e.ExpiresAt)
}

// Config holds the dependencies of a Gate.
type Config struct {
	// Clock stamps and ages cache entries. Defaults to clock.Real().
	Clock clock.Clock

	// Prober performs the network probes. Defaults to NetProber{}.
	Prober Prober

	// Logger receives probe failures at debug level. Defaults to
	// slog.Default().
	Logger *slog.Logger
}

// Gate evaluates a Policy against a cached probe result. A Gate is safe
// for concurrent use.
type Gate struct {
	clock  clock.Clock
	prober Prober
	logger *slog.Logger

	entry atomic.Pointer[Entry]
}

// New creates a Gate with an empty cache.
func New(config Config) *Gate {
	gate := &Gate{
		clock:  config.Clock,
		prober: config.Prober,
		logger: config.Logger,
	}
	if gate.clock == nil {
		gate.clock = clock.Real()
	}
	if gate.prober == nil {
		gate.prober = NetProber{}
	}
	if gate.logger == nil {
		gate.logger = slog.Default()
	}
	return gate
}

// Check reports whether outbound requests may proceed under policy.
func (g *Gate) Check(ctx context.Context, policy Policy) bool {
	if !policy.Required {
		metrics.RecordGateCheck(metrics.SourceDisabled, true)
		return true
	}
	if len(policy.Hosts) == 0 {
		metrics.RecordGateCheck(metrics.SourceNoHosts, true)
		return true
	}

	now := g.clock.Now()
	if cached := g.entry.Load(); cached.IsValid(now) {
		metrics.RecordGateCheck(metrics.SourceCache, cached.Reachable)
		return cached.Reachable
	}

	reachable := g.probeHosts(ctx, policy.Hosts)
	g.entry.Store(&Entry{
		Reachable: reachable,
		CheckedAt: now,
		ExpiresAt: now.Add(CacheTTL),
	})
	metrics.RecordGateCheck(metrics.SourceProbe, reachable)
	return reachable
}

// Cached returns the current cache entry, or nil if no probe has run.
// The entry may have expired; use IsValid to tell.
func (g *Gate) Cached() *Entry {
	return g.entry.Load()
}

// probeHosts tries each host until one passes the TCP or DNS probe.
func (g *Gate) probeHosts(ctx context.Context, hosts []string) bool {
	for _, host := range hosts {
		dialErr := g.dial(ctx, host)
		if dialErr == nil {
			return true
		}
		g.logger.Debug("connectivity probe: tcp connect failed", "host", host, "error", dialErr)

		lookupErr := g.lookup(ctx, host)
		if lookupErr == nil {
			return true
		}
		g.logger.Debug("connectivity probe: dns lookup failed", "host", host, "error", lookupErr)
	}
	g.logger.Info("connectivity probe: no check host reachable", "hosts", hosts)
	return false
}

// dial and lookup detach from the caller's cancellation: the result is
// cached for every caller, so it must reflect the network and not one
// caller's deadline. ProbeTimeout alone bounds them.
func (g *Gate) dial(ctx context.Context, host string) error {
	probeContext, cancel := context.WithTimeout(context.WithoutCancel(ctx), ProbeTimeout)
	defer cancel()
	err := g.prober.Dial(probeContext, net.JoinHostPort(host, ProbePort))
	metrics.RecordGateProbe("tcp", err == nil)
	return err
}

func (g *Gate) lookup(ctx context.Context, host string) error {
	probeContext, cancel := context.WithTimeout(context.WithoutCancel(ctx), ProbeTimeout)
	defer cancel()
	err := g.prober.Lookup(probeContext, host)
	metrics.RecordGateProbe("dns", err == nil)
	return err
}
