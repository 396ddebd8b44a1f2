// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// Code that reads the time or schedules work takes a [Clock] instead of
// calling the time package directly. Production wiring passes [Real];
// tests pass [Fake] and move time forward explicitly with
// [FakeClock.Advance], which makes TTL expiry and debounce behavior
// deterministic:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	g := gate.New(gate.Config{Clock: c, Prober: prober})
//	g.Check(ctx, policy)        // probes
//	c.Advance(10 * time.Second)
//	g.Check(ctx, policy)        // served from cache
//
// Times returned by [Real] carry Go's monotonic clock reading, so
// comparisons between two Now values are immune to wall-clock steps.
package clock
