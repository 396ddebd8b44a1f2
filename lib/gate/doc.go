// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package gate implements the connectivity gate: a cached answer to "is
// the network path to TargetProcess usable right now", consulted before
// every outbound request when the configuration requires a VPN.
//
// The answer is a best-effort heuristic. For each configured host, in
// order, the gate attempts a TCP connection to port 443; if that fails
// it falls back to a DNS lookup of the host, on the theory that a
// resolver able to see an internal name means the machine is on the
// right network. The first host that passes either probe makes the gate
// open. False positives are acceptable: the request that follows will
// fail with its own error.
//
// Results are cached for [CacheTTL] in a single slot shared by every
// caller of the same [Gate]. The slot is swapped atomically, so a reader
// always sees a consistent (result, expiry) pair. Two concurrent
// evaluations with an expired slot may both probe; the last writer wins.
package gate
