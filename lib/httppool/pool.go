// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package httppool owns the outbound HTTP connection pool shared by all
// TargetProcess requests in a process.
//
// A [Pool] is an explicit resource handle: the process creates one with
// [New], passes it by reference to every client that needs it, and
// closes it exactly once at shutdown. A closed pool never comes back on
// its own. [Pool.Client] returns [ErrClosed] after [Pool.Close], and the
// owner must call [New] again if it really wants a fresh pool.
package httppool

import (
	"errors"
	"net"
	"net/http"
	"sync"
	"time"
)

// ErrClosed is returned by Client after the pool has been closed.
var ErrClosed = errors.New("httppool: pool is closed")

// Limits bounds the pool.
type Limits struct {
	// MaxConnections caps connections (active plus idle). It is applied
	// per host, which makes it the total: every request goes to the one
	// TargetProcess host.
	MaxConnections int

	// MaxIdleConnections caps keep-alive connections kept for reuse.
	MaxIdleConnections int

	// IdleTimeout closes keep-alive connections unused for this long.
	IdleTimeout time.Duration

	// RequestTimeout bounds each request from dial to the end of the
	// response body.
	RequestTimeout time.Duration
}

// DefaultLimits returns the limits used by tpbridge: 20 connections,
// 10 of them idle, 30 second idle expiry and a 30 second request
// timeout.
func DefaultLimits() Limits {
	return Limits{
		MaxConnections:     20,
		MaxIdleConnections: 10,
		IdleTimeout:        30 * time.Second,
		RequestTimeout:     30 * time.Second,
	}
}

// Pool is a bounded, concurrency-safe HTTP connection pool.
type Pool struct {
	limits    Limits
	transport *http.Transport
	client    *http.Client

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// New creates a pool. Zero fields in limits take the DefaultLimits value.
func New(limits Limits) *Pool {
	defaults := DefaultLimits()
	if limits.MaxConnections <= 0 {
		limits.MaxConnections = defaults.MaxConnections
	}
	if limits.MaxIdleConnections <= 0 {
		limits.MaxIdleConnections = defaults.MaxIdleConnections
	}
	if limits.IdleTimeout <= 0 {
		limits.IdleTimeout = defaults.IdleTimeout
	}
	if limits.RequestTimeout <= 0 {
		limits.RequestTimeout = defaults.RequestTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   limits.RequestTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxConnsPerHost:       limits.MaxConnections,
		MaxIdleConns:          limits.MaxIdleConnections,
		MaxIdleConnsPerHost:   limits.MaxIdleConnections,
		IdleConnTimeout:       limits.IdleTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}

	return &Pool{
		limits:    limits,
		transport: transport,
		client: &http.Client{
			Transport: transport,
			Timeout:   limits.RequestTimeout,
		},
	}
}

// Limits returns the limits the pool was built with.
func (p *Pool) Limits() Limits {
	return p.limits
}

// Client returns the pooled *http.Client. Every caller gets the same
// client, so connections are reused across requests.
func (p *Pool) Client() (*http.Client, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, ErrClosed
	}
	return p.client, nil
}

// Close marks the pool closed and drops its idle connections. Requests
// already in flight run to completion. Close is idempotent; only the
// first call has any effect.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()
		p.transport.CloseIdleConnections()
	})
}

// Closed reports whether Close has been called.
func (p *Pool) Closed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.closed
}
