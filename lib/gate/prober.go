// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gate

import (
	"context"
	"net"
)

// Prober performs the two network probes the gate relies on. Both
// methods must respect the context deadline.
type Prober interface {
	// Dial opens and immediately closes a TCP connection to address
	// ("host:port").
	Dial(ctx context.Context, address string) error

	// Lookup resolves host to at least one address.
	Lookup(ctx context.Context, host string) error
}

// NetProber probes with the standard library dialer and resolver. The
// zero value uses net.DefaultResolver.
type NetProber struct {
	Dialer   *net.Dialer
	Resolver *net.Resolver
}

// Dial connects to address over TCP and closes the connection.
func (p NetProber) Dial(ctx context.Context, address string) error {
	dialer := p.Dialer
	if dialer == nil {
		dialer = &net.Dialer{}
	}
	connection, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return err
	}
	return connection.Close()
}

// Lookup resolves host.
func (p NetProber) Lookup(ctx context.Context, host string) error {
	resolver := p.Resolver
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	_, err := resolver.LookupHost(ctx, host)
	return err
}
