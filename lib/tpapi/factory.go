// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tpapi

import (
	"log/slog"

	"github.com/bureau-foundation/tpbridge/lib/config"
	"github.com/bureau-foundation/tpbridge/lib/gate"
	"github.com/bureau-foundation/tpbridge/lib/httppool"
)

// FromSettings builds a Client for the configured instance. It returns
// a *ConfigurationError when the URL or token is missing.
func FromSettings(settings config.Settings, pool *httppool.Pool, connectivity *gate.Gate, logger *slog.Logger) (*Client, error) {
	if missing := settings.Missing(); len(missing) > 0 {
		return nil, &ConfigurationError{Missing: missing}
	}
	return NewClient(Config{
		BaseURL: settings.APIBase(),
		Token:   settings.Token,
		Pool:    pool,
		Gate:    connectivity,
		Policy: gate.Policy{
			Required: settings.VPNRequired,
			Hosts:    settings.VPNCheckHosts,
		},
		Logger: logger,
	})
}
