// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/bureau-foundation/tpbridge/lib/clock"
	"github.com/bureau-foundation/tpbridge/lib/config"
	"github.com/bureau-foundation/tpbridge/lib/credstore"
	"github.com/bureau-foundation/tpbridge/lib/gate"
	"github.com/bureau-foundation/tpbridge/lib/httppool"
	"github.com/bureau-foundation/tpbridge/lib/tpapi"
)

// Options configures a Runtime. Zero fields take process defaults.
type Options struct {
	// ConfigPath overrides the configuration file location.
	ConfigPath string

	// Getenv looks up environment variables. Defaults to os.Getenv.
	Getenv func(string) string

	// Secrets is the token store. Defaults to credstore.Default next to
	// the configuration file.
	Secrets credstore.Store

	// Prober performs connectivity probes. Defaults to gate.NetProber.
	Prober gate.Prober

	// Clock drives the gate cache and the config watch debounce.
	Clock clock.Clock

	// Limits bounds the shared connection pool.
	Limits httppool.Limits
}

// Runtime owns the process-wide resources shared by every command: the
// connection pool, the connectivity gate and the configuration
// provider. Clients are cheap views over these and are built per call
// from the current settings, so a reloaded config file applies to the
// next request.
type Runtime struct {
	options Options
	pool    *httppool.Pool
	gate    *gate.Gate

	mu       sync.Mutex
	provider *config.Provider
}

// NewRuntime creates the pool and the gate. The configuration is read
// lazily on first use.
func NewRuntime(options Options) *Runtime {
	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	return &Runtime{
		options: options,
		pool:    httppool.New(options.Limits),
		gate: gate.New(gate.Config{
			Clock:  options.Clock,
			Prober: options.Prober,
		}),
	}
}

// Close releases the connection pool. Safe to call more than once.
func (r *Runtime) Close() {
	r.pool.Close()
}

// Now returns the current time on the runtime's clock.
func (r *Runtime) Now() time.Time {
	return r.options.Clock.Now()
}

// Gate returns the shared connectivity gate.
func (r *Runtime) Gate() *gate.Gate {
	return r.gate
}

// Provider returns the configuration provider, creating it on first
// use.
func (r *Runtime) Provider(logger *slog.Logger) (*config.Provider, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.provider != nil {
		return r.provider, nil
	}

	path := r.ConfigPath()
	r.warnLegacyConfig(logger)
	provider, err := config.NewProvider(config.Options{
		Path:    path,
		Getenv:  r.options.Getenv,
		Secrets: r.SecretStore(path),
		Clock:   r.options.Clock,
		Logger:  logger,
	})
	if err != nil {
		return nil, classify(err)
	}
	r.provider = provider
	return provider, nil
}

// Settings returns the current configuration.
func (r *Runtime) Settings(logger *slog.Logger) (config.Settings, error) {
	provider, err := r.Provider(logger)
	if err != nil {
		return config.Settings{}, err
	}
	return provider.Settings(), nil
}

// Client builds a TargetProcess client from the current settings.
func (r *Runtime) Client(logger *slog.Logger) (*tpapi.Client, error) {
	settings, err := r.Settings(logger)
	if err != nil {
		return nil, err
	}
	client, err := tpapi.FromSettings(settings, r.pool, r.gate, logger)
	if err != nil {
		return nil, classify(err)
	}
	return client, nil
}

// ConfigPath returns the configuration file location.
func (r *Runtime) ConfigPath() string {
	if r.options.ConfigPath != "" {
		return r.options.ConfigPath
	}
	return config.DefaultPath(r.options.Getenv)
}

// SecretStore returns the store that holds the API token for the
// configuration file at path. The sealed-file backend lives next to it.
func (r *Runtime) SecretStore(path string) credstore.Store {
	if r.options.Secrets != nil {
		return r.options.Secrets
	}
	return credstore.Default(filepath.Dir(path))
}

// warnLegacyConfig logs when a legacy TOML configuration sits beside
// the current one. Its values are not read.
func (r *Runtime) warnLegacyConfig(logger *slog.Logger) string {
	path := r.ConfigPath()
	legacy := config.LegacyFile(path)
	if legacy != "" {
		logger.Warn("legacy configuration file is ignored; run 'tpbridge setup' to migrate it",
			"legacy", legacy,
			"path", path,
		)
	}
	return legacy
}

// WatchConfig reloads the configuration whenever its file changes,
// until ctx is cancelled. It is run in the background by "mcp serve".
func (r *Runtime) WatchConfig(ctx context.Context, logger *slog.Logger) error {
	provider, err := r.Provider(logger)
	if err != nil {
		return err
	}
	return provider.Watch(ctx, func(settings config.Settings) {
		logger.Info("new settings apply from the next tool call",
			"path", provider.Path(),
			"configured", settings.Configured(),
			"vpn_required", settings.VPNRequired,
		)
	})
}
