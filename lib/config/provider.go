// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/bureau-foundation/tpbridge/lib/clock"
	"github.com/bureau-foundation/tpbridge/lib/credstore"
)

// Options configures a Provider.
type Options struct {
	// Path is the configuration file. Defaults to DefaultPath(Getenv).
	Path string

	// Getenv looks up environment variables. Defaults to os.Getenv.
	Getenv func(string) string

	// Secrets supplies the token when the environment does not. May be
	// nil.
	Secrets credstore.Store

	// Clock drives the Watch debounce. Defaults to clock.Real().
	Clock clock.Clock

	// Logger is used for structured logging. Defaults to slog.Default().
	Logger *slog.Logger
}

// Provider resolves and caches Settings.
type Provider struct {
	path    string
	getenv  func(string) string
	secrets credstore.Store
	clock   clock.Clock
	logger  *slog.Logger

	mu       sync.RWMutex
	settings Settings
	digest   [32]byte
}

// NewProvider creates a Provider and performs the first resolution. A
// malformed configuration file is an error.
func NewProvider(options Options) (*Provider, error) {
	getenv := options.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	path := options.Path
	if path == "" {
		path = DefaultPath(getenv)
	}
	clk := options.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	provider := &Provider{
		path:    path,
		getenv:  getenv,
		secrets: options.Secrets,
		clock:   clk,
		logger:  logger,
	}
	if _, err := provider.Reload(); err != nil {
		return nil, err
	}
	return provider, nil
}

// Path returns the configuration file path.
func (p *Provider) Path() string {
	return p.path
}

// Settings returns the most recent resolution.
func (p *Provider) Settings() Settings {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.settings
}

// Reload re-reads the file and the secret store and replaces the cached
// Settings. On error the previous Settings are kept.
func (p *Provider) Reload() (Settings, error) {
	digest := contentDigest(p.path)
	file, err := LoadFile(p.path)
	if err != nil {
		return p.Settings(), err
	}
	file.expand(p.getenv)

	settings := p.resolve(file)

	p.mu.Lock()
	p.settings = settings
	p.digest = digest
	p.mu.Unlock()
	return settings, nil
}

func (p *Provider) resolve(file File) Settings {
	var settings Settings

	if value := p.getenv(EnvURL); value != "" {
		settings.URL, settings.URLSource = value, SourceEnv
	} else if file.URL != "" {
		settings.URL, settings.URLSource = file.URL, SourceFile
	}

	if value := p.getenv(EnvToken); value != "" {
		settings.Token, settings.TokenSource = value, SourceEnv
	} else if token := p.storedToken(); token != "" {
		settings.Token, settings.TokenSource = token, SourceSecrets
	}

	settings.VPNRequired = strings.EqualFold(p.getenv(EnvVPNRequired), "true") || file.VPNRequired

	if value := p.getenv(EnvVPNCheckHosts); value != "" {
		settings.VPNCheckHosts = splitHosts(value)
	} else if len(file.VPNCheckHosts) > 0 {
		settings.VPNCheckHosts = append([]string(nil), file.VPNCheckHosts...)
	}

	return settings
}

// storedToken reads the token from the secret store. Store failures
// other than a missing secret are logged and treated as absent.
func (p *Provider) storedToken() string {
	if p.secrets == nil {
		return ""
	}
	token, err := p.secrets.Get(credstore.TokenAccount)
	if err != nil {
		if !errors.Is(err, credstore.ErrNotFound) {
			p.logger.Warn("reading token from secret store failed", "error", err)
		}
		return ""
	}
	return strings.TrimSpace(token)
}

func splitHosts(value string) []string {
	var hosts []string
	for _, host := range strings.Split(value, ",") {
		if host = strings.TrimSpace(host); host != "" {
			hosts = append(hosts, host)
		}
	}
	return hosts
}
