// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/bureau-foundation/tpbridge/lib/clock"
	"github.com/bureau-foundation/tpbridge/lib/credstore"
)

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestProviderPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path, `
url: https://file.tpondemand.com
vpn_required: false
vpn_check_hosts: [file-host]
`)

	provider, err := NewProvider(Options{
		Path: path,
		Getenv: envMap(map[string]string{
			EnvURL:           "https://env.tpondemand.com",
			EnvToken:         "env-token",
			EnvVPNRequired:   "TRUE",
			EnvVPNCheckHosts: " a.example.com, ,b.example.com ",
		}),
		Secrets: credstore.NewMemory(map[string]string{credstore.TokenAccount: "stored-token"}),
	})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}

	settings := provider.Settings()
	if settings.URL != "https://env.tpondemand.com" || settings.URLSource != SourceEnv {
		t.Errorf("URL = %q (%s), want env value", settings.URL, settings.URLSource)
	}
	if settings.Token != "env-token" || settings.TokenSource != SourceEnv {
		t.Errorf("Token = %q (%s), want env value", settings.Token, settings.TokenSource)
	}
	if !settings.VPNRequired {
		t.Error("VPNRequired = false, want true from env")
	}
	if want := []string{"a.example.com", "b.example.com"}; !reflect.DeepEqual(settings.VPNCheckHosts, want) {
		t.Errorf("VPNCheckHosts = %v, want %v", settings.VPNCheckHosts, want)
	}
}

func TestProviderFallsBackToFileAndSecrets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path, `
url: https://file.tpondemand.com/
vpn_required: true
vpn_check_hosts: [file-host]
`)

	provider, err := NewProvider(Options{
		Path:    path,
		Getenv:  envMap(map[string]string{EnvVPNRequired: "no"}),
		Secrets: credstore.NewMemory(map[string]string{credstore.TokenAccount: " stored-token\n"}),
	})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}

	settings := provider.Settings()
	if settings.URL != "https://file.tpondemand.com/" || settings.URLSource != SourceFile {
		t.Errorf("URL = %q (%s), want file value", settings.URL, settings.URLSource)
	}
	if settings.Token != "stored-token" || settings.TokenSource != SourceSecrets {
		t.Errorf("Token = %q (%s), want secret store value", settings.Token, settings.TokenSource)
	}
	if !settings.VPNRequired {
		t.Error("VPNRequired = false, want true from file")
	}
	if !reflect.DeepEqual(settings.VPNCheckHosts, []string{"file-host"}) {
		t.Errorf("VPNCheckHosts = %v", settings.VPNCheckHosts)
	}
	if got := settings.APIBase(); got != "https://file.tpondemand.com/api/v1" {
		t.Errorf("APIBase() = %q", got)
	}
}

type failingStore struct{}

func (failingStore) Get(string) (string, error) { return "", errors.New("keychain locked") }
func (failingStore) Set(string, string) error   { return errors.New("keychain locked") }

func TestProviderUnconfigured(t *testing.T) {
	provider, err := NewProvider(Options{
		Path:    filepath.Join(t.TempDir(), "absent.yaml"),
		Getenv:  envMap(nil),
		Secrets: failingStore{},
	})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	settings := provider.Settings()
	if settings.Configured() {
		t.Errorf("Configured() = true for %+v", settings)
	}
	if want := []string{"url", "token"}; !reflect.DeepEqual(settings.Missing(), want) {
		t.Errorf("Missing() = %v, want %v", settings.Missing(), want)
	}
	if settings.APIBase() != "" {
		t.Errorf("APIBase() = %q, want empty", settings.APIBase())
	}
}

func TestProviderMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "url: [")
	if _, err := NewProvider(Options{Path: path, Getenv: envMap(nil)}); err == nil {
		t.Fatal("expected error for malformed file")
	}
}

func TestProviderReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "url: https://one.tpondemand.com\n")

	provider, err := NewProvider(Options{Path: path, Getenv: envMap(nil)})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}

	writeConfig(t, path, "url: https://two.tpondemand.com\n")
	if provider.Settings().URL != "https://one.tpondemand.com" {
		t.Error("Settings changed before Reload")
	}
	if _, err := provider.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if got := provider.Settings().URL; got != "https://two.tpondemand.com" {
		t.Errorf("URL after Reload = %q", got)
	}

	writeConfig(t, path, "url: [")
	if _, err := provider.Reload(); err == nil {
		t.Fatal("expected Reload error for malformed file")
	}
	if got := provider.Settings().URL; got != "https://two.tpondemand.com" {
		t.Errorf("URL after failed Reload = %q, want previous value", got)
	}
}

func TestRedactedToken(t *testing.T) {
	tests := map[string]string{
		"":           "",
		"abc":        "***",
		"abcdefgh12": "******gh12",
	}
	for token, want := range tests {
		if got := (Settings{Token: token}).RedactedToken(); got != want {
			t.Errorf("RedactedToken(%q) = %q, want %q", token, got, want)
		}
	}
}

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path, "url: https://one.tpondemand.com\n")

	fake := clock.Fake(time.Unix(1_700_000_000, 0))
	provider, err := NewProvider(Options{Path: path, Getenv: envMap(nil), Clock: fake})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan Settings, 4)
	done := make(chan error, 1)
	go func() {
		done <- provider.Watch(ctx, func(settings Settings) { changes <- settings })
	}()

	// The watcher is registered asynchronously; keep rewriting the file
	// until a debounce timer is pending.
	deadline := time.Now().Add(10 * time.Second)
	for fake.PendingCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no reload scheduled after writing the config file")
		}
		writeConfig(t, path, "url: https://two.tpondemand.com\n")
		time.Sleep(20 * time.Millisecond)
	}
	fake.Advance(WatchDebounce)

	select {
	case settings := <-changes:
		if settings.URL != "https://two.tpondemand.com" {
			t.Errorf("reloaded URL = %q", settings.URL)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("onChange not called")
	}
	if got := provider.Settings().URL; got != "https://two.tpondemand.com" {
		t.Errorf("Settings().URL = %q", got)
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Watch returned %v", err)
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	provider, err := NewProvider(Options{
		Path:   filepath.Join(t.TempDir(), "missing", "config.yaml"),
		Getenv: envMap(nil),
	})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if err := provider.Watch(context.Background(), nil); err == nil {
		t.Fatal("expected error watching a missing directory")
	}
}

func TestReloadIfChangedSkipsIdenticalContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "url: https://one.tpondemand.com\n")

	provider, err := NewProvider(Options{Path: path, Getenv: envMap(nil)})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}

	writeConfig(t, path, "url: https://one.tpondemand.com\n")
	if _, changed, err := provider.reloadIfChanged(); changed || err != nil {
		t.Errorf("rewrite with same content: changed=%t err=%v, want no reload", changed, err)
	}

	writeConfig(t, path, "url: https://two.tpondemand.com\n")
	settings, changed, err := provider.reloadIfChanged()
	if !changed || err != nil {
		t.Fatalf("changed=%t err=%v, want a reload", changed, err)
	}
	if settings.URL != "https://two.tpondemand.com" {
		t.Errorf("URL = %q", settings.URL)
	}

	// A failed reload keeps the previous settings.
	writeConfig(t, path, "url: [broken\n")
	if _, changed, err := provider.reloadIfChanged(); !changed || err == nil {
		t.Errorf("malformed file: changed=%t err=%v, want reload error", changed, err)
	}
	if got := provider.Settings().URL; got != "https://two.tpondemand.com" {
		t.Errorf("URL after failed reload = %q, want previous value", got)
	}
}
