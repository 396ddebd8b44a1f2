// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bufio"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/bureau-foundation/tpbridge/cmd/tpbridge/cli"
	"github.com/bureau-foundation/tpbridge/lib/config"
	"github.com/bureau-foundation/tpbridge/lib/credstore"
	"github.com/bureau-foundation/tpbridge/lib/tpquery"
)

// scriptedPrompter answers prompts from input, one line per question.
// Secrets are read from the same input, as when stdin is a pipe.
func scriptedPrompter(input string) *prompter {
	return &prompter{
		reader: bufio.NewReader(strings.NewReader(input)),
		output: io.Discard,
	}
}

func storedToken(t *testing.T, runtime *Runtime) string {
	t.Helper()
	token, err := runtime.SecretStore(runtime.ConfigPath()).Get(credstore.TokenAccount)
	if err != nil {
		t.Fatalf("reading stored token: %v", err)
	}
	return token
}

func TestSetupInteractive(t *testing.T) {
	runtime := newTestRuntime(t, nil, stubProber{})
	session := scriptedPrompter("https://example.tpondemand.com/\nmy-token\ny\nvpn-a.corp, vpn-b.corp\n")

	if err := runSetup(runtime, setupParams{}, session, discardLogger()); err != nil {
		t.Fatalf("runSetup: %v", err)
	}

	file, err := config.LoadFile(runtime.ConfigPath())
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if file.URL != "https://example.tpondemand.com" {
		t.Errorf("URL = %q, want trailing slash trimmed", file.URL)
	}
	if !file.VPNRequired {
		t.Error("VPNRequired = false, want true")
	}
	if want := []string{"vpn-a.corp", "vpn-b.corp"}; !slices.Equal(file.VPNCheckHosts, want) {
		t.Errorf("VPNCheckHosts = %v, want %v", file.VPNCheckHosts, want)
	}
	if got := storedToken(t, runtime); got != "my-token" {
		t.Errorf("stored token = %q, want my-token", got)
	}

	settings, err := runtime.Settings(discardLogger())
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if !settings.Configured() || settings.TokenSource != config.SourceSecrets {
		t.Errorf("settings = %+v, want configured from the secret store", settings)
	}
}

func TestSetupKeepsExistingValues(t *testing.T) {
	runtime := newTestRuntime(t, nil, stubProber{})
	if err := config.Save(runtime.ConfigPath(), config.File{
		URL:           "https://old.tpondemand.com",
		VPNRequired:   true,
		VPNCheckHosts: []string{"vpn.corp"},
	}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := runtime.SecretStore(runtime.ConfigPath()).Set(credstore.TokenAccount, "old-token"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	// Every answer empty: keep URL, keep token, keep VPN settings.
	if err := runSetup(runtime, setupParams{}, scriptedPrompter("\n\n\n\n"), discardLogger()); err != nil {
		t.Fatalf("runSetup: %v", err)
	}

	file, err := config.LoadFile(runtime.ConfigPath())
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if file.URL != "https://old.tpondemand.com" || !file.VPNRequired || !slices.Equal(file.VPNCheckHosts, []string{"vpn.corp"}) {
		t.Errorf("file = %+v, want previous values", file)
	}
	if got := storedToken(t, runtime); got != "old-token" {
		t.Errorf("stored token = %q, want old-token", got)
	}
}

func TestSetupFromFlags(t *testing.T) {
	runtime := newTestRuntime(t, nil, stubProber{})
	tokenFile := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(tokenFile, []byte("file-token\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	params := setupParams{
		URL:         "https://flags.tpondemand.com",
		TokenFile:   tokenFile,
		VPNRequired: tpquery.Some(false),
	}
	// No input at all: nothing may be prompted for.
	if err := runSetup(runtime, params, scriptedPrompter(""), discardLogger()); err != nil {
		t.Fatalf("runSetup: %v", err)
	}

	file, err := config.LoadFile(runtime.ConfigPath())
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if file.URL != "https://flags.tpondemand.com" || file.VPNRequired {
		t.Errorf("file = %+v", file)
	}
	if got := storedToken(t, runtime); got != "file-token" {
		t.Errorf("stored token = %q, want file-token", got)
	}
}

func TestSetupValidation(t *testing.T) {
	tests := []struct {
		name   string
		params setupParams
		input  string
	}{
		{"missing url", setupParams{}, "\n"},
		{"missing token", setupParams{URL: "https://example.tpondemand.com"}, "\n"},
		{"bad url", setupParams{URL: "example.tpondemand.com", VPNRequired: tpquery.Some(false)}, "token\n"},
		{"bad answer", setupParams{URL: "https://example.tpondemand.com"}, "token\nmaybe\n"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			runtime := newTestRuntime(t, nil, stubProber{})
			err := runSetup(runtime, test.params, scriptedPrompter(test.input), discardLogger())

			var toolErr *cli.ToolError
			if !errors.As(err, &toolErr) || toolErr.Category != cli.CategoryValidation {
				t.Fatalf("err = %v, want validation ToolError", err)
			}
			if _, statErr := os.Stat(runtime.ConfigPath()); statErr == nil {
				t.Error("configuration file written despite the error")
			}
		})
	}
}

func TestSetupRecoversFromMalformedFile(t *testing.T) {
	runtime := newTestRuntime(t, nil, stubProber{})
	if err := os.WriteFile(runtime.ConfigPath(), []byte("url: [unterminated\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	params := setupParams{URL: "https://example.tpondemand.com", VPNRequired: tpquery.Some(false)}
	if err := runSetup(runtime, params, scriptedPrompter("token\n"), discardLogger()); err != nil {
		t.Fatalf("runSetup: %v", err)
	}
	if _, err := config.LoadFile(runtime.ConfigPath()); err != nil {
		t.Errorf("file still malformed after setup: %v", err)
	}
}

func TestSetupWarnsAboutLegacyConfig(t *testing.T) {
	runtime := newTestRuntime(t, nil, stubProber{})
	legacy := filepath.Join(filepath.Dir(runtime.ConfigPath()), config.LegacyFileName)
	if err := os.WriteFile(legacy, []byte("URL = \"https://old.tpondemand.com\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	var output strings.Builder
	session := scriptedPrompter("token\n")
	session.output = &output
	params := setupParams{URL: "https://example.tpondemand.com", VPNRequired: tpquery.Some(false)}
	if err := runSetup(runtime, params, session, discardLogger()); err != nil {
		t.Fatalf("runSetup: %v", err)
	}
	if !strings.Contains(output.String(), legacy) {
		t.Errorf("setup output does not mention %s:\n%s", legacy, output.String())
	}
}
