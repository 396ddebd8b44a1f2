// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func envMap(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestDefaultPath(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "explicit",
			env:  map[string]string{EnvConfigPath: "/etc/tp.yaml", "XDG_CONFIG_HOME": "/xdg", "HOME": "/home/u"},
			want: "/etc/tp.yaml",
		},
		{
			name: "xdg",
			env:  map[string]string{"XDG_CONFIG_HOME": "/xdg", "HOME": "/home/u"},
			want: "/xdg/targetprocess-mcp/config.yaml",
		},
		{
			name: "home",
			env:  map[string]string{"HOME": "/home/u"},
			want: "/home/u/.config/targetprocess-mcp/config.yaml",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := DefaultPath(envMap(test.env)); got != test.want {
				t.Errorf("DefaultPath() = %q, want %q", got, test.want)
			}
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	file, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if !reflect.DeepEqual(file, File{}) {
		t.Errorf("LoadFile = %+v, want empty", file)
	}
}

func TestLoadFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
url: https://example.tpondemand.com
vpn_required: true
vpn_check_hosts:
  - intranet.example.com
  - 10.0.0.1
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	file, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	want := File{
		URL:           "https://example.tpondemand.com",
		VPNRequired:   true,
		VPNCheckHosts: []string{"intranet.example.com", "10.0.0.1"},
	}
	if !reflect.DeepEqual(file, want) {
		t.Errorf("LoadFile = %+v, want %+v", file, want)
	}
}

func TestLoadFileJSONC(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.jsonc")
	content := `{
  // instance
  "url": "https://example.tpondemand.com",
  "vpn_check_hosts": ["a.example.com",], /* trailing comma */
}`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	file, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if file.URL != "https://example.tpondemand.com" {
		t.Errorf("URL = %q", file.URL)
	}
	if !reflect.DeepEqual(file.VPNCheckHosts, []string{"a.example.com"}) {
		t.Errorf("VPNCheckHosts = %v", file.VPNCheckHosts)
	}
}

func TestLoadFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("url: [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"config.yaml", "config.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			file := File{
				URL:           "https://example.tpondemand.com",
				VPNRequired:   true,
				VPNCheckHosts: []string{"intranet.example.com"},
			}
			if err := Save(path, file); err != nil {
				t.Fatalf("Save: %v", err)
			}

			info, err := os.Stat(path)
			if err != nil {
				t.Fatal(err)
			}
			if mode := info.Mode().Perm(); mode != 0o600 {
				t.Errorf("mode = %o, want 600", mode)
			}

			loaded, err := LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile: %v", err)
			}
			if !reflect.DeepEqual(loaded, file) {
				t.Errorf("loaded = %+v, want %+v", loaded, file)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		file    File
		wantErr string
	}{
		{name: "empty", file: File{}},
		{name: "valid", file: File{URL: "https://x.tpondemand.com", VPNCheckHosts: []string{"h"}}},
		{name: "relative url", file: File{URL: "x.tpondemand.com"}, wantErr: "absolute http(s) URL"},
		{name: "ftp url", file: File{URL: "ftp://x.example.com"}, wantErr: "absolute http(s) URL"},
		{name: "blank host", file: File{VPNCheckHosts: []string{"a", " "}}, wantErr: "vpn_check_hosts[1] is empty"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.file.Validate()
			if test.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), test.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, test.wantErr)
			}
		})
	}
}

func TestExpandVars(t *testing.T) {
	getenv := envMap(map[string]string{"TENANT": "acme"})
	tests := []struct {
		input string
		want  string
	}{
		{"https://${TENANT}.tpondemand.com", "https://acme.tpondemand.com"},
		{"${MISSING:-fallback}", "fallback"},
		{"${MISSING}", ""},
		{"plain", "plain"},
	}
	for _, test := range tests {
		if got := expandVars(test.input, getenv); got != test.want {
			t.Errorf("expandVars(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestLegacyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if got := LegacyFile(path); got != "" {
		t.Errorf("LegacyFile() = %q with no legacy file, want empty", got)
	}

	legacy := filepath.Join(dir, LegacyFileName)
	if err := os.WriteFile(legacy, []byte("URL = \"https://old.tpondemand.com\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if got := LegacyFile(path); got != legacy {
		t.Errorf("LegacyFile() = %q, want %q", got, legacy)
	}

	// A configuration explicitly pointed at the TOML path is not legacy.
	if got := LegacyFile(legacy); got != "" {
		t.Errorf("LegacyFile(%q) = %q, want empty", legacy, got)
	}
}
