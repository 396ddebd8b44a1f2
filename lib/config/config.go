// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Environment variable names.
const (
	EnvURL           = "TARGETPROCESS_URL"
	EnvToken         = "TARGETPROCESS_TOKEN"
	EnvVPNRequired   = "TARGETPROCESS_VPN_REQUIRED"
	EnvVPNCheckHosts = "TARGETPROCESS_VPN_CHECK_HOSTS"
	EnvConfigPath    = "TPBRIDGE_CONFIG"
)

// DirName is the directory under the user config root.
const DirName = "targetprocess-mcp"

// File is the on-disk configuration.
type File struct {
	// URL is the TargetProcess instance, e.g. https://example.tpondemand.com.
	URL string `yaml:"url,omitempty" json:"url,omitempty"`

	// VPNRequired enables the connectivity gate.
	VPNRequired bool `yaml:"vpn_required,omitempty" json:"vpn_required,omitempty"`

	// VPNCheckHosts are probed in order; the first reachable one opens
	// the gate.
	VPNCheckHosts []string `yaml:"vpn_check_hosts,omitempty" json:"vpn_check_hosts,omitempty"`
}

// DefaultPath returns the configuration file path for the given
// environment lookup (os.Getenv when nil).
func DefaultPath(getenv func(string) string) string {
	if getenv == nil {
		getenv = os.Getenv
	}
	if path := getenv(EnvConfigPath); path != "" {
		return path
	}
	if xdg := getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, DirName, "config.yaml")
	}
	home := getenv("HOME")
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	return filepath.Join(home, ".config", DirName, "config.yaml")
}

// LegacyFileName is the TOML file earlier releases read, with keys URL,
// VPN_REQUIRED and VPN_CHECK_HOSTS. It is no longer read.
const LegacyFileName = "config.toml"

// LegacyFile returns the path of a legacy TOML configuration beside
// path, or "" when there is none. Callers warn so that settings kept
// only there are not silently ignored.
func LegacyFile(path string) string {
	legacy := filepath.Join(filepath.Dir(path), LegacyFileName)
	if filepath.Clean(path) == legacy {
		return ""
	}
	if _, err := os.Stat(legacy); err != nil {
		return ""
	}
	return legacy
}

// LoadFile reads the configuration file at path. A missing file yields
// an empty File.
func LoadFile(path string) (File, error) {
	var file File
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return file, nil
	}
	if err != nil {
		return file, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if isJSON(path) {
		err = json.Unmarshal(jsonc.ToJSON(data), &file)
	} else {
		err = yaml.Unmarshal(data, &file)
	}
	if err != nil {
		return File{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return file, nil
}

// Save writes file to path with mode 0600, creating the directory if
// needed. The format follows the extension as in LoadFile.
func Save(path string, file File) error {
	if err := file.Validate(); err != nil {
		return err
	}

	var data []byte
	var err error
	if isJSON(path) {
		data, err = json.MarshalIndent(file, "", "  ")
		data = append(data, '\n')
	} else {
		data, err = yaml.Marshal(file)
	}
	if err != nil {
		return fmt.Errorf("config: encoding %s: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("config: creating %s: %w", filepath.Dir(path), err)
	}
	temporary, err := os.CreateTemp(filepath.Dir(path), ".config.*")
	if err != nil {
		return fmt.Errorf("config: creating temp file: %w", err)
	}
	defer os.Remove(temporary.Name())
	if _, err := temporary.Write(data); err != nil {
		temporary.Close()
		return fmt.Errorf("config: writing %s: %w", path, err)
	}
	if err := temporary.Close(); err != nil {
		return fmt.Errorf("config: writing %s: %w", path, err)
	}
	if err := os.Chmod(temporary.Name(), 0o600); err != nil {
		return fmt.Errorf("config: chmod %s: %w", path, err)
	}
	if err := os.Rename(temporary.Name(), path); err != nil {
		return fmt.Errorf("config: replacing %s: %w", path, err)
	}
	return nil
}

// Validate checks the file's values.
func (f File) Validate() error {
	var errs []error

	if f.URL != "" {
		parsed, err := url.Parse(f.URL)
		if err != nil {
			errs = append(errs, fmt.Errorf("url: %w", err))
		} else if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			errs = append(errs, fmt.Errorf("url must be an absolute http(s) URL, got %q", f.URL))
		}
	}

	for i, host := range f.VPNCheckHosts {
		if strings.TrimSpace(host) == "" {
			errs = append(errs, fmt.Errorf("vpn_check_hosts[%d] is empty", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

func isJSON(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return true
	}
	return false
}

// expand replaces ${VAR} and ${VAR:-default} references in string
// values.
func (f *File) expand(getenv func(string) string) {
	f.URL = expandVars(f.URL, getenv)
	for i, host := range f.VPNCheckHosts {
		f.VPNCheckHosts[i] = expandVars(host, getenv)
	}
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, getenv func(string) string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		if value := getenv(parts[1]); value != "" {
			return value
		}
		if len(parts) >= 3 {
			return parts[2]
		}
		return ""
	})
}
