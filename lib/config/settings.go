// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"strings"
)

// Sources recorded in Settings.
const (
	SourceEnv     = "env"
	SourceFile    = "file"
	SourceSecrets = "secret store"
	SourceUnset   = ""
)

// Settings is one resolution of the configuration. It is a value: a
// client built from it keeps it unchanged.
type Settings struct {
	URL           string
	Token         string
	VPNRequired   bool
	VPNCheckHosts []string

	// URLSource and TokenSource record where each value came from.
	URLSource   string
	TokenSource string
}

// APIBase returns the REST API root, or "" unless both URL and token
// are set.
func (s Settings) APIBase() string {
	if s.URL == "" || s.Token == "" {
		return ""
	}
	return strings.TrimRight(s.URL, "/") + "/api/v1"
}

// Missing lists the required settings that are absent.
func (s Settings) Missing() []string {
	var missing []string
	if s.URL == "" {
		missing = append(missing, "url")
	}
	if s.Token == "" {
		missing = append(missing, "token")
	}
	return missing
}

// Configured reports whether URL and token are both set.
func (s Settings) Configured() bool {
	return len(s.Missing()) == 0
}

// RedactedToken returns the token with all but its last four
// characters masked.
func (s Settings) RedactedToken() string {
	if s.Token == "" {
		return ""
	}
	if len(s.Token) <= 4 {
		return strings.Repeat("*", len(s.Token))
	}
	return strings.Repeat("*", len(s.Token)-4) + s.Token[len(s.Token)-4:]
}
