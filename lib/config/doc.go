// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config resolves tpbridge settings from the environment, a
// configuration file and a secret store.
//
// Each setting has one precedence order, highest first:
//
//   - URL: TARGETPROCESS_URL, then the file's url key.
//   - Token: TARGETPROCESS_TOKEN, then the secret store. The token is
//     never read from or written to the configuration file.
//   - VPN required: TARGETPROCESS_VPN_REQUIRED="true" (any case), then
//     the file's vpn_required key.
//   - VPN check hosts: TARGETPROCESS_VPN_CHECK_HOSTS (comma separated),
//     then the file's vpn_check_hosts list.
//
// Empty environment values do not count as set.
//
// The file lives at $TPBRIDGE_CONFIG, else
// $XDG_CONFIG_HOME/targetprocess-mcp/config.yaml, else
// ~/.config/targetprocess-mcp/config.yaml (see [DefaultPath]). YAML is
// the native format; a path ending in .json or .jsonc is read as JSON
// with comments. A missing file is an empty configuration, a malformed
// one is an error. ${VAR} and ${VAR:-default} references in string
// values are expanded from the environment after loading.
//
// A [Provider] caches the resolved [Settings]. Nothing is re-read
// behind the caller's back: [Provider.Reload] re-reads the file and the
// secret store explicitly, and [Provider.Watch] calls Reload when the
// file changes on disk.
package config
