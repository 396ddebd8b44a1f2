// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tpapi

import (
	"errors"
	"fmt"
	"strings"
)

// Remedy is the instruction attached to a ConfigurationError.
const Remedy = "run: tpbridge setup (or set TARGETPROCESS_URL and TARGETPROCESS_TOKEN)"

// ConfigurationError reports that the URL or the token is missing, so
// no client can be built.
type ConfigurationError struct {
	// Missing names the absent settings ("url", "token").
	Missing []string
}

func (err *ConfigurationError) Error() string {
	return fmt.Sprintf("tpapi: TargetProcess not configured (missing %s); %s",
		strings.Join(err.Missing, ", "), Remedy)
}

// ConnectivityError reports that the connectivity gate refused the
// request. No request was sent.
type ConnectivityError struct {
	Endpoint string
	Hosts    []string
}

func (err *ConnectivityError) Error() string {
	return fmt.Sprintf("tpapi: %s: VPN required but none of the check hosts is reachable (%s)",
		err.Endpoint, strings.Join(err.Hosts, ", "))
}

// UpstreamError is a non-2xx response from TargetProcess. Body holds
// the raw response text.
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (err *UpstreamError) Error() string {
	body := strings.TrimSpace(err.Body)
	if len(body) > 512 {
		body = body[:512] + "..."
	}
	if body == "" {
		return fmt.Sprintf("tpapi: %s: HTTP %d", err.Endpoint, err.StatusCode)
	}
	return fmt.Sprintf("tpapi: %s: HTTP %d: %s", err.Endpoint, err.StatusCode, body)
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	var upstream *UpstreamError
	return errors.As(err, &upstream) && upstream.StatusCode == 404
}

// IsUnauthorized reports whether err is an upstream 401 or 403. A bad
// or expired token produces 401.
func IsUnauthorized(err error) bool {
	var upstream *UpstreamError
	return errors.As(err, &upstream) && (upstream.StatusCode == 401 || upstream.StatusCode == 403)
}

// IsRetryable reports whether retrying err later could succeed:
// connectivity refusals, 429 and 5xx responses.
func IsRetryable(err error) bool {
	var connectivity *ConnectivityError
	if errors.As(err, &connectivity) {
		return true
	}
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return upstream.StatusCode == 429 || upstream.StatusCode >= 500
	}
	return false
}
