// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/tpbridge/lib/clock"
	"github.com/bureau-foundation/tpbridge/lib/config"
	"github.com/bureau-foundation/tpbridge/lib/gate"
	"github.com/bureau-foundation/tpbridge/lib/httppool"
	"github.com/bureau-foundation/tpbridge/lib/tpquery"
)

const testToken = "test-token-1234"

// recorder is an httptest handler that records requests and replies
// with a fixed status and body.
type recorder struct {
	mu       sync.Mutex
	requests []*url.URL
	status   int
	body     string
}

func (r *recorder) ServeHTTP(w http.ResponseWriter, request *http.Request) {
	r.mu.Lock()
	r.requests = append(r.requests, request.URL)
	status, body := r.status, r.body
	r.mu.Unlock()

	if status == 0 {
		status = http.StatusOK
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func (r *recorder) respond(status int, body string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status, r.body = status, body
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

func (r *recorder) last(t *testing.T) *url.URL {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.requests) == 0 {
		t.Fatal("no request recorded")
	}
	return r.requests[len(r.requests)-1]
}

// stubProber fails or succeeds every probe.
type stubProber struct {
	reachable bool
}

func (p stubProber) Dial(context.Context, string) error {
	if p.reachable {
		return nil
	}
	return errors.New("connection refused")
}

func (p stubProber) Lookup(context.Context, string) error {
	if p.reachable {
		return nil
	}
	return errors.New("no such host")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testSetup struct {
	client *Client
	server *recorder
	pool   *httppool.Pool
}

func newTestSetup(t *testing.T, policy gate.Policy, reachable bool) *testSetup {
	t.Helper()
	handler := &recorder{body: `[]`}
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	pool := httppool.New(httppool.DefaultLimits())
	t.Cleanup(pool.Close)

	fake := clock.Fake(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	client, err := NewClient(Config{
		BaseURL: server.URL + "/api/v1/",
		Token:   testToken,
		Pool:    pool,
		Gate: gate.New(gate.Config{
			Clock:  fake,
			Prober: stubProber{reachable: reachable},
			Logger: discardLogger(),
		}),
		Policy: policy,
		Clock:  fake,
		Logger: discardLogger(),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return &testSetup{client: client, server: handler, pool: pool}
}

func TestNewClientValidation(t *testing.T) {
	pool := httppool.New(httppool.DefaultLimits())
	defer pool.Close()

	tests := []struct {
		name   string
		config Config
	}{
		{"no base url", Config{Token: "t", Pool: pool}},
		{"no token", Config{BaseURL: "https://x/api/v1", Pool: pool}},
		{"no pool", Config{BaseURL: "https://x/api/v1", Token: "t"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := NewClient(test.config); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNewClientTrimsTrailingSlash(t *testing.T) {
	pool := httppool.New(httppool.DefaultLimits())
	defer pool.Close()
	client, err := NewClient(Config{BaseURL: "https://x.tpondemand.com/api/v1//", Token: "t", Pool: pool})
	if err != nil {
		t.Fatal(err)
	}
	if client.BaseURL() != "https://x.tpondemand.com/api/v1" {
		t.Errorf("BaseURL() = %q", client.BaseURL())
	}
}

func TestGetSendsTokenAndDefaults(t *testing.T) {
	setup := newTestSetup(t, gate.Policy{}, true)
	setup.server.respond(http.StatusOK, `[{"Id": 1, "Name": "Alpha"}]`)

	records, err := setup.client.Get(context.Background(), "Projects", Query{})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(records) != 1 || records[0]["Name"] != "Alpha" {
		t.Errorf("records = %v", records)
	}

	request := setup.server.last(t)
	if request.Path != "/api/v1/Projects" {
		t.Errorf("path = %q, want /api/v1/Projects", request.Path)
	}
	query := request.Query()
	if query.Get("token") != testToken {
		t.Errorf("token = %q", query.Get("token"))
	}
	if query.Get("take") != "100" {
		t.Errorf("take = %q, want 100", query.Get("take"))
	}
	for _, key := range []string{"include", "where", "skip", "orderby"} {
		if query.Has(key) {
			t.Errorf("unexpected parameter %s=%q", key, query.Get(key))
		}
	}
}

func TestGetPreservesZeroValues(t *testing.T) {
	setup := newTestSetup(t, gate.Policy{}, true)

	_, err := setup.client.Get(context.Background(), "Bugs", Query{
		Include: tpquery.Some("Project"),
		Where:   tpquery.Some("(Project.Id eq 0)"),
		Take:    tpquery.Some(0),
		Skip:    tpquery.Some(0),
		OrderBy: tpquery.Some("Id"),
	})
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	query := setup.server.last(t).Query()
	want := map[string]string{
		"include": "Project",
		"where":   "(Project.Id eq 0)",
		"take":    "0",
		"skip":    "0",
		"orderby": "Id",
	}
	for key, value := range want {
		if got := query.Get(key); got != value {
			t.Errorf("%s = %q, want %q", key, got, value)
		}
	}
}

func TestGetUpstreamError(t *testing.T) {
	setup := newTestSetup(t, gate.Policy{}, true)
	setup.server.respond(http.StatusUnauthorized, `{"Status":"Unauthorized","Message":"bad token"}`)

	records, err := setup.client.Get(context.Background(), "Projects", Query{})
	if records != nil {
		t.Errorf("records = %v, want nil", records)
	}
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("err = %v, want *UpstreamError", err)
	}
	if upstream.StatusCode != 401 {
		t.Errorf("StatusCode = %d, want 401", upstream.StatusCode)
	}
	if !strings.Contains(upstream.Body, "bad token") {
		t.Errorf("Body = %q", upstream.Body)
	}
	if !IsUnauthorized(err) || IsNotFound(err) || IsRetryable(err) {
		t.Errorf("classification wrong for %v", err)
	}
}

func TestGetUpstreamErrorSkipsNormalization(t *testing.T) {
	setup := newTestSetup(t, gate.Policy{}, true)
	setup.server.respond(http.StatusInternalServerError, `[{"Id": 1}]`)

	_, err := setup.client.Get(context.Background(), "Projects", Query{})
	var upstream *UpstreamError
	if !errors.As(err, &upstream) || upstream.StatusCode != 500 {
		t.Fatalf("err = %v, want 500 *UpstreamError", err)
	}
	if !IsRetryable(err) {
		t.Error("500 should be retryable")
	}
}

func TestGetConnectivityDenied(t *testing.T) {
	setup := newTestSetup(t, gate.Policy{Required: true, Hosts: []string{"vpn.internal"}}, false)

	_, err := setup.client.Get(context.Background(), "Projects", Query{})
	var connectivity *ConnectivityError
	if !errors.As(err, &connectivity) {
		t.Fatalf("err = %v, want *ConnectivityError", err)
	}
	if setup.server.count() != 0 {
		t.Errorf("server saw %d requests, want 0", setup.server.count())
	}
	if !IsRetryable(err) {
		t.Error("connectivity refusal should be retryable")
	}
}

func TestGetGateOpen(t *testing.T) {
	setup := newTestSetup(t, gate.Policy{Required: true, Hosts: []string{"vpn.internal"}}, true)
	if _, err := setup.client.Get(context.Background(), "Projects", Query{}); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if setup.server.count() != 1 {
		t.Errorf("server saw %d requests, want 1", setup.server.count())
	}
}

func TestGetClosedPool(t *testing.T) {
	setup := newTestSetup(t, gate.Policy{}, true)
	setup.pool.Close()

	_, err := setup.client.Get(context.Background(), "Projects", Query{})
	if !errors.Is(err, httppool.ErrClosed) {
		t.Fatalf("err = %v, want ErrClosed", err)
	}
}

func TestGetTransportErrorOmitsToken(t *testing.T) {
	pool := httppool.New(httppool.DefaultLimits())
	defer pool.Close()

	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL + "/api/v1"
	server.Close()

	client, err := NewClient(Config{BaseURL: baseURL, Token: testToken, Pool: pool, Logger: discardLogger()})
	if err != nil {
		t.Fatal(err)
	}
	_, err = client.Get(context.Background(), "Projects", Query{})
	if err == nil {
		t.Fatal("expected transport error")
	}
	if strings.Contains(err.Error(), testToken) {
		t.Errorf("error leaks the token: %v", err)
	}
}

func TestGetDecodeError(t *testing.T) {
	setup := newTestSetup(t, gate.Policy{}, true)
	setup.server.respond(http.StatusOK, `"just a string"`)

	_, err := setup.client.Get(context.Background(), "Projects", Query{})
	if err == nil {
		t.Fatal("expected decode error")
	}
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		t.Errorf("decode error should not be an UpstreamError: %v", err)
	}
}

func TestFromSettings(t *testing.T) {
	pool := httppool.New(httppool.DefaultLimits())
	defer pool.Close()

	_, err := FromSettings(config.Settings{URL: "https://x.tpondemand.com"}, pool, nil, discardLogger())
	var configuration *ConfigurationError
	if !errors.As(err, &configuration) {
		t.Fatalf("err = %v, want *ConfigurationError", err)
	}
	if len(configuration.Missing) != 1 || configuration.Missing[0] != "token" {
		t.Errorf("Missing = %v, want [token]", configuration.Missing)
	}
	if !strings.Contains(err.Error(), "tpbridge setup") {
		t.Errorf("error does not name the remedy: %v", err)
	}

	client, err := FromSettings(config.Settings{
		URL:           "https://x.tpondemand.com/",
		Token:         "t",
		VPNRequired:   true,
		VPNCheckHosts: []string{"vpn.internal"},
	}, pool, nil, discardLogger())
	if err != nil {
		t.Fatalf("FromSettings: %v", err)
	}
	if client.BaseURL() != "https://x.tpondemand.com/api/v1" {
		t.Errorf("BaseURL() = %q", client.BaseURL())
	}
	if policy := client.Policy(); !policy.Required || len(policy.Hosts) != 1 {
		t.Errorf("Policy() = %+v", policy)
	}
}

func TestUpstreamErrorMessage(t *testing.T) {
	err := &UpstreamError{Endpoint: "Bugs", StatusCode: 404, Body: "  not here \n"}
	if got := err.Error(); got != "tpapi: Bugs: HTTP 404: not here" {
		t.Errorf("Error() = %q", got)
	}
	empty := &UpstreamError{Endpoint: "Bugs", StatusCode: 502}
	if got := empty.Error(); got != "tpapi: Bugs: HTTP 502" {
		t.Errorf("Error() = %q", got)
	}
	if !IsNotFound(err) {
		t.Error("IsNotFound = false for 404")
	}
}
