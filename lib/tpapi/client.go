// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/bureau-foundation/tpbridge/lib/clock"
	"github.com/bureau-foundation/tpbridge/lib/gate"
	"github.com/bureau-foundation/tpbridge/lib/httppool"
	"github.com/bureau-foundation/tpbridge/lib/metrics"
	"github.com/bureau-foundation/tpbridge/lib/netutil"
	"github.com/bureau-foundation/tpbridge/lib/tpquery"
	"github.com/bureau-foundation/tpbridge/lib/version"
)

// DefaultTake is the page size Get uses when a Query leaves Take unset.
const DefaultTake = 100

// Config holds configuration for creating a Client.
type Config struct {
	// BaseURL is the API root, e.g. "https://example.tpondemand.com/api/v1".
	// Trailing slashes are removed. Required.
	BaseURL string

	// Token is the API access token, sent as the "token" query
	// parameter. Required.
	Token string

	// Pool supplies the shared HTTP client. Required. The Client never
	// closes it.
	Pool *httppool.Pool

	// Gate decides whether a request may be sent. Defaults to a gate
	// with real network probes.
	Gate *gate.Gate

	// Policy is passed to Gate.Check before every request.
	Policy gate.Policy

	// Clock times requests for metrics. Defaults to clock.Real().
	Clock clock.Clock

	// Logger is used for structured logging. Defaults to slog.Default().
	Logger *slog.Logger
}

// Client issues read-only queries against one TargetProcess instance.
type Client struct {
	baseURL string
	token   string
	pool    *httppool.Pool
	gate    *gate.Gate
	policy  gate.Policy
	clock   clock.Clock
	logger  *slog.Logger
}

// NewClient creates a Client from the given configuration.
func NewClient(config Config) (*Client, error) {
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("tpapi: BaseURL is required")
	}
	if config.Token == "" {
		return nil, fmt.Errorf("tpapi: Token is required")
	}
	if config.Pool == nil {
		return nil, fmt.Errorf("tpapi: Pool is required")
	}

	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	connectivity := config.Gate
	if connectivity == nil {
		connectivity = gate.New(gate.Config{Clock: clk, Logger: logger})
	}

	return &Client{
		baseURL: baseURL,
		token:   config.Token,
		pool:    config.Pool,
		gate:    connectivity,
		policy:  config.Policy,
		clock:   clk,
		logger:  logger,
	}, nil
}

// BaseURL returns the API root the client targets.
func (client *Client) BaseURL() string {
	return client.baseURL
}

// Policy returns the connectivity policy checked before each request.
func (client *Client) Policy() gate.Policy {
	return client.policy
}

// Query holds the optional query parameters of a Get. Unset fields are
// omitted from the request; set fields are sent even when zero.
type Query struct {
	Include tpquery.Optional[string]
	Where   tpquery.Optional[string]
	Take    tpquery.Optional[int]
	Skip    tpquery.Optional[int]
	OrderBy tpquery.Optional[string]
}

// Values returns the URL parameters for the query, with Take defaulted
// to DefaultTake. The token is not included.
func (query Query) Values() url.Values {
	take := query.Take
	if !take.IsSet() {
		take = tpquery.Some(DefaultTake)
	}
	return tpquery.Params(map[string]any{
		"include": query.Include,
		"where":   query.Where,
		"take":    take,
		"skip":    query.Skip,
		"orderby": query.OrderBy,
	})
}

// Get fetches one page of endpoint (e.g. "UserStories") and returns the
// normalized records.
//
// The connectivity gate is consulted first; a refusal returns a
// *ConnectivityError without touching the network. A non-2xx response
// returns an *UpstreamError carrying the status and body.
func (client *Client) Get(ctx context.Context, endpoint string, query Query) ([]Record, error) {
	start := client.clock.Now()
	records, outcome, err := client.get(ctx, endpoint, query)
	elapsed := client.clock.Now().Sub(start)
	metrics.RecordRequest(endpoint, outcome, elapsed.Seconds())

	if err != nil {
		client.logger.Debug("targetprocess request failed",
			"endpoint", endpoint,
			"outcome", outcome,
			"duration", elapsed,
			"error", err,
		)
		return nil, err
	}
	client.logger.Debug("targetprocess request",
		"endpoint", endpoint,
		"records", len(records),
		"duration", elapsed,
	)
	return records, nil
}

func (client *Client) get(ctx context.Context, endpoint string, query Query) ([]Record, string, error) {
	if !client.gate.Check(ctx, client.policy) {
		return nil, metrics.OutcomeConnectivityDenied, &ConnectivityError{
			Endpoint: endpoint,
			Hosts:    client.policy.Hosts,
		}
	}

	httpClient, err := client.pool.Client()
	if err != nil {
		return nil, metrics.OutcomeTransportError, fmt.Errorf("tpapi: %s: %w", endpoint, err)
	}

	params := query.Values()
	params.Set("token", client.token)
	requestURL := client.baseURL + "/" + endpoint + "?" + params.Encode()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, metrics.OutcomeTransportError, fmt.Errorf("tpapi: creating request for %s: %w", endpoint, redact(err))
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", version.UserAgent())

	response, err := httpClient.Do(request)
	if err != nil {
		return nil, metrics.OutcomeTransportError, fmt.Errorf("tpapi: GET %s: %w", endpoint, redact(err))
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		metrics.RecordUpstreamStatus(response.StatusCode)
		return nil, metrics.OutcomeUpstreamError, &UpstreamError{
			Endpoint:   endpoint,
			StatusCode: response.StatusCode,
			Body:       netutil.ErrorBody(response.Body),
		}
	}

	body, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, metrics.OutcomeTransportError, fmt.Errorf("tpapi: reading %s response: %w", endpoint, err)
	}

	records, err := Normalize(body)
	if err != nil {
		return nil, metrics.OutcomeDecodeError, fmt.Errorf("tpapi: %s: %w", endpoint, err)
	}
	return records, metrics.OutcomeOK, nil
}

// redact strips the *url.Error wrapper, whose message embeds the full
// request URL and therefore the token.
func redact(err error) error {
	var urlError *url.Error
	if errors.As(err, &urlError) {
		return urlError.Err
	}
	return err
}
