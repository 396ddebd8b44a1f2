// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"

	"github.com/bureau-foundation/tpbridge/cmd/tpbridge/cli"
	"github.com/bureau-foundation/tpbridge/lib/netutil"
	"github.com/bureau-foundation/tpbridge/lib/tpapi"
)

// classify wraps err in a cli.ToolError whose category tells the MCP
// client whether to fix its input, fix the setup, or retry. Errors that
// already carry a category pass through unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var toolErr *cli.ToolError
	if errors.As(err, &toolErr) {
		return err
	}

	var configuration *tpapi.ConfigurationError
	if errors.As(err, &configuration) {
		return &cli.ToolError{Category: cli.CategoryValidation, Err: err}
	}

	var connectivity *tpapi.ConnectivityError
	if errors.As(err, &connectivity) {
		return (&cli.ToolError{Category: cli.CategoryTransient, Err: err}).
			WithHint("Connect to the VPN, then retry. 'tpbridge check' shows which hosts are reachable.")
	}

	var upstream *tpapi.UpstreamError
	if errors.As(err, &upstream) {
		switch {
		case tpapi.IsUnauthorized(err):
			return (&cli.ToolError{Category: cli.CategoryForbidden, Err: err}).
				WithHint("The API token was rejected. Run 'tpbridge setup' to store a new one.")
		case tpapi.IsNotFound(err):
			return &cli.ToolError{Category: cli.CategoryNotFound, Err: err}
		case tpapi.IsRetryable(err):
			return &cli.ToolError{Category: cli.CategoryTransient, Err: err}
		case upstream.StatusCode == 400:
			return &cli.ToolError{Category: cli.CategoryValidation, Err: err}
		default:
			return &cli.ToolError{Category: cli.CategoryInternal, Err: err}
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || netutil.IsTransient(err) {
		return &cli.ToolError{Category: cli.CategoryTransient, Err: err}
	}
	return &cli.ToolError{Category: cli.CategoryInternal, Err: err}
}
