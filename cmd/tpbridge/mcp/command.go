// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mcp

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/tpbridge/cmd/tpbridge/cli"
	"github.com/bureau-foundation/tpbridge/lib/metrics"
)

// BackgroundTask runs alongside the server until ctx is cancelled,
// e.g. the config file watcher.
type BackgroundTask func(ctx context.Context, logger *slog.Logger) error

type serveParams struct {
	MetricsListen string `json:"-" flag:"metrics-listen" desc:"serve Prometheus metrics on this address (e.g. 127.0.0.1:9464); empty disables"`
}

// Command returns the "mcp" command group. root is the full command
// tree, walked for tool discovery when "serve" starts.
func Command(root *cli.Command, tasks ...BackgroundTask) *cli.Command {
	return &cli.Command{
		Name:    "mcp",
		Summary: "Model Context Protocol server for agent tool access",
		Description: `MCP server that exposes the TargetProcess query commands as tools
over newline-delimited JSON-RPC 2.0 on stdin/stdout.`,
		Subcommands: []*cli.Command{
			serveCommand(root, tasks),
		},
	}
}

func serveCommand(root *cli.Command, tasks []BackgroundTask) *cli.Command {
	var params serveParams
	return &cli.Command{
		Name:    "serve",
		Summary: "Start MCP server on stdin/stdout",
		Description: `Start a Model Context Protocol server that reads JSON-RPC 2.0
requests from stdin and writes responses to stdout.

Tools: get_projects, search, get_user_stories, get_bugs, get_features,
get_sprints, get_tasks, get_users, check_connectivity. Arguments use
the same names as the command-line flags, in snake_case.

The config file is watched while the server runs; edits take effect
on the next tool call. Logs go to stderr.

This command is intended to be launched by MCP-capable clients as a
subprocess.`,
		Usage: "tpbridge mcp serve [--metrics-listen ADDR]",
		Examples: []cli.Example{
			{
				Description: "Start MCP server (typically launched by an agent framework)",
				Command:     "tpbridge mcp serve",
			},
			{
				Description: "Also expose Prometheus metrics",
				Command:     "tpbridge mcp serve --metrics-listen 127.0.0.1:9464",
			},
		},
		Flags: func() *pflag.FlagSet { return cli.FlagsFromParams("serve", &params) },
		Run: func(ctx context.Context, _ []string, logger *slog.Logger) error {
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			for _, task := range tasks {
				go func() {
					if err := task(ctx, logger); err != nil && !errors.Is(err, context.Canceled) {
						logger.Warn("mcp: background task stopped", "error", err)
					}
				}()
			}

			if params.MetricsListen != "" {
				stop, err := serveMetrics(ctx, params.MetricsListen, logger)
				if err != nil {
					return err
				}
				defer stop()
			}

			server := NewServer(root, logger)
			logger.Info("mcp server starting", "tools", len(server.tools))
			return server.Serve(ctx)
		},
	}
}

// serveMetrics starts the /metrics listener and returns a function that
// shuts it down.
func serveMetrics(ctx context.Context, address string, logger *slog.Logger) (func(), error) {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, cli.Validation("metrics listener on %s: %w", address, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	logger.Info("metrics listening", "address", listener.Addr().String())

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}, nil
}
