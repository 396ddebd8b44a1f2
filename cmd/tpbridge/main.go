// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Command tpbridge queries TargetProcess from the command line and
// serves the same queries as MCP tools ("tpbridge mcp serve").
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bureau-foundation/tpbridge/cmd/tpbridge/cli"
	"github.com/bureau-foundation/tpbridge/cmd/tpbridge/commands"
)

func main() {
	if err := run(); err != nil {
		// Commands that print their own report (like check) return an
		// error carrying the exit code. Don't print a redundant
		// "error:" line for those.
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	args, verbose := cli.SplitVerbose(os.Args[1:])
	logger := cli.NewCommandLogger(verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runtime := commands.NewRuntime(commands.Options{})
	defer runtime.Close()

	return commands.Root(runtime).Execute(ctx, args, logger)
}
