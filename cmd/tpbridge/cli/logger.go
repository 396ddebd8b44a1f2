// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewCommandLogger creates a structured logger on stderr. When stderr is
// a terminal it uses slog.TextHandler; when piped (MCP clients, scripts)
// it uses slog.JSONHandler. Stdout is never used: it carries command
// output and MCP frames.
func NewCommandLogger(verbose bool) *slog.Logger {
	return newLogger(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())), verbose)
}

func newLogger(w io.Writer, terminal, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	options := &slog.HandlerOptions{Level: level}
	if terminal {
		return slog.New(slog.NewTextHandler(w, options))
	}
	return slog.New(slog.NewJSONHandler(w, options))
}

// SplitVerbose removes a leading --verbose or -v from args and reports
// whether it was present.
func SplitVerbose(args []string) ([]string, bool) {
	if len(args) > 0 && (args[0] == "--verbose" || args[0] == "-v") {
		return args[1:], true
	}
	return args, false
}
