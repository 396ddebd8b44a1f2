// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command framework for the tpbridge binary.
//
// The central type is [Command], a named subcommand with optional nested
// [Command.Subcommands], a typed parameter struct, and a Run function.
// The same parameter struct drives three things: pflag flags (via
// [BindFlags]), the MCP input JSON Schema (via [ParamsSchema]), and JSON
// decoding of MCP tool arguments. Optional filter fields use
// [tpquery.Optional] so that an explicit zero stays distinguishable from
// an absent value on both the command line and in tool arguments.
//
// When a user types an unknown subcommand or flag, the framework computes
// Levenshtein edit distance against all known names and suggests the
// closest match (threshold: distance <= 3).
//
// Errors returned by commands should be [ToolError] values so the MCP
// server can report a category and retryability alongside the message.
package cli
