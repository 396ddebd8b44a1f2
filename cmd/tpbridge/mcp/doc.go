// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package mcp implements a Model Context Protocol server that exposes
// tpbridge commands as MCP tools over newline-delimited JSON-RPC 2.0 on
// stdin/stdout.
//
// The server discovers tools by walking the CLI command tree and
// collecting commands that have a [cli.Command.Params] function. Each
// becomes a tool named by [cli.Command.ToolName] (or the
// underscore-joined command path), with an inputSchema generated from
// the parameter struct's tags via [cli.ParamsSchema]. Commands that
// declare [cli.Command.Output] also get an outputSchema, and their
// results include structuredContent alongside the text content block.
//
// Failed calls carry an errorInfo object with the [cli.ToolError]
// category, retryability and remediation hint.
//
// This package implements the 2025-11-25 MCP protocol version.
package mcp
