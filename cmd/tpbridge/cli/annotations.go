// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

// ToolAnnotations describes behavioral properties of a command when
// exposed as an MCP tool. A nil field means "unspecified" and the MCP
// defaults apply (not read-only, destructive, not idempotent,
// open-world).
type ToolAnnotations struct {
	// ReadOnly is true when the command only reads state.
	ReadOnly *bool

	// Destructive is true when the command may irreversibly remove
	// or damage data.
	Destructive *bool

	// Idempotent is true when repeated calls with identical arguments
	// produce the same result.
	Idempotent *bool

	// OpenWorld is true when the command talks to systems outside the
	// process: TargetProcess itself, or the hosts probed by the
	// connectivity gate.
	OpenWorld *bool
}

// ReadOnly returns annotations for commands that query TargetProcess
// (or probe the network) without modifying anything.
func ReadOnly() *ToolAnnotations {
	return &ToolAnnotations{
		ReadOnly:    boolPtr(true),
		Destructive: boolPtr(false),
		Idempotent:  boolPtr(true),
		OpenWorld:   boolPtr(true),
	}
}

func boolPtr(value bool) *bool {
	return &value
}
