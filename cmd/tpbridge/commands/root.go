// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the tpbridge command tree. The same tree
// serves the command line and, through "mcp serve", the MCP tools: a
// command with Params and Run is a tool named by its ToolName.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/tpbridge/cmd/tpbridge/cli"
	mcpcmd "github.com/bureau-foundation/tpbridge/cmd/tpbridge/mcp"
	"github.com/bureau-foundation/tpbridge/lib/version"
)

// Root builds the complete command tree over runtime. The MCP command
// is added last because tool discovery walks root.Subcommands.
func Root(runtime *Runtime) *cli.Command {
	root := &cli.Command{
		Name: "tpbridge",
		Description: `tpbridge: read-only TargetProcess access for people and agents.

Query projects, user stories, bugs, features, sprints, tasks and users
from the command line, or serve the same queries as MCP tools with
"tpbridge mcp serve". Requests can be gated on VPN reachability.`,
		Subcommands: []*cli.Command{
			projectsCommand(runtime),
			searchCommand(runtime),
			storiesCommand(runtime),
			bugsCommand(runtime),
			featuresCommand(runtime),
			sprintsCommand(runtime),
			tasksCommand(runtime),
			usersCommand(runtime),
			checkCommand(runtime),
			setupCommand(runtime),
			configCommand(runtime),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					fmt.Printf("tpbridge %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Store the URL and API token",
				Command:     "tpbridge setup",
			},
			{
				Description: "Verify configuration and VPN reachability",
				Command:     "tpbridge check --probe",
			},
			{
				Description: "Open bugs in a project as JSON",
				Command:     "tpbridge bugs --project-id 12 --state Open --json",
			},
			{
				Description: "Serve the queries as MCP tools",
				Command:     "tpbridge mcp serve",
			},
		},
	}

	root.Subcommands = append(root.Subcommands, mcpcmd.Command(root, runtime.WatchConfig))
	return root
}
