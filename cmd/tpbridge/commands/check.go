// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/bureau-foundation/tpbridge/cmd/tpbridge/cli"
	"github.com/bureau-foundation/tpbridge/lib/gate"
)

type checkParams struct {
	cli.JSONOutput
	Probe bool `json:"probe" flag:"probe" desc:"probe every check host individually and report per-host results"`
}

// connectivityReport is the output of the check command.
type connectivityReport struct {
	Configured       bool              `json:"configured"                  desc:"true if URL and token are both set"`
	Missing          []string          `json:"missing,omitempty"           desc:"settings that still need a value"`
	VPNRequired      bool              `json:"vpn_required"                desc:"true if requests are gated on VPN reachability"`
	Hosts            []string          `json:"hosts"                       desc:"VPN check hosts, probed in order"`
	Reachable        bool              `json:"reachable"                   desc:"true if requests may proceed"`
	CheckedAt        *time.Time        `json:"checked_at,omitempty"        desc:"when the cached probe result was taken"`
	ExpiresInSeconds int64             `json:"expires_in_seconds"          desc:"seconds until the cached result is re-probed"`
	HostStatus       []gate.HostStatus `json:"host_status,omitempty"       desc:"per-host probe results (with --probe)"`
}

func checkCommand(runtime *Runtime) *cli.Command {
	var params checkParams

	return &cli.Command{
		Name:    "check",
		Summary: "Check configuration and VPN connectivity",
		Description: `Report whether TargetProcess is configured and whether the
connectivity gate would let a request through right now.

The gate result is cached for 30 seconds and shared with every query
command. With --probe, each check host is also probed individually
(TCP 443, then DNS) without touching the cache.

Exits with status 1 when requests would be refused.`,
		Usage: "tpbridge check [flags]",
		Examples: []cli.Example{
			{Description: "Quick check", Command: "tpbridge check"},
			{Description: "Per-host diagnosis", Command: "tpbridge check --probe"},
		},
		ToolName:    "check_connectivity",
		Params:      func() any { return &params },
		Output:      func() any { return &connectivityReport{} },
		Annotations: cli.ReadOnly(),
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := noArgs(args); err != nil {
				return err
			}
			settings, err := runtime.Settings(logger)
			if err != nil {
				return err
			}

			policy := gate.Policy{Required: settings.VPNRequired, Hosts: settings.VPNCheckHosts}
			report := connectivityReport{
				Configured:  settings.Configured(),
				Missing:     settings.Missing(),
				VPNRequired: settings.VPNRequired,
				Hosts:       settings.VPNCheckHosts,
				Reachable:   runtime.Gate().Check(ctx, policy),
			}
			if report.Hosts == nil {
				report.Hosts = []string{}
			}
			if entry := runtime.Gate().Cached(); entry != nil && settings.VPNRequired {
				checkedAt := entry.CheckedAt
				report.CheckedAt = &checkedAt
				report.ExpiresInSeconds = int64(runtime.Gate().Remaining(runtime.Now()) / time.Second)
			}
			if params.Probe {
				report.HostStatus = runtime.Gate().Diagnose(ctx, settings.VPNCheckHosts)
			}

			if done, err := params.EmitJSON(report); done {
				return err
			}
			if err := printReport(report); err != nil {
				return err
			}
			if !report.Reachable || !report.Configured {
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
	}
}

func printReport(report connectivityReport) error {
	if report.Configured {
		fmt.Println("configuration: ok")
	} else {
		fmt.Printf("configuration: missing %v\n  run: tpbridge setup\n", report.Missing)
	}

	switch {
	case !report.VPNRequired:
		fmt.Println("vpn gate:      disabled")
	case len(report.Hosts) == 0:
		fmt.Println("vpn gate:      enabled, no check hosts (always open)")
	case report.Reachable:
		fmt.Printf("vpn gate:      open (cached %ds)\n", report.ExpiresInSeconds)
	default:
		fmt.Printf("vpn gate:      closed (cached %ds); connect to the VPN and retry\n", report.ExpiresInSeconds)
	}

	if len(report.HostStatus) == 0 {
		return nil
	}
	fmt.Println()
	writer := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
	fmt.Fprintf(writer, "HOST\tTCP\tDNS\tLATENCY\tERROR\n")
	for _, status := range report.HostStatus {
		fmt.Fprintf(writer, "%s\t%t\t%t\t%dms\t%s\n",
			status.Host, status.TCP, status.DNS, status.LatencyMs, status.Error)
	}
	return writer.Flush()
}
