// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/tpbridge/cmd/tpbridge/cli"
	"github.com/bureau-foundation/tpbridge/lib/config"
)

// settingsView is the redacted form of config.Settings printed by
// "config show". The token itself never leaves the process.
type settingsView struct {
	Path          string   `json:"path"`
	URL           string   `json:"url"`
	URLSource     string   `json:"url_source,omitempty"`
	Token         string   `json:"token"`
	TokenSource   string   `json:"token_source,omitempty"`
	VPNRequired   bool     `json:"vpn_required"`
	VPNCheckHosts []string `json:"vpn_check_hosts"`
	Configured    bool     `json:"configured"`
	LegacyFile    string   `json:"legacy_file,omitempty"`
}

func configCommand(runtime *Runtime) *cli.Command {
	return &cli.Command{
		Name:    "config",
		Summary: "Inspect the resolved configuration",
		Subcommands: []*cli.Command{
			configShowCommand(runtime),
			{
				Name:    "path",
				Summary: "Print the configuration file path",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					if err := noArgs(args); err != nil {
						return err
					}
					fmt.Println(runtime.ConfigPath())
					return nil
				},
			},
		},
	}
}

func configShowCommand(runtime *Runtime) *cli.Command {
	var output cli.JSONOutput

	return &cli.Command{
		Name:    "show",
		Summary: "Show the resolved configuration with the token redacted",
		Description: `Show the configuration as the query commands see it, with the
source of each value. Environment variables (TARGETPROCESS_URL,
TARGETPROCESS_TOKEN, TARGETPROCESS_VPN_REQUIRED,
TARGETPROCESS_VPN_CHECK_HOSTS) take precedence over the file and the
secret store.`,
		Usage: "tpbridge config show [--json]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("show", &output)
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if err := noArgs(args); err != nil {
				return err
			}
			provider, err := runtime.Provider(logger)
			if err != nil {
				return err
			}
			settings := provider.Settings()
			view := settingsView{
				Path:          provider.Path(),
				URL:           settings.URL,
				URLSource:     settings.URLSource,
				Token:         settings.RedactedToken(),
				TokenSource:   settings.TokenSource,
				VPNRequired:   settings.VPNRequired,
				VPNCheckHosts: settings.VPNCheckHosts,
				Configured:    settings.Configured(),
				LegacyFile:    config.LegacyFile(provider.Path()),
			}
			if done, err := output.EmitJSON(view); done {
				return err
			}

			fmt.Printf("path:            %s\n", view.Path)
			fmt.Printf("url:             %s\n", describe(view.URL, view.URLSource))
			fmt.Printf("token:           %s\n", describe(view.Token, view.TokenSource))
			fmt.Printf("vpn_required:    %t\n", view.VPNRequired)
			fmt.Printf("vpn_check_hosts: %s\n", strings.Join(view.VPNCheckHosts, ", "))
			if view.LegacyFile != "" {
				fmt.Printf("\nignored legacy file %s; run: tpbridge setup\n", view.LegacyFile)
			}
			if !view.Configured {
				fmt.Printf("\nnot configured (missing %s); run: tpbridge setup\n",
					strings.Join(settings.Missing(), ", "))
			}
			return nil
		},
	}
}

func describe(value, source string) string {
	if value == "" {
		return "(unset)"
	}
	return fmt.Sprintf("%s (from %s)", value, source)
}
