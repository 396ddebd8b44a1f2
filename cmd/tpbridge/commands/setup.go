// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/bureau-foundation/tpbridge/cmd/tpbridge/cli"
	"github.com/bureau-foundation/tpbridge/lib/config"
	"github.com/bureau-foundation/tpbridge/lib/credstore"
	"github.com/bureau-foundation/tpbridge/lib/tpquery"
)

type setupParams struct {
	URL         string                 `json:"url"          flag:"url"          desc:"TargetProcess instance URL (e.g. https://example.tpondemand.com)"`
	TokenFile   string                 `json:"-"            flag:"token-file"   desc:"path to file containing the API token, or - to prompt interactively (default: prompt)"`
	VPNRequired tpquery.Optional[bool] `json:"vpn_required" flag:"vpn-required" desc:"gate requests on VPN reachability"`
	VPNHosts    []string               `json:"vpn_hosts"    flag:"vpn-hosts"    desc:"hosts probed to detect the VPN (comma-separated)"`
}

// setupCommand is interactive and writes credentials, so it has no
// Params and is never exposed as an MCP tool.
func setupCommand(runtime *Runtime) *cli.Command {
	var params setupParams

	return &cli.Command{
		Name:    "setup",
		Summary: "Configure the TargetProcess URL, API token and VPN gate",
		Description: `Interactively configure the bridge.

Prompts for every value not given as a flag. The URL and VPN settings
are written to the configuration file; the API token goes to the
secret store (the macOS keychain, or an age-encrypted file next to the
configuration elsewhere). Leave a prompt empty to keep the current
value.

Create a token in TargetProcess under Settings > Access Tokens.`,
		Usage: "tpbridge setup [flags]",
		Examples: []cli.Example{
			{Description: "Interactive setup", Command: "tpbridge setup"},
			{
				Description: "Non-interactive setup",
				Command:     "tpbridge setup --url https://example.tpondemand.com --token-file ~/.tp-token --vpn-required=false",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("setup", &params)
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if err := noArgs(args); err != nil {
				return err
			}
			session := &prompter{
				reader:     bufio.NewReader(os.Stdin),
				output:     os.Stderr,
				readSecret: readTerminalSecret,
			}
			return runSetup(runtime, params, session, logger)
		},
	}
}

// prompter asks questions on output and reads answers from reader.
type prompter struct {
	reader *bufio.Reader
	output io.Writer

	// readSecret reads a line without echo. Nil, or a non-terminal
	// stdin, falls back to reader.
	readSecret func() (string, bool, error)
}

// ask prompts for a value, returning current when the answer is empty.
func (p *prompter) ask(label, current string) (string, error) {
	if current != "" {
		fmt.Fprintf(p.output, "%s [%s]: ", label, current)
	} else {
		fmt.Fprintf(p.output, "%s: ", label)
	}
	line, err := p.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", cli.Internal("reading answer: %w", err)
	}
	if answer := strings.TrimSpace(line); answer != "" {
		return answer, nil
	}
	return current, nil
}

// confirm asks a yes/no question.
func (p *prompter) confirm(label string, current bool) (bool, error) {
	hint := "y/N"
	if current {
		hint = "Y/n"
	}
	answer, err := p.ask(fmt.Sprintf("%s (%s)", label, hint), "")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "":
		return current, nil
	case "y", "yes", "true":
		return true, nil
	case "n", "no", "false":
		return false, nil
	}
	return false, cli.Validation("expected yes or no, got %q", answer)
}

func (p *prompter) secret(label string) (string, error) {
	fmt.Fprintf(p.output, "%s: ", label)
	if p.readSecret != nil {
		value, ok, err := p.readSecret()
		fmt.Fprintln(p.output)
		if err != nil {
			return "", err
		}
		if ok {
			return strings.TrimSpace(value), nil
		}
	}
	line, err := p.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", cli.Internal("reading secret: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// readTerminalSecret reads from the terminal with echo disabled. It
// reports false when stdin is not a terminal.
func readTerminalSecret() (string, bool, error) {
	descriptor := int(os.Stdin.Fd())
	if !term.IsTerminal(descriptor) {
		return "", false, nil
	}
	value, err := term.ReadPassword(descriptor)
	if err != nil {
		return "", false, cli.Internal("reading token: %w", err)
	}
	return string(value), true, nil
}

func runSetup(runtime *Runtime, params setupParams, session *prompter, logger *slog.Logger) error {
	path := runtime.ConfigPath()
	store := runtime.SecretStore(path)

	file, err := config.LoadFile(path)
	if err != nil {
		logger.Warn("existing configuration unreadable, starting fresh", "path", path, "error", err)
		file = config.File{}
	}

	fmt.Fprintf(session.output, "TargetProcess setup (%s)\n\n", path)
	if legacy := runtime.warnLegacyConfig(logger); legacy != "" {
		fmt.Fprintf(session.output, "Found %s from an earlier release; its values are not read.\n"+
			"Re-enter them below. The file can be deleted afterwards.\n\n", legacy)
	}

	if url := strings.TrimSpace(params.URL); url != "" {
		file.URL = url
	} else {
		file.URL, err = session.ask("TargetProcess URL", file.URL)
		if err != nil {
			return err
		}
	}
	file.URL = strings.TrimRight(file.URL, "/")
	if file.URL == "" {
		return cli.Validation("a TargetProcess URL is required")
	}

	token, err := readToken(params.TokenFile, store, session)
	if err != nil {
		return err
	}

	if required, ok := params.VPNRequired.Get(); ok {
		file.VPNRequired = required
	} else {
		file.VPNRequired, err = session.confirm("Require VPN connectivity before each request?", file.VPNRequired)
		if err != nil {
			return err
		}
	}

	if len(params.VPNHosts) > 0 {
		file.VPNCheckHosts = params.VPNHosts
	} else if file.VPNRequired {
		answer, err := session.ask("VPN check hosts (comma-separated)", strings.Join(file.VPNCheckHosts, ","))
		if err != nil {
			return err
		}
		file.VPNCheckHosts = splitList(answer)
	}

	if err := file.Validate(); err != nil {
		return cli.Validation("%w", err)
	}
	if token != "" {
		if err := store.Set(credstore.TokenAccount, token); err != nil {
			return cli.Internal("storing API token: %w", err)
		}
	}
	if err := config.Save(path, file); err != nil {
		return cli.Internal("saving configuration: %w", err)
	}

	logger.Info("configuration saved",
		"path", path,
		"url", file.URL,
		"token_updated", token != "",
		"vpn_required", file.VPNRequired,
	)
	fmt.Fprintf(session.output, "\nSaved %s\nRun 'tpbridge check' to verify connectivity.\n", path)
	return nil
}

// readToken returns the new token, or "" to keep the stored one.
func readToken(tokenFile string, store credstore.Store, session *prompter) (string, error) {
	if tokenFile != "" && tokenFile != "-" {
		data, err := os.ReadFile(tokenFile)
		if err != nil {
			return "", cli.Validation("reading %s: %w", tokenFile, err)
		}
		token := strings.TrimRight(string(data), "\r\n")
		if token == "" {
			return "", cli.Validation("file %s is empty (after stripping trailing newlines)", tokenFile)
		}
		return token, nil
	}

	_, err := store.Get(credstore.TokenAccount)
	haveToken := err == nil
	label := "API token"
	if haveToken {
		label = "API token (leave empty to keep the stored token)"
	}
	token, err := session.secret(label)
	if err != nil {
		return "", err
	}
	if token == "" && !haveToken {
		return "", cli.Validation("an API token is required")
	}
	return token, nil
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
