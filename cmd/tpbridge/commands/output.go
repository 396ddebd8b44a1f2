// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/bureau-foundation/tpbridge/cmd/tpbridge/cli"
	"github.com/bureau-foundation/tpbridge/lib/entity"
	"github.com/bureau-foundation/tpbridge/lib/tpapi"
)

// emitRecords writes records as JSON when --json is set (always, under
// MCP) and as a summary table otherwise.
func emitRecords(output *cli.JSONOutput, endpoint string, records []tpapi.Record, logger *slog.Logger) error {
	if done, err := output.EmitJSON(records); done {
		return err
	}

	if len(records) == 0 {
		logger.Info("no records found", "endpoint", endpoint)
		return nil
	}

	kind := entity.KindForEndpoint(endpoint)
	writer := tabwriter.NewWriter(os.Stdout, 2, 0, 3, ' ', 0)
	fmt.Fprintf(writer, "%s\n", strings.Join(entity.SummaryHeader, "\t"))
	for _, record := range records {
		summary, err := entity.Summarize(kind, record)
		if err != nil {
			logger.Warn("skipping malformed record", "endpoint", endpoint, "error", err)
			continue
		}
		fmt.Fprintf(writer, "%s\n", strings.Join(summary.Columns(), "\t"))
	}
	return writer.Flush()
}

// recordsOutput is the Output type of every listing command.
func recordsOutput() any {
	return &[]tpapi.Record{}
}
