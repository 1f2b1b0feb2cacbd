// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/gbx/cmd/gbx/cli"
	"github.com/bureau-foundation/gbx/lib/classid"
	"github.com/bureau-foundation/gbx/lib/scan"
)

// scanRow is one scan result as printed.
type scanRow struct {
	Path          string     `json:"path"`
	Version       uint16     `json:"version,omitempty"`
	Class         classid.ID `json:"class,omitempty"`
	ClassName     string     `json:"class_name,omitempty"`
	Remap         string     `json:"remap,omitempty"`
	HeaderChunks  int        `json:"header_chunks"`
	Opaque        int        `json:"opaque"`
	ExternalNodes int        `json:"external_nodes"`
	Error         string     `json:"error,omitempty"`
}

func scanCommand(env *environment) *cli.Command {
	var (
		workers    int
		outputJSON bool
	)

	return &cli.Command{
		Name:    "scan",
		Summary: "Parse every container under a directory",
		Description: `Walk a directory (default: scan.root from the configuration) and parse
every file whose name ends in one of scan.extensions, on a pool of
scan.workers parsers that share one registry. Prints a table with one
row per file: format version, class, detected policy, header chunk
count and how many of those chunks are opaque.

Exits 1 if any file failed to parse.`,
		Usage: "gbx scan [directory] [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := env.flagSet("scan")
			flagSet.IntVarP(&workers, "workers", "j", 0, "parallel parsers (default: scan.workers)")
			flagSet.BoolVar(&outputJSON, "json", false, "output as JSON")
			return flagSet
		},
		Run: func(args []string) error {
			cfg, logger, err := env.load()
			if err != nil {
				return err
			}

			root := cfg.Scan.Root
			switch len(args) {
			case 0:
				if root == "" {
					return fmt.Errorf("scan needs a directory (or scan.root in the configuration)")
				}
			case 1:
				root = args[0]
			default:
				return fmt.Errorf("scan takes at most one directory, got %d arguments", len(args))
			}
			if workers == 0 {
				workers = cfg.Scan.Workers
			}

			options := scan.Options{
				Workers: workers,
				Match:   cfg.Matches,
				Logger:  logger,
			}
			if policy, fixed, err := cfg.Policy(); err != nil {
				return err
			} else if fixed {
				options.Remap = &policy
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			results, err := scan.Run(ctx, root, options)
			if err != nil {
				return err
			}

			rows := make([]scanRow, len(results))
			for i, result := range results {
				rows[i] = scanRow{Path: result.Path}
				if result.Err != nil {
					rows[i].Error = result.Err.Error()
					continue
				}
				rows[i].Version = result.Version
				rows[i].Class = result.Class
				rows[i].ClassName = classid.NameOrUnknown(result.Class)
				rows[i].Remap = result.Remap.String()
				rows[i].HeaderChunks = result.HeaderChunks
				rows[i].Opaque = result.Opaque
				rows[i].ExternalNodes = result.ExternalNodes
			}

			if outputJSON {
				encoder := json.NewEncoder(env.stdout)
				encoder.SetIndent("", "  ")
				if err := encoder.Encode(rows); err != nil {
					return err
				}
			} else {
				writeScanTable(env, rows)
			}

			if failed := scan.Failed(results); len(failed) > 0 {
				logger.Warn("some files failed to parse", "failed", len(failed), "scanned", len(results))
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
		Examples: []cli.Example{
			{
				Description: "Parse every container under a folder on 8 workers",
				Command:     "gbx scan ~/Tracks -j 8",
			},
		},
	}
}

func writeScanTable(env *environment, rows []scanRow) {
	table := tablewriter.NewWriter(env.stdout)
	table.SetHeader([]string{"Path", "Version", "Class", "Remap", "Chunks", "Opaque", "Error"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	for _, row := range rows {
		if row.Error != "" {
			table.Append([]string{row.Path, "", "", "", "", "", row.Error})
			continue
		}
		table.Append([]string{
			row.Path,
			strconv.Itoa(int(row.Version)),
			row.ClassName,
			row.Remap,
			strconv.Itoa(row.HeaderChunks),
			strconv.Itoa(row.Opaque),
			"",
		})
	}
	table.SetFooter([]string{"", "", "", "", "", "", fmt.Sprintf("%d files", len(rows))})
	table.Render()
}
