// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/gbx/cmd/gbx/cli"
	"github.com/bureau-foundation/gbx/lib/classid"
	"github.com/bureau-foundation/gbx/lib/gbx"
	"github.com/bureau-foundation/gbx/lib/manifest"
)

func inspectCommand(env *environment) *cli.Command {
	var (
		discover  bool
		body      bool
		codecName string
	)

	return &cli.Command{
		Name:    "inspect",
		Summary: "List a container's prefix and chunks",
		Description: `Print the container prefix and a table of its header chunks.

Header chunks are decoded as they are read. With --discover, chunks that
failed to decode are retried so the table shows their final state. With
--body, the body's chunk stream is decoded too and listed after the
header chunks; a compressed body needs --codec (or body.codec in the
configuration).`,
		Usage: "gbx inspect <file> [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := env.flagSet("inspect")
			flagSet.BoolVar(&discover, "discover", false, "discover every header chunk")
			flagSet.BoolVar(&body, "body", false, "decode and list body chunks")
			flagSet.StringVar(&codecName, "codec", "", "codec for a compressed body")
			return flagSet
		},
		Run: func(args []string) error {
			path, err := oneFile(args, "inspect")
			if err != nil {
				return err
			}
			cfg, logger, err := env.load()
			if err != nil {
				return err
			}
			options, err := readOptions(cfg, logger)
			if err != nil {
				return err
			}

			container, err := gbx.ReadFile(path, options...)
			if err != nil {
				return err
			}
			if discover {
				if err := container.Header.DiscoverAll(); err != nil {
					logger.Warn("header chunks did not all decode", "path", path, "error", err)
				}
			}
			if body {
				if codecName == "" {
					codecName = cfg.Body.Codec
				}
				codec, err := bodyCodec(codecName)
				if err != nil {
					return err
				}
				if err := container.DecodeBody(codec); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
			}

			return printInspection(env.stdout, container)
		},
		Examples: []cli.Example{
			{
				Description: "List a map's header chunks",
				Command:     "gbx inspect A01.Map.Gbx",
			},
			{
				Description: "Include the body of a zlib-compressed test file",
				Command:     "gbx inspect sample.Gbx --body --codec zlib",
			},
		},
	}
}

func printInspection(w io.Writer, container *gbx.Container) error {
	m, err := manifest.Build(container)
	if err != nil {
		return err
	}

	header := container.Header
	fmt.Fprintf(w, "Class:     %s (%s)\n", m.Class, m.ClassName)
	fmt.Fprintf(w, "Version:   %d, format %s, compression %s/%s\n",
		m.Version, m.Format, m.RefTableCompression, m.BodyCompression)
	fmt.Fprintf(w, "Remap:     %s", m.Remap)
	if header.Remap != classid.Latest {
		fmt.Fprintf(w, " (file class %s)", classid.Remap(header.Class, header.Remap))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Nodes:     %d, %d external\n", m.NumNodes, m.ExternalNodes)
	fmt.Fprintf(w, "Body:      %d bytes", m.BodySize)
	if container.Body.Compressed {
		fmt.Fprintf(w, " (%d uncompressed)", container.Body.UncompressedSize)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Digest:    %s\n\n", m.Digest)

	writeChunkTable(w, m.Chunks)
	if len(m.BodyChunks) > 0 {
		fmt.Fprintln(w)
		writeChunkTable(w, m.BodyChunks)
	}
	return nil
}

func writeChunkTable(w io.Writer, chunks []manifest.Chunk) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Class", "Routine", "Kind", "Size", "Heavy", "State"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	for _, described := range chunks {
		routine := described.Name
		if described.Opaque {
			routine = "(opaque)"
		}
		heavy := ""
		if described.Heavy {
			heavy = "yes"
		}
		table.Append([]string{
			described.ID.String(),
			classid.NameOrUnknown(described.ID),
			routine,
			described.Kind,
			strconv.Itoa(described.Size),
			heavy,
			described.State,
		})
	}
	table.Render()
}

