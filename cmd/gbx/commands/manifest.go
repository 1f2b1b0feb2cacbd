// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/gbx/cmd/gbx/cli"
	"github.com/bureau-foundation/gbx/lib/codec"
	"github.com/bureau-foundation/gbx/lib/gbx"
	"github.com/bureau-foundation/gbx/lib/manifest"
)

func manifestCommand(env *environment) *cli.Command {
	var (
		format    string
		force     bool
		body      bool
		codecName string
	)

	return &cli.Command{
		Name:    "manifest",
		Summary: "Describe a container with chunk fingerprints",
		Description: `Print a manifest of the container: its prefix fields and, per chunk,
the id, routine, size, heavy flag, discovery state and a BLAKE3
fingerprint of the payload. The digest combines every fingerprint, so
two files with the same digest carry the same chunks.

Formats: json (indented), cbor (deterministic binary, refused on a
terminal unless --force), diag (CBOR diagnostic notation). The default
comes from output.format in the configuration.`,
		Usage: "gbx manifest <file> [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := env.flagSet("manifest")
			flagSet.StringVarP(&format, "format", "f", "", "json, cbor or diag")
			flagSet.BoolVar(&force, "force", false, "write CBOR to a terminal")
			flagSet.BoolVar(&body, "body", false, "decode the body and include its chunks")
			flagSet.StringVar(&codecName, "codec", "", "codec for a compressed body")
			return flagSet
		},
		Run: func(args []string) error {
			path, err := oneFile(args, "manifest")
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
			if format == "" {
				format = cfg.Output.Format
			}
			if format == "cbor" && !force && cli.IsTerminal(env.stdout) {
				return fmt.Errorf("refusing to write binary CBOR to a terminal; redirect the output, use --format diag, or pass --force")
			}

			container, err := gbx.ReadFile(path, options...)
			if err != nil {
				return err
			}
			if body {
				if codecName == "" {
					codecName = cfg.Body.Codec
				}
				decoder, err := bodyCodec(codecName)
				if err != nil {
					return err
				}
				if err := container.DecodeBody(decoder); err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
			}

			m, err := manifest.Build(container)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			switch format {
			case "json":
				return manifest.EncodeJSON(env.stdout, m)
			case "cbor":
				return manifest.EncodeCBOR(env.stdout, m)
			case "diag":
				var buffer bytes.Buffer
				if err := manifest.EncodeCBOR(&buffer, m); err != nil {
					return err
				}
				notation, err := codec.Diagnose(buffer.Bytes())
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(env.stdout, notation)
				return err
			default:
				return fmt.Errorf("unknown format %q (want json, cbor or diag)", format)
			}
		},
		Examples: []cli.Example{
			{
				Description: "Describe a map as JSON",
				Command:     "gbx manifest A01.Map.Gbx",
			},
			{
				Description: "Archive a replay's description as CBOR",
				Command:     "gbx manifest best.Replay.Gbx --format cbor > best.manifest.cbor",
			},
		},
	}
}
