// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/gbx/cmd/gbx/cli"
	"github.com/bureau-foundation/gbx/lib/classid"
	"github.com/bureau-foundation/gbx/lib/gbx"
)

func rewriteCommand(env *environment) *cli.Command {
	var (
		remap       string
		codecName   string
		encodeName  string
		discoverAll bool
	)

	return &cli.Command{
		Name:    "rewrite",
		Summary: "Write a container under another identifier policy",
		Description: `Read a container and write it back, with its header ids written under
the --remap policy (default: the policy the input was read under).
Header chunks keep their payloads byte for byte unless --discover
re-serializes them from their decoded fields.

The body is copied as stored, so its chunk ids keep the input's policy.
To remap them too, pass --codec to decode the body (the codec of a
compressed input) and optionally --encode to store the rewritten body
with another codec ("none" stores it uncompressed).`,
		Usage: "gbx rewrite <input> <output> [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := env.flagSet("rewrite")
			flagSet.StringVar(&remap, "remap", "", "output identifier policy: latest or tm2006")
			flagSet.StringVar(&codecName, "codec", "", "decode the body with this codec and rewrite it")
			flagSet.StringVar(&encodeName, "encode", "", "codec for the rewritten body (default: --codec)")
			flagSet.BoolVar(&discoverAll, "discover", false, "re-serialize every header chunk from its fields")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("rewrite takes an input and an output file, got %d arguments", len(args))
			}
			inputPath, outputPath := args[0], args[1]

			cfg, logger, err := env.load()
			if err != nil {
				return err
			}
			logger = logger.With("command", "rewrite", "input", inputPath)
			options, err := readOptions(cfg, logger)
			if err != nil {
				return err
			}

			container, err := gbx.ReadFile(inputPath, options...)
			if err != nil {
				return err
			}

			policy := container.Header.Remap
			if remap != "" {
				if policy, err = classid.ParsePolicy(remap); err != nil {
					return err
				}
			}

			if discoverAll {
				if err := container.Header.DiscoverAll(); err != nil {
					logger.Warn("some header chunks keep their raw payload", "error", err)
				}
			}

			if codecName == "" {
				codecName = cfg.Body.Codec
			}
			if codecName != "" {
				decoder, err := bodyCodec(codecName)
				if err != nil {
					return err
				}
				if encodeName == "" {
					encodeName = codecName
				}
				encoder, err := storeCodec(encodeName)
				if err != nil {
					return err
				}
				if err := container.DecodeBody(decoder); err != nil {
					return fmt.Errorf("%s: %w", inputPath, err)
				}
				if err := container.EncodeBody(policy, encoder); err != nil {
					return fmt.Errorf("%s: %w", inputPath, err)
				}
			} else if policy != container.Header.Remap {
				logger.Warn("body copied as stored; its chunk ids are not remapped",
					"from", container.Header.Remap, "to", policy)
			}

			data, err := container.Bytes(policy)
			if err != nil {
				return fmt.Errorf("%s: %w", inputPath, err)
			}
			if err := writeFileAtomic(outputPath, data); err != nil {
				return err
			}
			logger.Info("rewrote container", "output", outputPath, "policy", policy, "bytes", len(data))
			return nil
		},
		Examples: []cli.Example{
			{
				Description: "Convert a 2006 map header to current identifiers",
				Command:     "gbx rewrite old.Challenge.Gbx new.Map.Gbx --remap latest",
			},
			{
				Description: "Rewrite a zlib test file and store the body with zstd",
				Command:     "gbx rewrite in.Gbx out.Gbx --codec zlib --encode zstd",
			},
		},
	}
}

// writeFileAtomic writes data to a temporary file next to path and
// renames it into place.
func writeFileAtomic(path string, data []byte) error {
	temporary, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer os.Remove(temporary.Name())

	if _, err := temporary.Write(data); err != nil {
		temporary.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := temporary.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(temporary.Name(), path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
