// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/gbx/cmd/gbx/cli"
	"github.com/bureau-foundation/gbx/lib/gbx"
)

func verifyCommand(env *environment) *cli.Command {
	var discoverAll bool

	return &cli.Command{
		Name:    "verify",
		Summary: "Check that containers are re-emitted byte for byte",
		Description: `Read each file and write it back under the policy it was read under,
then compare the result with the original bytes. With --discover,
every header chunk is re-serialized from its decoded fields first,
which also checks the chunk routines.

Prints one line per file. Exits 1 if any file fails.`,
		Usage: "gbx verify <file>... [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := env.flagSet("verify")
			flagSet.BoolVar(&discoverAll, "discover", false, "re-serialize header chunks from their fields")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("verify needs at least one file")
			}
			cfg, logger, err := env.load()
			if err != nil {
				return err
			}
			options, err := readOptions(cfg, logger)
			if err != nil {
				return err
			}

			failures := 0
			for _, path := range args {
				if err := verifyFile(path, discoverAll, options); err != nil {
					failures++
					fmt.Fprintf(env.stdout, "FAIL  %s: %v\n", path, err)
					continue
				}
				fmt.Fprintf(env.stdout, "ok    %s\n", path)
			}
			if failures > 0 {
				return &cli.ExitError{Code: 1}
			}
			return nil
		},
		Examples: []cli.Example{
			{
				Description: "Check every map in a folder",
				Command:     "gbx verify Tracks/*.Map.Gbx",
			},
		},
	}
}

func verifyFile(path string, discoverAll bool, options []gbx.Option) error {
	original, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	container, err := gbx.Read(bytes.NewReader(original), options...)
	if err != nil {
		return err
	}
	if discoverAll {
		if err := container.Header.DiscoverAll(); err != nil {
			return err
		}
	}
	written, err := container.Bytes(container.Header.Remap)
	if err != nil {
		return err
	}
	if offset := firstDifference(original, written); offset >= 0 {
		return fmt.Errorf("output differs at byte %d (%d bytes read, %d written)", offset, len(original), len(written))
	}
	return nil
}

// firstDifference returns the offset of the first differing byte, or
// -1 when a and b are equal.
func firstDifference(a, b []byte) int {
	for i := range min(len(a), len(b)) {
		if a[i] != b[i] {
			return i
		}
	}
	if len(a) != len(b) {
		return min(len(a), len(b))
	}
	return -1
}
