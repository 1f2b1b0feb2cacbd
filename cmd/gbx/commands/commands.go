// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/gbx/cmd/gbx/cli"
	"github.com/bureau-foundation/gbx/lib/compress"
	"github.com/bureau-foundation/gbx/lib/config"
	"github.com/bureau-foundation/gbx/lib/gbx"
	"github.com/bureau-foundation/gbx/lib/version"
)

// environment is the state shared by every command: output writers
// and the global flags.
type environment struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	verbose    bool
}

// Root builds and returns the complete gbx command tree writing to
// stdout and stderr.
func Root(stdout, stderr io.Writer) *cli.Command {
	env := &environment{stdout: stdout, stderr: stderr}
	return &cli.Command{
		Name:       "gbx",
		HelpOutput: stderr,
		Description: `gbx: read, inspect and rewrite GameBox containers.

Header chunks are decoded through the built-in catalogue; chunks it does
not know are carried through byte for byte. Files written under the
2006 identifier space are detected and read transparently.`,
		Subcommands: []*cli.Command{
			inspectCommand(env),
			manifestCommand(env),
			rewriteCommand(env),
			verifyCommand(env),
			scanCommand(env),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Fprintf(stdout, "gbx %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "List a map's header chunks",
				Command:     "gbx inspect A01.Map.Gbx",
			},
			{
				Description: "Describe a replay as JSON",
				Command:     "gbx manifest best.Replay.Gbx",
			},
			{
				Description: "Convert a 2006 map to current identifiers",
				Command:     "gbx rewrite old.Challenge.Gbx new.Map.Gbx --remap latest",
			},
			{
				Description: "Check that every map in a folder round-trips",
				Command:     "gbx scan ~/Tracks && gbx verify ~/Tracks/*.Map.Gbx",
			},
		},
	}
}

// flagSet returns a flag set carrying the global flags.
func (e *environment) flagSet(name string) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flagSet.StringVar(&e.configPath, "config", "", "configuration file (default: $GBX_CONFIG)")
	flagSet.BoolVarP(&e.verbose, "verbose", "v", false, "log at debug level")
	return flagSet
}

// load reads the configuration and builds the logger.
func (e *environment) load() (*config.Config, *slog.Logger, error) {
	var cfg *config.Config
	var err error
	if e.configPath != "" {
		cfg, err = config.LoadFile(e.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}

	level, err := cfg.Level()
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}
	if e.verbose {
		level = slog.LevelDebug
	}
	return cfg, cli.NewCommandLogger(e.stderr, level), nil
}

// readOptions returns the codec options for cfg.
func readOptions(cfg *config.Config, logger *slog.Logger) ([]gbx.Option, error) {
	options := []gbx.Option{gbx.WithLogger(logger)}
	policy, fixed, err := cfg.Policy()
	if err != nil {
		return nil, err
	}
	if fixed {
		options = append(options, gbx.WithRemap(policy))
	}
	return options, nil
}

// bodyCodec resolves a codec name; the empty name means none.
func bodyCodec(name string) (compress.Codec, error) {
	if name == "" {
		return nil, nil
	}
	return compress.Lookup(name)
}

// storeCodec resolves the codec a rewritten body is stored with;
// "none" stores it uncompressed.
func storeCodec(name string) (compress.Codec, error) {
	if name == "none" {
		return nil, nil
	}
	return bodyCodec(name)
}

// oneFile checks that args names exactly one input.
func oneFile(args []string, command string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("%s takes exactly one file, got %d arguments", command, len(args))
	}
	return args[0], nil
}
