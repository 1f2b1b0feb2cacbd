// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML and JSONC configuration loading for the
// gbx command.
//
// Configuration is loaded from a single file named by either the
// GBX_CONFIG environment variable (via [Load]) or a --config flag (via
// [LoadFile]). There is no ~/.config discovery and no automatic file
// search. With neither set, [Load] returns [Default]. A file ending in
// .json or .jsonc may carry // comments and trailing commas; any other
// file is YAML.
//
// Variable expansion is performed on path fields after loading:
// ${HOME} and ${VAR:-default} patterns are expanded. No environment
// variable overrides a config value.
//
// Key exports:
//
//   - [Config] -- master struct with Body, Scan, and Output sections
//   - [Default] -- returns a Config with the built-in defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
package config
