// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the gbx command tree.
//
// Every command reads the same configuration (lib/config, selected by
// GBX_CONFIG or --config) and builds the same logger, so the codec's
// diagnostics look the same whichever command triggered them. Output
// goes to the writers given to [Root], which keeps the commands
// testable without touching the process's stdout.
package commands
