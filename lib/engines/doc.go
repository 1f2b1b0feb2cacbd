// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package engines is the node and chunk catalogue the codec resolves
// against by default.
//
// It covers a handful of game classes: enough of the map and replay
// headers to read their descriptive fields, two media and podium
// nodes with body chunks, and nothing else. Classes missing from the
// catalogue are still read and written losslessly as opaque chunks.
//
// [Registry] builds the catalogue on first use and shares it process
// wide.
package engines
