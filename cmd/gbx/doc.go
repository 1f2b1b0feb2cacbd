// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Gbx reads, inspects and rewrites GameBox containers.
//
// Usage:
//
//	gbx inspect <file>                 prefix and header chunk table
//	gbx manifest <file>                JSON/CBOR description with fingerprints
//	gbx rewrite <input> <output>       write under another identifier policy
//	gbx verify <file>...               check byte-exact round trip
//	gbx scan [directory]               parse a tree on a worker pool
//	gbx version                        build information
//
// Configuration is read from the file named by GBX_CONFIG or --config;
// see lib/config.
package main
