// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package registry resolves class ids to node types and chunk ids to
// chunk definitions.
//
// A [Registry] is built once from a static catalogue of [NodeSpec]
// values and is immutable afterwards, so any number of concurrent
// parses can share it without locking. [New] rejects catalogues that
// would make resolution ambiguous (duplicate classes or chunk ids,
// chunks outside their node's class, missing factories): those are
// build defects, not input errors.
//
// Each node type has two chunk namespaces. The body table covers
// normal and skippable chunks. The header table covers header chunks
// and is optional: a node type declared without one claims no header
// chunks at all, and a header chunk addressed to it is a registry
// inconsistency rather than an unknown chunk.
package registry
