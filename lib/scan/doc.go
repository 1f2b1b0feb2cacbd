// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package scan parses every container under a directory tree.
//
// Files are parsed concurrently on a bounded worker pool. All workers
// resolve through one registry: the registry is immutable after
// construction, so sharing it needs no locking, while each container
// and its chunk sets stay owned by the worker that parsed it.
//
// A file that fails to parse does not stop the scan; its error is
// carried in its [Result]. Cancelling the context stops the walk and
// marks files not yet parsed with the context's error.
package scan
