// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package gbx reads and writes GameBox containers.
//
// A container is a fixed prefix, a header user data block of
// self-describing chunks, a reference table of external nodes, and a
// body that is usually compressed. The package decodes the prefix and
// the header chunks eagerly, keeps the reference table and the body
// as bytes, and re-emits all of them byte for byte unless the caller
// changed something.
//
// Header chunks are resolved through a [registry.Resolver]. A chunk
// whose class the resolver does not know is kept as an opaque slot
// and written back unchanged; only catalogue defects abort a read.
//
// Class and chunk ids are converted between the identifier space of
// the file and the catalogue's with a [classid.Policy]. Reading
// applies the policy's inverse, writing applies the policy, so a
// container read and written under the same policy keeps its ids.
//
// A [Container] is not safe for concurrent use. Independent containers
// may be read concurrently with one shared resolver.
package gbx
