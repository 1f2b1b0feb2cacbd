// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package gbxio provides the little-endian primitives GameBox chunks
// are built from, and the [ReaderWriter] visitor that lets a chunk
// describe its layout once for both directions.
//
// A chunk's read/write routine calls the same sequence of methods
// (Int32, String, Int32Array, ...) whether it is parsing or
// serializing. In reading mode each call fills the pointed-to field
// from the payload; in writing mode it appends the field's value.
// Errors are sticky: after the first failure every further call is a
// no-op and [ReaderWriter.Err] reports the failure, so routines check
// once at the end.
//
// Running past the end of a payload fails with an error wrapping
// [ErrTruncated].
package gbxio
