// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gbx

import (
	"errors"
	"fmt"
	"io"

	"github.com/bureau-foundation/gbx/lib/chunk"
	"github.com/bureau-foundation/gbx/lib/gbxio"
)

var (
	// ErrTruncated is wrapped when the input ends inside a structure.
	ErrTruncated = gbxio.ErrTruncated

	// ErrDuplicateChunk is wrapped when two header chunks carry the
	// same id after remapping.
	ErrDuplicateChunk = chunk.ErrDuplicateChunk

	// ErrRegistryInconsistency is wrapped when the resolver knows a
	// class but cannot supply what its own tables promise: a header
	// chunk for a node type with no header table, or a listed chunk
	// without a usable routine.
	ErrRegistryInconsistency = errors.New("registry inconsistency")

	// ErrNotGameBox is returned when the input does not start with the
	// GameBox magic.
	ErrNotGameBox = errors.New("not a GameBox container")

	// ErrUnsupportedVersion is returned for container versions this
	// package cannot frame.
	ErrUnsupportedVersion = errors.New("unsupported container version")

	// ErrUnknownChunk is wrapped when a body chunk without a size
	// prefix has no routine, so its end cannot be found.
	ErrUnknownChunk = errors.New("unknown chunk")
)

// readFull reads exactly len(buffer) bytes, reporting a short input as
// [ErrTruncated].
func readFull(r io.Reader, buffer []byte, what string) error {
	if _, err := io.ReadFull(r, buffer); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("reading %s: %w", what, ErrTruncated)
		}
		return fmt.Errorf("reading %s: %w", what, err)
	}
	return nil
}
