// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package chunk

import (
	"errors"
	"fmt"

	"github.com/bureau-foundation/gbx/lib/classid"
	"github.com/bureau-foundation/gbx/lib/gbxio"
)

var (
	// ErrDuplicateChunk is returned when a set already holds a chunk
	// with the same id.
	ErrDuplicateChunk = errors.New("duplicate chunk id")

	// ErrChunkNotFound is returned by [Get] when no chunk of the
	// requested type is in the set.
	ErrChunkNotFound = errors.New("chunk not found")

	// ErrTrailingData is returned by discovery when the routine did
	// not consume the whole payload. The slot keeps its raw bytes.
	ErrTrailingData = errors.New("chunk routine left payload bytes unread")

	// ErrNodeMismatch is returned when a definition's factory cannot
	// bind to the given node because the node is of another type.
	ErrNodeMismatch = errors.New("node type does not own chunk")
)

// Error attaches a chunk id to a failure.
type Error struct {
	ID  classid.ID
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("chunk %s: %v", e.ID, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// State is the discovery state of a slot.
type State uint8

const (
	// Undiscovered slots hold their payload as raw bytes.
	Undiscovered State = iota

	// Discovered slots hold structured fields only.
	Discovered
)

func (s State) String() string {
	switch s {
	case Undiscovered:
		return "undiscovered"
	case Discovered:
		return "discovered"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// Kind is how a chunk is framed in its stream.
type Kind uint8

const (
	// Normal body chunks have no size prefix; the routine itself
	// determines their length, so they are always read eagerly.
	Normal Kind = iota

	// Skippable body chunks carry a "PIKS" marker and a size, so
	// their payload can be held raw until needed.
	Skippable

	// Header chunks live in the header user data table with a size
	// and a heavy flag.
	Header
)

func (k Kind) String() string {
	switch k {
	case Normal:
		return "normal"
	case Skippable:
		return "skippable"
	case Header:
		return "header"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Structured is implemented by every chunk that has a read/write
// routine. The routine describes the chunk layout once; rw decides the
// direction. Values are bound to their owning node by their factory.
type Structured interface {
	ReadWrite(rw *gbxio.ReaderWriter) error
}

// Factory builds an empty structured chunk bound to node. It reports
// false when node is not the type the chunk belongs to.
type Factory func(node Node) (Structured, bool)

// Definition pairs a chunk id with the factory for its routine.
type Definition struct {
	ID   classid.ID
	Kind Kind
	New  Factory
}

// Define builds a [Definition] whose factory only binds to nodes of
// type N.
func Define[N Node](id classid.ID, kind Kind, build func(node N) Structured) Definition {
	return Definition{
		ID:   id,
		Kind: kind,
		New: func(node Node) (Structured, bool) {
			typed, ok := node.(N)
			if !ok {
				return nil, false
			}
			return build(typed), true
		},
	}
}
