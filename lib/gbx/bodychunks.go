// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gbx

import (
	"fmt"

	"github.com/bureau-foundation/gbx/lib/chunk"
	"github.com/bureau-foundation/gbx/lib/classid"
	"github.com/bureau-foundation/gbx/lib/gbxio"
	"github.com/bureau-foundation/gbx/lib/registry"
)

// Body chunk stream framing.
const (
	// facade ends a node's chunk stream.
	facade = 0xFACADE01

	// skipMarker precedes the size of a skippable chunk ("PIKS").
	skipMarker = "PIKS"
)

// ReadBodyChunks decodes a chunk stream into node's chunk set. Chunk
// ids are read under policy. Skippable chunks are held raw until
// discovered; normal chunks are read immediately and must be known.
// The stream ends at the facade marker.
func ReadBodyChunks(data []byte, node chunk.Node, resolver registry.Resolver, policy classid.Policy) error {
	nodeType, _ := resolver.Node(node.Class())
	reader := gbxio.NewReader(data)
	set := node.Chunks()

	for {
		raw := reader.Uint32()
		if err := reader.Err(); err != nil {
			return fmt.Errorf("reading body chunk id: %w", err)
		}
		if raw == facade {
			break
		}
		id := classid.Remap(classid.ID(raw), policy.Inverse())

		var definition *chunk.Definition
		if nodeType != nil {
			definition, _ = nodeType.Chunk(id)
		}

		if marker, ok := reader.Peek(len(skipMarker)); ok && string(marker) == skipMarker {
			reader.Uint32()
			size := reader.Int32()
			payload := reader.Bytes(int(size))
			if err := reader.Err(); err != nil {
				return &chunk.Error{ID: id, Err: fmt.Errorf("reading skippable payload: %w", err)}
			}

			slot := chunk.NewOpaque(id, chunk.Skippable, node, payload)
			if definition != nil && definition.Kind == chunk.Skippable {
				var err error
				if slot, err = chunk.NewSlot(*definition, node, payload); err != nil {
					return err
				}
			}
			if err := set.Add(slot); err != nil {
				return err
			}
			continue
		}

		if definition == nil || definition.Kind != chunk.Normal {
			return &chunk.Error{ID: id, Err: fmt.Errorf("%w: no routine for unframed chunk of %s",
				ErrUnknownChunk, node.Class())}
		}
		slot, err := chunk.ReadNormal(*definition, node, reader)
		if err != nil {
			return err
		}
		if err := set.Add(slot); err != nil {
			return err
		}
	}

	if reader.Remaining() > 0 {
		return fmt.Errorf("%d bytes after the end of the chunk stream", reader.Remaining())
	}
	return nil
}

// WriteBodyChunks encodes node's chunk set as a chunk stream with ids
// written under policy.
func WriteBodyChunks(w *gbxio.Writer, node chunk.Node, policy classid.Policy) error {
	for slot := range node.Chunks().All() {
		w.Uint32(uint32(classid.Remap(slot.ID(), policy)))
		if slot.Kind() != chunk.Skippable {
			if err := slot.AppendTo(w); err != nil {
				return err
			}
			continue
		}
		payload, err := slot.Payload()
		if err != nil {
			return err
		}
		w.Bytes([]byte(skipMarker))
		w.Int32(int32(len(payload)))
		w.Bytes(payload)
	}
	w.Uint32(facade)
	return nil
}
