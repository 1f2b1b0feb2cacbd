// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package chunk

import (
	"fmt"

	"github.com/bureau-foundation/gbx/lib/classid"
	"github.com/bureau-foundation/gbx/lib/gbxio"
)

// Slot is one chunk of a node: its id and framing, its discovery
// state, and either its raw payload or its structured value.
type Slot struct {
	id    classid.ID
	kind  Kind
	heavy bool
	state State
	raw   []byte
	node  Node

	// value is nil for opaque slots.
	value Structured
	// factory rebuilds value when a failed discovery must discard
	// partially populated fields.
	factory Factory
}

// NewOpaque returns a slot for a chunk no routine is known for. The
// slot stays Undiscovered for its whole life and writes raw back
// unchanged. node may be nil when the chunk's class is unknown.
func NewOpaque(id classid.ID, kind Kind, node Node, raw []byte) *Slot {
	return &Slot{id: id, kind: kind, node: node, raw: raw, state: Undiscovered}
}

// NewSlot instantiates definition for node and holds raw as its
// payload. An empty payload is trivially known, so the slot starts
// Discovered with no fields consulted; otherwise it starts
// Undiscovered and [Slot.Discover] parses raw on demand.
//
// Fails with [ErrNodeMismatch] when the definition cannot bind to
// node.
func NewSlot(definition Definition, node Node, raw []byte) (*Slot, error) {
	if definition.New == nil {
		return nil, &Error{ID: definition.ID, Err: fmt.Errorf("definition has no factory")}
	}
	value, ok := definition.New(node)
	if !ok {
		return nil, &Error{ID: definition.ID, Err: fmt.Errorf("%w: %T", ErrNodeMismatch, node)}
	}
	slot := &Slot{
		id:      definition.ID,
		kind:    definition.Kind,
		node:    node,
		raw:     raw,
		value:   value,
		factory: definition.New,
	}
	if len(raw) == 0 {
		slot.raw = nil
		slot.state = Discovered
	}
	return slot, nil
}

// ReadNormal instantiates definition for node and runs its routine
// directly against reader. Normal body chunks have no size prefix, so
// this is the only way to find where they end.
func ReadNormal(definition Definition, node Node, reader *gbxio.Reader) (*Slot, error) {
	slot, err := NewSlot(definition, node, nil)
	if err != nil {
		return nil, err
	}
	rw := gbxio.NewReading(reader)
	if err := slot.value.ReadWrite(rw); err != nil {
		return nil, &Error{ID: slot.id, Err: err}
	}
	if err := rw.Err(); err != nil {
		return nil, &Error{ID: slot.id, Err: err}
	}
	return slot, nil
}

// ID returns the chunk id in catalogue form.
func (s *Slot) ID() classid.ID { return s.id }

// Kind returns the chunk framing.
func (s *Slot) Kind() Kind { return s.kind }

// Heavy reports the header heavy flag.
func (s *Slot) Heavy() bool { return s.heavy }

// SetHeavy sets the header heavy flag.
func (s *Slot) SetHeavy(heavy bool) { s.heavy = heavy }

// State returns the discovery state.
func (s *Slot) State() State { return s.state }

// Node returns the owning node, nil for opaque slots of unknown
// classes.
func (s *Slot) Node() Node { return s.node }

// Opaque reports whether no routine exists for this chunk.
func (s *Slot) Opaque() bool { return s.value == nil }

// Value returns the structured chunk, nil for opaque slots. Reading
// its fields before discovery yields zero values.
func (s *Slot) Value() Structured { return s.value }

// Raw returns the undiscovered payload. Nil once discovered.
func (s *Slot) Raw() []byte { return s.raw }

// Discover parses the raw payload into the structured value. It is a
// no-op for discovered and opaque slots.
//
// When the routine fails or leaves bytes unread, the slot keeps its
// raw payload and stays Undiscovered, and its structured value is
// replaced by a fresh instance. Fields the routine stores on the owning
// node are not rolled back.
func (s *Slot) Discover() error {
	if s.state == Discovered || s.value == nil {
		return nil
	}

	reader := gbxio.NewReader(s.raw)
	rw := gbxio.NewReading(reader)
	err := s.value.ReadWrite(rw)
	if err == nil {
		err = rw.Err()
	}
	if err == nil && reader.Remaining() != 0 {
		err = fmt.Errorf("%w: %d of %d bytes", ErrTrailingData, reader.Remaining(), reader.Len())
	}
	if err != nil {
		s.reset()
		return &Error{ID: s.id, Err: err}
	}

	s.state = Discovered
	s.raw = nil
	return nil
}

func (s *Slot) reset() {
	if s.factory == nil {
		return
	}
	if fresh, ok := s.factory(s.node); ok {
		s.value = fresh
	}
}

// AppendTo serializes the chunk payload to w: the routine in writing
// mode when discovered, the raw payload unchanged otherwise.
func (s *Slot) AppendTo(w *gbxio.Writer) error {
	if s.state != Discovered || s.value == nil {
		w.Bytes(s.raw)
		return nil
	}
	rw := gbxio.NewWriting(w)
	if err := s.value.ReadWrite(rw); err != nil {
		return &Error{ID: s.id, Err: err}
	}
	if err := rw.Err(); err != nil {
		return &Error{ID: s.id, Err: err}
	}
	return nil
}

// Payload returns the serialized payload as [Slot.AppendTo] would
// write it.
func (s *Slot) Payload() ([]byte, error) {
	w := gbxio.NewWriter()
	if err := s.AppendTo(w); err != nil {
		return nil, err
	}
	return w.Data(), nil
}
