// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package chunk

import (
	"bytes"
	"errors"
	"slices"
	"testing"

	"github.com/bureau-foundation/gbx/lib/classid"
	"github.com/bureau-foundation/gbx/lib/gbxio"
)

const testClass classid.ID = 0x0A001000

type testNode struct {
	Object
	Title string
}

func newTestNode() *testNode {
	return &testNode{Object: MakeObject(testClass)}
}

// counterChunk holds one int32 field.
type counterChunk struct {
	Value int32
}

func (c *counterChunk) ReadWrite(rw *gbxio.ReaderWriter) error {
	rw.Int32(&c.Value)
	return rw.Err()
}

// titleChunk stores its field on the node.
type titleChunk struct {
	node *testNode
}

func (c *titleChunk) ReadWrite(rw *gbxio.ReaderWriter) error {
	rw.Text(&c.node.Title)
	return rw.Err()
}

var (
	counterDefinition = Define(testClass|0x001, Header, func(*testNode) Structured { return &counterChunk{} })
	titleDefinition   = Define(testClass|0x002, Header, func(node *testNode) Structured { return &titleChunk{node: node} })
)

func int32Payload(value int32) []byte {
	w := gbxio.NewWriter()
	w.Int32(value)
	return w.Data()
}

func mustSlot(t *testing.T, definition Definition, node Node, raw []byte) *Slot {
	t.Helper()
	slot, err := NewSlot(definition, node, raw)
	if err != nil {
		t.Fatalf("NewSlot(%s): %v", definition.ID, err)
	}
	return slot
}

func TestGetDiscoversMatchedChunk(t *testing.T) {
	node := newTestNode()
	set := node.Chunks()
	slot := mustSlot(t, counterDefinition, node, []byte{0x01, 0x00, 0x00, 0x00})
	if err := set.Add(slot); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if slot.State() != Undiscovered {
		t.Fatalf("new slot with payload is %s, want undiscovered", slot.State())
	}

	counter, err := Get[*counterChunk](set)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if counter.Value != 1 {
		t.Errorf("Value = %d, want 1", counter.Value)
	}
	if slot.State() != Discovered {
		t.Errorf("state after Get = %s, want discovered", slot.State())
	}
	if slot.Raw() != nil {
		t.Errorf("raw payload kept after discovery: %x", slot.Raw())
	}
}

func TestGetMissingType(t *testing.T) {
	node := newTestNode()
	if _, err := Get[*counterChunk](node.Chunks()); !errors.Is(err, ErrChunkNotFound) {
		t.Errorf("Get on empty set: err = %v, want ErrChunkNotFound", err)
	}
	if _, ok := TryGet[*counterChunk](node.Chunks()); ok {
		t.Error("TryGet on empty set reported found")
	}
}

func TestDiscoverIsIdempotent(t *testing.T) {
	node := newTestNode()
	counter := mustSlot(t, counterDefinition, node, int32Payload(42))
	title := mustSlot(t, titleDefinition, node, func() []byte {
		w := gbxio.NewWriter()
		w.Text("Spring")
		return w.Data()
	}())
	set := node.Chunks()
	for _, slot := range []*Slot{counter, title} {
		if err := set.Add(slot); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	if err := counter.Discover(); err != nil {
		t.Fatalf("first Discover: %v", err)
	}
	first := counter.Value().(*counterChunk).Value
	if err := counter.Discover(); err != nil {
		t.Fatalf("second Discover: %v", err)
	}
	if second := counter.Value().(*counterChunk).Value; second != first || second != 42 {
		t.Errorf("values across discoveries = %d, %d, want 42 both", first, second)
	}

	if title.State() != Undiscovered {
		t.Errorf("discovering one chunk changed another to %s", title.State())
	}
	if node.Title != "" {
		t.Errorf("undiscovered title already populated: %q", node.Title)
	}
}

func TestEmptyPayloadStartsDiscovered(t *testing.T) {
	slot := mustSlot(t, counterDefinition, newTestNode(), nil)
	if slot.State() != Discovered {
		t.Errorf("state = %s, want discovered", slot.State())
	}
}

func TestOpaqueSlotRoundTrips(t *testing.T) {
	raw := []byte{0xFF, 0xFF}
	slot := NewOpaque(0xDEADBEEF, Header, nil, raw)
	slot.SetHeavy(true)

	if err := slot.Discover(); err != nil {
		t.Fatalf("Discover on opaque slot: %v", err)
	}
	if slot.State() != Undiscovered || !slot.Opaque() {
		t.Errorf("opaque slot state = %s, opaque = %v", slot.State(), slot.Opaque())
	}
	payload, err := slot.Payload()
	if err != nil {
		t.Fatalf("Payload: %v", err)
	}
	if !bytes.Equal(payload, raw) {
		t.Errorf("payload = %x, want %x", payload, raw)
	}
}

func TestTrailingDataKeepsRawPayload(t *testing.T) {
	raw := append(int32Payload(7), 0xAB)
	slot := mustSlot(t, counterDefinition, newTestNode(), raw)

	err := slot.Discover()
	if !errors.Is(err, ErrTrailingData) {
		t.Fatalf("Discover: err = %v, want ErrTrailingData", err)
	}
	var chunkErr *Error
	if !errors.As(err, &chunkErr) || chunkErr.ID != counterDefinition.ID {
		t.Errorf("error does not carry chunk id: %v", err)
	}
	if slot.State() != Undiscovered {
		t.Errorf("state = %s, want undiscovered", slot.State())
	}
	if slot.Value().(*counterChunk).Value != 0 {
		t.Error("partially read value still visible after failed discovery")
	}
	payload, err := slot.Payload()
	if err != nil {
		t.Fatalf("Payload: %v", err)
	}
	if !bytes.Equal(payload, raw) {
		t.Errorf("payload = %x, want %x", payload, raw)
	}
}

func TestTruncatedPayload(t *testing.T) {
	slot := mustSlot(t, counterDefinition, newTestNode(), []byte{1, 2})
	if err := slot.Discover(); !errors.Is(err, gbxio.ErrTruncated) {
		t.Errorf("Discover: err = %v, want ErrTruncated", err)
	}
}

func TestAddRejectsDuplicateID(t *testing.T) {
	node := newTestNode()
	set := node.Chunks()
	if err := set.Add(mustSlot(t, counterDefinition, node, nil)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	err := set.Add(NewOpaque(counterDefinition.ID, Header, node, []byte{1}))
	if !errors.Is(err, ErrDuplicateChunk) {
		t.Errorf("second Add: err = %v, want ErrDuplicateChunk", err)
	}
	if set.Len() != 1 {
		t.Errorf("Len = %d after rejected add, want 1", set.Len())
	}
}

func TestSetOrderModel(t *testing.T) {
	// Apply a sequence of adds and removes to both the set and a
	// plain slice model; iteration order must agree after every step.
	node := newTestNode()
	set := node.Chunks()
	var model []classid.ID

	type operation struct {
		add bool
		id  classid.ID
	}
	operations := []operation{
		{true, 0x0A001001}, {true, 0x0A001002}, {true, 0x0A001003},
		{false, 0x0A001002}, {true, 0x0A001004}, {true, 0x0A001002},
		{false, 0x0A001001}, {false, 0x0A001099}, {true, 0x0A001005},
		{false, 0x0A001005}, {true, 0x0A001001},
	}

	for step, op := range operations {
		if op.add {
			if err := set.Add(NewOpaque(op.id, Header, node, nil)); err != nil {
				t.Fatalf("step %d: Add(%s): %v", step, op.id, err)
			}
			model = append(model, op.id)
		} else {
			removed := set.RemoveID(op.id)
			index := slices.Index(model, op.id)
			if removed != (index >= 0) {
				t.Fatalf("step %d: RemoveID(%s) = %v, model has it at %d", step, op.id, removed, index)
			}
			if index >= 0 {
				model = slices.Delete(model, index, index+1)
			}
		}
		if got := set.IDs(); !slices.Equal(got, model) {
			t.Fatalf("step %d: order = %v, want %v", step, got, model)
		}
	}
}

func TestRemoveByType(t *testing.T) {
	node := newTestNode()
	set := node.Chunks()
	set.Add(NewOpaque(0x0A001100, Header, node, nil))
	set.Add(mustSlot(t, counterDefinition, node, int32Payload(1)))
	set.Add(mustSlot(t, titleDefinition, node, nil))

	if !Remove[*counterChunk](set) {
		t.Fatal("Remove[*counterChunk] found nothing")
	}
	if Remove[*counterChunk](set) {
		t.Error("second Remove[*counterChunk] removed something")
	}
	want := []classid.ID{0x0A001100, titleDefinition.ID}
	if got := set.IDs(); !slices.Equal(got, want) {
		t.Errorf("IDs = %v, want %v", got, want)
	}

	set.Clear()
	if set.Len() != 0 {
		t.Errorf("Len after Clear = %d", set.Len())
	}
}

func TestDiscoverMany(t *testing.T) {
	node := newTestNode()
	set := node.Chunks()
	counter := mustSlot(t, counterDefinition, node, int32Payload(3))
	titlePayload := gbxio.NewWriter()
	titlePayload.Text("Summer")
	title := mustSlot(t, titleDefinition, node, titlePayload.Data())
	opaque := NewOpaque(0x0A001100, Header, node, []byte{9})
	for _, slot := range []*Slot{counter, title, opaque} {
		set.Add(slot)
	}

	if err := set.DiscoverMany(Is[*titleChunk]()); err != nil {
		t.Fatalf("DiscoverMany: %v", err)
	}
	if title.State() != Discovered || counter.State() != Undiscovered {
		t.Errorf("states after DiscoverMany(title) = title %s, counter %s", title.State(), counter.State())
	}
	if node.Title != "Summer" {
		t.Errorf("Title = %q, want Summer", node.Title)
	}

	if err := set.DiscoverMany(HasID(counterDefinition.ID), HasID(0x0A001100)); err != nil {
		t.Fatalf("DiscoverMany by id: %v", err)
	}
	if counter.State() != Discovered {
		t.Errorf("counter state = %s, want discovered", counter.State())
	}

	if err := set.DiscoverAll(); err != nil {
		t.Errorf("DiscoverAll: %v", err)
	}
	if opaque.State() != Undiscovered {
		t.Errorf("opaque slot state = %s after DiscoverAll", opaque.State())
	}
}

func TestDiscoverAllJoinsFailures(t *testing.T) {
	node := newTestNode()
	set := node.Chunks()
	set.Add(mustSlot(t, counterDefinition, node, []byte{1}))
	good := mustSlot(t, titleDefinition, node, func() []byte {
		w := gbxio.NewWriter()
		w.Text("Fall")
		return w.Data()
	}())
	set.Add(good)

	err := set.DiscoverAll()
	if !errors.Is(err, gbxio.ErrTruncated) {
		t.Errorf("DiscoverAll: err = %v, want ErrTruncated", err)
	}
	if good.State() != Discovered {
		t.Error("failure of one chunk stopped discovery of the next")
	}
}

func TestNodeMismatch(t *testing.T) {
	_, err := NewSlot(counterDefinition, NewObject(testClass), nil)
	if !errors.Is(err, ErrNodeMismatch) {
		t.Errorf("NewSlot on plain object: err = %v, want ErrNodeMismatch", err)
	}
}

func TestReadNormalConsumesOnlyItsFields(t *testing.T) {
	w := gbxio.NewWriter()
	w.Int32(5)
	w.Uint32(0xFACADE01)
	reader := gbxio.NewReader(w.Data())

	slot, err := ReadNormal(counterDefinition, newTestNode(), reader)
	if err != nil {
		t.Fatalf("ReadNormal: %v", err)
	}
	if slot.State() != Discovered || slot.Value().(*counterChunk).Value != 5 {
		t.Errorf("slot state %s value %d", slot.State(), slot.Value().(*counterChunk).Value)
	}
	if reader.Remaining() != 4 {
		t.Errorf("Remaining = %d, want 4", reader.Remaining())
	}
}
