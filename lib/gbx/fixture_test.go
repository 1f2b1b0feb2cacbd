// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gbx

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/bureau-foundation/gbx/lib/chunk"
	"github.com/bureau-foundation/gbx/lib/classid"
	"github.com/bureau-foundation/gbx/lib/gbxio"
	"github.com/bureau-foundation/gbx/lib/registry"
	"github.com/bureau-foundation/gbx/lib/testutil"
)

// Test catalogue: a sample node with header and body chunks, a second
// node type that shares nothing with it, and a node type without a
// header table.
const (
	sampleClass     classid.ID = 0x0A001000
	otherClass      classid.ID = 0x0A002000
	headerlessClass classid.ID = 0x0A003000

	sampleValueID  = sampleClass | 0x001
	sampleTitleID  = sampleClass | 0x002
	sampleCountID  = sampleClass | 0x003
	sampleNotesID  = sampleClass | 0x004
	otherFlagID    = otherClass | 0x001
	headerlessOnly = headerlessClass | 0x001
)

type sample struct {
	chunk.Object
	Value int32
	Title string
	Count int32
	Notes string
}

type sampleValue struct{ node *sample }

func (c *sampleValue) ReadWrite(rw *gbxio.ReaderWriter) error {
	rw.Int32(&c.node.Value)
	return nil
}

type sampleTitle struct{ node *sample }

func (c *sampleTitle) ReadWrite(rw *gbxio.ReaderWriter) error {
	rw.Text(&c.node.Title)
	return nil
}

type sampleCount struct{ node *sample }

func (c *sampleCount) ReadWrite(rw *gbxio.ReaderWriter) error {
	rw.Int32(&c.node.Count)
	return nil
}

type sampleNotes struct{ node *sample }

func (c *sampleNotes) ReadWrite(rw *gbxio.ReaderWriter) error {
	rw.Text(&c.node.Notes)
	return nil
}

type other struct {
	chunk.Object
	Flag bool
}

type otherFlag struct{ node *other }

func (c *otherFlag) ReadWrite(rw *gbxio.ReaderWriter) error {
	rw.Bool(&c.node.Flag)
	return nil
}

func testRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	built, err := registry.New(
		registry.NodeSpec{
			Class: sampleClass,
			Name:  "Sample",
			New:   func() chunk.Node { return &sample{Object: chunk.MakeObject(sampleClass)} },
			HeaderChunks: []chunk.Definition{
				chunk.Define(sampleValueID, chunk.Header, func(n *sample) chunk.Structured { return &sampleValue{node: n} }),
				chunk.Define(sampleTitleID, chunk.Header, func(n *sample) chunk.Structured { return &sampleTitle{node: n} }),
			},
			Chunks: []chunk.Definition{
				chunk.Define(sampleCountID, chunk.Normal, func(n *sample) chunk.Structured { return &sampleCount{node: n} }),
				chunk.Define(sampleNotesID, chunk.Skippable, func(n *sample) chunk.Structured { return &sampleNotes{node: n} }),
			},
		},
		registry.NodeSpec{
			Class: otherClass,
			Name:  "Other",
			New:   func() chunk.Node { return &other{Object: chunk.MakeObject(otherClass)} },
			HeaderChunks: []chunk.Definition{
				chunk.Define(otherFlagID, chunk.Header, func(n *other) chunk.Structured { return &otherFlag{node: n} }),
			},
		},
		registry.NodeSpec{
			Class: headerlessClass,
			Name:  "Headerless",
			New:   func() chunk.Node { return chunk.NewObject(headerlessClass) },
		},
	)
	if err != nil {
		t.Fatalf("building test registry: %v", err)
	}
	return built
}

// testOptions resolves through the test catalogue and discards logs.
func testOptions(t *testing.T, extra ...Option) []Option {
	t.Helper()
	return append([]Option{
		WithRegistry(testRegistry(t)),
		WithLogger(testutil.Logger()),
	}, extra...)
}

// entry is one header chunk table row of a fixture.
type entry struct {
	id      uint32
	heavy   bool
	payload []byte
}

// userData assembles a header user data block.
func userData(entries ...entry) []byte {
	var block []byte
	block = binary.LittleEndian.AppendUint32(block, uint32(len(entries)))
	for _, e := range entries {
		size := uint32(len(e.payload))
		if e.heavy {
			size |= 1 << 31
		}
		block = binary.LittleEndian.AppendUint32(block, e.id)
		block = binary.LittleEndian.AppendUint32(block, size)
	}
	for _, e := range entries {
		block = append(block, e.payload...)
	}
	return block
}

// fixture describes a whole container.
type fixture struct {
	version  uint16
	class    uint32
	userData []byte
	numNodes int32

	// rest is the reference table and body; an empty reference table
	// and an uncompressed empty body when nil.
	rest []byte
	// bodyCompression defaults to 'U'.
	bodyCompression byte
}

func (f fixture) bytes() []byte {
	var out []byte
	out = append(out, "GBX"...)
	out = binary.LittleEndian.AppendUint16(out, f.version)
	compression := f.bodyCompression
	if compression == 0 {
		compression = Uncompressed
	}
	out = append(out, FormatBinary, Uncompressed, compression)
	if f.version >= 4 {
		out = append(out, 'R')
	}
	out = binary.LittleEndian.AppendUint32(out, f.class)
	if f.version >= 6 {
		out = binary.LittleEndian.AppendUint32(out, uint32(len(f.userData)))
		out = append(out, f.userData...)
	}
	out = binary.LittleEndian.AppendUint32(out, uint32(f.numNodes))
	if f.rest == nil {
		out = append(out, emptyRest()...)
	} else {
		out = append(out, f.rest...)
	}
	return out
}

// emptyRest is an empty reference table followed by an uncompressed
// body holding only the stream terminator.
func emptyRest() []byte {
	var rest []byte
	rest = binary.LittleEndian.AppendUint32(rest, 0)
	rest = binary.LittleEndian.AppendUint32(rest, facade)
	return rest
}

func int32Payload(value int32) []byte {
	return binary.LittleEndian.AppendUint32(nil, uint32(value))
}

func textPayload(text string) []byte {
	payload := binary.LittleEndian.AppendUint32(nil, uint32(len(text)))
	return append(payload, text...)
}

func mustRead(t *testing.T, data []byte, opts ...Option) *Container {
	t.Helper()
	container, err := Read(bytes.NewReader(data), opts...)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	return container
}

func mustBytes(t *testing.T, container *Container, policy classid.Policy) []byte {
	t.Helper()
	data, err := container.Bytes(policy)
	if err != nil {
		t.Fatalf("Bytes(%s): %v", policy, err)
	}
	return data
}
