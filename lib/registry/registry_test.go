// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"slices"
	"strings"
	"testing"

	"github.com/bureau-foundation/gbx/lib/chunk"
	"github.com/bureau-foundation/gbx/lib/classid"
	"github.com/bureau-foundation/gbx/lib/gbxio"
)

const (
	parentClass classid.ID = 0x0A001000
	childClass  classid.ID = 0x0A002000
)

type widget struct {
	chunk.Object
	Count int32
}

func newWidget() chunk.Node {
	return &widget{Object: chunk.MakeObject(childClass)}
}

type countChunk struct{ node *widget }

func (c *countChunk) ReadWrite(rw *gbxio.ReaderWriter) error {
	rw.Int32(&c.node.Count)
	return nil
}

func countDefinition(id classid.ID, kind chunk.Kind) chunk.Definition {
	return chunk.Define(id, kind, func(node *widget) chunk.Structured { return &countChunk{node: node} })
}

func validSpec() NodeSpec {
	return NodeSpec{
		Class:    childClass,
		Name:     "Widget",
		New:      newWidget,
		Inherits: []classid.ID{parentClass},
		HeaderChunks: []chunk.Definition{
			countDefinition(childClass.WithIndex(0x002), chunk.Header),
		},
		Chunks: []chunk.Definition{
			countDefinition(childClass.WithIndex(0x001), chunk.Normal),
			countDefinition(parentClass.WithIndex(0x00D), chunk.Skippable),
		},
	}
}

func TestNewResolvesTables(t *testing.T) {
	registry, err := New(validSpec())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	nodeType, ok := registry.Node(childClass.WithIndex(0x123))
	if !ok {
		t.Fatal("Node did not resolve a chunk id of a registered class")
	}
	if nodeType.Name() != "Widget" {
		t.Errorf("Name = %q, want Widget", nodeType.Name())
	}
	if !nodeType.HasHeaderTable() {
		t.Error("HasHeaderTable = false, want true")
	}
	if _, ok := nodeType.HeaderChunk(childClass.WithIndex(0x002)); !ok {
		t.Error("header chunk 0x002 not resolved")
	}
	if _, ok := nodeType.HeaderChunk(childClass.WithIndex(0x001)); ok {
		t.Error("body chunk resolved through the header table")
	}
	if _, ok := nodeType.Chunk(parentClass.WithIndex(0x00D)); !ok {
		t.Error("inherited chunk not resolved")
	}

	wantIDs := []classid.ID{parentClass.WithIndex(0x00D), childClass.WithIndex(0x001)}
	if got := nodeType.ChunkIDs(); !slices.Equal(got, wantIDs) {
		t.Errorf("ChunkIDs = %v, want %v", got, wantIDs)
	}

	node := nodeType.New()
	if node.Class() != childClass {
		t.Errorf("New().Class() = %s, want %s", node.Class(), childClass)
	}

	if registry.Known(parentClass) {
		t.Error("Known reports an unregistered ancestor class")
	}
	if !registry.Known(childClass) {
		t.Error("Known = false for a registered class")
	}
}

func TestNilHeaderTable(t *testing.T) {
	spec := validSpec()
	spec.HeaderChunks = nil

	registry, err := New(spec)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	nodeType, _ := registry.Node(childClass)
	if nodeType.HasHeaderTable() {
		t.Error("HasHeaderTable = true for a node declared without a header table")
	}

	spec.HeaderChunks = []chunk.Definition{}
	registry, err = New(spec)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	nodeType, _ = registry.Node(childClass)
	if !nodeType.HasHeaderTable() {
		t.Error("HasHeaderTable = false for an empty non-nil header table")
	}
}

func TestNewRejectsInconsistentCatalogues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(specs []NodeSpec) []NodeSpec
		want   string
	}{
		{
			name: "duplicate class",
			mutate: func(specs []NodeSpec) []NodeSpec {
				return append(specs, specs[0])
			},
			want: "registered twice",
		},
		{
			name: "chunk index bits on class",
			mutate: func(specs []NodeSpec) []NodeSpec {
				specs[0].Class = childClass.WithIndex(1)
				return specs
			},
			want: "chunk index bits",
		},
		{
			name: "missing constructor",
			mutate: func(specs []NodeSpec) []NodeSpec {
				specs[0].New = nil
				return specs
			},
			want: "no constructor",
		},
		{
			name: "foreign chunk class",
			mutate: func(specs []NodeSpec) []NodeSpec {
				specs[0].Chunks = append(specs[0].Chunks, countDefinition(0x0B001001, chunk.Normal))
				return specs
			},
			want: "belongs to class",
		},
		{
			name: "header chunk in body table",
			mutate: func(specs []NodeSpec) []NodeSpec {
				specs[0].Chunks = append(specs[0].Chunks, countDefinition(childClass.WithIndex(0x003), chunk.Header))
				return specs
			},
			want: "header chunk",
		},
		{
			name: "body chunk in header table",
			mutate: func(specs []NodeSpec) []NodeSpec {
				specs[0].HeaderChunks = append(specs[0].HeaderChunks, countDefinition(childClass.WithIndex(0x003), chunk.Normal))
				return specs
			},
			want: "normal chunk",
		},
		{
			name: "missing factory",
			mutate: func(specs []NodeSpec) []NodeSpec {
				specs[0].Chunks = append(specs[0].Chunks, chunk.Definition{ID: childClass.WithIndex(0x004), Kind: chunk.Normal})
				return specs
			},
			want: "no factory",
		},
		{
			name: "duplicate chunk id",
			mutate: func(specs []NodeSpec) []NodeSpec {
				specs[0].Chunks = append(specs[0].Chunks, countDefinition(childClass.WithIndex(0x001), chunk.Skippable))
				return specs
			},
			want: "defined twice",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			specs := test.mutate([]NodeSpec{validSpec()})
			_, err := New(specs...)
			if err == nil {
				t.Fatal("New succeeded, want error")
			}
			if !strings.Contains(err.Error(), test.want) {
				t.Errorf("error = %q, want it to mention %q", err, test.want)
			}
		})
	}
}

func TestNodesOrdered(t *testing.T) {
	other := NodeSpec{
		Class: parentClass,
		Name:  "Parent",
		New:   func() chunk.Node { return chunk.NewObject(parentClass) },
	}
	registry, err := New(validSpec(), other)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	nodes := registry.Nodes()
	if len(nodes) != 2 {
		t.Fatalf("Nodes returned %d types, want 2", len(nodes))
	}
	if nodes[0].Class() != parentClass || nodes[1].Class() != childClass {
		t.Errorf("Nodes not ordered by class id: %v, %v", nodes[0].Class(), nodes[1].Class())
	}
}
