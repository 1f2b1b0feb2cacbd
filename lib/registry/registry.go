// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/bureau-foundation/gbx/lib/chunk"
	"github.com/bureau-foundation/gbx/lib/classid"
)

// NodeSpec is one catalogue entry.
type NodeSpec struct {
	// Class is the node's class id (chunk index bits zero).
	Class classid.ID

	// Name is the engine class name, for logs.
	Name string

	// New constructs an empty node of this type.
	New func() chunk.Node

	// Inherits lists ancestor classes whose chunks this node type
	// also reads. Chunk definitions may use these class parts.
	Inherits []classid.ID

	// HeaderChunks is the header chunk table. Nil means the node type
	// has no header chunk namespace; an empty non-nil slice means it
	// has one with no known entries.
	HeaderChunks []chunk.Definition

	// Chunks is the body chunk table (normal and skippable chunks).
	Chunks []chunk.Definition
}

// NodeType is a resolved, immutable node type.
type NodeType struct {
	class    classid.ID
	name     string
	newNode  func() chunk.Node
	inherits []classid.ID
	header   map[classid.ID]*chunk.Definition
	body     map[classid.ID]*chunk.Definition
}

// Class returns the node type's class id.
func (t *NodeType) Class() classid.ID { return t.class }

// Name returns the engine class name.
func (t *NodeType) Name() string { return t.name }

// New constructs an empty node.
func (t *NodeType) New() chunk.Node { return t.newNode() }

// HasHeaderTable reports whether the node type declares a header chunk
// namespace.
func (t *NodeType) HasHeaderTable() bool { return t.header != nil }

// HeaderChunk resolves a header chunk id.
func (t *NodeType) HeaderChunk(id classid.ID) (*chunk.Definition, bool) {
	definition, ok := t.header[id]
	return definition, ok
}

// Chunk resolves a body chunk id.
func (t *NodeType) Chunk(id classid.ID) (*chunk.Definition, bool) {
	definition, ok := t.body[id]
	return definition, ok
}

// HeaderChunkIDs returns the header table ids in ascending order.
func (t *NodeType) HeaderChunkIDs() []classid.ID {
	return sortedKeys(t.header)
}

// ChunkIDs returns the body table ids in ascending order.
func (t *NodeType) ChunkIDs() []classid.ID {
	return sortedKeys(t.body)
}

func sortedKeys(table map[classid.ID]*chunk.Definition) []classid.ID {
	ids := make([]classid.ID, 0, len(table))
	for id := range table {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Resolver is the lookup surface the codec consumes.
type Resolver interface {
	// Node resolves the class part of class to a node type.
	Node(class classid.ID) (*NodeType, bool)
}

// Registry is an immutable catalogue of node types.
type Registry struct {
	nodes map[classid.ID]*NodeType
}

// New validates specs and builds a registry from them.
func New(specs ...NodeSpec) (*Registry, error) {
	registry := &Registry{nodes: make(map[classid.ID]*NodeType, len(specs))}

	for _, spec := range specs {
		if spec.Class != spec.Class.Class() {
			return nil, fmt.Errorf("node %s (%s): class id has chunk index bits set", spec.Class, spec.Name)
		}
		if spec.New == nil {
			return nil, fmt.Errorf("node %s (%s): no constructor", spec.Class, spec.Name)
		}
		if _, duplicate := registry.nodes[spec.Class]; duplicate {
			return nil, fmt.Errorf("node %s (%s): registered twice", spec.Class, spec.Name)
		}

		nodeType := &NodeType{
			class:    spec.Class,
			name:     spec.Name,
			newNode:  spec.New,
			inherits: slices.Clone(spec.Inherits),
		}

		var err error
		if spec.HeaderChunks != nil {
			nodeType.header, err = buildTable(nodeType, spec.HeaderChunks, chunk.Header)
			if err != nil {
				return nil, err
			}
		}
		nodeType.body, err = buildTable(nodeType, spec.Chunks, chunk.Normal, chunk.Skippable)
		if err != nil {
			return nil, err
		}

		registry.nodes[spec.Class] = nodeType
	}

	return registry, nil
}

func buildTable(nodeType *NodeType, definitions []chunk.Definition, kinds ...chunk.Kind) (map[classid.ID]*chunk.Definition, error) {
	table := make(map[classid.ID]*chunk.Definition, len(definitions))
	for i := range definitions {
		definition := definitions[i]
		owner := definition.ID.Class()
		if owner != nodeType.class && !slices.Contains(nodeType.inherits, owner) {
			return nil, fmt.Errorf("node %s (%s): chunk %s belongs to class %s",
				nodeType.class, nodeType.name, definition.ID, owner)
		}
		if !slices.Contains(kinds, definition.Kind) {
			return nil, fmt.Errorf("node %s (%s): chunk %s is a %s chunk in a %s table",
				nodeType.class, nodeType.name, definition.ID, definition.Kind, kinds[0])
		}
		if definition.New == nil {
			return nil, fmt.Errorf("node %s (%s): chunk %s has no factory",
				nodeType.class, nodeType.name, definition.ID)
		}
		if _, duplicate := table[definition.ID]; duplicate {
			return nil, fmt.Errorf("node %s (%s): chunk %s defined twice",
				nodeType.class, nodeType.name, definition.ID)
		}
		table[definition.ID] = &definition
	}
	return table, nil
}

// Node resolves the class part of class.
func (r *Registry) Node(class classid.ID) (*NodeType, bool) {
	nodeType, ok := r.nodes[class.Class()]
	return nodeType, ok
}

// Known reports whether the class part of class is registered.
func (r *Registry) Known(class classid.ID) bool {
	_, ok := r.nodes[class.Class()]
	return ok
}

// Nodes returns every node type ordered by class id.
func (r *Registry) Nodes() []*NodeType {
	nodes := make([]*NodeType, 0, len(r.nodes))
	for _, nodeType := range r.nodes {
		nodes = append(nodes, nodeType)
	}
	slices.SortFunc(nodes, func(a, b *NodeType) int { return cmp.Compare(a.class, b.class) })
	return nodes
}
