// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gbx

import (
	"fmt"
	"slices"

	"github.com/bureau-foundation/gbx/lib/gbxio"
)

// maxFolderDepth bounds folder recursion in the reference table.
const maxFolderDepth = 64

// resourceFlag marks an external node addressed by resource index
// instead of file name.
const resourceFlag = 4

// RefTable is the reference table: the external files the body points
// at. It is parsed for inspection and written back from its raw bytes.
type RefTable struct {
	AncestorLevel int32
	Folders       []Folder
	External      []ExternalNode

	raw []byte
}

// Folder is one directory of the reference table's folder tree.
type Folder struct {
	Name    string
	Folders []Folder
}

// ExternalNode is one reference to a node stored in another file.
type ExternalNode struct {
	Flags int32

	// FileName is set when the node is addressed by file.
	FileName string

	// ResourceIndex is set when the node is addressed by resource.
	ResourceIndex int32

	NodeIndex int32
	UseFile   bool

	// FolderIndex is set when the node is addressed by file.
	FolderIndex int32
}

// IsResource reports whether the node is addressed by resource index.
func (n ExternalNode) IsResource() bool {
	return n.Flags&resourceFlag != 0
}

// NewRefTable returns a reference table with no external nodes.
func NewRefTable() *RefTable {
	return &RefTable{raw: make([]byte, 4)}
}

// Raw returns the table's bytes as read.
func (t *RefTable) Raw() []byte {
	return t.raw
}

// readRefTable parses the reference table at the start of data and
// returns it with the number of bytes it spans.
func readRefTable(data []byte, version uint16, compression byte) (*RefTable, int, error) {
	if compression != Uncompressed {
		return nil, 0, fmt.Errorf("reference table compression %q is not supported", compression)
	}

	reader := gbxio.NewReader(data)
	table := &RefTable{}

	count := reader.Int32()
	if err := reader.Err(); err != nil {
		return nil, 0, fmt.Errorf("reading external node count: %w", err)
	}
	if count < 0 {
		return nil, 0, fmt.Errorf("external node count %d is negative", count)
	}

	if count > 0 {
		// Every external node takes at least three int32 fields.
		if int(count) > reader.Remaining()/12 {
			return nil, 0, fmt.Errorf("%w: %d external nodes declared with %d bytes remaining",
				ErrTruncated, count, reader.Remaining())
		}
		table.AncestorLevel = reader.Int32()
		folders, err := readFolders(reader, 0)
		if err != nil {
			return nil, 0, err
		}
		table.Folders = folders

		table.External = make([]ExternalNode, count)
		for i := range table.External {
			node := &table.External[i]
			node.Flags = reader.Int32()
			if node.IsResource() {
				node.ResourceIndex = reader.Int32()
			} else {
				node.FileName = reader.Text()
			}
			node.NodeIndex = reader.Int32()
			if version >= 5 {
				node.UseFile = reader.Bool()
			}
			if !node.IsResource() {
				node.FolderIndex = reader.Int32()
			}
			if err := reader.Err(); err != nil {
				return nil, 0, fmt.Errorf("reading external node %d: %w", i, err)
			}
		}
	}

	if err := reader.Err(); err != nil {
		return nil, 0, fmt.Errorf("reading reference table: %w", err)
	}

	table.raw = slices.Clone(data[:reader.Offset()])
	return table, reader.Offset(), nil
}

func readFolders(reader *gbxio.Reader, depth int) ([]Folder, error) {
	if depth > maxFolderDepth {
		return nil, fmt.Errorf("reference table folders nest deeper than %d", maxFolderDepth)
	}
	count := reader.Int32()
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("reading folder count: %w", err)
	}
	if count < 0 {
		return nil, fmt.Errorf("folder count %d is negative", count)
	}
	// A folder takes at least its name length and its child count.
	if int(count) > reader.Remaining()/8 {
		return nil, fmt.Errorf("%w: %d folders declared with %d bytes remaining",
			ErrTruncated, count, reader.Remaining())
	}
	if count == 0 {
		return nil, nil
	}

	folders := make([]Folder, count)
	for i := range folders {
		folders[i].Name = reader.Text()
		if err := reader.Err(); err != nil {
			return nil, fmt.Errorf("reading folder name: %w", err)
		}
		children, err := readFolders(reader, depth+1)
		if err != nil {
			return nil, err
		}
		folders[i].Folders = children
	}
	return folders, nil
}
