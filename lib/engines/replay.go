// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package engines

import (
	"github.com/bureau-foundation/gbx/lib/chunk"
	"github.com/bureau-foundation/gbx/lib/classid"
	"github.com/bureau-foundation/gbx/lib/gbxio"
	"github.com/bureau-foundation/gbx/lib/registry"
)

// ReplayRecord is a replay (CGameCtnReplayRecord). Only its header is
// catalogued.
type ReplayRecord struct {
	chunk.Object

	XML    string
	Author AuthorInfo
}

// NewReplayRecord returns an empty replay node.
func NewReplayRecord() *ReplayRecord {
	return &ReplayRecord{Object: chunk.MakeObject(ReplayRecordClass)}
}

// ReplayXML is header chunk 0x03093001.
type ReplayXML struct{ node *ReplayRecord }

func (c *ReplayXML) ReadWrite(rw *gbxio.ReaderWriter) error {
	rw.Text(&c.node.XML)
	return nil
}

// ReplayAuthor is header chunk 0x03093002.
type ReplayAuthor struct {
	node    *ReplayRecord
	Version int32
}

func (c *ReplayAuthor) ReadWrite(rw *gbxio.ReaderWriter) error {
	rw.Int32(&c.Version)
	readWriteAuthor(rw, &c.node.Author)
	return nil
}

func replayRecordSpec() registry.NodeSpec {
	return registry.NodeSpec{
		Class: ReplayRecordClass,
		Name:  classid.NameOrUnknown(ReplayRecordClass),
		New:   func() chunk.Node { return NewReplayRecord() },
		HeaderChunks: []chunk.Definition{
			chunk.Define(ReplayRecordClass.WithIndex(0x001), chunk.Header,
				func(n *ReplayRecord) chunk.Structured { return &ReplayXML{node: n} }),
			chunk.Define(ReplayRecordClass.WithIndex(0x002), chunk.Header,
				func(n *ReplayRecord) chunk.Structured { return &ReplayAuthor{node: n} }),
		},
	}
}
