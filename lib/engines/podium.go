// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package engines

import (
	"github.com/bureau-foundation/gbx/lib/chunk"
	"github.com/bureau-foundation/gbx/lib/classid"
	"github.com/bureau-foundation/gbx/lib/gbxio"
	"github.com/bureau-foundation/gbx/lib/registry"
)

// PodiumInfo lists the media clips played on the podium
// (CGamePodiumInfo).
type PodiumInfo struct {
	chunk.Object

	MediaClipFids []int32
}

// NewPodiumInfo returns an empty podium node.
func NewPodiumInfo() *PodiumInfo {
	return &PodiumInfo{Object: chunk.MakeObject(PodiumInfoClass)}
}

// PodiumInfoClips is body chunk 0x03168000. U01 is not understood and
// is carried through unchanged.
type PodiumInfoClips struct {
	node *PodiumInfo
	U01  int32
}

func (c *PodiumInfoClips) ReadWrite(rw *gbxio.ReaderWriter) error {
	rw.Int32(&c.U01)
	rw.Int32Array(&c.node.MediaClipFids)
	return nil
}

func podiumInfoSpec() registry.NodeSpec {
	return registry.NodeSpec{
		Class: PodiumInfoClass,
		Name:  classid.NameOrUnknown(PodiumInfoClass),
		New:   func() chunk.Node { return NewPodiumInfo() },
		Chunks: []chunk.Definition{
			chunk.Define(PodiumInfoClass.WithIndex(0x000), chunk.Normal,
				func(n *PodiumInfo) chunk.Structured { return &PodiumInfoClips{node: n} }),
		},
	}
}
