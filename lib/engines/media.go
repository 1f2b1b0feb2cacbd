// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package engines

import (
	"time"

	"github.com/bureau-foundation/gbx/lib/chunk"
	"github.com/bureau-foundation/gbx/lib/classid"
	"github.com/bureau-foundation/gbx/lib/gbxio"
	"github.com/bureau-foundation/gbx/lib/registry"
)

// MediaBlockShoot is the media tracker editing cut
// (CGameCtnMediaBlockShoot).
type MediaBlockShoot struct {
	chunk.Object

	Start gbxio.TimeSingle
	End   gbxio.TimeSingle
}

// NewMediaBlockShoot returns a cut spanning the first three seconds.
func NewMediaBlockShoot() *MediaBlockShoot {
	return &MediaBlockShoot{
		Object: chunk.MakeObject(MediaBlockShootClass),
		End:    gbxio.TimeSingleOf(3 * time.Second),
	}
}

// MediaBlockShootKeys is body chunk 0x03145000.
type MediaBlockShootKeys struct{ node *MediaBlockShoot }

func (c *MediaBlockShootKeys) ReadWrite(rw *gbxio.ReaderWriter) error {
	rw.TimeSingle(&c.node.Start)
	rw.TimeSingle(&c.node.End)
	return nil
}

func mediaBlockShootSpec() registry.NodeSpec {
	return registry.NodeSpec{
		Class: MediaBlockShootClass,
		Name:  classid.NameOrUnknown(MediaBlockShootClass),
		New:   func() chunk.Node { return NewMediaBlockShoot() },
		Chunks: []chunk.Definition{
			chunk.Define(MediaBlockShootClass.WithIndex(0x000), chunk.Normal,
				func(n *MediaBlockShoot) chunk.Structured { return &MediaBlockShootKeys{node: n} }),
		},
	}
}
