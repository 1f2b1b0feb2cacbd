// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package engines

import (
	"github.com/bureau-foundation/gbx/lib/chunk"
	"github.com/bureau-foundation/gbx/lib/classid"
	"github.com/bureau-foundation/gbx/lib/gbxio"
	"github.com/bureau-foundation/gbx/lib/registry"
)

// Challenge is a map (CGameCtnChallenge).
type Challenge struct {
	chunk.Object

	HeaderVersion int32
	XML           string
	Thumbnail     []byte
	Comments      string
	Author        AuthorInfo

	HasLaps bool
	NumLaps int32
}

// AuthorInfo is the author block shared by maps and replays.
type AuthorInfo struct {
	Version  int32
	Login    string
	Nickname string
	Zone     string
	Extra    string
}

// NewChallenge returns an empty map node.
func NewChallenge() *Challenge {
	return &Challenge{Object: chunk.MakeObject(ChallengeClass)}
}

// ChallengeVersion is header chunk 0x03043004.
type ChallengeVersion struct{ node *Challenge }

func (c *ChallengeVersion) ReadWrite(rw *gbxio.ReaderWriter) error {
	rw.Int32(&c.node.HeaderVersion)
	return nil
}

// ChallengeXML is header chunk 0x03043005.
type ChallengeXML struct{ node *Challenge }

func (c *ChallengeXML) ReadWrite(rw *gbxio.ReaderWriter) error {
	rw.Text(&c.node.XML)
	return nil
}

// ChallengeThumbnail is header chunk 0x03043007, the heavy one. A zero
// Version means the map carries neither thumbnail nor comments.
type ChallengeThumbnail struct {
	node    *Challenge
	Version int32
}

func (c *ChallengeThumbnail) ReadWrite(rw *gbxio.ReaderWriter) error {
	rw.Int32(&c.Version)
	if c.Version == 0 {
		return nil
	}
	size := int32(len(c.node.Thumbnail))
	rw.Int32(&size)
	rw.Marker("<Thumbnail.jpg>")
	rw.Bytes(&c.node.Thumbnail, int(size))
	rw.Marker("</Thumbnail.jpg>")
	rw.Marker("<Comments>")
	rw.Text(&c.node.Comments)
	rw.Marker("</Comments>")
	return nil
}

// ChallengeAuthor is header chunk 0x03043008.
type ChallengeAuthor struct {
	node    *Challenge
	Version int32
}

func (c *ChallengeAuthor) ReadWrite(rw *gbxio.ReaderWriter) error {
	rw.Int32(&c.Version)
	readWriteAuthor(rw, &c.node.Author)
	return nil
}

// ChallengeLaps is skippable body chunk 0x03043018.
type ChallengeLaps struct{ node *Challenge }

func (c *ChallengeLaps) ReadWrite(rw *gbxio.ReaderWriter) error {
	rw.Bool(&c.node.HasLaps)
	rw.Int32(&c.node.NumLaps)
	return nil
}

func readWriteAuthor(rw *gbxio.ReaderWriter, author *AuthorInfo) {
	rw.Int32(&author.Version)
	rw.Text(&author.Login)
	rw.Text(&author.Nickname)
	rw.Text(&author.Zone)
	rw.Text(&author.Extra)
}

func challengeSpec() registry.NodeSpec {
	return registry.NodeSpec{
		Class: ChallengeClass,
		Name:  classid.NameOrUnknown(ChallengeClass),
		New:   func() chunk.Node { return NewChallenge() },
		HeaderChunks: []chunk.Definition{
			chunk.Define(ChallengeClass.WithIndex(0x004), chunk.Header,
				func(n *Challenge) chunk.Structured { return &ChallengeVersion{node: n} }),
			chunk.Define(ChallengeClass.WithIndex(0x005), chunk.Header,
				func(n *Challenge) chunk.Structured { return &ChallengeXML{node: n} }),
			chunk.Define(ChallengeClass.WithIndex(0x007), chunk.Header,
				func(n *Challenge) chunk.Structured { return &ChallengeThumbnail{node: n} }),
			chunk.Define(ChallengeClass.WithIndex(0x008), chunk.Header,
				func(n *Challenge) chunk.Structured { return &ChallengeAuthor{node: n} }),
		},
		Chunks: []chunk.Definition{
			chunk.Define(ChallengeClass.WithIndex(0x018), chunk.Skippable,
				func(n *Challenge) chunk.Structured { return &ChallengeLaps{node: n} }),
		},
	}
}
