// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gbx

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/bureau-foundation/gbx/lib/chunk"
	"github.com/bureau-foundation/gbx/lib/classid"
	"github.com/bureau-foundation/gbx/lib/compress"
	"github.com/bureau-foundation/gbx/lib/gbxio"
	"github.com/bureau-foundation/gbx/lib/registry"
)

// Container is a whole GameBox file.
type Container struct {
	Header   *Header
	RefTable *RefTable
	Body     *Body

	resolver registry.Resolver
}

// New returns a container with an empty header, reference table and
// body for a root node of the given class.
func New(class classid.ID, opts ...Option) *Container {
	o := buildOptions(opts)
	header := newHeader(class, &o)
	header.BodyCompression = Uncompressed
	return &Container{
		Header:   header,
		RefTable: NewRefTable(),
		Body:     &Body{Data: emptyStream()},
		resolver: o.resolver,
	}
}

func emptyStream() []byte {
	w := gbxio.NewWriter()
	w.Uint32(facade)
	return w.Data()
}

// Read reads a whole container from r.
func Read(r io.Reader, opts ...Option) (*Container, error) {
	o := buildOptions(opts)

	header, err := readHeader(r, &o)
	if err != nil {
		return nil, err
	}

	rest, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading reference table and body: %w", err)
	}

	refTable, consumed, err := readRefTable(rest, header.Version, header.RefTableCompression)
	if err != nil {
		return nil, err
	}
	report(o.progress, Progress{Stage: StageRefTable, Fraction: 1})

	body, err := readBody(rest[consumed:], header.BodyCompression)
	if err != nil {
		return nil, err
	}
	report(o.progress, Progress{Stage: StageBody, Fraction: 1})

	o.logger.Debug("read container",
		"class", header.Class,
		"name", classid.NameOrUnknown(header.Class),
		"version", header.Version,
		"header_chunks", header.Chunks().Len(),
		"external_nodes", len(refTable.External),
		"body_bytes", len(body.Data),
	)

	return &Container{
		Header:   header,
		RefTable: refTable,
		Body:     body,
		resolver: o.resolver,
	}, nil
}

// ReadFile reads the container stored at path.
func ReadFile(path string, opts ...Option) (*Container, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	container, err := Read(file, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return container, nil
}

// Node returns the root node.
func (c *Container) Node() chunk.Node {
	return c.Header.Node
}

// Write writes the container to w with ids written under policy. The
// reference table and body are written as held.
func (c *Container) Write(w io.Writer, policy classid.Policy) error {
	if err := c.Header.Write(w, policy); err != nil {
		return err
	}
	rest := gbxio.NewWriter()
	rest.Bytes(c.RefTable.raw)
	c.Body.appendTo(rest)
	if _, err := w.Write(rest.Data()); err != nil {
		return fmt.Errorf("writing reference table and body: %w", err)
	}
	return nil
}

// Bytes returns the container as written under policy.
func (c *Container) Bytes(policy classid.Policy) ([]byte, error) {
	var buffer bytes.Buffer
	if err := c.Write(&buffer, policy); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// DecodeBody reads the body's chunk stream into the root node's chunk
// set. codec is only needed for a compressed body.
func (c *Container) DecodeBody(codec compress.Codec) error {
	stream, err := c.Body.Decompress(codec)
	if err != nil {
		return err
	}
	c.Node().Chunks().Clear()
	if err := ReadBodyChunks(stream, c.Node(), c.resolver, c.Header.Remap); err != nil {
		return fmt.Errorf("decoding body: %w", err)
	}
	return nil
}

// EncodeBody replaces the body with the root node's chunk set written
// under policy and compressed with codec. A nil codec, or one that
// cannot shrink the stream, stores the body uncompressed.
func (c *Container) EncodeBody(policy classid.Policy, codec compress.Codec) error {
	stream := gbxio.NewWriter()
	if err := WriteBodyChunks(stream, c.Node(), policy); err != nil {
		return fmt.Errorf("encoding body: %w", err)
	}
	body, err := encodeBody(stream.Data(), codec)
	if err != nil {
		return fmt.Errorf("encoding body: %w", err)
	}
	c.Body = body
	c.Header.BodyCompression = Uncompressed
	if body.Compressed {
		c.Header.BodyCompression = Compressed
	}
	return nil
}
