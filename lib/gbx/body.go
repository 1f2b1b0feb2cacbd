// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gbx

import (
	"errors"
	"fmt"
	"slices"

	"github.com/bureau-foundation/gbx/lib/compress"
	"github.com/bureau-foundation/gbx/lib/gbxio"
)

// Body is the container body: the node's chunk stream, usually
// compressed. It is kept as bytes until decoded.
type Body struct {
	Compressed bool

	// UncompressedSize is the size recorded for a compressed body.
	UncompressedSize int32

	// Data is the compressed stream when Compressed is set, the chunk
	// stream itself otherwise.
	Data []byte

	// Trailing holds bytes found after a compressed body.
	Trailing []byte
}

func readBody(data []byte, compression byte) (*Body, error) {
	switch compression {
	case Uncompressed:
		return &Body{Data: slices.Clone(data)}, nil
	case Compressed:
	default:
		return nil, fmt.Errorf("body compression %q is not supported", compression)
	}

	reader := gbxio.NewReader(data)
	body := &Body{Compressed: true}
	body.UncompressedSize = reader.Int32()
	compressedSize := reader.Int32()
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("reading body sizes: %w", err)
	}
	if body.UncompressedSize < 0 || compressedSize < 0 {
		return nil, fmt.Errorf("body sizes %d (uncompressed) and %d (compressed) must not be negative",
			body.UncompressedSize, compressedSize)
	}
	body.Data = reader.Bytes(int(compressedSize))
	if err := reader.Err(); err != nil {
		return nil, fmt.Errorf("reading compressed body: %w", err)
	}
	if reader.Remaining() > 0 {
		body.Trailing = reader.Bytes(reader.Remaining())
	}
	return body, nil
}

func (b *Body) appendTo(w *gbxio.Writer) {
	if b.Compressed {
		w.Int32(b.UncompressedSize)
		w.Int32(int32(len(b.Data)))
	}
	w.Bytes(b.Data)
	w.Bytes(b.Trailing)
}

// Decompress returns the body's chunk stream. codec is only consulted
// for a compressed body and may be nil otherwise.
func (b *Body) Decompress(codec compress.Codec) ([]byte, error) {
	if !b.Compressed {
		return b.Data, nil
	}
	if codec == nil {
		return nil, errors.New("body is compressed and no codec was given")
	}
	data, err := codec.Decompress(b.Data, int(b.UncompressedSize))
	if err != nil {
		return nil, fmt.Errorf("decompressing body with %s: %w", codec.Name(), err)
	}
	return data, nil
}

// encodeBody builds a body from a chunk stream. A nil codec, or one
// that cannot shrink the stream, yields an uncompressed body.
func encodeBody(stream []byte, codec compress.Codec) (*Body, error) {
	if codec == nil {
		return &Body{Data: stream}, nil
	}
	compressed, err := codec.Compress(stream)
	if errors.Is(err, compress.ErrIncompressible) {
		return &Body{Data: stream}, nil
	}
	if err != nil {
		return nil, err
	}
	return &Body{
		Compressed:       true,
		UncompressedSize: int32(len(stream)),
		Data:             compressed,
	}, nil
}
