// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package compress adapts block compressors to the body compression
// boundary of a GameBox container.
//
// A container only records that its body is compressed ('C'), not
// with what; the caller picks the [Codec] by name. Retail files use
// LZO, which no maintained Go module provides, so [Lookup] reports
// [ErrCodecUnavailable] for it and such bodies are carried through
// still compressed. zlib, zstd and lz4 cover rewritten and synthetic
// containers.
package compress

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"
	"sort"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// ErrCodecUnavailable is returned by [Lookup] for a codec name that is
// known but has no implementation.
var ErrCodecUnavailable = errors.New("compression codec unavailable")

// ErrIncompressible is returned by Compress when the codec cannot
// represent the input more compactly than storing it as is. The caller
// should store the data uncompressed.
var ErrIncompressible = errors.New("data is incompressible")

// Codec compresses and decompresses whole bodies.
type Codec interface {
	// Name is the name [Lookup] resolves.
	Name() string

	// Compress returns the compressed form of data.
	Compress(data []byte) ([]byte, error)

	// Decompress expands compressed, which must yield exactly
	// uncompressedSize bytes.
	Decompress(compressed []byte, uncompressedSize int) ([]byte, error)
}

var codecs = map[string]Codec{
	"none": noneCodec{},
	"zlib": zlibCodec{},
	"zstd": zstdCodec{},
	"lz4":  lz4Codec{},
}

// unavailable lists codecs real files use that this package cannot
// serve.
var unavailable = []string{"lzo"}

// Lookup returns the codec registered under name.
func Lookup(name string) (Codec, error) {
	if codec, ok := codecs[name]; ok {
		return codec, nil
	}
	if slices.Contains(unavailable, name) {
		return nil, fmt.Errorf("%w: %s", ErrCodecUnavailable, name)
	}
	return nil, fmt.Errorf("unknown compression codec %q (have %v)", name, Names())
}

// Names returns the available codec names in sorted order.
func Names() []string {
	names := make([]string, 0, len(codecs))
	for name := range codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func checkSize(codec string, got, want int) error {
	if got != want {
		return fmt.Errorf("%s decompress: got %d bytes, expected %d", codec, got, want)
	}
	return nil
}

type noneCodec struct{}

func (noneCodec) Name() string { return "none" }

func (noneCodec) Compress(data []byte) ([]byte, error) {
	return nil, ErrIncompressible
}

func (noneCodec) Decompress(compressed []byte, uncompressedSize int) ([]byte, error) {
	if err := checkSize("none", len(compressed), uncompressedSize); err != nil {
		return nil, err
	}
	return compressed, nil
}

// zlib: the deflate stream with its two-byte header and adler32
// trailer, as written by the engine's own tools.

type zlibCodec struct{}

func (zlibCodec) Name() string { return "zlib" }

func (zlibCodec) Compress(data []byte) ([]byte, error) {
	var buffer bytes.Buffer
	writer := zlib.NewWriter(&buffer)
	if _, err := writer.Write(data); err != nil {
		return nil, fmt.Errorf("zlib compress: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("zlib compress: %w", err)
	}
	if buffer.Len() >= len(data) {
		return nil, ErrIncompressible
	}
	return buffer.Bytes(), nil
}

func (zlibCodec) Decompress(compressed []byte, uncompressedSize int) ([]byte, error) {
	reader, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("zlib decompress: %w", err)
	}
	defer reader.Close()

	// Read one byte past the expected size so an oversized stream is
	// detected without buffering all of it.
	result, err := io.ReadAll(io.LimitReader(reader, int64(uncompressedSize)+1))
	if err != nil {
		return nil, fmt.Errorf("zlib decompress: %w", err)
	}
	if err := checkSize("zlib", len(result), uncompressedSize); err != nil {
		return nil, err
	}
	return result, nil
}

// zstdEncoder and zstdDecoder are reused across calls. Both are safe
// for concurrent use.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.SpeedDefault),
	)
	if err != nil {
		panic("compress: zstd encoder initialization failed: " + err.Error())
	}

	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("compress: zstd decoder initialization failed: " + err.Error())
	}
}

type zstdCodec struct{}

func (zstdCodec) Name() string { return "zstd" }

func (zstdCodec) Compress(data []byte) ([]byte, error) {
	compressed := zstdEncoder.EncodeAll(data, nil)
	if len(compressed) >= len(data) {
		return nil, ErrIncompressible
	}
	return compressed, nil
}

func (zstdCodec) Decompress(compressed []byte, uncompressedSize int) ([]byte, error) {
	destination := make([]byte, 0, uncompressedSize)
	result, err := zstdDecoder.DecodeAll(compressed, destination)
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	if err := checkSize("zstd", len(result), uncompressedSize); err != nil {
		return nil, err
	}
	return result, nil
}

// lz4: block mode, no frame. The uncompressed size travels in the
// container, not in the block.

type lz4Codec struct{}

func (lz4Codec) Name() string { return "lz4" }

func (lz4Codec) Compress(data []byte) ([]byte, error) {
	destination := make([]byte, lz4.CompressBlockBound(len(data)))
	written, err := lz4.CompressBlock(data, destination, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	// CompressBlock returns 0 when it gives up on the input; a block
	// that is no smaller than the input is no better than storing it.
	if written == 0 || written >= len(data) {
		return nil, ErrIncompressible
	}
	return destination[:written], nil
}

func (lz4Codec) Decompress(compressed []byte, uncompressedSize int) ([]byte, error) {
	destination := make([]byte, uncompressedSize)
	read, err := lz4.UncompressBlock(compressed, destination)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	if err := checkSize("lz4", read, uncompressedSize); err != nil {
		return nil, err
	}
	return destination, nil
}
