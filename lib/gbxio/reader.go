// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gbxio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrTruncated is wrapped by every error caused by a read past the end
// of the available bytes.
var ErrTruncated = errors.New("truncated data")

// Reader consumes little-endian values from a byte slice.
type Reader struct {
	data   []byte
	offset int
	err    error
}

// NewReader returns a reader positioned at the start of data. The
// reader does not copy data; byte slices it returns are copies.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Len returns the total number of bytes the reader was created with.
func (r *Reader) Len() int {
	return len(r.data)
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int {
	return r.offset
}

// Remaining returns the number of unconsumed bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.offset
}

// Err returns the first error encountered, or nil.
func (r *Reader) Err() error {
	return r.err
}

// Peek returns the next n bytes without consuming them. It reports
// false, and records nothing, when fewer than n bytes remain.
func (r *Reader) Peek(n int) ([]byte, bool) {
	if r.err != nil || n < 0 || n > r.Remaining() {
		return nil, false
	}
	return r.data[r.offset : r.offset+n], true
}

// fail records err unless an earlier error is already recorded.
func (r *Reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

// take returns the next n bytes without copying, or nil after
// recording a truncation error.
func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 {
		r.fail(fmt.Errorf("negative length %d at offset %d", n, r.offset))
		return nil
	}
	if n > r.Remaining() {
		r.fail(fmt.Errorf("%w: need %d bytes at offset %d, %d remain",
			ErrTruncated, n, r.offset, r.Remaining()))
		return nil
	}
	span := r.data[r.offset : r.offset+n]
	r.offset += n
	return span
}

// Bytes returns a copy of the next n bytes.
func (r *Reader) Bytes(n int) []byte {
	span := r.take(n)
	if span == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, span)
	return out
}

// Uint8 reads one byte.
func (r *Reader) Uint8() uint8 {
	span := r.take(1)
	if span == nil {
		return 0
	}
	return span[0]
}

// Uint16 reads a little-endian uint16.
func (r *Reader) Uint16() uint16 {
	span := r.take(2)
	if span == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(span)
}

// Int16 reads a little-endian int16.
func (r *Reader) Int16() int16 {
	return int16(r.Uint16())
}

// Uint32 reads a little-endian uint32.
func (r *Reader) Uint32() uint32 {
	span := r.take(4)
	if span == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(span)
}

// Int32 reads a little-endian int32.
func (r *Reader) Int32() int32 {
	return int32(r.Uint32())
}

// Float32 reads a little-endian IEEE 754 single.
func (r *Reader) Float32() float32 {
	return math.Float32frombits(r.Uint32())
}

// Bool reads a 4-byte boolean. Any non-zero value is true.
func (r *Reader) Bool() bool {
	return r.Uint32() != 0
}

// Text reads an int32 byte length followed by that many bytes of
// UTF-8 text.
func (r *Reader) Text() string {
	length := r.Int32()
	if r.err != nil {
		return ""
	}
	return string(r.take(int(length)))
}
