// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gbxio

import (
	"encoding/binary"
	"math"
)

// Writer appends little-endian values to an in-memory buffer. Writes
// cannot fail; the buffer grows as needed.
type Writer struct {
	buffer []byte
}

// NewWriter returns an empty writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buffer)
}

// Data returns the written bytes. The slice aliases the writer's
// buffer until the next write.
func (w *Writer) Data() []byte {
	return w.buffer
}

// Write implements io.Writer.
func (w *Writer) Write(data []byte) (int, error) {
	w.buffer = append(w.buffer, data...)
	return len(data), nil
}

// Bytes appends data unchanged.
func (w *Writer) Bytes(data []byte) {
	w.buffer = append(w.buffer, data...)
}

// Uint8 appends one byte.
func (w *Writer) Uint8(value uint8) {
	w.buffer = append(w.buffer, value)
}

// Uint16 appends a little-endian uint16.
func (w *Writer) Uint16(value uint16) {
	w.buffer = binary.LittleEndian.AppendUint16(w.buffer, value)
}

// Int16 appends a little-endian int16.
func (w *Writer) Int16(value int16) {
	w.Uint16(uint16(value))
}

// Uint32 appends a little-endian uint32.
func (w *Writer) Uint32(value uint32) {
	w.buffer = binary.LittleEndian.AppendUint32(w.buffer, value)
}

// Int32 appends a little-endian int32.
func (w *Writer) Int32(value int32) {
	w.Uint32(uint32(value))
}

// Float32 appends a little-endian IEEE 754 single.
func (w *Writer) Float32(value float32) {
	w.Uint32(math.Float32bits(value))
}

// Bool appends a 4-byte boolean (0 or 1).
func (w *Writer) Bool(value bool) {
	if value {
		w.Uint32(1)
		return
	}
	w.Uint32(0)
}

// Text appends an int32 byte length followed by the bytes of value.
func (w *Writer) Text(value string) {
	w.Int32(int32(len(value)))
	w.buffer = append(w.buffer, value...)
}
