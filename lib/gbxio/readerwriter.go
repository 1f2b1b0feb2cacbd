// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gbxio

import (
	"errors"
	"fmt"
	"time"
)

// ErrMarker is wrapped when a fixed marker string in a payload does
// not match the expected text.
var ErrMarker = errors.New("marker mismatch")

// TimeSingle is a duration stored as float32 seconds. Kept as the
// stored float so re-serialization is bit-exact.
type TimeSingle float32

// Duration converts the stored seconds to a time.Duration.
func (t TimeSingle) Duration() time.Duration {
	return time.Duration(float64(t) * float64(time.Second))
}

// TimeSingleOf converts d to float32 seconds.
func TimeSingleOf(d time.Duration) TimeSingle {
	return TimeSingle(d.Seconds())
}

// ReaderWriter is the two-way visitor a chunk routine is written
// against. Exactly one of the reader or writer is set.
type ReaderWriter struct {
	reader *Reader
	writer *Writer
	err    error
}

// NewReading returns a visitor that fills fields from r.
func NewReading(r *Reader) *ReaderWriter {
	return &ReaderWriter{reader: r}
}

// NewWriting returns a visitor that appends fields to w.
func NewWriting(w *Writer) *ReaderWriter {
	return &ReaderWriter{writer: w}
}

// Reading reports whether the visitor is in reading mode.
func (rw *ReaderWriter) Reading() bool {
	return rw.reader != nil
}

// Reader returns the underlying reader, nil in writing mode.
func (rw *ReaderWriter) Reader() *Reader {
	return rw.reader
}

// Writer returns the underlying writer, nil in reading mode.
func (rw *ReaderWriter) Writer() *Writer {
	return rw.writer
}

// Err returns the first error encountered by the visitor or its
// reader.
func (rw *ReaderWriter) Err() error {
	if rw.err != nil {
		return rw.err
	}
	if rw.reader != nil {
		return rw.reader.Err()
	}
	return nil
}

// Fail records err as the visitor's error unless one is already
// recorded. Routines use it for semantic validation failures.
func (rw *ReaderWriter) Fail(err error) {
	if rw.err == nil {
		rw.err = err
	}
}

func (rw *ReaderWriter) failed() bool {
	return rw.Err() != nil
}

// Byte visits one byte.
func (rw *ReaderWriter) Byte(value *uint8) {
	if rw.failed() {
		return
	}
	if rw.reader != nil {
		*value = rw.reader.Uint8()
		return
	}
	rw.writer.Uint8(*value)
}

// Int16 visits a little-endian int16.
func (rw *ReaderWriter) Int16(value *int16) {
	if rw.failed() {
		return
	}
	if rw.reader != nil {
		*value = rw.reader.Int16()
		return
	}
	rw.writer.Int16(*value)
}

// Int32 visits a little-endian int32.
func (rw *ReaderWriter) Int32(value *int32) {
	if rw.failed() {
		return
	}
	if rw.reader != nil {
		*value = rw.reader.Int32()
		return
	}
	rw.writer.Int32(*value)
}

// Uint32 visits a little-endian uint32.
func (rw *ReaderWriter) Uint32(value *uint32) {
	if rw.failed() {
		return
	}
	if rw.reader != nil {
		*value = rw.reader.Uint32()
		return
	}
	rw.writer.Uint32(*value)
}

// Float32 visits a little-endian float32.
func (rw *ReaderWriter) Float32(value *float32) {
	if rw.failed() {
		return
	}
	if rw.reader != nil {
		*value = rw.reader.Float32()
		return
	}
	rw.writer.Float32(*value)
}

// Bool visits a 4-byte boolean.
func (rw *ReaderWriter) Bool(value *bool) {
	if rw.failed() {
		return
	}
	if rw.reader != nil {
		*value = rw.reader.Bool()
		return
	}
	rw.writer.Bool(*value)
}

// Text visits a length-prefixed string.
func (rw *ReaderWriter) Text(value *string) {
	if rw.failed() {
		return
	}
	if rw.reader != nil {
		*value = rw.reader.Text()
		return
	}
	rw.writer.Text(*value)
}

// TimeSingle visits a float32-seconds duration.
func (rw *ReaderWriter) TimeSingle(value *TimeSingle) {
	seconds := float32(*value)
	rw.Float32(&seconds)
	*value = TimeSingle(seconds)
}

// Bytes visits exactly n raw bytes. In writing mode the slice must
// hold n bytes.
func (rw *ReaderWriter) Bytes(value *[]byte, n int) {
	if rw.failed() {
		return
	}
	if rw.reader != nil {
		*value = rw.reader.Bytes(n)
		return
	}
	if len(*value) != n {
		rw.Fail(fmt.Errorf("writing %d raw bytes, have %d", n, len(*value)))
		return
	}
	rw.writer.Bytes(*value)
}

// ByteArray visits an int32 length followed by that many raw bytes.
func (rw *ReaderWriter) ByteArray(value *[]byte) {
	length := int32(len(*value))
	rw.Int32(&length)
	rw.Bytes(value, int(length))
}

// Int32Array visits an int32 count followed by that many int32s.
func (rw *ReaderWriter) Int32Array(value *[]int32) {
	count := int32(len(*value))
	rw.Int32(&count)
	if rw.failed() {
		return
	}
	if rw.reader != nil {
		if count < 0 || int(count) > rw.reader.Remaining()/4 {
			if count < 0 {
				rw.Fail(fmt.Errorf("negative array count %d", count))
			} else {
				rw.Fail(fmt.Errorf("%w: array of %d int32 with %d bytes remaining",
					ErrTruncated, count, rw.reader.Remaining()))
			}
			return
		}
		values := make([]int32, count)
		for i := range values {
			values[i] = rw.reader.Int32()
		}
		*value = values
		return
	}
	for _, element := range *value {
		rw.writer.Int32(element)
	}
}

// Marker visits a fixed ASCII marker with no length prefix. Reading
// fails with [ErrMarker] when the payload holds different bytes.
func (rw *ReaderWriter) Marker(marker string) {
	if rw.failed() {
		return
	}
	if rw.reader != nil {
		got := rw.reader.Bytes(len(marker))
		if rw.failed() {
			return
		}
		if string(got) != marker {
			rw.Fail(fmt.Errorf("%w: want %q, got %q", ErrMarker, marker, got))
		}
		return
	}
	rw.writer.Bytes([]byte(marker))
}
