// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gbx

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/bureau-foundation/gbx/lib/chunk"
	"github.com/bureau-foundation/gbx/lib/classid"
	"github.com/bureau-foundation/gbx/lib/gbxio"
	"github.com/bureau-foundation/gbx/lib/registry"
)

// Container prefix constants.
const (
	magic = "GBX"

	// MinVersion is the oldest container version with a class id in
	// its prefix.
	MinVersion = 3

	// MaxVersion is the newest container version.
	MaxVersion = 6

	// userDataVersion is the first version carrying a header user
	// data block.
	userDataVersion = 6

	// heavyBit marks a header chunk as heavy in its size field.
	heavyBit = 1 << 31
)

// Byte format and compression markers.
const (
	FormatBinary = 'B'
	FormatText   = 'T'

	Uncompressed = 'U'
	Compressed   = 'C'
)

// Header is the container prefix and its header chunks.
type Header struct {
	Version             uint16
	ByteFormat          byte
	RefTableCompression byte
	BodyCompression     byte
	UnknownByte         byte

	// Class is the root node's class id in catalogue form.
	Class classid.ID

	// UserData is the header user data block as read, without its
	// length prefix. Writing regenerates the block from the chunks.
	UserData []byte

	// Trailing holds user data bytes found after the last chunk
	// payload. They are written back after the payloads.
	Trailing []byte

	NumNodes int32

	// Remap is the policy the header was read under.
	Remap classid.Policy

	// Node is the root node header chunks bind to.
	Node chunk.Node

	chunks chunk.Set

	resolver registry.Resolver
	logger   *slog.Logger
}

// NewHeader returns an empty version 6 header for a root node of the
// given class.
func NewHeader(class classid.ID, opts ...Option) *Header {
	o := buildOptions(opts)
	return newHeader(class, &o)
}

func newHeader(class classid.ID, o *options) *Header {
	header := &Header{
		Version:             MaxVersion,
		ByteFormat:          FormatBinary,
		RefTableCompression: Uncompressed,
		BodyCompression:     Compressed,
		UnknownByte:         'R',
		Class:               class.Class(),
		NumNodes:            1,
		resolver:            o.resolver,
		logger:              o.logger,
	}
	if o.remap != nil {
		header.Remap = *o.remap
	}
	header.Node = header.newRoot()
	return header
}

func (h *Header) newRoot() chunk.Node {
	if nodeType, ok := h.resolver.Node(h.Class); ok {
		return nodeType.New()
	}
	return chunk.NewObject(h.Class)
}

// Chunks returns the header chunk set.
func (h *Header) Chunks() *chunk.Set {
	return &h.chunks
}

// ReadHeader reads the container prefix and the header user data from
// r, leaving r positioned at the reference table.
func ReadHeader(r io.Reader, opts ...Option) (*Header, error) {
	o := buildOptions(opts)
	return readHeader(r, &o)
}

func readHeader(r io.Reader, o *options) (*Header, error) {
	header := &Header{resolver: o.resolver, logger: o.logger}

	var prefix [5]byte
	if err := readFull(r, prefix[:], "magic and version"); err != nil {
		return nil, err
	}
	if string(prefix[:3]) != magic {
		return nil, fmt.Errorf("%w: magic %q", ErrNotGameBox, prefix[:3])
	}
	header.Version = binary.LittleEndian.Uint16(prefix[3:])
	if header.Version < MinVersion || header.Version > MaxVersion {
		return nil, fmt.Errorf("%w: %d (supported %d to %d)",
			ErrUnsupportedVersion, header.Version, MinVersion, MaxVersion)
	}

	formats := make([]byte, 3, 4)
	if header.Version >= 4 {
		formats = formats[:4]
	}
	if err := readFull(r, formats, "byte format and compression"); err != nil {
		return nil, err
	}
	header.ByteFormat = formats[0]
	header.RefTableCompression = formats[1]
	header.BodyCompression = formats[2]
	if header.Version >= 4 {
		header.UnknownByte = formats[3]
	}

	var word [4]byte
	if err := readFull(r, word[:], "class id"); err != nil {
		return nil, err
	}
	raw := classid.ID(binary.LittleEndian.Uint32(word[:]))
	header.Remap = o.policyFor(raw)
	header.Class = classid.Remap(raw, header.Remap.Inverse())
	header.Node = header.newRoot()
	if raw != header.Class {
		header.logger.Info("remapped container class",
			"policy", header.Remap, "file_class", raw, "class", header.Class)
	}

	if header.Version >= userDataVersion {
		if err := readFull(r, word[:], "header user data length"); err != nil {
			return nil, err
		}
		length := int32(binary.LittleEndian.Uint32(word[:]))
		if length < 0 {
			return nil, fmt.Errorf("header user data length %d is negative", length)
		}
		// LimitReader keeps a corrupt length from allocating more than
		// the input actually holds.
		data, err := io.ReadAll(io.LimitReader(r, int64(length)))
		if err != nil {
			return nil, fmt.Errorf("reading header user data: %w", err)
		}
		if len(data) != int(length) {
			return nil, fmt.Errorf("reading header user data: %w: %d of %d bytes",
				ErrTruncated, len(data), length)
		}
		header.UserData = data
	}

	if err := readFull(r, word[:], "node count"); err != nil {
		return nil, err
	}
	header.NumNodes = int32(binary.LittleEndian.Uint32(word[:]))

	report(o.progress, Progress{Stage: StageHeader, Fraction: 1})

	if err := header.ReadUserData(header.UserData, o.progress); err != nil {
		return nil, err
	}
	return header, nil
}

// headerEntry is one row of the user data chunk table.
type headerEntry struct {
	id    classid.ID
	size  int
	heavy bool
}

// ReadUserData replaces the header chunks with those decoded from data,
// the header user data block without its length prefix. Versions
// before 6 and empty blocks yield no chunks.
//
// Known chunks are bound to the root node and discovered immediately.
// Chunks of classes the resolver does not know are kept opaque.
func (h *Header) ReadUserData(data []byte, sink ProgressSink) error {
	h.chunks.Clear()
	h.Trailing = nil
	if h.Version < userDataVersion || len(data) == 0 {
		return nil
	}

	reader := gbxio.NewReader(data)
	count := reader.Int32()
	if err := reader.Err(); err != nil {
		return fmt.Errorf("reading header chunk count: %w", err)
	}
	if count < 0 {
		return fmt.Errorf("header chunk count %d is negative", count)
	}
	if int(count) > reader.Remaining()/8 {
		return fmt.Errorf("%w: %d header chunks declared, table space for %d",
			ErrTruncated, count, reader.Remaining()/8)
	}

	entries := make([]headerEntry, count)
	for i := range entries {
		raw := classid.ID(reader.Uint32())
		size := reader.Uint32()
		entries[i] = headerEntry{
			id:    classid.Remap(raw, h.Remap.Inverse()),
			size:  int(size &^ heavyBit),
			heavy: size&heavyBit != 0,
		}
	}
	if err := reader.Err(); err != nil {
		return fmt.Errorf("reading header chunk table: %w", err)
	}

	for _, entry := range entries {
		h.logger.Debug("header chunk",
			"id", entry.id, "size", entry.size, "heavy", entry.heavy)
	}

	for _, entry := range entries {
		payload := reader.Bytes(entry.size)
		if err := reader.Err(); err != nil {
			return &chunk.Error{ID: entry.id, Err: fmt.Errorf("reading payload: %w", err)}
		}

		slot, err := h.materialize(entry, payload)
		if err != nil {
			return err
		}
		if err := h.chunks.Add(slot); err != nil {
			return err
		}

		report(sink, Progress{
			Stage:    StageHeaderUserData,
			Fraction: float64(reader.Offset()) / float64(reader.Len()),
			Chunk:    slot,
		})
	}

	if reader.Remaining() > 0 {
		h.logger.Warn("header user data has trailing bytes after the last chunk, keeping them",
			"bytes", reader.Remaining())
		h.Trailing = slices.Clone(reader.Bytes(reader.Remaining()))
	}
	return nil
}

// materialize turns one table entry and its payload into a slot.
func (h *Header) materialize(entry headerEntry, payload []byte) (*chunk.Slot, error) {
	nodeType, known := h.resolver.Node(entry.id)
	if !known {
		h.logger.Info("header chunk class not implemented, keeping it opaque",
			"chunk", entry.id, "class", entry.id.Class(), "name", classid.NameOrUnknown(entry.id))
		return h.opaque(entry, nil, payload), nil
	}

	if !nodeType.HasHeaderTable() {
		return nil, &chunk.Error{ID: entry.id, Err: fmt.Errorf(
			"%w: node type %s has no header chunk table", ErrRegistryInconsistency, nodeType.Name())}
	}

	definition, ok := nodeType.HeaderChunk(entry.id)
	if !ok {
		h.logger.Info("header chunk not implemented, keeping it opaque",
			"chunk", entry.id, "node", nodeType.Name())
		return h.opaque(entry, h.Node, payload), nil
	}

	slot, err := chunk.NewSlot(*definition, h.Node, payload)
	if errors.Is(err, chunk.ErrNodeMismatch) {
		h.logger.Info("header chunk does not belong to the root node, keeping it opaque",
			"chunk", entry.id, "node", nodeType.Name(), "root", h.Node.Class())
		return h.opaque(entry, h.Node, payload), nil
	}
	if err != nil {
		return nil, &chunk.Error{ID: entry.id, Err: fmt.Errorf("%w: %w", ErrRegistryInconsistency, err)}
	}
	slot.SetHeavy(entry.heavy)

	if err := slot.Discover(); err != nil {
		if !errors.Is(err, chunk.ErrTrailingData) {
			return nil, err
		}
		h.logger.Warn("header chunk routine left bytes unread, keeping payload raw",
			"chunk", entry.id, "error", err)
	}
	return slot, nil
}

func (h *Header) opaque(entry headerEntry, node chunk.Node, payload []byte) *chunk.Slot {
	slot := chunk.NewOpaque(entry.id, chunk.Header, node, payload)
	slot.SetHeavy(entry.heavy)
	return slot
}

// MarshalUserData serializes the header chunks as a user data block
// with ids written under policy. The result has no length prefix.
//
// A header that was read without user data and still has no chunks
// yields an empty block. Trailing bytes follow the payloads.
func (h *Header) MarshalUserData(policy classid.Policy) ([]byte, error) {
	if h.chunks.Len() == 0 && len(h.UserData) == 0 && len(h.Trailing) == 0 {
		return nil, nil
	}

	payloads := gbxio.NewWriter()
	lengths := make([]int, 0, h.chunks.Len())
	for slot := range h.chunks.All() {
		start := payloads.Len()
		if err := slot.AppendTo(payloads); err != nil {
			return nil, err
		}
		length := payloads.Len() - start
		if uint64(length) >= heavyBit {
			return nil, &chunk.Error{ID: slot.ID(), Err: fmt.Errorf("payload of %d bytes overflows the size field", length)}
		}
		lengths = append(lengths, length)
	}

	block := gbxio.NewWriter()
	block.Int32(int32(h.chunks.Len()))
	index := 0
	for slot := range h.chunks.All() {
		size := uint32(lengths[index])
		if slot.Heavy() {
			size |= heavyBit
		}
		block.Uint32(uint32(classid.Remap(slot.ID(), policy)))
		block.Uint32(size)
		index++
	}
	block.Bytes(payloads.Data())
	block.Bytes(h.Trailing)
	return block.Data(), nil
}

// Write writes the container prefix and header user data to w with ids
// written under policy.
func (h *Header) Write(w io.Writer, policy classid.Policy) error {
	if h.Version < MinVersion || h.Version > MaxVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}

	out := gbxio.NewWriter()
	out.Bytes([]byte(magic))
	out.Uint16(h.Version)
	out.Uint8(h.ByteFormat)
	out.Uint8(h.RefTableCompression)
	out.Uint8(h.BodyCompression)
	if h.Version >= 4 {
		out.Uint8(h.UnknownByte)
	}
	out.Uint32(uint32(classid.Remap(h.Class, policy)))

	if h.Version >= userDataVersion {
		block, err := h.MarshalUserData(policy)
		if err != nil {
			return fmt.Errorf("serializing header user data: %w", err)
		}
		out.Int32(int32(len(block)))
		out.Bytes(block)
	}
	out.Int32(h.NumNodes)

	if _, err := w.Write(out.Data()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	return nil
}

// CreateChunk adds a header chunk for id bound to the root node, with
// data as its undiscovered payload. An empty data creates a discovered
// chunk with zero fields.
func (h *Header) CreateChunk(id classid.ID, data []byte) (*chunk.Slot, error) {
	nodeType, ok := h.resolver.Node(id)
	if !ok {
		return nil, fmt.Errorf("%w: class of %s is not registered", ErrUnknownChunk, id)
	}
	definition, ok := nodeType.HeaderChunk(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no header chunk %s", ErrUnknownChunk, nodeType.Name(), id)
	}
	slot, err := chunk.NewSlot(*definition, h.Node, data)
	if err != nil {
		return nil, err
	}
	if err := h.chunks.Add(slot); err != nil {
		return nil, err
	}
	return slot, nil
}

// InsertChunk adds an existing header slot.
func (h *Header) InsertChunk(slot *chunk.Slot) error {
	if slot.Kind() != chunk.Header {
		return &chunk.Error{ID: slot.ID(), Err: fmt.Errorf("cannot insert a %s chunk into the header", slot.Kind())}
	}
	return h.chunks.Add(slot)
}

// DiscoverAll discovers every header chunk.
func (h *Header) DiscoverAll() error {
	return h.chunks.DiscoverAll()
}

// Discover discovers the header chunks with the given ids.
func (h *Header) Discover(ids ...classid.ID) error {
	return h.chunks.DiscoverMany(chunk.HasID(ids...))
}

// RemoveAll removes every header chunk.
func (h *Header) RemoveAll() {
	h.chunks.Clear()
}
