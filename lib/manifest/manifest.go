// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"

	"github.com/bureau-foundation/gbx/lib/chunk"
	"github.com/bureau-foundation/gbx/lib/classid"
	"github.com/bureau-foundation/gbx/lib/codec"
	"github.com/bureau-foundation/gbx/lib/gbx"
)

// Manifest describes one container.
type Manifest struct {
	Version             uint16     `json:"version"`
	Format              string     `json:"format"`
	RefTableCompression string     `json:"ref_table_compression"`
	BodyCompression     string     `json:"body_compression"`
	Class               classid.ID `json:"class"`
	ClassName           string     `json:"class_name"`
	Remap               string     `json:"remap"`
	NumNodes            int32      `json:"num_nodes"`
	ExternalNodes       int        `json:"external_nodes"`

	// BodySize is the stored body size, compressed when the body is.
	BodySize        int  `json:"body_size"`
	BodyFingerprint Hash `json:"body_fingerprint"`

	Chunks []Chunk `json:"chunks"`

	// BodyChunks is empty unless the body was decoded.
	BodyChunks []Chunk `json:"body_chunks,omitempty"`

	Digest Hash `json:"digest"`
}

// Chunk describes one chunk.
type Chunk struct {
	ID classid.ID `json:"id"`

	// Name is the routine's type name, empty for opaque chunks.
	Name  string `json:"name,omitempty"`
	Kind  string `json:"kind"`
	Size  int    `json:"size"`
	Heavy bool   `json:"heavy,omitempty"`
	State string `json:"state"`

	Opaque      bool `json:"opaque,omitempty"`
	Fingerprint Hash `json:"fingerprint"`
}

// Build describes container. Chunk payloads are serialized as they
// would be written, so discovered chunks are fingerprinted from their
// fields and undiscovered chunks from their raw bytes.
func Build(container *gbx.Container) (Manifest, error) {
	header := container.Header
	m := Manifest{
		Version:             header.Version,
		Format:              string(rune(header.ByteFormat)),
		RefTableCompression: string(rune(header.RefTableCompression)),
		BodyCompression:     string(rune(header.BodyCompression)),
		Class:               header.Class,
		ClassName:           classid.NameOrUnknown(header.Class),
		Remap:               header.Remap.String(),
		NumNodes:            header.NumNodes,
		ExternalNodes:       len(container.RefTable.External),
		BodySize:            len(container.Body.Data),
		BodyFingerprint:     HashBody(container.Body.Data),
	}

	var err error
	if m.Chunks, err = describeSet(header.Chunks()); err != nil {
		return Manifest{}, fmt.Errorf("describing header chunks: %w", err)
	}
	if node := container.Node(); node != nil {
		if m.BodyChunks, err = describeSet(node.Chunks()); err != nil {
			return Manifest{}, fmt.Errorf("describing body chunks: %w", err)
		}
	}

	fingerprints := make([]Hash, 0, len(m.Chunks)+len(m.BodyChunks))
	for _, list := range [][]Chunk{m.Chunks, m.BodyChunks} {
		for _, described := range list {
			fingerprints = append(fingerprints, described.Fingerprint)
		}
	}
	m.Digest = HashContainer(MerkleRoot(chunkDomainKey, fingerprints))
	return m, nil
}

func describeSet(set *chunk.Set) ([]Chunk, error) {
	if set.Len() == 0 {
		return nil, nil
	}
	described := make([]Chunk, 0, set.Len())
	for slot := range set.All() {
		payload, err := slot.Payload()
		if err != nil {
			return nil, err
		}
		described = append(described, Chunk{
			ID:          slot.ID(),
			Name:        routineName(slot.Value()),
			Kind:        slot.Kind().String(),
			Size:        len(payload),
			Heavy:       slot.Heavy(),
			State:       slot.State().String(),
			Opaque:      slot.Opaque(),
			Fingerprint: HashChunk(payload),
		})
	}
	return described, nil
}

func routineName(value chunk.Structured) string {
	if value == nil {
		return ""
	}
	routine := reflect.TypeOf(value)
	if routine.Kind() == reflect.Pointer {
		routine = routine.Elem()
	}
	return routine.Name()
}

// EncodeCBOR writes m to w as deterministic CBOR.
func EncodeCBOR(w io.Writer, m Manifest) error {
	return codec.NewEncoder(w).Encode(m)
}

// EncodeJSON writes m to w as indented JSON.
func EncodeJSON(w io.Writer, m Manifest) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(m)
}

// DecodeCBOR reads a manifest written by [EncodeCBOR].
func DecodeCBOR(r io.Reader) (Manifest, error) {
	var m Manifest
	if err := codec.NewDecoder(r).Decode(&m); err != nil {
		return Manifest{}, fmt.Errorf("decoding manifest: %w", err)
	}
	return m, nil
}
