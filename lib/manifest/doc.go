// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package manifest describes a parsed container: its prefix fields,
// the chunks of its header and decoded body, and BLAKE3 fingerprints
// that identify each chunk payload.
//
// A manifest is a stable, comparable summary. Two containers whose
// manifests carry the same digest hold the same chunk payloads in the
// same order, whatever identifier space they were written in, because
// fingerprints are computed over payloads and ids are listed in their
// catalogue form.
//
// Fingerprints use BLAKE3 keyed hashing with a fixed domain key per
// use (chunk payload, body stream, container digest), so a chunk
// fingerprint can never collide with a digest computed over the same
// bytes. The container digest is a binary Merkle root over the chunk
// fingerprints in file order, header chunks first.
//
// Manifests encode to CBOR through [codec] (deterministic, suitable
// for hashing and archival) or to indented JSON for people.
package manifest
