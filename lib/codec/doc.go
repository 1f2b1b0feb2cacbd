// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the CBOR encoding configuration shared by
// every package that emits CBOR.
//
// Container descriptions leave the process in two forms: JSON for
// people and scripts, CBOR for tools that compare or archive them.
// The CBOR encoder uses Core Deterministic Encoding (RFC 8949 §4.2):
// sorted map keys, smallest integer encoding, no indefinite-length
// items. The same container always describes to identical bytes, so
// two descriptions can be compared with a byte comparison or a hash.
//
// For buffers:
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For streams:
//
//	encoder := codec.NewEncoder(w)
//	decoder := codec.NewDecoder(r)
//
// Types implementing encoding.TextMarshaler, such as classid.ID, are
// encoded as CBOR text strings. Struct fields are named by their
// `json` tags, which fxamacker/cbor reads when a `cbor` tag is absent,
// so one tag serves both output formats.
package codec
