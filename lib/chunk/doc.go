// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package chunk implements the unit of GameBox serialization: chunks,
// the ordered sets that nodes own, and the lazy discovery protocol.
//
// A [Slot] holds one chunk. It is either opaque (no read/write routine
// is known for its id, so the payload is kept as raw bytes forever) or
// structured (a [Structured] value produced by a registered
// [Definition]). Structured slots start Undiscovered when they carry a
// payload and become Discovered once their routine has parsed it; the
// raw payload is dropped at that point and every later write re-runs
// the routine. Discovery never goes backwards.
//
// Typed lookups ([Get], [TryGet]) discover the slot they return.
//
// A [Set] preserves file order and rejects duplicate ids. Lookups are
// linear scans; nodes hold tens of chunks, not thousands.
package chunk
