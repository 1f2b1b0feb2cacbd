// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package classid defines the 32-bit identifiers used by GameBox files
// and the remap policies that translate them between format
// generations.
//
// An [ID] is either a class id (low 12 bits zero) or a chunk id (class
// part in the high 20 bits, chunk index in the low 12 bits). Older
// games wrote different class parts for the same engine classes; a
// [Policy] names one of those identifier spaces. Every policy is a
// permutation of the full 32-bit space, so [Remap] followed by a remap
// through [Policy.Inverse] always returns the original identifier.
//
// Readers apply the inverse policy (file id to catalogue id), writers
// apply the policy itself (catalogue id to file id). A file read and
// written under the same policy keeps its identifiers byte for byte.
//
// This package has no dependencies on other gbx packages.
package classid
