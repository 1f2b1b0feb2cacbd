// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Hash is a 32-byte BLAKE3 digest.
type Hash [32]byte

// domainKey is a 32-byte key for BLAKE3 keyed hashing.
type domainKey [32]byte

// Domain separation keys: the ASCII domain name, zero-padded to 32
// bytes. Changing one invalidates every fingerprint in its domain.
var (
	chunkDomainKey = domainKey{
		'g', 'b', 'x', '.', 'm', 'a', 'n', 'i', 'f', 'e', 's', 't', '.',
		'c', 'h', 'u', 'n', 'k', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}

	bodyDomainKey = domainKey{
		'g', 'b', 'x', '.', 'm', 'a', 'n', 'i', 'f', 'e', 's', 't', '.',
		'b', 'o', 'd', 'y', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}

	containerDomainKey = domainKey{
		'g', 'b', 'x', '.', 'm', 'a', 'n', 'i', 'f', 'e', 's', 't', '.',
		'c', 'o', 'n', 't', 'a', 'i', 'n', 'e', 'r', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	}
)

// HashChunk returns the chunk-domain fingerprint of a serialized chunk
// payload.
func HashChunk(payload []byte) Hash {
	return keyedHash(chunkDomainKey, payload)
}

// HashBody returns the body-domain fingerprint of a body as stored,
// compressed or not.
func HashBody(data []byte) Hash {
	return keyedHash(bodyDomainKey, data)
}

// HashContainer returns the container-domain digest of the Merkle root
// of a container's chunk fingerprints.
func HashContainer(merkleRoot Hash) Hash {
	return keyedHash(containerDomainKey, merkleRoot[:])
}

// MerkleRoot computes a binary Merkle tree over hashes bottom-up:
// adjacent pairs are concatenated and hashed with key. An odd node at
// the end of a level is promoted unhashed, never duplicated, so a list
// and its prefix cannot share a root. An empty list has the chunk
// fingerprint of no bytes as its root.
func MerkleRoot(key domainKey, hashes []Hash) Hash {
	if len(hashes) == 0 {
		return HashChunk(nil)
	}
	if len(hashes) == 1 {
		return hashes[0]
	}

	hasher, err := blake3.NewKeyed(key[:])
	if err != nil {
		panic("manifest: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	var combined [64]byte
	hashPair := func(left, right Hash) Hash {
		copy(combined[:32], left[:])
		copy(combined[32:], right[:])
		hasher.Reset()
		hasher.Write(combined[:])
		var result Hash
		copy(result[:], hasher.Sum(nil))
		return result
	}

	level := make([]Hash, len(hashes))
	copy(level, hashes)
	for len(level) > 1 {
		nextLength := (len(level) + 1) / 2
		next := make([]Hash, nextLength)
		for i := 0; i < len(level)-1; i += 2 {
			next[i/2] = hashPair(level[i], level[i+1])
		}
		if len(level)%2 == 1 {
			next[nextLength-1] = level[len(level)-1]
		}
		level = next
	}
	return level[0]
}

// String returns the hex form of the hash.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// MarshalText encodes the hash as hex, so manifests carry readable
// fingerprints in both JSON and CBOR.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText parses a 64-character hex string.
func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := ParseHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// ParseHash parses a 64-character hex string into a Hash.
func ParseHash(hexString string) (Hash, error) {
	var hash Hash
	decoded, err := hex.DecodeString(hexString)
	if err != nil {
		return hash, fmt.Errorf("parsing fingerprint: %w", err)
	}
	if len(decoded) != len(hash) {
		return hash, fmt.Errorf("fingerprint is %d bytes, want %d", len(decoded), len(hash))
	}
	copy(hash[:], decoded)
	return hash, nil
}

func keyedHash(key domainKey, data []byte) Hash {
	// NewKeyed only fails for a key that is not 32 bytes.
	hasher, err := blake3.NewKeyed(key[:])
	if err != nil {
		panic("manifest: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var hash Hash
	copy(hash[:], hasher.Sum(nil))
	return hash
}
