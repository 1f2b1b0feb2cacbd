// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package classid

import (
	"fmt"
	"strconv"
	"strings"
)

// ID is a GameBox class or chunk identifier.
type ID uint32

const (
	// classMask selects the class part of an identifier.
	classMask = 0xFFFFF000

	// indexMask selects the chunk index within a class.
	indexMask = 0x00000FFF
)

// Class returns the class part of the identifier (low 12 bits cleared).
func (id ID) Class() ID {
	return id & classMask
}

// Index returns the chunk index: the low 12 bits.
func (id ID) Index() uint32 {
	return uint32(id & indexMask)
}

// WithIndex returns the chunk id formed by this id's class part and
// the given chunk index.
func (id ID) WithIndex(index uint32) ID {
	return id.Class() | ID(index&indexMask)
}

// String formats the identifier as eight upper-case hex digits with a
// 0x prefix, the form used in logs and tool output.
func (id ID) String() string {
	return fmt.Sprintf("0x%08X", uint32(id))
}

// MarshalText encodes the identifier in its [ID.String] form, so ids
// read as hex in JSON and CBOR output.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText parses an identifier written by [ID.MarshalText].
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Parse parses an identifier written as hex, with or without a 0x
// prefix.
func Parse(text string) (ID, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(text), "0x"), "0X")
	if trimmed == "" {
		return 0, fmt.Errorf("parsing class id %q: empty", text)
	}
	value, err := strconv.ParseUint(trimmed, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("parsing class id %q: %w", text, err)
	}
	return ID(value), nil
}

// names maps current class ids to engine class names. Used for log
// output and tool listings only; resolution never depends on it.
var names = map[ID]string{
	0x03043000: "CGameCtnChallenge",
	0x03078000: "CGameCtnMediaTrack",
	0x03079000: "CGameCtnMediaClip",
	0x03093000: "CGameCtnReplayRecord",
	0x03145000: "CGameCtnMediaBlockShoot",
	0x03168000: "CGamePodiumInfo",
}

// Name returns the engine class name for the class part of id. Legacy
// identifiers are looked up through their current counterpart.
func Name(id ID) (string, bool) {
	if name, ok := names[id.Class()]; ok {
		return name, true
	}
	name, ok := names[Remap(id, TrackMania2006.Inverse()).Class()]
	return name, ok
}

// NameOrUnknown is [Name] with "unknown class" in place of a miss.
func NameOrUnknown(id ID) string {
	if name, ok := Name(id); ok {
		return name
	}
	return "unknown class"
}
