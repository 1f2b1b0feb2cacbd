// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package classid

import (
	"fmt"
	"strings"
)

// Policy selects the identifier space a file is written in.
type Policy uint8

const (
	// Latest is the current identifier space. Remapping under Latest
	// is the identity.
	Latest Policy = iota

	// TrackMania2006 is the identifier space of the 2006 engine
	// generation, where several game classes lived under the 0x24
	// engine. The policy swaps each legacy class part with its
	// current counterpart and is therefore its own inverse.
	TrackMania2006
)

// legacyClasses pairs 2006-era class ids with their current ids.
var legacyClasses = []struct {
	legacy  ID
	current ID
}{
	{legacy: 0x24003000, current: 0x03043000}, // CGameCtnChallenge
	{legacy: 0x2403F000, current: 0x03093000}, // CGameCtnReplayRecord
	{legacy: 0x24061000, current: 0x03078000}, // CGameCtnMediaTrack
	{legacy: 0x2407E000, current: 0x03079000}, // CGameCtnMediaClip
}

// policyTable is a permutation of class parts. Class parts absent from
// forward map to themselves.
type policyTable struct {
	name    string
	forward map[ID]ID
	inverse Policy
}

var policies = map[Policy]*policyTable{}

func init() {
	policies[Latest] = &policyTable{name: "latest", forward: map[ID]ID{}, inverse: Latest}

	swap := make(map[ID]ID, 2*len(legacyClasses))
	for _, pair := range legacyClasses {
		swap[pair.current] = pair.legacy
		swap[pair.legacy] = pair.current
	}
	policies[TrackMania2006] = &policyTable{name: "tm2006", forward: swap, inverse: TrackMania2006}

	for policy, table := range policies {
		if err := table.checkPermutation(); err != nil {
			panic(fmt.Sprintf("classid: policy %d: %v", policy, err))
		}
		inverse := policies[table.inverse]
		for from, to := range table.forward {
			if back := inverse.apply(to); back != from {
				panic(fmt.Sprintf("classid: policy %s: inverse maps %s to %s, want %s",
					table.name, to, back, from))
			}
		}
	}
}

// checkPermutation verifies the table is a bijection: every target is
// distinct and is itself a key, so no identifier outside the table is
// ever produced.
func (t *policyTable) checkPermutation() error {
	seen := make(map[ID]ID, len(t.forward))
	for from, to := range t.forward {
		if from != from.Class() || to != to.Class() {
			return fmt.Errorf("entry %s -> %s is not a class id", from, to)
		}
		if previous, duplicate := seen[to]; duplicate {
			return fmt.Errorf("%s and %s both map to %s", previous, from, to)
		}
		seen[to] = from
		if _, closed := t.forward[to]; !closed {
			return fmt.Errorf("target %s is not remapped itself", to)
		}
	}
	return nil
}

func (t *policyTable) apply(id ID) ID {
	if mapped, ok := t.forward[id.Class()]; ok {
		return mapped | ID(id.Index())
	}
	return id
}

// Remap rewrites the class part of id through the policy's table and
// keeps the chunk index. Unknown policies behave like [Latest].
func Remap(id ID, policy Policy) ID {
	table, ok := policies[policy]
	if !ok {
		return id
	}
	return table.apply(id)
}

// Inverse returns the policy that undoes p.
func (p Policy) Inverse() Policy {
	if table, ok := policies[p]; ok {
		return table.inverse
	}
	return p
}

// String returns the policy's configuration name.
func (p Policy) String() string {
	if table, ok := policies[p]; ok {
		return table.name
	}
	return fmt.Sprintf("unknown(%d)", uint8(p))
}

// ParsePolicy parses a policy from its configuration name.
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(name) {
	case "latest", "":
		return Latest, nil
	case "tm2006", "trackmania2006":
		return TrackMania2006, nil
	default:
		return 0, fmt.Errorf("unknown remap policy %q (want latest or tm2006)", name)
	}
}

// Policies lists every defined policy.
func Policies() []Policy {
	return []Policy{Latest, TrackMania2006}
}

// DetectPolicy picks the policy a file was written under from its raw
// container class id. known reports whether a catalogue class id is
// registered. A raw id the catalogue does not know, but whose
// TrackMania2006 counterpart it does, selects [TrackMania2006];
// everything else reads as [Latest].
func DetectPolicy(raw ID, known func(ID) bool) Policy {
	if known(raw.Class()) {
		return Latest
	}
	if known(Remap(raw, TrackMania2006.Inverse()).Class()) {
		return TrackMania2006
	}
	return Latest
}
