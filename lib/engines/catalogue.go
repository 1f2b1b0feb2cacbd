// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package engines

import (
	"fmt"
	"sync"

	"github.com/bureau-foundation/gbx/lib/classid"
	"github.com/bureau-foundation/gbx/lib/registry"
)

// Class ids of the catalogued node types.
const (
	ChallengeClass       classid.ID = 0x03043000
	ReplayRecordClass    classid.ID = 0x03093000
	MediaBlockShootClass classid.ID = 0x03145000
	PodiumInfoClass      classid.ID = 0x03168000
)

// Catalogue returns the node specs the default registry is built from.
// The slice is freshly allocated on every call.
func Catalogue() []registry.NodeSpec {
	return []registry.NodeSpec{
		challengeSpec(),
		replayRecordSpec(),
		mediaBlockShootSpec(),
		podiumInfoSpec(),
	}
}

// Registry returns the process-wide registry. It is built once on
// first call; a catalogue that fails validation is a build defect and
// panics.
var Registry = sync.OnceValue(func() *registry.Registry {
	built, err := registry.New(Catalogue()...)
	if err != nil {
		panic(fmt.Sprintf("engines: invalid catalogue: %v", err))
	}
	return built
})
