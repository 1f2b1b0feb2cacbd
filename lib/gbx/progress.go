// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gbx

import (
	"fmt"

	"github.com/bureau-foundation/gbx/lib/chunk"
)

// Stage is the part of the container being read.
type Stage uint8

const (
	StageHeader Stage = iota
	StageHeaderUserData
	StageRefTable
	StageBody
)

func (s Stage) String() string {
	switch s {
	case StageHeader:
		return "header"
	case StageHeaderUserData:
		return "header user data"
	case StageRefTable:
		return "reference table"
	case StageBody:
		return "body"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// Progress is one progress report.
type Progress struct {
	Stage Stage

	// Fraction is the share of the stage's input consumed so far, in
	// [0, 1].
	Fraction float64

	// Chunk is the slot just materialized, or nil for reports that are
	// not about a chunk.
	Chunk *chunk.Slot
}

// ProgressSink receives progress reports. Reports are delivered
// synchronously on the reading goroutine, so Report should return
// quickly. Reports are advisory and never affect the read.
type ProgressSink interface {
	Report(Progress)
}

// ProgressFunc adapts a function to [ProgressSink].
type ProgressFunc func(Progress)

// Report calls f.
func (f ProgressFunc) Report(progress Progress) { f(progress) }

func report(sink ProgressSink, progress Progress) {
	if sink != nil {
		sink.Report(progress)
	}
}
