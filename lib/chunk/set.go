// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package chunk

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/bureau-foundation/gbx/lib/classid"
)

// Set is an ordered collection of slots owned by one node. Order is
// file order; ids are unique. A Set must not be mutated from more than
// one goroutine at a time.
type Set struct {
	slots []*Slot
}

// Len returns the number of slots.
func (s *Set) Len() int {
	return len(s.slots)
}

// Add appends slot. It fails with [ErrDuplicateChunk] when a slot with
// the same id is already present.
func (s *Set) Add(slot *Slot) error {
	if existing, ok := s.Find(slot.ID()); ok {
		return &Error{ID: slot.ID(), Err: fmt.Errorf("%w (already held as %s slot)", ErrDuplicateChunk, existing.Kind())}
	}
	s.slots = append(s.slots, slot)
	return nil
}

// Find returns the slot with the given id.
func (s *Set) Find(id classid.ID) (*Slot, bool) {
	for _, slot := range s.slots {
		if slot.id == id {
			return slot, true
		}
	}
	return nil, false
}

// RemoveID removes the slot with the given id and reports whether one
// was present.
func (s *Set) RemoveID(id classid.ID) bool {
	return s.removeFirst(func(slot *Slot) bool { return slot.id == id })
}

func (s *Set) removeFirst(match func(*Slot) bool) bool {
	index := slices.IndexFunc(s.slots, match)
	if index < 0 {
		return false
	}
	s.slots = slices.Delete(s.slots, index, index+1)
	return true
}

// Clear removes every slot.
func (s *Set) Clear() {
	s.slots = nil
}

// All iterates the slots in order.
func (s *Set) All() iter.Seq[*Slot] {
	return func(yield func(*Slot) bool) {
		for _, slot := range s.slots {
			if !yield(slot) {
				return
			}
		}
	}
}

// IDs returns the slot ids in order.
func (s *Set) IDs() []classid.ID {
	ids := make([]classid.ID, len(s.slots))
	for i, slot := range s.slots {
		ids[i] = slot.id
	}
	return ids
}

// DiscoverAll discovers every slot. Failures do not stop the pass;
// they are joined into the returned error.
func (s *Set) DiscoverAll() error {
	var failures []error
	for _, slot := range s.slots {
		if err := slot.Discover(); err != nil {
			failures = append(failures, err)
		}
	}
	return errors.Join(failures...)
}

// DiscoverMany discovers every slot accepted by at least one matcher.
// Build matchers with [Is] and [HasID].
func (s *Set) DiscoverMany(matchers ...func(*Slot) bool) error {
	var failures []error
	for _, slot := range s.slots {
		if !slices.ContainsFunc(matchers, func(match func(*Slot) bool) bool { return match(slot) }) {
			continue
		}
		if err := slot.Discover(); err != nil {
			failures = append(failures, err)
		}
	}
	return errors.Join(failures...)
}

// Is matches slots whose structured value has type T.
func Is[T Structured]() func(*Slot) bool {
	return func(slot *Slot) bool {
		_, ok := slot.value.(T)
		return ok
	}
}

// HasID matches slots with one of the given ids.
func HasID(ids ...classid.ID) func(*Slot) bool {
	return func(slot *Slot) bool {
		return slices.Contains(ids, slot.id)
	}
}

// Get returns the first chunk of type T, discovering it first.
func Get[T Structured](s *Set) (T, error) {
	var zero T
	for _, slot := range s.slots {
		value, ok := slot.value.(T)
		if !ok {
			continue
		}
		if err := slot.Discover(); err != nil {
			return zero, err
		}
		return value, nil
	}
	return zero, fmt.Errorf("%w: %T", ErrChunkNotFound, zero)
}

// TryGet is [Get] reporting absence or a failed discovery as false.
func TryGet[T Structured](s *Set) (T, bool) {
	value, err := Get[T](s)
	return value, err == nil
}

// Remove removes the first chunk of type T and reports whether one was
// present.
func Remove[T Structured](s *Set) bool {
	return s.removeFirst(Is[T]())
}
