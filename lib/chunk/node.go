// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package chunk

import "github.com/bureau-foundation/gbx/lib/classid"

// Node is a class-identified object that owns a chunk set.
type Node interface {
	Class() classid.ID
	Chunks() *Set
}

// Object is the base every node type embeds. It is also the node used
// for classes the registry does not know.
type Object struct {
	class  classid.ID
	chunks Set
}

// MakeObject returns an Object value for embedding in a node type.
func MakeObject(class classid.ID) Object {
	return Object{class: class.Class()}
}

// NewObject returns a standalone node of the given class.
func NewObject(class classid.ID) *Object {
	object := MakeObject(class)
	return &object
}

// Class returns the node's class id.
func (o *Object) Class() classid.ID {
	return o.class
}

// Chunks returns the node's body chunk set.
func (o *Object) Chunks() *Set {
	return &o.chunks
}
