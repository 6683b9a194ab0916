/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package face

import (
	"github.com/named-data/closersite/core"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Table holds all faces used by the forwarder of one node.
type Table struct {
	node       string
	faces      map[uint64]Face
	nextFaceID uint64
	onReceive  ReceiveHandler
}

// NewTable creates an empty face table for a node. Every packet received on
// a registered face is passed to onReceive.
func NewTable(node string, onReceive ReceiveHandler) *Table {
	return &Table{
		node:       node,
		faces:      make(map[uint64]Face),
		nextFaceID: 1,
		onReceive:  onReceive,
	}
}

func (t *Table) String() string {
	return "FaceTable-" + t.node
}

// Add adds a face to the face table and returns its new ID.
func (t *Table) Add(face Face) uint64 {
	faceID := t.nextFaceID
	t.nextFaceID++
	face.SetFaceID(faceID)
	face.SetReceiveHandler(t.onReceive)
	t.faces[faceID] = face
	core.LogDebug(t, "Registered FaceID=", faceID)
	return faceID
}

// Get gets the face with the specified ID (if any) from the face table.
func (t *Table) Get(id uint64) Face {
	return t.faces[id]
}

// GetByURI gets the face with the specified remote URI (if any) from the face table.
func (t *Table) GetByURI(remoteURI URI) Face {
	for _, id := range t.ids() {
		if t.faces[id].RemoteURI().String() == remoteURI.String() {
			return t.faces[id]
		}
	}
	return nil
}

// GetAll returns all faces ordered by ID.
func (t *Table) GetAll() []Face {
	faces := make([]Face, 0, len(t.faces))
	for _, id := range t.ids() {
		faces = append(faces, t.faces[id])
	}
	return faces
}

// Len returns the number of registered faces.
func (t *Table) Len() int {
	return len(t.faces)
}

// Remove removes a face from the face table.
func (t *Table) Remove(id uint64) {
	face, ok := t.faces[id]
	if !ok {
		return
	}
	face.SetReceiveHandler(nil)
	delete(t.faces, id)
	core.LogDebug(t, "Unregistered FaceID=", id)
}

func (t *Table) ids() []uint64 {
	ids := maps.Keys(t.faces)
	slices.Sort(ids)
	return ids
}
