/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package face

import (
	"strconv"

	"github.com/named-data/closersite/core"
	"github.com/named-data/closersite/ndn"
)

// ReceiveHandler is called for every packet a face delivers to its forwarder.
type ReceiveHandler func(packet *ndn.Packet, inFace Face)

// Face is the interface shared by all faces of a simulated node.
type Face interface {
	String() string
	FaceID() uint64
	SetFaceID(faceID uint64)
	LocalURI() URI
	RemoteURI() URI
	Scope() ndn.Scope
	State() State
	SetState(state State)
	Counters() Counters

	// SendPacket hands a packet to the face for transmission towards its remote end
	SendPacket(packet *ndn.Packet)

	// SetReceiveHandler sets the function receiving packets arriving on the face
	SetReceiveHandler(handler ReceiveHandler)
}

// Counters holds per-face packet counters.
type Counters struct {
	NInInterests  uint64 `yaml:"in_interests"`
	NInData       uint64 `yaml:"in_data"`
	NInNacks      uint64 `yaml:"in_nacks"`
	NOutInterests uint64 `yaml:"out_interests"`
	NOutData      uint64 `yaml:"out_data"`
	NOutNacks     uint64 `yaml:"out_nacks"`
	NDropped      uint64 `yaml:"dropped"`
	NOutOctets    uint64 `yaml:"out_octets"`
}

// faceBase is the type upon which all face implementations are built
type faceBase struct {
	faceID    uint64
	localURI  URI
	remoteURI URI
	scope     ndn.Scope
	state     State
	counters  Counters
	onReceive ReceiveHandler
	self      Face
}

func (f *faceBase) init(self Face, localURI URI, remoteURI URI, scope ndn.Scope) {
	f.self = self
	f.localURI = localURI
	f.remoteURI = remoteURI
	f.scope = scope
	f.state = Up
}

func (f *faceBase) String() string {
	return "Face, FaceID=" + strconv.FormatUint(f.faceID, 10) + ", RemoteURI=" + f.remoteURI.String() + ", LocalURI=" + f.localURI.String()
}

// FaceID returns the ID of the face
func (f *faceBase) FaceID() uint64 {
	return f.faceID
}

// SetFaceID sets the ID of the face. Only the face table assigns IDs.
func (f *faceBase) SetFaceID(faceID uint64) {
	f.faceID = faceID
}

// LocalURI returns the local URI of the face
func (f *faceBase) LocalURI() URI {
	return f.localURI
}

// RemoteURI returns the remote URI of the face
func (f *faceBase) RemoteURI() URI {
	return f.remoteURI
}

// Scope returns the scope of the face
func (f *faceBase) Scope() ndn.Scope {
	return f.scope
}

// State returns the state of the face
func (f *faceBase) State() State {
	return f.state
}

// SetState changes the state of the face.
func (f *faceBase) SetState(state State) {
	if f.state == state {
		return
	}
	core.LogInfo(f.self, "- state:", f.state, "->", state)
	f.state = state
}

// Counters returns a copy of the face counters.
func (f *faceBase) Counters() Counters {
	return f.counters
}

func (f *faceBase) SetReceiveHandler(handler ReceiveHandler) {
	f.onReceive = handler
}

// countOut updates the outgoing counters. It returns false if the face cannot send.
func (f *faceBase) countOut(packet *ndn.Packet) bool {
	if f.state != Up {
		core.LogWarn(f.self, "cannot send packet on down face - DROP")
		f.counters.NDropped++
		return false
	}
	switch {
	case packet.Interest != nil:
		f.counters.NOutInterests++
	case packet.Data != nil:
		f.counters.NOutData++
	case packet.Nack != nil:
		f.counters.NOutNacks++
	}
	f.counters.NOutOctets += uint64(packet.WireSize())
	return true
}

// receive delivers an incoming packet to the forwarder owning the face.
func (f *faceBase) receive(packet *ndn.Packet) {
	if f.state != Up {
		core.LogDebug(f.self, "received packet on down face - DROP")
		f.counters.NDropped++
		return
	}
	switch {
	case packet.Interest != nil:
		f.counters.NInInterests++
	case packet.Data != nil:
		f.counters.NInData++
	case packet.Nack != nil:
		f.counters.NInNacks++
	default:
		core.LogWarn(f.self, "received empty packet - DROP")
		return
	}
	if f.onReceive == nil {
		core.LogDebug(f.self, "no forwarder attached - DROP")
		return
	}
	f.onReceive(packet, f.self)
}
