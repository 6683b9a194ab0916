/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package face

import (
	"strconv"

	"github.com/named-data/closersite/core"
	"github.com/named-data/closersite/ndn"
)

// AppFace connects an application to the forwarder of its node.
// Hand-offs in both directions are scheduled with zero delay so the
// forwarder never re-enters itself from an application callback.
type AppFace struct {
	faceBase
	timer ndn.Timer
	toApp func(packet *ndn.Packet)
}

// NewAppFace creates a local face for the named application.
func NewAppFace(timer ndn.Timer, node string, app string) *AppFace {
	f := &AppFace{timer: timer}
	f.init(f, NewSimFaceURI(node), NewAppFaceURI(app), ndn.Local)
	return f
}

func (f *AppFace) String() string {
	return "AppFace, FaceID=" + strconv.FormatUint(f.faceID, 10) + ", RemoteURI=" + f.remoteURI.String()
}

// SetApplication sets the function receiving packets the forwarder sends to the application.
func (f *AppFace) SetApplication(handler func(packet *ndn.Packet)) {
	f.toApp = handler
}

// SendPacket delivers a packet from the forwarder to the application.
func (f *AppFace) SendPacket(packet *ndn.Packet) {
	if !f.countOut(packet) {
		return
	}
	if f.toApp == nil {
		core.LogDebug(f, "no application attached - DROP")
		return
	}
	handler := f.toApp
	f.timer.Schedule(0, func() {
		handler(packet)
	})
}

// Inject passes a packet from the application to the forwarder.
func (f *AppFace) Inject(packet *ndn.Packet) {
	f.timer.Schedule(0, func() {
		f.receive(packet)
	})
}
