/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package face

import (
	"math/rand"
	"strconv"
	"time"

	"github.com/named-data/closersite/core"
	"github.com/named-data/closersite/ndn"
	"github.com/named-data/closersite/utils/comparison"
)

// lpHeaderSize is the per-fragment overhead of the link protocol, in octets.
const lpHeaderSize = 16

// LinkParams describes one direction of a simulated point-to-point link.
type LinkParams struct {
	// Bandwidth in bits per second. Zero selects the configured default.
	Bandwidth int64
	// Delay is the propagation delay.
	Delay time.Duration
	// QueueSize is the number of packets that may wait for transmission. Zero selects the configured default.
	QueueSize int
	// LossRate is the probability that a packet is lost in transit.
	LossRate float64
	// MTU in octets. Zero selects the configured default.
	MTU int
}

// DefaultLinkParams returns the parameters of a link with no annotations.
func DefaultLinkParams() LinkParams {
	return LinkParams{
		Bandwidth: defaultBandwidth,
		Delay:     defaultDelay,
		QueueSize: faceQueueSize,
		MTU:       defaultMTU,
	}
}

func (p LinkParams) withDefaults() LinkParams {
	def := DefaultLinkParams()
	if p.Bandwidth <= 0 {
		p.Bandwidth = def.Bandwidth
	}
	if p.QueueSize <= 0 {
		p.QueueSize = def.QueueSize
	}
	if p.MTU <= lpHeaderSize {
		p.MTU = def.MTU
	}
	if p.Delay < 0 {
		p.Delay = 0
	}
	return p
}

// LinkFace is one end of a simulated point-to-point link between two nodes.
// Packets are serialized at the link bandwidth, wait in a bounded queue and
// arrive at the peer after the propagation delay.
type LinkFace struct {
	faceBase
	timer     ndn.Timer
	rng       *rand.Rand
	params    LinkParams
	peer      *LinkFace
	busyUntil time.Time
	queued    int
}

// NewLinkPair creates the two ends of a link between nodes a and b.
// The returned faces are not registered in any face table yet.
func NewLinkPair(timer ndn.Timer, rng *rand.Rand, a string, b string, params LinkParams) (*LinkFace, *LinkFace) {
	params = params.withDefaults()
	fa := &LinkFace{timer: timer, rng: rng, params: params}
	fb := &LinkFace{timer: timer, rng: rng, params: params}
	fa.init(fa, NewSimFaceURI(a), NewSimFaceURI(b), ndn.NonLocal)
	fb.init(fb, NewSimFaceURI(b), NewSimFaceURI(a), ndn.NonLocal)
	fa.peer = fb
	fb.peer = fa
	return fa, fb
}

func (l *LinkFace) String() string {
	return "LinkFace, FaceID=" + strconv.FormatUint(l.faceID, 10) + ", RemoteURI=" + l.remoteURI.String() + ", LocalURI=" + l.localURI.String()
}

// Params returns the parameters of the link.
func (l *LinkFace) Params() LinkParams {
	return l.params
}

// Peer returns the other end of the link.
func (l *LinkFace) Peer() *LinkFace {
	return l.peer
}

// QueueLen returns the number of packets waiting for or under transmission.
func (l *LinkFace) QueueLen() int {
	return l.queued
}

// transmissionTime returns how long the packet occupies the link, including fragmentation overhead.
func (l *LinkFace) transmissionTime(size int) time.Duration {
	fragments := comparison.Max(comparison.CeilDiv(size, l.params.MTU-lpHeaderSize), 1)
	octets := int64(size + fragments*lpHeaderSize)
	return time.Duration(octets * 8 * int64(time.Second) / l.params.Bandwidth)
}

// SendPacket queues a packet for transmission to the peer.
func (l *LinkFace) SendPacket(packet *ndn.Packet) {
	if l.queued >= l.params.QueueSize {
		core.LogWarn(l, "dropped packet due to congestion")
		l.counters.NDropped++
		return
	}
	if !l.countOut(packet) {
		return
	}

	now := l.timer.Now()
	start := now
	if l.busyUntil.After(now) {
		start = l.busyUntil
	}
	l.busyUntil = start.Add(l.transmissionTime(packet.WireSize()))
	l.queued++
	l.timer.Schedule(l.busyUntil.Sub(now), func() {
		l.queued--
	})

	if l.params.LossRate > 0 && l.rng != nil && l.rng.Float64() < l.params.LossRate {
		core.LogTrace(l, "lost packet ", packet.Name(), " in transit")
		return
	}
	peer := l.peer
	l.timer.Schedule(l.busyUntil.Add(l.params.Delay).Sub(now), func() {
		peer.receive(packet)
	})
	core.LogTrace(l, "queued packet ", packet.Name())
}
