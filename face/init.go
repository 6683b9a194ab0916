/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package face

import (
	"time"

	"github.com/named-data/closersite/core"
)

// faceQueueSize is the maximum number of packets that can be buffered to be sent on a link face.
var faceQueueSize = 1024

// defaultBandwidth is the bandwidth of links that do not specify one, in bits per second.
var defaultBandwidth int64 = 10_000_000_000

// defaultMTU is the MTU of simulated links, in octets.
var defaultMTU = 1500

// defaultDelay is the propagation delay of links that do not specify one.
var defaultDelay = time.Millisecond

// Configure configures the face system.
func Configure() {
	cfg := core.GetConfig()
	faceQueueSize = cfg.Faces.QueueSize
	defaultBandwidth = cfg.Faces.Link.Bandwidth
	defaultMTU = cfg.Faces.Link.MTU
	defaultDelay = time.Duration(cfg.Faces.Link.Delay) * time.Millisecond
}
