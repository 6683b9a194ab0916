/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	"github.com/named-data/closersite/core"
	"github.com/named-data/closersite/ndn"
	"github.com/named-data/closersite/table"
)

// Multicast is a forwarding strategy that forwards Interests to all nexthop faces.
type Multicast struct {
	StrategyBase
}

func init() {
	strategyTypes = append(strategyTypes, func() Strategy {
		return &Multicast{}
	})
	StrategyVersions["multicast"] = []uint64{1}
}

func (s *Multicast) Instantiate(fwThread *Thread) {
	s.NewStrategyBase(fwThread, ndn.NewGenericComponent("multicast"), 1, "Multicast")
}

func (s *Multicast) AfterContentStoreHit(data *ndn.Data, pitEntry table.PitEntry, inFace uint64) {
	core.LogTrace(s, "AfterContentStoreHit: Forwarding content store hit Data=", data.Name(), " to FaceID=", inFace)
	s.SendData(data, pitEntry, inFace, 0) // 0 indicates ContentStore is source
}

func (s *Multicast) AfterReceiveData(data *ndn.Data, pitEntry table.PitEntry, inFace uint64) {
	core.LogTrace(s, "AfterReceiveData: Data=", data.Name(), ", ", len(pitEntry.InRecords()), " In-Records")
	s.SendDataToAll(data, pitEntry, inFace)
}

func (s *Multicast) AfterReceiveInterest(
	interest *ndn.Interest,
	pitEntry table.PitEntry,
	inFace uint64,
	nexthops []*table.FibNextHopEntry,
) {
	if len(nexthops) == 0 {
		core.LogDebug(s, "AfterReceiveInterest: No nexthop for Interest=", interest.Name(), " - DROP")
		s.RejectPendingInterest(pitEntry)
		return
	}

	for _, nexthop := range nexthops {
		if s.WouldViolateScope(inFace, interest, nexthop.Nexthop) || !s.CanForwardTo(pitEntry, nexthop.Nexthop) {
			continue
		}
		core.LogTrace(s, "AfterReceiveInterest: Forwarding Interest=", interest.Name(), " to FaceID=", nexthop.Nexthop)
		s.SendInterest(interest, pitEntry, nexthop.Nexthop, inFace)
	}

	if !s.HasPendingOutRecords(pitEntry) {
		core.LogDebug(s, "AfterReceiveInterest: No usable nexthop for Interest=", interest.Name(), " - REJECT")
		s.RejectPendingInterest(pitEntry)
	}
}

func (s *Multicast) AfterReceiveNack(nack *ndn.Nack, pitEntry table.PitEntry, inFace uint64) {
	if !s.HasPendingOutRecords(pitEntry) {
		core.LogDebug(s, "AfterReceiveNack: All upstreams Nacked Interest=", nack.Name(), " - REJECT")
		s.RejectPendingInterest(pitEntry)
	}
}

func (s *Multicast) BeforeSatisfyInterest(pitEntry table.PitEntry, inFace uint64, data *ndn.Data) {
	// This does nothing in Multicast
}
