/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	"sort"
	"time"

	"github.com/named-data/closersite/core"
	"github.com/named-data/closersite/ndn"
	"github.com/named-data/closersite/table"
)

const BestRouteSuppressionTime = 500 * time.Millisecond

// BestRoute is a forwarding strategy that forwards Interests
// to the nexthop with the lowest cost.
type BestRoute struct {
	StrategyBase
}

func init() {
	strategyTypes = append(strategyTypes, func() Strategy {
		return &BestRoute{}
	})
	StrategyVersions["best-route"] = []uint64{1}
}

func (s *BestRoute) Instantiate(fwThread *Thread) {
	s.NewStrategyBase(fwThread, ndn.NewGenericComponent("best-route"), 1, "BestRoute")
}

func (s *BestRoute) AfterContentStoreHit(data *ndn.Data, pitEntry table.PitEntry, inFace uint64) {
	core.LogTrace(s, "AfterContentStoreHit: Forwarding content store hit Data=", data.Name(), " to FaceID=", inFace)
	s.SendData(data, pitEntry, inFace, 0) // 0 indicates ContentStore is source
}

func (s *BestRoute) AfterReceiveData(data *ndn.Data, pitEntry table.PitEntry, inFace uint64) {
	core.LogTrace(s, "AfterReceiveData: Data=", data.Name(), ", ", len(pitEntry.InRecords()), " In-Records")
	s.SendDataToAll(data, pitEntry, inFace)
}

func (s *BestRoute) AfterReceiveInterest(
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

	// If there is an out record less than suppression interval ago, drop the
	// retransmission to suppress it (only if the nonce is different)
	for _, outRecord := range pitEntry.OutRecords() {
		if outRecord.LatestNonce != interest.Nonce() &&
			outRecord.LatestTimestamp.Add(BestRouteSuppressionTime).After(s.Now()) {
			core.LogDebug(s, "AfterReceiveInterest: Suppressed Interest=", interest.Name(), " - DROP")
			return
		}
	}

	// Sort nexthops by cost and send to best-possible nexthop
	sort.SliceStable(nexthops, func(i, j int) bool { return nexthops[i].Cost < nexthops[j].Cost })
	for _, nh := range nexthops {
		if nh.Nexthop == inFace || s.WouldViolateScope(inFace, interest, nh.Nexthop) {
			continue
		}
		core.LogTrace(s, "AfterReceiveInterest: Forwarding Interest=", interest.Name(), " to FaceID=", nh.Nexthop)
		if sent := s.SendInterest(interest, pitEntry, nh.Nexthop, inFace); sent {
			return
		}
	}

	core.LogDebug(s, "AfterReceiveInterest: No usable nexthop for Interest=", interest.Name(), " - DROP")
	if !s.HasPendingOutRecords(pitEntry) {
		s.RejectPendingInterest(pitEntry)
	}
}

func (s *BestRoute) AfterReceiveNack(nack *ndn.Nack, pitEntry table.PitEntry, inFace uint64) {
	if !s.HasPendingOutRecords(pitEntry) {
		core.LogDebug(s, "AfterReceiveNack: All upstreams Nacked Interest=", nack.Name(), " - REJECT")
		s.RejectPendingInterest(pitEntry)
	}
}

func (s *BestRoute) BeforeSatisfyInterest(pitEntry table.PitEntry, inFace uint64, data *ndn.Data) {
	// This does nothing in BestRoute
}
