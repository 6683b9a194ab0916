/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2026 The closersite authors.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	"time"

	"github.com/named-data/closersite/core"
	"github.com/named-data/closersite/ndn"
	"github.com/named-data/closersite/table"
)

// CloserSite is a forwarding strategy that learns the round-trip delay of every
// nexthop per FIB prefix and sends Interests only to the fastest measured one.
// Until some nexthop of a prefix has been measured, Interests are flooded.
type CloserSite struct {
	StrategyBase
	extendLifetime time.Duration
	epoch          time.Duration
}

func init() {
	strategyTypes = append(strategyTypes, func() Strategy {
		return &CloserSite{}
	})
	StrategyVersions["closer-site"] = []uint64{1}
}

func (s *CloserSite) Instantiate(fwThread *Thread) {
	s.NewStrategyBase(fwThread, ndn.NewGenericComponent("closer-site"), 1, "CloserSite")
	s.extendLifetime = closerSiteExtendLifetime
	s.epoch = closerSiteEpoch
}

// pendingRequestInfo returns the timing state of the PIT entry, creating it on first use.
func (s *CloserSite) pendingRequestInfo(pitEntry table.PitEntry) *PendingRequestInfo {
	if info, ok := pitEntry.StrategyInfo(s.infoKey()).(*PendingRequestInfo); ok {
		return info
	}
	info := &PendingRequestInfo{CreationTime: s.Now()}
	pitEntry.SetStrategyInfo(s.infoKey(), info)
	return info
}

// linkTable returns the link measurements stored at the entry, creating them on first use.
func (s *CloserSite) linkTable(entry *table.MeasurementEntry) *LinkMeasurementTable {
	if links, ok := entry.StrategyInfo(s.infoKey()).(*LinkMeasurementTable); ok {
		return links
	}
	links := NewLinkMeasurementTable()
	entry.SetStrategyInfo(s.infoKey(), links)
	return links
}

func (s *CloserSite) AfterContentStoreHit(data *ndn.Data, pitEntry table.PitEntry, inFace uint64) {
	core.LogTrace(s, "AfterContentStoreHit: Forwarding content store hit Data=", data.Name(), " to FaceID=", inFace)
	s.SendData(data, pitEntry, inFace, 0) // 0 indicates ContentStore is source
}

func (s *CloserSite) AfterReceiveData(data *ndn.Data, pitEntry table.PitEntry, inFace uint64) {
	core.LogTrace(s, "AfterReceiveData: Data=", data.Name(), ", ", len(pitEntry.InRecords()), " In-Records")
	s.SendDataToAll(data, pitEntry, inFace)
}

func (s *CloserSite) AfterReceiveInterest(
	interest *ndn.Interest,
	pitEntry table.PitEntry,
	inFace uint64,
	nexthops []*table.FibNextHopEntry,
) {
	s.pendingRequestInfo(pitEntry)

	fibEntry := s.LookupFib(pitEntry)
	if fibEntry == nil || len(nexthops) == 0 {
		core.LogDebug(s, "AfterReceiveInterest: No nexthop for Interest=", interest.Name(), " - REJECT")
		s.RejectPendingInterest(pitEntry)
		return
	}
	core.LogTrace(s, "AfterReceiveInterest: FIB entry=", fibEntry.Name(), " for Interest=", interest.Name())

	entry := s.Measurements().Get(fibEntry.Name())
	best := s.linkTable(entry).UpdateStoredNextHops(nexthops, s.Now(), s.epoch)

	if outFace, ok := best.Get(); ok {
		if !s.WouldViolateScope(inFace, interest, outFace) && s.CanForwardTo(pitEntry, outFace) {
			core.LogTrace(s, "AfterReceiveInterest: Forwarding Interest=", interest.Name(), " to closest FaceID=", outFace)
			s.SendInterest(interest, pitEntry, outFace, inFace)
		}
	} else {
		core.LogTrace(s, "AfterReceiveInterest: No measured nexthop for Interest=", interest.Name(), " - flooding")
		for _, nexthop := range nexthops {
			if !s.WouldViolateScope(inFace, interest, nexthop.Nexthop) && s.CanForwardTo(pitEntry, nexthop.Nexthop) {
				core.LogTrace(s, "AfterReceiveInterest: Forwarding Interest=", interest.Name(), " to FaceID=", nexthop.Nexthop)
				s.SendInterest(interest, pitEntry, nexthop.Nexthop, inFace)
			}
		}
	}

	if !s.HasPendingOutRecords(pitEntry) {
		core.LogDebug(s, "AfterReceiveInterest: No usable nexthop for Interest=", interest.Name(), " - REJECT")
		s.RejectPendingInterest(pitEntry)
	}
}

func (s *CloserSite) AfterReceiveNack(nack *ndn.Nack, pitEntry table.PitEntry, inFace uint64) {
	core.LogTrace(s, "AfterReceiveNack: Nack=", nack.Reason, " for Interest=", nack.Name(), " from FaceID=", inFace)
	if !s.HasPendingOutRecords(pitEntry) {
		core.LogDebug(s, "AfterReceiveNack: All upstreams Nacked Interest=", nack.Name(), " - REJECT")
		s.RejectPendingInterest(pitEntry)
	}
}

// BeforeSatisfyInterest measures the delay of the request and records it for inFace
// on the measurement entries from the Data's PIT entry up to the root. The walk stops
// at the first entry where inFace is already measured.
func (s *CloserSite) BeforeSatisfyInterest(pitEntry table.PitEntry, inFace uint64, data *ndn.Data) {
	info, ok := pitEntry.StrategyInfo(s.infoKey()).(*PendingRequestInfo)
	if !ok {
		core.LogTrace(s, "BeforeSatisfyInterest: No start time for Data=", data.Name())
		return
	}

	now := s.Now()
	delay := now.Sub(info.CreationTime)
	if delay < 0 {
		delay = 0
	}
	core.LogTrace(s, "BeforeSatisfyInterest: Data=", data.Name(), " from FaceID=", inFace, " delay=", delay)

	measurements := s.Measurements()
	for entry := measurements.Get(pitEntry.Name()); entry != nil; entry = measurements.GetParent(entry) {
		links, ok := entry.StrategyInfo(s.infoKey()).(*LinkMeasurementTable)
		if !ok {
			continue
		}
		if _, ok := links.Get(inFace); !ok {
			continue
		}
		if links.IsLinkUpdated(inFace) {
			break
		}
		measurements.ExtendLifetime(entry, s.extendLifetime)
		links.UpdateLinkDelay(inFace, delay, now)
		core.LogDebug(s, "BeforeSatisfyInterest: Prefix=", entry.Name(), " FaceID=", inFace, " delay=", delay)
	}
}
