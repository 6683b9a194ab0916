/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	"time"

	"github.com/named-data/closersite/ndn"
	"github.com/named-data/closersite/table"
)

// StrategyPrefix is the prefix of all strategy names.
const StrategyPrefix = "/localhost/nfd/strategy"

// Strategy represents a forwarding strategy.
type Strategy interface {
	Instantiate(fwThread *Thread)
	String() string
	GetName() ndn.Name

	AfterContentStoreHit(data *ndn.Data, pitEntry table.PitEntry, inFace uint64)
	AfterReceiveData(data *ndn.Data, pitEntry table.PitEntry, inFace uint64)
	AfterReceiveInterest(interest *ndn.Interest, pitEntry table.PitEntry, inFace uint64, nexthops []*table.FibNextHopEntry)
	AfterReceiveNack(nack *ndn.Nack, pitEntry table.PitEntry, inFace uint64)
	BeforeSatisfyInterest(pitEntry table.PitEntry, inFace uint64, data *ndn.Data)
}

// StrategyBase provides common helper methods for forwarding strategies.
type StrategyBase struct {
	thread       *Thread
	name         ndn.Name
	strategyName string
}

// NewStrategyBase is a helper that allows specific strategies to initialize the base.
func (s *StrategyBase) NewStrategyBase(fwThread *Thread, strategyName ndn.Component, version uint64, name string) {
	s.thread = fwThread
	s.name = ndn.MustNameFromStr(StrategyPrefix).Append(strategyName, ndn.NewVersionComponent(version))
	s.strategyName = name
}

func (s *StrategyBase) String() string {
	return "Strategy-" + s.strategyName + "-" + s.thread.GetID()
}

// GetName returns the versioned name of the strategy.
func (s *StrategyBase) GetName() ndn.Name {
	return s.name
}

// infoKey is the key under which the strategy stores its PIT and measurement state.
func (s *StrategyBase) infoKey() string {
	return s.name.String()
}

// Now returns the current time of the forwarder's clock.
func (s *StrategyBase) Now() time.Time {
	return s.thread.timer.Now()
}

// LookupFib returns the FIB entry used to forward the Interests of the PIT entry.
func (s *StrategyBase) LookupFib(pitEntry table.PitEntry) table.FibStrategyEntry {
	return s.thread.fib.FindLongestPrefixFib(pitEntry.Name())
}

// Measurements returns the measurement tree of the forwarder.
func (s *StrategyBase) Measurements() *table.MeasurementTree {
	return s.thread.measurements
}

// SendInterest sends an Interest on the specified face, returning whether it was sent.
func (s *StrategyBase) SendInterest(interest *ndn.Interest, pitEntry table.PitEntry, nexthop uint64, inFace uint64) bool {
	return s.thread.processOutgoingInterest(interest, pitEntry, nexthop, inFace)
}

// SendData sends a Data packet on the specified face.
func (s *StrategyBase) SendData(data *ndn.Data, pitEntry table.PitEntry, nexthop uint64, inFace uint64) {
	s.thread.processOutgoingData(data, pitEntry, nexthop, inFace)
}

// SendDataToAll sends a Data packet to every downstream of the PIT entry except inFace.
func (s *StrategyBase) SendDataToAll(data *ndn.Data, pitEntry table.PitEntry, inFace uint64) {
	for _, faceID := range table.SortedInFaces(pitEntry) {
		if faceID != inFace {
			s.SendData(data, pitEntry, faceID, inFace)
		}
	}
}

// RejectPendingInterest sends a Nack to every downstream and removes the PIT entry.
func (s *StrategyBase) RejectPendingInterest(pitEntry table.PitEntry) {
	s.thread.rejectPendingInterest(pitEntry)
}

// WouldViolateScope reports whether forwarding the Interest from inFace to outFace
// would leak a /localhost or /localhop name.
func (s *StrategyBase) WouldViolateScope(inFace uint64, interest *ndn.Interest, outFace uint64) bool {
	out := s.thread.faces.Get(outFace)
	if out == nil {
		return true
	}
	if out.Scope() == ndn.Local {
		return false
	}
	if interest.Name().IsLocalhost() {
		return true
	}
	if interest.Name().IsLocalhop() {
		in := s.thread.faces.Get(inFace)
		return in == nil || in.Scope() != ndn.Local
	}
	return false
}

// CanForwardTo reports whether the Interest of the PIT entry may be sent on outFace:
// outFace has no unexpired out-record, and some other face has an unexpired in-record.
func (s *StrategyBase) CanForwardTo(pitEntry table.PitEntry, outFace uint64) bool {
	now := s.Now()
	if record, ok := pitEntry.OutRecords()[outFace]; ok && !record.ExpirationTime.Before(now) {
		return false
	}
	for face, record := range pitEntry.InRecords() {
		if face != outFace && !record.ExpirationTime.Before(now) {
			return true
		}
	}
	return false
}

// HasPendingOutRecords reports whether any upstream may still answer the PIT entry.
func (s *StrategyBase) HasPendingOutRecords(pitEntry table.PitEntry) bool {
	now := s.Now()
	for _, record := range pitEntry.OutRecords() {
		if !record.ExpirationTime.Before(now) && record.NackReason == ndn.NackReasonNone {
			return true
		}
	}
	return false
}
