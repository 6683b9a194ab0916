/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	"github.com/named-data/closersite/core"
	"github.com/named-data/closersite/face"
	"github.com/named-data/closersite/ndn"
	"github.com/named-data/closersite/table"
)

// Counters holds the forwarding counters of a node.
type Counters struct {
	NInInterests          uint64 `yaml:"in_interests"`
	NInData               uint64 `yaml:"in_data"`
	NInNacks              uint64 `yaml:"in_nacks"`
	NOutInterests         uint64 `yaml:"out_interests"`
	NOutData              uint64 `yaml:"out_data"`
	NOutNacks             uint64 `yaml:"out_nacks"`
	NSatisfiedInterests   uint64 `yaml:"satisfied_interests"`
	NUnsatisfiedInterests uint64 `yaml:"unsatisfied_interests"`
	NCsHits               uint64 `yaml:"cs_hits"`
	NCsMisses             uint64 `yaml:"cs_misses"`
	NLoops                uint64 `yaml:"loops"`
}

// Thread is the forwarder of one simulated node. All of its pipelines run on
// the events of the shared timer, so no locking is needed.
type Thread struct {
	node          string
	timer         ndn.Timer
	faces         *face.Table
	fib           *table.FibStrategyTree
	pit           *table.PitTable
	cs            *table.ContentStore
	deadNonceList *table.DeadNonceList
	measurements  *table.MeasurementTree
	strategies    map[string]Strategy

	counters Counters
}

// NewThread creates the forwarder of a node with a Content Store of csCapacity packets.
func NewThread(node string, timer ndn.Timer, csCapacity int) *Thread {
	t := new(Thread)
	t.node = node
	t.timer = timer
	t.faces = face.NewTable(node, t.onReceive)

	defaultName, err := ResolveStrategyName(defaultStrategy)
	if err != nil {
		core.LogWarn(t, "Unable to use default strategy: ", err, " - falling back to best-route")
		defaultName, _ = ResolveStrategyName("best-route")
	}
	t.fib = table.NewFibStrategyTree(defaultName)
	t.pit = table.NewPitTable(timer, t.finalizeInterest)
	t.cs = table.NewContentStore(timer, csCapacity)
	t.deadNonceList = table.NewDeadNonceList(timer)
	t.measurements = table.NewMeasurementTree(timer)
	t.strategies = InstantiateStrategies(t)
	return t
}

func (t *Thread) String() string {
	return "FwThread-" + t.node
}

// GetID returns the name of the node owning the forwarder.
func (t *Thread) GetID() string {
	return t.node
}

// Faces returns the face table of the forwarder.
func (t *Thread) Faces() *face.Table {
	return t.faces
}

// Fib returns the FIB and strategy choice table of the forwarder.
func (t *Thread) Fib() *table.FibStrategyTree {
	return t.fib
}

// Pit returns the PIT of the forwarder.
func (t *Thread) Pit() *table.PitTable {
	return t.pit
}

// ContentStore returns the Content Store of the forwarder.
func (t *Thread) ContentStore() *table.ContentStore {
	return t.cs
}

// Measurements returns the measurement tree of the forwarder.
func (t *Thread) Measurements() *table.MeasurementTree {
	return t.measurements
}

// Counters returns a copy of the forwarding counters.
func (t *Thread) Counters() Counters {
	return t.counters
}

// GetNumPitEntries returns the number of entries in this thread's PIT.
func (t *Thread) GetNumPitEntries() int {
	return t.pit.PitSize()
}

// GetNumCsEntries returns the number of entries in this thread's ContentStore.
func (t *Thread) GetNumCsEntries() int {
	return t.cs.CsSize()
}

// AddFace registers a face with the forwarder and returns its ID.
func (t *Thread) AddFace(f face.Face) uint64 {
	return t.faces.Add(f)
}

// SetStrategy sets the strategy of a prefix. The strategy may be given by
// short name, full name or versioned full name.
func (t *Thread) SetStrategy(prefix ndn.Name, strategy string) error {
	name, err := ResolveStrategyName(strategy)
	if err != nil {
		return err
	}
	t.fib.SetStrategy(prefix, name)
	core.LogDebug(t, "Set Strategy=", name, " for Prefix=", prefix)
	return nil
}

// Strategy returns the strategy instance with the given versioned name, or nil.
func (t *Thread) Strategy(name ndn.Name) Strategy {
	return t.strategies[name.String()]
}

func (t *Thread) strategyFor(name ndn.Name) Strategy {
	strategyName := t.fib.FindStrategy(name)
	if strategy, ok := t.strategies[strategyName.String()]; ok {
		return strategy
	}
	core.LogWarn(t, "Unknown Strategy=", strategyName, " for Name=", name, " - using default")
	return t.strategies[t.fib.FindStrategy(nil).String()]
}

func (t *Thread) onReceive(packet *ndn.Packet, inFace face.Face) {
	switch {
	case packet.Interest != nil:
		t.processIncomingInterest(packet.Interest, inFace)
	case packet.Data != nil:
		t.processIncomingData(packet.Data, inFace)
	case packet.Nack != nil:
		t.processIncomingNack(packet.Nack, inFace)
	}
}

func (t *Thread) processIncomingInterest(interest *ndn.Interest, inFace face.Face) {
	core.LogTrace(t, "OnIncomingInterest: ", interest.Name(), ", FaceID=", inFace.FaceID())

	// Drop if HopLimit present and is 0. Else, decrement by 1
	if interest.HopLimitV != nil && *interest.HopLimitV == 0 {
		core.LogDebug(t, "Received Interest=", interest.Name(), " with HopLimit=0 - DROP")
		return
	} else if interest.HopLimitV != nil {
		interest = interest.Clone()
		*interest.HopLimitV--
	}

	// Check if violates /localhost
	if inFace.Scope() == ndn.NonLocal && interest.Name().IsLocalhost() {
		core.LogWarn(t, "Interest ", interest.Name(), " from non-local FaceID=", inFace.FaceID(), " violates /localhost scope - DROP")
		return
	}

	t.counters.NInInterests++

	// Detect duplicate nonce by comparing against Dead Nonce List
	if t.deadNonceList.Find(interest.Name(), interest.Nonce()) {
		core.LogTrace(t, "Interest ", interest.Name(), " matches Dead Nonce List - LOOP")
		t.onInterestLoop(interest, inFace)
		return
	}

	// Check if any matching PIT entries (and if duplicate)
	pitEntry, isDuplicate := t.pit.InsertInterest(interest, inFace.FaceID())
	if isDuplicate {
		core.LogDebug(t, "Interest ", interest.Name(), " is looping - LOOP")
		t.onInterestLoop(interest, inFace)
		return
	}

	// A new downstream revives a satisfied entry lingering for stragglers
	if pitEntry.Satisfied() {
		pitEntry.SetSatisfied(false)
	}

	strategy := t.strategyFor(interest.Name())
	core.LogTrace(t, "Using Strategy=", strategy.GetName(), " for Interest=", interest.Name())

	// Add in-record and determine if already pending
	_, isAlreadyPending := pitEntry.InsertInRecord(interest, inFace.FaceID())
	if !isAlreadyPending && len(pitEntry.InRecords()) == 1 {
		if csEntry := t.cs.FindMatchingDataFromCS(interest); csEntry != nil {
			t.counters.NCsHits++
			core.LogTrace(t, "Content Store hit for Interest=", interest.Name())
			strategy.AfterContentStoreHit(csEntry.Data(), pitEntry, inFace.FaceID())
			pitEntry.SetSatisfied(true)
			table.SetExpirationTimer(pitEntry, 0)
			return
		}
		t.counters.NCsMisses++
	} else {
		core.LogTrace(t, "Interest ", interest.Name(), " is already pending")
	}

	// Update PIT entry expiration timer
	table.UpdateExpirationTimer(pitEntry)

	// Pass to strategy AfterReceiveInterest pipeline
	nexthops := t.fib.FindNextHops(interest.Name())
	strategy.AfterReceiveInterest(interest, pitEntry, inFace.FaceID(), nexthops)
}

// onInterestLoop answers a looping Interest with a Duplicate Nack. Every
// simulated face is point-to-point, so the Nack reaches the sender only.
func (t *Thread) onInterestLoop(interest *ndn.Interest, inFace face.Face) {
	t.counters.NLoops++
	t.counters.NOutNacks++
	inFace.SendPacket(&ndn.Packet{Nack: &ndn.Nack{Reason: ndn.NackReasonDuplicate, Interest: interest}})
}

func (t *Thread) processOutgoingInterest(interest *ndn.Interest, pitEntry table.PitEntry, nexthop uint64, inFace uint64) bool {
	core.LogTrace(t, "OnOutgoingInterest: ", interest.Name(), ", FaceID=", nexthop)

	// Get outgoing face
	outgoingFace := t.faces.Get(nexthop)
	if outgoingFace == nil {
		core.LogError(t, "Non-existent nexthop FaceID=", nexthop, " for Interest=", interest.Name(), " - DROP")
		return false
	}
	if nexthop == inFace {
		core.LogDebug(t, "Interest ", interest.Name(), " would go back to incoming FaceID=", inFace, " - DROP")
		return false
	}

	// Drop if HopLimit (if present) on Interest going to non-local face is 0. If so, drop
	if interest.HopLimitV != nil && *interest.HopLimitV == 0 && outgoingFace.Scope() == ndn.NonLocal {
		core.LogDebug(t, "Attempting to send Interest=", interest.Name(), " with HopLimit=0 to non-local face - DROP")
		return false
	}

	// Create or update out-record
	pitEntry.InsertOutRecord(interest, nexthop)

	t.counters.NOutInterests++
	outgoingFace.SendPacket(&ndn.Packet{Interest: interest})
	return true
}

// finalizeInterest runs when a PIT entry leaves the table by expiry or rejection.
func (t *Thread) finalizeInterest(pitEntry table.PitEntry) {
	core.LogTrace(t, "OnFinalizeInterest: ", pitEntry.Name())

	// Check for nonces to insert into dead nonce list
	for _, outRecord := range pitEntry.OutRecords() {
		t.deadNonceList.Insert(outRecord.LatestInterest.Name(), outRecord.LatestNonce)
	}

	// Counters
	if !pitEntry.Satisfied() {
		t.counters.NUnsatisfiedInterests += uint64(len(pitEntry.InRecords()))
	}
}

func (t *Thread) rejectPendingInterest(pitEntry table.PitEntry) {
	core.LogTrace(t, "OnInterestReject: ", pitEntry.Name())
	for _, faceID := range table.SortedInFaces(pitEntry) {
		t.processOutgoingNack(ndn.NackReasonNoRoute, pitEntry, faceID)
	}
	t.finalizeInterest(pitEntry)
	t.pit.RemoveInterest(pitEntry)
}

func (t *Thread) processIncomingData(data *ndn.Data, inFace face.Face) {
	core.LogTrace(t, "OnIncomingData: ", data.Name(), ", FaceID=", inFace.FaceID())

	t.counters.NInData++

	// Check if violates /localhost
	if inFace.Scope() == ndn.NonLocal && data.Name().IsLocalhost() {
		core.LogWarn(t, "Data ", data.Name(), " from non-local FaceID=", inFace.FaceID(), " violates /localhost scope - DROP")
		return
	}

	// Check for matching PIT entries
	pitEntries := t.pit.FindInterestPrefixMatchByData(data)
	if len(pitEntries) == 0 {
		// Unsolicited Data - nothing more to do
		core.LogDebug(t, "Unsolicited data ", data.Name(), " - DROP")
		return
	}

	// Add to Content Store
	if t.cs.IsCsAdmitting() {
		t.cs.InsertData(data)
	}

	for _, pitEntry := range pitEntries {
		strategy := t.strategyFor(pitEntry.Name())

		// Invoke strategy's BeforeSatisfyInterest, also for stragglers
		strategy.BeforeSatisfyInterest(pitEntry, inFace.FaceID(), data)

		if pitEntry.Satisfied() {
			core.LogTrace(t, "Straggler Data ", data.Name(), " from FaceID=", inFace.FaceID())
			pitEntry.RemoveOutRecord(inFace.FaceID())
			continue
		}

		// Invoke strategy's AfterReceiveData
		core.LogTrace(t, "Sending Data=", data.Name(), " to Strategy=", strategy.GetName())
		strategy.AfterReceiveData(data, pitEntry, inFace.FaceID())

		// Mark PIT entry as satisfied
		pitEntry.SetSatisfied(true)

		// Insert into dead nonce list
		for _, outRecord := range pitEntry.OutRecords() {
			t.deadNonceList.Insert(outRecord.LatestInterest.Name(), outRecord.LatestNonce)
		}

		// Clear in-records and the out-record of the answering face, then linger for stragglers
		pitEntry.ClearInRecords()
		pitEntry.RemoveOutRecord(inFace.FaceID())
		table.SetExpirationTimer(pitEntry, stragglerTime)
	}
}

func (t *Thread) processOutgoingData(data *ndn.Data, pitEntry table.PitEntry, nexthop uint64, inFace uint64) {
	core.LogTrace(t, "OnOutgoingData: ", data.Name(), ", FaceID=", nexthop)

	// Get outgoing face
	outgoingFace := t.faces.Get(nexthop)
	if outgoingFace == nil {
		core.LogError(t, "Non-existent nexthop FaceID=", nexthop, " for Data=", data.Name(), " - DROP")
		return
	}

	// Check if violates /localhost
	if outgoingFace.Scope() == ndn.NonLocal && data.Name().IsLocalhost() {
		core.LogWarn(t, "Data ", data.Name(), " cannot be sent to non-local FaceID=", nexthop, " since violates /localhost scope - DROP")
		return
	}

	pitEntry.RemoveInRecord(nexthop)
	t.counters.NOutData++
	t.counters.NSatisfiedInterests++
	outgoingFace.SendPacket(&ndn.Packet{Data: data})
}

func (t *Thread) processIncomingNack(nack *ndn.Nack, inFace face.Face) {
	core.LogTrace(t, "OnIncomingNack: ", nack.Name(), ", Reason=", nack.Reason, ", FaceID=", inFace.FaceID())

	t.counters.NInNacks++

	pitEntry := t.pit.FindInterestExactMatch(nack.Interest)
	if pitEntry == nil {
		core.LogDebug(t, "Nack for ", nack.Name(), " matches no PIT entry - DROP")
		return
	}
	outRecord, ok := pitEntry.OutRecords()[inFace.FaceID()]
	if !ok {
		core.LogDebug(t, "Nack for ", nack.Name(), " from FaceID=", inFace.FaceID(), " has no out-record - DROP")
		return
	}
	if outRecord.LatestNonce != nack.Interest.Nonce() {
		core.LogDebug(t, "Nack for ", nack.Name(), " carries a stale nonce - DROP")
		return
	}
	if pitEntry.Satisfied() {
		core.LogDebug(t, "Nack for satisfied ", nack.Name(), " - DROP")
		return
	}

	outRecord.NackReason = nack.Reason
	t.strategyFor(pitEntry.Name()).AfterReceiveNack(nack, pitEntry, inFace.FaceID())
}

func (t *Thread) processOutgoingNack(reason ndn.NackReason, pitEntry table.PitEntry, nexthop uint64) {
	inRecord, ok := pitEntry.InRecords()[nexthop]
	if !ok {
		return
	}
	outgoingFace := t.faces.Get(nexthop)
	if outgoingFace == nil {
		core.LogError(t, "Non-existent downstream FaceID=", nexthop, " for Nack - DROP")
		return
	}
	core.LogTrace(t, "OnOutgoingNack: ", pitEntry.Name(), ", Reason=", reason, ", FaceID=", nexthop)

	t.counters.NOutNacks++
	outgoingFace.SendPacket(&ndn.Packet{Nack: &ndn.Nack{Reason: reason, Interest: inRecord.LatestInterest}})
}
