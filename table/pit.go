/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

import (
	"time"

	"github.com/named-data/closersite/ndn"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// PitEntry dictates what entries in a PIT should implement
type PitEntry interface {
	Pit() *PitTable
	Name() ndn.Name
	CanBePrefix() bool
	MustBeFresh() bool
	InRecords() map[uint64]*PitInRecord   // Key is face ID
	OutRecords() map[uint64]*PitOutRecord // Key is face ID
	ExpirationTime() time.Time
	Satisfied() bool
	SetSatisfied(isSatisfied bool)

	InsertInRecord(interest *ndn.Interest, face uint64) (*PitInRecord, bool)
	InsertOutRecord(interest *ndn.Interest, face uint64) *PitOutRecord
	RemoveInRecord(face uint64)
	RemoveOutRecord(face uint64)

	GetOutRecords() []*PitOutRecord
	ClearOutRecords()
	ClearInRecords()

	// StrategyInfo returns the value a strategy attached to this entry under key, or nil.
	StrategyInfo(key string) any
	SetStrategyInfo(key string, info any)
	ClearStrategyInfo()
}

// PitInRecord records an incoming Interest on a given face.
type PitInRecord struct {
	Face            uint64
	LatestNonce     uint32
	LatestTimestamp time.Time
	LatestInterest  *ndn.Interest
	ExpirationTime  time.Time
}

// PitOutRecord records an outgoing Interest on a given face.
type PitOutRecord struct {
	Face            uint64
	LatestNonce     uint32
	LatestTimestamp time.Time
	LatestInterest  *ndn.Interest
	ExpirationTime  time.Time
	// NackReason is the reason of the Nack received for the latest Interest, if any.
	NackReason ndn.NackReason
}

// basePitEntry contains PIT entry properties.
type basePitEntry struct {
	pit            *PitTable
	name           ndn.Name
	hash           uint64
	canBePrefix    bool
	mustBeFresh    bool
	inRecords      map[uint64]*PitInRecord  // Key is face ID
	outRecords     map[uint64]*PitOutRecord // Key is face ID
	expirationTime time.Time
	satisfied      bool
	strategyInfo   map[string]any

	cancelExpiry func() error
	removed      bool
}

// InsertInRecord finds or inserts an InRecord for the face, updating the
// metadata and returning whether there was already an in-record in the entry.
func (bpe *basePitEntry) InsertInRecord(interest *ndn.Interest, face uint64) (*PitInRecord, bool) {
	now := bpe.pit.timer.Now()
	record, ok := bpe.inRecords[face]
	if !ok {
		record = new(PitInRecord)
		record.Face = face
		bpe.inRecords[face] = record
	}
	record.LatestNonce = interest.Nonce()
	record.LatestTimestamp = now
	record.LatestInterest = interest
	record.ExpirationTime = now.Add(interest.Lifetime())
	return record, ok
}

// InsertOutRecord inserts an outrecord for the given interest, updating the
// preexisting one if it already occcurs.
func (bpe *basePitEntry) InsertOutRecord(interest *ndn.Interest, face uint64) *PitOutRecord {
	now := bpe.pit.timer.Now()
	record, ok := bpe.outRecords[face]
	if !ok {
		record = new(PitOutRecord)
		record.Face = face
		bpe.outRecords[face] = record
	}
	record.LatestNonce = interest.Nonce()
	record.LatestTimestamp = now
	record.LatestInterest = interest
	record.ExpirationTime = now.Add(interest.Lifetime())
	record.NackReason = ndn.NackReasonNone
	return record
}

// RemoveInRecord removes the in-record of the face, if any.
func (bpe *basePitEntry) RemoveInRecord(face uint64) {
	delete(bpe.inRecords, face)
}

// RemoveOutRecord removes the out-record of the face, if any.
func (bpe *basePitEntry) RemoveOutRecord(face uint64) {
	delete(bpe.outRecords, face)
}

// GetOutRecords gets all of the outrecords in the pit entry, ordered by face.
func (bpe *basePitEntry) GetOutRecords() []*PitOutRecord {
	records := make([]*PitOutRecord, 0, len(bpe.outRecords))
	for _, face := range sortedFaces(bpe.outRecords) {
		records = append(records, bpe.outRecords[face])
	}
	return records
}

// ClearInRecords removes all in-records from the PIT entry.
func (bpe *basePitEntry) ClearInRecords() {
	bpe.inRecords = make(map[uint64]*PitInRecord)
}

// ClearOutRecords removes all out-records from the PIT entry.
func (bpe *basePitEntry) ClearOutRecords() {
	bpe.outRecords = make(map[uint64]*PitOutRecord)
}

func (bpe *basePitEntry) StrategyInfo(key string) any {
	return bpe.strategyInfo[key]
}

func (bpe *basePitEntry) SetStrategyInfo(key string, info any) {
	if bpe.strategyInfo == nil {
		bpe.strategyInfo = make(map[string]any)
	}
	bpe.strategyInfo[key] = info
}

func (bpe *basePitEntry) ClearStrategyInfo() {
	bpe.strategyInfo = nil
}

///// Setters and Getters /////

func (bpe *basePitEntry) Pit() *PitTable {
	return bpe.pit
}

func (bpe *basePitEntry) Name() ndn.Name {
	return bpe.name
}

func (bpe *basePitEntry) CanBePrefix() bool {
	return bpe.canBePrefix
}

func (bpe *basePitEntry) MustBeFresh() bool {
	return bpe.mustBeFresh
}

func (bpe *basePitEntry) InRecords() map[uint64]*PitInRecord {
	return bpe.inRecords
}

func (bpe *basePitEntry) OutRecords() map[uint64]*PitOutRecord {
	return bpe.outRecords
}

func (bpe *basePitEntry) ExpirationTime() time.Time {
	return bpe.expirationTime
}

func (bpe *basePitEntry) Satisfied() bool {
	return bpe.satisfied
}

func (bpe *basePitEntry) SetSatisfied(isSatisfied bool) {
	bpe.satisfied = isSatisfied
}

// SortedInFaces returns the faces of the in-records in ascending order.
func SortedInFaces(e PitEntry) []uint64 {
	return sortedFaces(e.InRecords())
}

func sortedFaces[R any](records map[uint64]R) []uint64 {
	faces := maps.Keys(records)
	slices.Sort(faces)
	return faces
}
