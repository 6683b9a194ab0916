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
)

// CsEntry is an entry in a forwarder's CS.
type CsEntry struct {
	index     uint64 // the hash of the name, for fast lookup
	staleTime time.Time
	data      *ndn.Data
}

// Index returns the name hash of the entry.
func (e *CsEntry) Index() uint64 {
	return e.index
}

// StaleTime returns the time after which the entry no longer satisfies MustBeFresh.
func (e *CsEntry) StaleTime() time.Time {
	return e.staleTime
}

// Data returns the cached Data.
func (e *CsEntry) Data() *ndn.Data {
	return e.data
}

// ContentStore caches Data packets for one forwarder.
type ContentStore struct {
	timer    ndn.Timer
	capacity int
	admit    bool
	serve    bool
	entries  map[uint64]*CsEntry
	policy   CsReplacementPolicy
}

// NewContentStore creates a Content Store holding at most capacity packets.
// A capacity of zero disables caching.
func NewContentStore(timer ndn.Timer, capacity int) *ContentStore {
	cs := &ContentStore{
		timer:    timer,
		capacity: capacity,
		admit:    csAdmit,
		serve:    csServe,
		entries:  make(map[uint64]*CsEntry),
	}
	cs.policy = NewCsLRU(cs)
	return cs
}

// Capacity returns the size limit of the Content Store.
func (cs *ContentStore) Capacity() int {
	return cs.capacity
}

// SetCapacity changes the size limit, evicting entries if needed.
func (cs *ContentStore) SetCapacity(capacity int) {
	cs.capacity = capacity
	cs.policy.EvictEntries()
}

// CsSize returns the number of cached packets.
func (cs *ContentStore) CsSize() int {
	return len(cs.entries)
}

// IsCsAdmitting reports whether new Data is admitted.
func (cs *ContentStore) IsCsAdmitting() bool {
	return cs.admit && cs.capacity > 0
}

// IsCsServing reports whether cached Data is used to satisfy Interests.
func (cs *ContentStore) IsCsServing() bool {
	return cs.serve
}

// InsertData inserts the Data into the Content Store, replacing any packet of the same name.
func (cs *ContentStore) InsertData(data *ndn.Data) {
	if !cs.IsCsAdmitting() {
		return
	}
	index := data.Name().Hash()
	staleTime := cs.timer.Now().Add(data.Freshness())
	if entry, ok := cs.entries[index]; ok && entry.data.Name().Equal(data.Name()) {
		entry.data = data
		entry.staleTime = staleTime
		cs.policy.AfterRefresh(index, data)
		return
	} else if ok {
		// Hash collision: the newer packet wins
		cs.policy.BeforeErase(index, entry.data)
	}
	cs.entries[index] = &CsEntry{index: index, staleTime: staleTime, data: data}
	cs.policy.AfterInsert(index, data)
	cs.policy.EvictEntries()
}

// FindMatchingDataFromCS returns a cached Data satisfying the Interest, or nil.
func (cs *ContentStore) FindMatchingDataFromCS(interest *ndn.Interest) *CsEntry {
	if !cs.serve || len(cs.entries) == 0 {
		return nil
	}
	now := cs.timer.Now()
	usable := func(entry *CsEntry) bool {
		return entry.data.CanSatisfy(interest) && (!interest.MustBeFresh() || entry.staleTime.After(now))
	}

	var found *CsEntry
	if entry, ok := cs.entries[interest.Name().Hash()]; ok && usable(entry) {
		found = entry
	} else if interest.CanBePrefix() {
		// Prefer the smallest matching name
		for _, entry := range cs.entries {
			if usable(entry) && (found == nil || entry.data.Name().Compare(found.data.Name()) < 0) {
				found = entry
			}
		}
	}
	if found != nil {
		cs.policy.BeforeUse(found.index, found.data)
	}
	return found
}

// EraseData removes the Data with the exact name, returning whether it was cached.
func (cs *ContentStore) EraseData(name ndn.Name) bool {
	index := name.Hash()
	entry, ok := cs.entries[index]
	if !ok || !entry.data.Name().Equal(name) {
		return false
	}
	cs.policy.BeforeErase(index, entry.data)
	delete(cs.entries, index)
	return true
}

func (cs *ContentStore) eraseFromReplacementPolicy(index uint64) {
	delete(cs.entries, index)
}
