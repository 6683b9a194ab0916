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

// PitTable is the Pending Interest Table of one forwarder.
// Warning: All functions must be called from the goroutine that drives the table's timer.
type PitTable struct {
	timer        ndn.Timer
	entries      map[uint64][]*basePitEntry // Key is name hash
	size         int
	onExpiration func(PitEntry)
}

// NewPitTable creates a PIT. onExpiration is called when an entry's timer fires,
// right before the entry is removed.
func NewPitTable(timer ndn.Timer, onExpiration func(PitEntry)) *PitTable {
	return &PitTable{
		timer:        timer,
		entries:      make(map[uint64][]*basePitEntry),
		onExpiration: onExpiration,
	}
}

func (p *PitTable) findExact(hash uint64, interest *ndn.Interest) *basePitEntry {
	for _, entry := range p.entries[hash] {
		if entry.name.Equal(interest.Name()) &&
			entry.canBePrefix == interest.CanBePrefix() &&
			entry.mustBeFresh == interest.MustBeFresh() {
			return entry
		}
	}
	return nil
}

// InsertInterest finds or creates the PIT entry for the Interest. The returned flag
// reports whether the Interest's nonce is already known to the entry on another face,
// which indicates a loop.
func (p *PitTable) InsertInterest(interest *ndn.Interest, inFace uint64) (PitEntry, bool) {
	hash := interest.Name().Hash()
	entry := p.findExact(hash, interest)
	if entry == nil {
		entry = &basePitEntry{
			pit:         p,
			name:        interest.Name(),
			hash:        hash,
			canBePrefix: interest.CanBePrefix(),
			mustBeFresh: interest.MustBeFresh(),
			inRecords:   make(map[uint64]*PitInRecord),
			outRecords:  make(map[uint64]*PitOutRecord),
		}
		p.entries[hash] = append(p.entries[hash], entry)
		p.size++
		return entry, false
	}

	for face, record := range entry.inRecords {
		if face != inFace && record.LatestNonce == interest.Nonce() {
			return entry, true
		}
	}
	for _, record := range entry.outRecords {
		if record.LatestNonce == interest.Nonce() {
			return entry, true
		}
	}
	return entry, false
}

// FindInterestExactMatch returns the PIT entry matching the Interest exactly, or nil.
func (p *PitTable) FindInterestExactMatch(interest *ndn.Interest) PitEntry {
	if entry := p.findExact(interest.Name().Hash(), interest); entry != nil {
		return entry
	}
	return nil
}

// FindInterestPrefixMatchByData returns all PIT entries that the Data can satisfy.
func (p *PitTable) FindInterestPrefixMatchByData(data *ndn.Data) []PitEntry {
	name := data.Name()
	hashes := name.PrefixHash()
	matches := make([]PitEntry, 0)
	for i := 0; i <= len(name); i++ {
		for _, entry := range p.entries[hashes[i]] {
			if entry.removed || !entry.name.Equal(name.Prefix(i)) {
				continue
			}
			if i == len(name) || entry.canBePrefix {
				matches = append(matches, entry)
			}
		}
	}
	return matches
}

// RemoveInterest removes the entry from the PIT, returning whether it was present.
func (p *PitTable) RemoveInterest(pitEntry PitEntry) bool {
	entry, ok := pitEntry.(*basePitEntry)
	if !ok || entry.removed {
		return false
	}
	if entry.cancelExpiry != nil {
		entry.cancelExpiry()
		entry.cancelExpiry = nil
	}
	bucket := p.entries[entry.hash]
	for i, e := range bucket {
		if e == entry {
			bucket = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
	if len(bucket) == 0 {
		delete(p.entries, entry.hash)
	} else {
		p.entries[entry.hash] = bucket
	}
	entry.removed = true
	p.size--
	return true
}

// PitSize returns the number of entries in the PIT.
func (p *PitTable) PitSize() int {
	return p.size
}

// Now returns the current time of the table's clock.
func (p *PitTable) Now() time.Time {
	return p.timer.Now()
}

// UpdateExpirationTimer reschedules the entry to expire when its last in-record expires.
func UpdateExpirationTimer(e PitEntry) {
	now := e.Pit().timer.Now()
	expiry := now
	for _, record := range e.InRecords() {
		if record.ExpirationTime.After(expiry) {
			expiry = record.ExpirationTime
		}
	}
	e.Pit().scheduleExpiry(e, expiry.Sub(now))
}

// SetExpirationTimer reschedules the entry to expire after d.
func SetExpirationTimer(e PitEntry, d time.Duration) {
	e.Pit().scheduleExpiry(e, d)
}

func (p *PitTable) scheduleExpiry(pitEntry PitEntry, d time.Duration) {
	entry, ok := pitEntry.(*basePitEntry)
	if !ok || entry.removed {
		return
	}
	if entry.cancelExpiry != nil {
		entry.cancelExpiry()
	}
	entry.expirationTime = p.timer.Now().Add(d)
	entry.cancelExpiry = p.timer.Schedule(d, func() {
		entry.cancelExpiry = nil
		if p.onExpiration != nil {
			p.onExpiration(entry)
		}
		p.RemoveInterest(entry)
	})
}
