/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

import (
	"time"

	"github.com/cornelk/hashmap"
	"github.com/named-data/closersite/ndn"
	"github.com/named-data/closersite/utils/priority_queue"
)

// MeasurementID identifies an entry in a MeasurementTree. A stale ID never
// resolves to an entry created later in the same slot.
type MeasurementID struct {
	index      uint32
	generation uint32
}

// MeasurementEntry holds per-prefix strategy state. Entries are created and
// destroyed only by their tree; callers must not keep them across events.
type MeasurementEntry struct {
	id           MeasurementID
	name         ndn.Name
	expiry       time.Time
	strategyInfo map[string]any
	expiryItem   *priority_queue.Item[MeasurementID, int64]
}

// ID returns the identifier of the entry.
func (e *MeasurementEntry) ID() MeasurementID {
	return e.id
}

// Name returns the prefix of the entry.
func (e *MeasurementEntry) Name() ndn.Name {
	return e.name
}

// Expiry returns when the entry will be removed unless extended.
func (e *MeasurementEntry) Expiry() time.Time {
	return e.expiry
}

// StrategyInfo returns the value a strategy attached under key, or nil.
func (e *MeasurementEntry) StrategyInfo(key string) any {
	return e.strategyInfo[key]
}

// SetStrategyInfo attaches a strategy value under key.
func (e *MeasurementEntry) SetStrategyInfo(key string, info any) {
	if e.strategyInfo == nil {
		e.strategyInfo = make(map[string]any)
	}
	e.strategyInfo[key] = info
}

type measurementSlot struct {
	entry      *MeasurementEntry
	generation uint32
}

// MeasurementTree stores MeasurementEntries by prefix. Entries expire after
// their lifetime unless extended; parents are found through the name hierarchy.
type MeasurementTree struct {
	timer ndn.Timer
	slots []measurementSlot
	free  []uint32
	// index maps the URI of a prefix to its MeasurementID.
	index hashmap.HashMap

	expiring    priority_queue.Queue[MeasurementID, int64]
	cancelSweep func() error
	nextSweep   int64
}

// NewMeasurementTree creates an empty measurement tree using timer for expiry.
func NewMeasurementTree(timer ndn.Timer) *MeasurementTree {
	return &MeasurementTree{
		timer:    timer,
		expiring: priority_queue.New[MeasurementID, int64](),
	}
}

// Size returns the number of live entries.
func (m *MeasurementTree) Size() int {
	return m.index.Len()
}

// Resolve returns the entry with the given ID, or nil if it expired.
func (m *MeasurementTree) Resolve(id MeasurementID) *MeasurementEntry {
	if int(id.index) >= len(m.slots) {
		return nil
	}
	slot := m.slots[id.index]
	if slot.entry == nil || slot.generation != id.generation {
		return nil
	}
	return slot.entry
}

// Find returns the entry of the exact prefix, or nil.
func (m *MeasurementTree) Find(name ndn.Name) *MeasurementEntry {
	value, ok := m.index.GetStringKey(name.String())
	if !ok {
		return nil
	}
	return m.Resolve(value.(MeasurementID))
}

// FindLongestPrefixMatch returns the entry of the longest existing prefix of name, or nil.
func (m *MeasurementTree) FindLongestPrefixMatch(name ndn.Name) *MeasurementEntry {
	for i := len(name); i >= 0; i-- {
		if entry := m.Find(name.Prefix(i)); entry != nil {
			return entry
		}
	}
	return nil
}

// Get returns the entry of the exact prefix, creating it if needed.
func (m *MeasurementTree) Get(name ndn.Name) *MeasurementEntry {
	if entry := m.Find(name); entry != nil {
		return entry
	}
	return m.insert(name.Clone())
}

// GetParent returns the entry one component above, creating it if needed.
// The root entry has no parent and yields nil.
func (m *MeasurementTree) GetParent(entry *MeasurementEntry) *MeasurementEntry {
	if entry == nil || len(entry.name) == 0 {
		return nil
	}
	return m.Get(entry.name.Prefix(-1))
}

// ExtendLifetime keeps the entry alive for at least d from now.
func (m *MeasurementTree) ExtendLifetime(entry *MeasurementEntry, d time.Duration) {
	if entry == nil || m.Resolve(entry.id) != entry {
		return
	}
	expiry := m.timer.Now().Add(d)
	if !expiry.After(entry.expiry) {
		return
	}
	entry.expiry = expiry
	m.expiring.Update(entry.expiryItem, entry.id, expiry.UnixNano())
	m.scheduleSweep()
}

func (m *MeasurementTree) insert(name ndn.Name) *MeasurementEntry {
	var index uint32
	if n := len(m.free); n > 0 {
		index = m.free[n-1]
		m.free = m.free[:n-1]
	} else {
		index = uint32(len(m.slots))
		m.slots = append(m.slots, measurementSlot{})
	}
	slot := &m.slots[index]
	slot.generation++

	entry := &MeasurementEntry{
		id:     MeasurementID{index: index, generation: slot.generation},
		name:   name,
		expiry: m.timer.Now().Add(measurementsLifetime),
	}
	slot.entry = entry
	m.index.Set(name.String(), entry.id)
	entry.expiryItem = m.expiring.Push(entry.id, entry.expiry.UnixNano())
	m.scheduleSweep()
	return entry
}

func (m *MeasurementTree) remove(entry *MeasurementEntry) {
	slot := &m.slots[entry.id.index]
	slot.entry = nil
	m.free = append(m.free, entry.id.index)
	m.index.Del(entry.name.String())
	m.expiring.Remove(entry.expiryItem)
}

// scheduleSweep makes sure a sweep is scheduled no later than the earliest expiry.
func (m *MeasurementTree) scheduleSweep() {
	if m.expiring.Len() == 0 {
		return
	}
	next := m.expiring.PeekPriority()
	if m.cancelSweep != nil && m.nextSweep <= next {
		return
	}
	if m.cancelSweep != nil {
		m.cancelSweep()
	}
	m.nextSweep = next
	delay := time.Duration(next - m.timer.Now().UnixNano())
	if delay < 0 {
		delay = 0
	}
	m.cancelSweep = m.timer.Schedule(delay, m.sweep)
}

func (m *MeasurementTree) sweep() {
	m.cancelSweep = nil
	now := m.timer.Now().UnixNano()
	for m.expiring.Len() > 0 && m.expiring.PeekPriority() <= now {
		if entry := m.Resolve(m.expiring.Peek()); entry != nil {
			m.remove(entry)
		} else {
			m.expiring.Pop()
		}
	}
	m.scheduleSweep()
}
