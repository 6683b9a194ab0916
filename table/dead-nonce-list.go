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
	"github.com/named-data/closersite/utils/priority_queue"
)

// DeadNonceList represents the Dead Nonce List for a forwarder.
type DeadNonceList struct {
	timer           ndn.Timer
	list            map[uint64]bool
	expiringEntries priority_queue.Queue[uint64, int64]
}

// NewDeadNonceList creates a new Dead Nonce List for a forwarder.
func NewDeadNonceList(timer ndn.Timer) *DeadNonceList {
	d := new(DeadNonceList)
	d.timer = timer
	d.list = make(map[uint64]bool)
	d.expiringEntries = priority_queue.New[uint64, int64]()
	return d
}

func deadNonceHash(name ndn.Name, nonce uint32) uint64 {
	return name.Hash() + uint64(nonce)
}

// Find returns whether the specified name and nonce combination are present in the Dead Nonce List.
func (d *DeadNonceList) Find(name ndn.Name, nonce uint32) bool {
	_, ok := d.list[deadNonceHash(name, nonce)]
	return ok
}

// Insert inserts an entry in the Dead Nonce List with the specified name and nonce. Returns whether nonce already present.
func (d *DeadNonceList) Insert(name ndn.Name, nonce uint32) bool {
	hash := deadNonceHash(name, nonce)
	_, exists := d.list[hash]

	if !exists {
		d.list[hash] = true
		d.expiringEntries.Push(hash, d.timer.Now().Add(deadNonceListLifetime).UnixNano())
		d.timer.Schedule(deadNonceListLifetime, d.RemoveExpiredEntries)
	}
	return exists
}

// Len returns the number of entries in the Dead Nonce List.
func (d *DeadNonceList) Len() int {
	return len(d.list)
}

// RemoveExpiredEntries removes all entries whose lifetime has passed.
func (d *DeadNonceList) RemoveExpiredEntries() {
	now := d.timer.Now().UnixNano()
	for d.expiringEntries.Len() > 0 && d.expiringEntries.PeekPriority() <= now {
		hash := d.expiringEntries.Pop()
		delete(d.list, hash)
	}
}

// Lifetime returns how long entries stay in the list.
func (d *DeadNonceList) Lifetime() time.Duration {
	return deadNonceListLifetime
}
