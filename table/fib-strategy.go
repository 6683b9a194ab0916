/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

import (
	"github.com/named-data/closersite/ndn"
)

// FibStrategyEntry represents an entry in the FIB-Strategy table.
type FibStrategyEntry interface {
	Name() ndn.Name
	GetStrategy() ndn.Name
	GetNextHops() []*FibNextHopEntry
}

// baseFibStrategyEntry represents information that all
// FibStrategyEntry implementations should include.
type baseFibStrategyEntry struct {
	component ndn.Component
	name      ndn.Name
	nexthops  []*FibNextHopEntry
	strategy  ndn.Name
}

// FibNextHopEntry represents a nexthop in a FIB entry.
type FibNextHopEntry struct {
	Nexthop uint64
	Cost    uint64
}

// FibStrategy represents the functionality that a FIB-strategy table should implement.
type FibStrategy interface {
	FindNextHops(name ndn.Name) []*FibNextHopEntry
	FindLongestPrefixFib(name ndn.Name) FibStrategyEntry
	FindStrategy(name ndn.Name) ndn.Name
	InsertNextHop(name ndn.Name, nextHop uint64, cost uint64)
	ClearNextHops(name ndn.Name)
	RemoveNextHop(name ndn.Name, nextHop uint64)
	GetAllFIBEntries() []FibStrategyEntry
	SetStrategy(name ndn.Name, strategy ndn.Name)
	UnSetStrategy(name ndn.Name)
	GetAllForwardingStrategies() []FibStrategyEntry
}

// Name returns the name associated with the baseFibStrategyEntry.
func (e *baseFibStrategyEntry) Name() ndn.Name {
	return e.name
}

// GetStrategy returns the strategy associated with the baseFibStrategyEntry.
func (e *baseFibStrategyEntry) GetStrategy() ndn.Name {
	return e.strategy
}

// GetNextHops gets the nexthops of the specified entry.
func (e *baseFibStrategyEntry) GetNextHops() []*FibNextHopEntry {
	return e.nexthops
}

// emptyFibEntry is returned when no prefix has any nexthop.
var emptyFibEntry = &baseFibStrategyEntry{name: ndn.Name{}}
