/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package table

import (
	"container/list"

	"github.com/named-data/closersite/ndn"
)

type fibStrategyTreeEntry struct {
	baseFibStrategyEntry
	depth    int
	parent   *fibStrategyTreeEntry
	children []*fibStrategyTreeEntry
}

// FibStrategyTree represents a tree implementation of the FIB-Strategy table.
// Each forwarder owns one; it is not safe for concurrent use.
type FibStrategyTree struct {
	root *fibStrategyTreeEntry

	// fibPrefixes indexes the nodes that carry nexthops by name hash.
	fibPrefixes map[uint64]*fibStrategyTreeEntry
}

// NewFibStrategyTree creates a FIB-Strategy table whose root uses the given strategy.
func NewFibStrategyTree(defaultStrategy ndn.Name) *FibStrategyTree {
	f := new(FibStrategyTree)
	f.root = new(fibStrategyTreeEntry)
	// Root component will be empty since it represents zero components
	f.root.component = ndn.Component{}
	f.root.strategy = defaultStrategy
	f.root.name = ndn.Name{}
	f.fibPrefixes = make(map[uint64]*fibStrategyTreeEntry)
	return f
}

// findExactMatchEntry returns the entry corresponding to the exact match of
// the given name. It returns nil if no exact match was found.
func (f *fibStrategyTreeEntry) findExactMatchEntry(name ndn.Name) *fibStrategyTreeEntry {
	if len(name) > f.depth {
		for _, child := range f.children {
			if name.At(child.depth - 1).Equal(child.component) {
				return child.findExactMatchEntry(name)
			}
		}
	} else if len(name) == f.depth {
		return f
	}
	return nil
}

// findLongestPrefixEntry returns the entry corresponding to the longest
// prefix match of the given name.
func (f *fibStrategyTreeEntry) findLongestPrefixEntry(name ndn.Name) *fibStrategyTreeEntry {
	if len(name) > f.depth {
		for _, child := range f.children {
			if name.At(child.depth - 1).Equal(child.component) {
				return child.findLongestPrefixEntry(name)
			}
		}
	}
	return f
}

// fillTreeToPrefix breaks the given name into components and adds nodes to the
// tree for any missing components.
func (f *FibStrategyTree) fillTreeToPrefix(name ndn.Name) *fibStrategyTreeEntry {
	curNode := f.root.findLongestPrefixEntry(name)
	for depth := curNode.depth + 1; depth <= len(name); depth++ {
		newNode := new(fibStrategyTreeEntry)
		newNode.component = name.At(depth - 1).Clone()
		newNode.name = name.Prefix(depth).Clone()
		newNode.depth = depth
		newNode.parent = curNode
		curNode.children = append(curNode.children, newNode)
		curNode = newNode
	}
	return curNode
}

// pruneIfEmpty prunes nodes from the tree if they no longer carry any information,
// where information is the combination of child nodes, nexthops, and strategies.
func (f *fibStrategyTreeEntry) pruneIfEmpty() {
	for curNode := f; curNode.parent != nil && len(curNode.children) == 0 &&
		len(curNode.nexthops) == 0 && curNode.strategy == nil; curNode = curNode.parent {
		// Remove from parent's children
		siblings := curNode.parent.children
		for i, child := range siblings {
			if child == curNode {
				copy(siblings[i:], siblings[i+1:])
				curNode.parent.children = siblings[:len(siblings)-1]
				break
			}
		}
	}
}

// findLongestPrefixFibNode returns the deepest node on the path of name that has nexthops.
func (f *FibStrategyTree) findLongestPrefixFibNode(name ndn.Name) *fibStrategyTreeEntry {
	// Step back up until we find a nexthops entry
	// since some might only have a strategy but no nexthops
	for curNode := f.root.findLongestPrefixEntry(name); curNode != nil; curNode = curNode.parent {
		if len(curNode.nexthops) > 0 {
			return curNode
		}
	}
	return nil
}

// FindNextHops returns the longest-prefix matching nexthop(s) matching the specified name.
func (f *FibStrategyTree) FindNextHops(name ndn.Name) []*FibNextHopEntry {
	node := f.findLongestPrefixFibNode(name)
	if node == nil {
		return nil
	}
	nexthops := make([]*FibNextHopEntry, len(node.nexthops))
	copy(nexthops, node.nexthops)
	return nexthops
}

// FindLongestPrefixFib returns the longest-prefix matching entry that has nexthops.
// When no prefix has a nexthop, an entry for the root name with no nexthops is returned.
func (f *FibStrategyTree) FindLongestPrefixFib(name ndn.Name) FibStrategyEntry {
	node := f.findLongestPrefixFibNode(name)
	if node == nil {
		return emptyFibEntry
	}
	return node
}

// FindStrategy returns the longest-prefix matching strategy choice entry for the specified name.
func (f *FibStrategyTree) FindStrategy(name ndn.Name) ndn.Name {
	// Step back up until we find a strategy entry
	// since some might only have a nexthops but no strategy
	for curNode := f.root.findLongestPrefixEntry(name); curNode != nil; curNode = curNode.parent {
		if curNode.strategy != nil {
			return curNode.strategy
		}
	}
	return nil
}

// InsertNextHop adds or updates a nexthop entry for the specified prefix.
func (f *FibStrategyTree) InsertNextHop(name ndn.Name, nexthop uint64, cost uint64) {
	entry := f.fillTreeToPrefix(name)
	for _, existingNexthop := range entry.nexthops {
		if existingNexthop.Nexthop == nexthop {
			existingNexthop.Cost = cost
			return
		}
	}

	newEntry := new(FibNextHopEntry)
	newEntry.Nexthop = nexthop
	newEntry.Cost = cost
	entry.nexthops = append(entry.nexthops, newEntry)
	f.fibPrefixes[name.Hash()] = entry
}

// ClearNextHops clears all nexthops for the specified prefix.
func (f *FibStrategyTree) ClearNextHops(name ndn.Name) {
	node := f.root.findExactMatchEntry(name)
	if node != nil {
		node.nexthops = make([]*FibNextHopEntry, 0)
		delete(f.fibPrefixes, name.Hash())
		node.pruneIfEmpty()
	}
}

// RemoveNextHop removes the specified nexthop entry from the specified prefix.
func (f *FibStrategyTree) RemoveNextHop(name ndn.Name, nexthop uint64) {
	entry := f.root.findExactMatchEntry(name)
	if entry == nil {
		return
	}
	for i, existingNexthop := range entry.nexthops {
		if existingNexthop.Nexthop == nexthop {
			copy(entry.nexthops[i:], entry.nexthops[i+1:])
			entry.nexthops = entry.nexthops[:len(entry.nexthops)-1]
			break
		}
	}
	if len(entry.nexthops) == 0 {
		delete(f.fibPrefixes, name.Hash())
	}
	entry.pruneIfEmpty()
}

// HasNextHops reports whether the exact prefix has nexthops.
func (f *FibStrategyTree) HasNextHops(name ndn.Name) bool {
	entry, ok := f.fibPrefixes[name.Hash()]
	return ok && entry.name.Equal(name)
}

// GetAllFIBEntries returns all nexthop entries in the FIB.
func (f *FibStrategyTree) GetAllFIBEntries() []FibStrategyEntry {
	return f.walk(func(e *fibStrategyTreeEntry) bool { return len(e.nexthops) > 0 })
}

// SetStrategy sets the strategy for the specified prefix.
func (f *FibStrategyTree) SetStrategy(name ndn.Name, strategy ndn.Name) {
	entry := f.fillTreeToPrefix(name)
	entry.strategy = strategy
}

// UnSetStrategy unsets the strategy for the specified prefix.
func (f *FibStrategyTree) UnSetStrategy(name ndn.Name) {
	entry := f.root.findExactMatchEntry(name)
	if entry != nil && entry.parent != nil {
		entry.strategy = nil
		entry.pruneIfEmpty()
	}
}

// GetAllForwardingStrategies returns all strategy choice entries in the Strategy Table.
func (f *FibStrategyTree) GetAllForwardingStrategies() []FibStrategyEntry {
	return f.walk(func(e *fibStrategyTreeEntry) bool { return e.strategy != nil })
}

func (f *FibStrategyTree) walk(match func(*fibStrategyTreeEntry) bool) []FibStrategyEntry {
	entries := make([]FibStrategyEntry, 0)
	// Walk tree in-order
	queue := list.New()
	queue.PushBack(f.root)
	for queue.Len() > 0 {
		fsEntry := queue.Front().Value.(*fibStrategyTreeEntry)
		queue.Remove(queue.Front())
		// Add all children to stack
		for i := len(fsEntry.children) - 1; i >= 0; i-- {
			queue.PushFront(fsEntry.children[i])
		}
		if match(fsEntry) {
			entries = append(entries, fsEntry)
		}
	}
	return entries
}
