/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package sim

import (
	"github.com/named-data/closersite/core"
	"github.com/named-data/closersite/engine/dummy"
	"github.com/named-data/closersite/face"
	"github.com/named-data/closersite/fw"
	"github.com/named-data/closersite/ndn"
	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Adjacency is one link end of a node.
type Adjacency struct {
	Peer   string
	FaceID uint64
	Metric uint64
	Face   *face.LinkFace
}

// Node is a simulated router with its forwarder.
type Node struct {
	Name      string
	Thread    *fw.Thread
	Adjacency []Adjacency
}

// Network is a set of nodes connected by simulated links, all driven by one clock.
type Network struct {
	timer   *dummy.Timer
	nodes   map[string]*Node
	origins map[string][]string // prefix URI -> nodes
}

// NewNetwork creates the forwarders and links of topo. csCapacity gives the
// number of Content Store slots of each node.
func NewNetwork(timer *dummy.Timer, topo *Topology, csCapacity func(node string) int) *Network {
	n := &Network{
		timer:   timer,
		nodes:   make(map[string]*Node, len(topo.Routers)),
		origins: make(map[string][]string),
	}
	for _, r := range topo.Routers {
		n.nodes[r.Name] = &Node{
			Name:   r.Name,
			Thread: fw.NewThread(r.Name, timer, csCapacity(r.Name)),
		}
	}
	for _, l := range topo.Links {
		src, dst := n.nodes[l.Src], n.nodes[l.Dst]
		if src == nil || dst == nil {
			core.LogWarn(n, "Skipping link ", l.Src, "-", l.Dst, " with unknown end")
			continue
		}
		fa, fb := face.NewLinkPair(timer, timer.Rand(), l.Src, l.Dst, face.LinkParams{
			Bandwidth: l.Bandwidth,
			Delay:     l.Delay,
			QueueSize: l.Queue,
		})
		src.Adjacency = append(src.Adjacency, Adjacency{Peer: l.Dst, FaceID: src.Thread.AddFace(fa), Metric: l.Metric, Face: fa})
		dst.Adjacency = append(dst.Adjacency, Adjacency{Peer: l.Src, FaceID: dst.Thread.AddFace(fb), Metric: l.Metric, Face: fb})
	}
	core.LogInfo(n, "Created ", len(n.nodes), " nodes and ", len(topo.Links), " links")
	return n
}

func (n *Network) String() string {
	return "Network"
}

// Timer returns the clock of the network.
func (n *Network) Timer() *dummy.Timer {
	return n.timer
}

// Node returns the node with the given name, or nil.
func (n *Network) Node(name string) *Node {
	return n.nodes[name]
}

// NodeNames returns the names of all nodes in ascending order.
func (n *Network) NodeNames() []string {
	names := maps.Keys(n.nodes)
	slices.Sort(names)
	return names
}

// SetStrategy sets the strategy of prefix on every node.
func (n *Network) SetStrategy(prefix ndn.Name, strategy string) error {
	for _, name := range n.NodeNames() {
		if err := n.nodes[name].Thread.SetStrategy(prefix, strategy); err != nil {
			return errors.Wrapf(err, "node %s", name)
		}
	}
	return nil
}

// AddOrigin marks node as a source of prefix for global routing.
func (n *Network) AddOrigin(prefix ndn.Name, node string) error {
	if n.nodes[node] == nil {
		return errors.Wrapf(ErrUnknownNode, "origin %s", node)
	}
	key := prefix.String()
	if !slices.Contains(n.origins[key], node) {
		n.origins[key] = append(n.origins[key], node)
	}
	return nil
}
