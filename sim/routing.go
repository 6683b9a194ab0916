/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package sim

import (
	"math"

	"github.com/named-data/closersite/core"
	"github.com/named-data/closersite/ndn"
	"github.com/named-data/closersite/utils/priority_queue"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Unreachable is the distance to a node without a path.
const Unreachable = uint64(math.MaxUint64)

// FaceRoute is the cost of reaching the nearest origin of a prefix through one face.
type FaceRoute struct {
	FaceID uint64
	Cost   uint64
}

// ShortestPaths returns the distance from source to every node reachable
// without passing through excluded.
func (n *Network) ShortestPaths(source string, excluded string) map[string]uint64 {
	dist := map[string]uint64{source: 0}
	visited := make(map[string]bool, len(n.nodes))
	visited[excluded] = true

	queue := priority_queue.New[string, uint64]()
	queue.Push(source, 0)
	for queue.Len() > 0 {
		current := queue.Pop()
		if visited[current] {
			continue
		}
		visited[current] = true

		for _, adj := range n.nodes[current].Adjacency {
			if visited[adj.Peer] {
				continue
			}
			alt := dist[current] + adj.Metric
			if d, ok := dist[adj.Peer]; !ok || alt < d {
				dist[adj.Peer] = alt
				queue.Push(adj.Peer, alt)
			}
		}
	}
	return dist
}

// FaceRoutes returns, for every face of node, the cost of the cheapest path to
// an origin of prefix whose first hop is that face. Faces without such a path
// are left out. The result is ordered by cost, then by face ID.
func (n *Network) FaceRoutes(node string, prefix ndn.Name) []FaceRoute {
	origins := n.origins[prefix.String()]
	src := n.nodes[node]
	if src == nil || len(origins) == 0 {
		return nil
	}

	routes := make([]FaceRoute, 0, len(src.Adjacency))
	for _, adj := range src.Adjacency {
		dist := n.ShortestPaths(adj.Peer, node)
		best := Unreachable
		for _, origin := range origins {
			if d, ok := dist[origin]; ok && d < best {
				best = d
			}
		}
		if best == Unreachable {
			continue
		}
		routes = append(routes, FaceRoute{FaceID: adj.FaceID, Cost: best + adj.Metric})
	}
	slices.SortFunc(routes, func(a, b FaceRoute) bool {
		if a.Cost == b.Cost {
			return a.FaceID < b.FaceID
		}
		return a.Cost < b.Cost
	})
	return routes
}

// CalculateAllPossibleRoutes installs a route for every origin prefix on every
// face of every node that leads to an origin, with the cost of the best path
// through that face. Origins do not get routes for their own prefixes.
func (n *Network) CalculateAllPossibleRoutes() {
	n.calculateRoutes(true)
}

// CalculateRoutes installs, for every origin prefix, only the cheapest face of every node.
func (n *Network) CalculateRoutes() {
	n.calculateRoutes(false)
}

func (n *Network) calculateRoutes(all bool) {
	prefixes := maps.Keys(n.origins)
	slices.Sort(prefixes)
	installed := 0
	for _, uri := range prefixes {
		prefix := ndn.MustNameFromStr(uri)
		for _, name := range n.NodeNames() {
			if slices.Contains(n.origins[uri], name) {
				continue
			}
			routes := n.FaceRoutes(name, prefix)
			if !all && len(routes) > 1 {
				routes = routes[:1]
			}
			fib := n.nodes[name].Thread.Fib()
			for _, route := range routes {
				fib.InsertNextHop(prefix, route.FaceID, route.Cost)
				installed++
			}
			if len(routes) == 0 {
				core.LogDebug(n, "No route to ", prefix, " from Node=", name)
			}
		}
	}
	core.LogInfo(n, "Installed ", installed, " routes for ", len(prefixes), " prefixes")
}
