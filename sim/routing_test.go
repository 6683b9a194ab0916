package sim

import (
	"testing"

	"github.com/named-data/closersite/engine/dummy"
	"github.com/named-data/closersite/face"
	"github.com/named-data/closersite/ndn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slices"
)

// Diamond with a shortcut:
//
//	C --1-- R1 --1-- S
//	|       |        |
//	+--3--- R2 --1---+
//	    (R1-R2 metric 1)
func diamond(t *testing.T) *Network {
	topo := &Topology{
		Routers: []Router{{Name: "C"}, {Name: "R1"}, {Name: "R2"}, {Name: "S"}},
		Links: []Link{
			defaultLink("C", "R1"),
			defaultLink("C", "R2"),
			defaultLink("R1", "S"),
			defaultLink("R2", "S"),
			defaultLink("R1", "R2"),
		},
	}
	topo.Links[1].Metric = 3
	require.NoError(t, topo.Validate())
	return NewNetwork(dummy.NewTimer(1), topo, func(string) int { return 0 })
}

func nexthopIDs(n *Network, node string, prefix ndn.Name) []uint64 {
	ids := make([]uint64, 0)
	for _, nh := range n.Node(node).Thread.Fib().FindNextHops(prefix) {
		ids = append(ids, nh.Nexthop)
	}
	slices.Sort(ids)
	return ids
}

func TestNetworkFaces(t *testing.T) {
	n := diamond(t)
	assert.Equal(t, []string{"C", "R1", "R2", "S"}, n.NodeNames())
	assert.Nil(t, n.Node("X"))

	r1 := n.Node("R1")
	require.Len(t, r1.Adjacency, 3)
	assert.Equal(t, "C", r1.Adjacency[0].Peer)
	assert.Equal(t, "S", r1.Adjacency[1].Peer)
	assert.Equal(t, "R2", r1.Adjacency[2].Peer)
	assert.Equal(t, uint64(3), r1.Adjacency[2].FaceID)
	assert.Equal(t, 3, r1.Thread.Faces().Len())
	assert.Equal(t, face.NewSimFaceURI("C").String(), r1.Adjacency[0].Face.RemoteURI().String())
	assert.Same(t, r1.Adjacency[0].Face, n.Node("C").Adjacency[0].Face.Peer())
}

func TestShortestPaths(t *testing.T) {
	n := diamond(t)
	dist := n.ShortestPaths("C", "")
	assert.Equal(t, map[string]uint64{"C": 0, "R1": 1, "R2": 2, "S": 2}, dist)

	dist = n.ShortestPaths("R2", "R1")
	assert.Equal(t, uint64(1), dist["S"])
	assert.Equal(t, uint64(3), dist["C"])
	_, ok := dist["R1"]
	assert.False(t, ok)
}

func TestFaceRoutes(t *testing.T) {
	n := diamond(t)
	prefix := ndn.MustNameFromStr("/cmip5/app")
	assert.Nil(t, n.FaceRoutes("C", prefix))

	require.NoError(t, n.AddOrigin(prefix, "S"))
	require.NoError(t, n.AddOrigin(prefix, "S"))
	assert.ErrorIs(t, n.AddOrigin(prefix, "X"), ErrUnknownNode)

	assert.Equal(t, []FaceRoute{{FaceID: 1, Cost: 2}, {FaceID: 2, Cost: 4}}, n.FaceRoutes("C", prefix))
	assert.Equal(t, []FaceRoute{{FaceID: 2, Cost: 1}, {FaceID: 3, Cost: 2}, {FaceID: 1, Cost: 5}}, n.FaceRoutes("R1", prefix))
}

func TestCalculateAllPossibleRoutes(t *testing.T) {
	n := diamond(t)
	prefix := ndn.MustNameFromStr("/cmip5/app")
	require.NoError(t, n.AddOrigin(prefix, "S"))
	n.CalculateAllPossibleRoutes()

	assert.Equal(t, []uint64{1, 2}, nexthopIDs(n, "C", prefix))
	assert.Equal(t, []uint64{1, 2, 3}, nexthopIDs(n, "R1", prefix))
	assert.Empty(t, nexthopIDs(n, "S", prefix))

	costs := make(map[uint64]uint64)
	for _, nh := range n.Node("C").Thread.Fib().FindNextHops(prefix) {
		costs[nh.Nexthop] = nh.Cost
	}
	assert.Equal(t, map[uint64]uint64{1: 2, 2: 4}, costs)
}

func TestCalculateRoutes(t *testing.T) {
	n := diamond(t)
	prefix := ndn.MustNameFromStr("/cmip5/app")
	require.NoError(t, n.AddOrigin(prefix, "S"))
	n.CalculateRoutes()

	assert.Equal(t, []uint64{1}, nexthopIDs(n, "C", prefix))
	assert.Equal(t, []uint64{2}, nexthopIDs(n, "R1", prefix))
	assert.Equal(t, []uint64{2}, nexthopIDs(n, "R2", prefix))
}
