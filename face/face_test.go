package face_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/named-data/closersite/engine/dummy"
	"github.com/named-data/closersite/face"
	"github.com/named-data/closersite/ndn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type arrival struct {
	at     time.Time
	name   string
	faceID uint64
}

func interestPacket(name string) *ndn.Packet {
	return &ndn.Packet{Interest: ndn.NewInterest(ndn.MustNameFromStr(name), 1)}
}

func recorder(timer *dummy.Timer, arrivals *[]arrival) face.ReceiveHandler {
	return func(packet *ndn.Packet, inFace face.Face) {
		*arrivals = append(*arrivals, arrival{timer.Now(), packet.Name().String(), inFace.FaceID()})
	}
}

func TestTableAssignsIDs(t *testing.T) {
	timer := dummy.NewTimer(1)
	table := face.NewTable("A", nil)
	a, b := face.NewLinkPair(timer, nil, "A", "B", face.LinkParams{})
	app := face.NewAppFace(timer, "A", "consumer")

	assert.Equal(t, uint64(1), table.Add(a))
	assert.Equal(t, uint64(2), table.Add(app))
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, uint64(1), a.FaceID())
	assert.Equal(t, face.Face(a), table.Get(1))
	assert.Nil(t, table.Get(3))
	assert.Equal(t, face.Face(a), table.GetByURI(face.NewSimFaceURI("B")))
	assert.Equal(t, face.Face(app), table.GetByURI(face.NewAppFaceURI("consumer")))

	faces := table.GetAll()
	require.Len(t, faces, 2)
	assert.Equal(t, uint64(1), faces[0].FaceID())
	assert.Equal(t, uint64(2), faces[1].FaceID())

	table.Remove(1)
	assert.Nil(t, table.Get(1))
	// IDs are never reused
	assert.Equal(t, uint64(3), table.Add(b))
	assert.Equal(t, "FaceTable-A", table.String())
}

func TestLinkDelayAndScope(t *testing.T) {
	timer := dummy.NewTimer(1)
	var arrivals []arrival
	a, b := face.NewLinkPair(timer, nil, "A", "B", face.LinkParams{Bandwidth: 1_000_000_000_000, Delay: 10 * time.Millisecond})
	face.NewTable("B", recorder(timer, &arrivals)).Add(b)

	assert.Equal(t, ndn.NonLocal, a.Scope())
	assert.Equal(t, b, a.Peer())
	a.SendPacket(interestPacket("/x"))
	timer.MoveForward(9 * time.Millisecond)
	assert.Empty(t, arrivals)
	timer.MoveForward(2 * time.Millisecond)
	require.Len(t, arrivals, 1)
	assert.Equal(t, "/x", arrivals[0].name)
	assert.Equal(t, uint64(1), arrivals[0].faceID)

	assert.Equal(t, uint64(1), a.Counters().NOutInterests)
	assert.Equal(t, uint64(1), b.Counters().NInInterests)
}

func TestLinkSerialization(t *testing.T) {
	timer := dummy.NewTimer(1)
	var arrivals []arrival
	// 8000 bit/s: one octet per millisecond
	a, b := face.NewLinkPair(timer, nil, "A", "B", face.LinkParams{Bandwidth: 8000, QueueSize: 2})
	face.NewTable("B", recorder(timer, &arrivals)).Add(b)

	p := interestPacket("/p")
	tx := time.Duration(p.WireSize()+16) * time.Millisecond
	a.SendPacket(p)
	a.SendPacket(interestPacket("/q"))
	assert.Equal(t, 2, a.QueueLen())
	// Queue full
	a.SendPacket(interestPacket("/r"))
	assert.Equal(t, uint64(1), a.Counters().NDropped)

	timer.MoveForward(10 * time.Second)
	require.Len(t, arrivals, 2)
	assert.Equal(t, tx, arrivals[0].at.Sub(time.Unix(0, 0)))
	assert.Equal(t, 2*tx, arrivals[1].at.Sub(time.Unix(0, 0)))
	assert.Equal(t, 0, a.QueueLen())
}

func TestLinkLossAndDown(t *testing.T) {
	timer := dummy.NewTimer(1)
	var arrivals []arrival
	a, b := face.NewLinkPair(timer, rand.New(rand.NewSource(1)), "A", "B", face.LinkParams{LossRate: 1})
	face.NewTable("B", recorder(timer, &arrivals)).Add(b)
	a.SendPacket(interestPacket("/lost"))
	timer.MoveForward(time.Second)
	assert.Empty(t, arrivals)

	c, d := face.NewLinkPair(timer, nil, "C", "D", face.LinkParams{})
	face.NewTable("D", recorder(timer, &arrivals)).Add(d)
	c.SetState(face.Down)
	assert.Equal(t, face.Down, c.State())
	c.SendPacket(interestPacket("/down"))
	timer.MoveForward(time.Second)
	assert.Empty(t, arrivals)
	assert.Equal(t, uint64(1), c.Counters().NDropped)
}

func TestAppFace(t *testing.T) {
	timer := dummy.NewTimer(1)
	var arrivals []arrival
	app := face.NewAppFace(timer, "A", "producer")
	face.NewTable("A", recorder(timer, &arrivals)).Add(app)
	assert.Equal(t, ndn.Local, app.Scope())

	var toApp []*ndn.Packet
	app.SetApplication(func(packet *ndn.Packet) {
		toApp = append(toApp, packet)
	})

	app.Inject(interestPacket("/in"))
	app.SendPacket(&ndn.Packet{Data: &ndn.Data{NameV: ndn.MustNameFromStr("/out")}})
	// Nothing is delivered synchronously
	assert.Empty(t, arrivals)
	assert.Empty(t, toApp)

	timer.Run()
	require.Len(t, arrivals, 1)
	assert.Equal(t, "/in", arrivals[0].name)
	require.Len(t, toApp, 1)
	assert.Equal(t, "/out", toApp[0].Name().String())
	assert.Equal(t, time.Unix(0, 0).UTC(), timer.Now())
}
