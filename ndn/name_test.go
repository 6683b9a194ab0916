package ndn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameFromStr(t *testing.T) {
	name, err := NameFromStr("/cmip5/app/a%20b/seg=12/v=3")
	require.NoError(t, err)
	assert.Equal(t, 5, name.Size())
	assert.Equal(t, "cmip5", string(name.At(0).Val))
	assert.Equal(t, "a b", string(name.At(2).Val))
	assert.True(t, name.At(3).IsSegment())
	assert.Equal(t, uint64(12), name.At(3).NumberVal())
	assert.Equal(t, TypeVersionNameComponent, name.At(-1).Typ)
	assert.Equal(t, "/cmip5/app/a%20b/seg=12/v=3", name.String())

	root, err := NameFromStr("/")
	require.NoError(t, err)
	assert.Equal(t, 0, root.Size())
	assert.Equal(t, "/", root.String())

	_, err = NameFromStr("/bad/seg=x")
	assert.ErrorIs(t, err, ErrFormat)
	_, err = NameFromStr("/bad%2")
	assert.ErrorIs(t, err, ErrFormat)
}

func TestSegmentEncoding(t *testing.T) {
	for _, seg := range []uint64{0, 1, 255, 256, 70000, 1 << 40} {
		c := NewSegmentComponent(seg)
		assert.Equal(t, seg, c.NumberVal())
		parsed, err := ComponentFromStr(c.String())
		require.NoError(t, err)
		assert.True(t, c.Equal(parsed))
	}
	assert.Len(t, NewSegmentComponent(255).Val, 1)
	assert.Len(t, NewSegmentComponent(256).Val, 2)
}

func TestNamePrefix(t *testing.T) {
	a := MustNameFromStr("/a/b/c")
	ab := MustNameFromStr("/a/b")

	assert.True(t, ab.IsPrefix(a))
	assert.False(t, a.IsPrefix(ab))
	assert.True(t, Name{}.IsPrefix(a))
	assert.True(t, a.Prefix(-1).Equal(ab))
	assert.True(t, a.Prefix(2).Equal(ab))
	assert.Equal(t, 0, a.Prefix(-5).Size())
	assert.Equal(t, 3, a.Prefix(10).Size())

	abd := ab.Append(NewGenericComponent("d"))
	assert.Equal(t, "/a/b/d", abd.String())
	assert.Equal(t, "/a/b", ab.String())

	assert.Equal(t, -1, ab.Compare(a))
	assert.Equal(t, 1, a.Compare(ab))
	assert.Equal(t, 0, a.Compare(a.Clone()))
	assert.Equal(t, -1, a.Compare(abd))
}

func TestNameHash(t *testing.T) {
	a := MustNameFromStr("/a/b/c")
	assert.Equal(t, a.Hash(), a.Clone().Hash())
	assert.NotEqual(t, a.Hash(), MustNameFromStr("/a/b/d").Hash())
	// Component boundaries are part of the hash
	assert.NotEqual(t, MustNameFromStr("/ab/c").Hash(), MustNameFromStr("/a/bc").Hash())

	ph := a.PrefixHash()
	assert.Len(t, ph, 4)
	assert.Equal(t, a.Hash(), ph[3])
	assert.Equal(t, a.Prefix(1).Hash(), ph[1])
	assert.Equal(t, Name{}.Hash(), ph[0])
}

func TestLocalScopes(t *testing.T) {
	assert.True(t, MustNameFromStr("/localhost/nfd").IsLocalhost())
	assert.False(t, MustNameFromStr("/localhop/nfd").IsLocalhost())
	assert.True(t, MustNameFromStr("/localhop/nfd").IsLocalhop())
	assert.False(t, Name{}.IsLocalhop())
}

func TestDataCanSatisfy(t *testing.T) {
	data := &Data{NameV: MustNameFromStr("/a/b/seg=1")}
	assert.True(t, data.CanSatisfy(NewInterest(MustNameFromStr("/a/b/seg=1"), 1)))
	assert.False(t, data.CanSatisfy(NewInterest(MustNameFromStr("/a/b"), 1)))

	prefix := NewInterest(MustNameFromStr("/a/b"), 1)
	prefix.CanBePrefixV = true
	assert.True(t, data.CanSatisfy(prefix))
}

func TestPacketName(t *testing.T) {
	interest := NewInterest(MustNameFromStr("/x"), 7)
	assert.Equal(t, "/x", (&Packet{Interest: interest}).Name().String())
	assert.Equal(t, "/x", (&Packet{Nack: &Nack{Reason: NackReasonNoRoute, Interest: interest}}).Name().String())
	assert.Equal(t, DefaultInterestLifetime, (&Interest{}).Lifetime())
	assert.Equal(t, "NoRoute", NackReasonNoRoute.String())

	data := &Packet{Data: &Data{NameV: MustNameFromStr("/x"), ContentV: make([]byte, 100)}}
	assert.Greater(t, data.WireSize(), (&Packet{Interest: interest}).WireSize())
}
