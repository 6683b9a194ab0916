package sim

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const annotated = `# any empty lines and lines starting with '#' symbol are ignored
router
# node  comment  yPos  xPos
C       NA       1     1
R       NA       2     2   # core
S       NA       3     3

link
# srcNode  dstNode  bandwidth  metric  delay  queue
C          R        1Gbps      1       10ms   50
R          S        10Mbps     3       0.005
`

func TestParseAnnotatedTopology(t *testing.T) {
	topo, err := ParseAnnotatedTopology(strings.NewReader(annotated))
	require.NoError(t, err)
	require.NoError(t, topo.Validate())

	require.Len(t, topo.Routers, 3)
	assert.Equal(t, Router{Name: "R", Comment: "NA", Y: 2, X: 2}, topo.Routers[1])
	assert.True(t, topo.HasRouter("S"))
	assert.False(t, topo.HasRouter("X"))

	require.Len(t, topo.Links, 2)
	assert.Equal(t, Link{Src: "C", Dst: "R", Bandwidth: 1_000_000_000, Metric: 1, Delay: 10 * time.Millisecond, Queue: 50}, topo.Links[0])
	assert.Equal(t, int64(10_000_000), topo.Links[1].Bandwidth)
	assert.Equal(t, uint64(3), topo.Links[1].Metric)
	assert.Equal(t, 5*time.Millisecond, topo.Links[1].Delay)
	// Queue falls back to the default
	assert.Equal(t, defaultLink("R", "S").Queue, topo.Links[1].Queue)
}

func TestParseAnnotatedTopologyErrors(t *testing.T) {
	_, err := ParseAnnotatedTopology(strings.NewReader("C NA 1 1\n"))
	assert.ErrorIs(t, err, ErrTopologyFormat)

	_, err = ParseAnnotatedTopology(strings.NewReader("link\nC R fast\n"))
	assert.ErrorIs(t, err, ErrTopologyFormat)

	_, err = ParseAnnotatedTopology(strings.NewReader("link\nC\n"))
	assert.ErrorIs(t, err, ErrTopologyFormat)

	_, err = ParseAnnotatedTopology(strings.NewReader("router\nC NA north\n"))
	assert.ErrorIs(t, err, ErrTopologyFormat)
}

func TestYAMLTopology(t *testing.T) {
	topo, err := ParseYAMLTopology(strings.NewReader(`
routers:
  - name: C
  - name: S
links:
  - src: C
    dst: S
    bandwidth: 100Mbps
    delay: 2ms
`))
	require.NoError(t, err)
	require.NoError(t, topo.Validate())
	require.Len(t, topo.Links, 1)
	assert.Equal(t, int64(100_000_000), topo.Links[0].Bandwidth)
	assert.Equal(t, 2*time.Millisecond, topo.Links[0].Delay)
	assert.Equal(t, uint64(1), topo.Links[0].Metric)

	out, err := topo.EncodeYAML()
	require.NoError(t, err)
	again, err := ParseYAMLTopology(strings.NewReader(string(out)))
	require.NoError(t, err)
	assert.Equal(t, topo, again)

	_, err = ParseYAMLTopology(strings.NewReader("routers:\n  - name: C\n    color: red\n"))
	assert.Error(t, err)
}

func TestLoadTopology(t *testing.T) {
	dir := t.TempDir()
	text := filepath.Join(dir, "topo.txt")
	require.NoError(t, os.WriteFile(text, []byte(annotated), 0o644))
	topo, err := LoadTopology(text)
	require.NoError(t, err)
	assert.Len(t, topo.Routers, 3)

	bad := filepath.Join(dir, "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("routers:\n  - name: C\nlinks:\n  - src: C\n    dst: X\n"), 0o644))
	_, err = LoadTopology(bad)
	assert.ErrorIs(t, err, ErrTopologyInvalid)

	_, err = LoadTopology(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestTopologyValidate(t *testing.T) {
	topo := &Topology{
		Routers: []Router{{Name: "A"}, {Name: "A"}, {Name: ""}},
		Links: []Link{
			{Src: "A", Dst: "A", Metric: 1},
			{Src: "A", Dst: "B", Metric: 0},
		},
	}
	err := topo.Validate()
	require.ErrorIs(t, err, ErrTopologyInvalid)
	msg := err.Error()
	assert.Contains(t, msg, "duplicate router A")
	assert.Contains(t, msg, "router without name")
	assert.Contains(t, msg, "link A-A is a loop")
	assert.Contains(t, msg, "link A-B has an unknown end")
	assert.Contains(t, msg, "link A-B has no metric")
}

func TestParseBandwidthAndDelay(t *testing.T) {
	bw, err := ParseBandwidth("10Gbps")
	require.NoError(t, err)
	assert.Equal(t, int64(10_000_000_000), bw)
	bw, err = ParseBandwidth("1.5kbps")
	require.NoError(t, err)
	assert.Equal(t, int64(1500), bw)
	bw, err = ParseBandwidth("64")
	require.NoError(t, err)
	assert.Equal(t, int64(64), bw)
	_, err = ParseBandwidth("0bps")
	assert.ErrorIs(t, err, ErrTopologyFormat)

	d, err := ParseDelay("1.5")
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, d)
	d, err = ParseDelay("250us")
	require.NoError(t, err)
	assert.Equal(t, 250*time.Microsecond, d)
	_, err = ParseDelay("-1ms")
	assert.ErrorIs(t, err, ErrTopologyFormat)
	_, err = ParseDelay("soon")
	assert.ErrorIs(t, err, ErrTopologyFormat)
}
