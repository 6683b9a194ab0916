package sim

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/named-data/closersite/app"
	"github.com/named-data/closersite/core"
	"github.com/named-data/closersite/fw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const client = "10.0.0.1"

func lineTopology() *Topology {
	topo := &Topology{
		Routers: []Router{{Name: client}, {Name: "R"}, {Name: "S"}},
		Links:   []Link{defaultLink(client, "R"), defaultLink("R", "S")},
	}
	topo.Links[0].Delay = 5 * time.Millisecond
	topo.Links[1].Delay = 5 * time.Millisecond
	return topo
}

func scenarioConfig() *core.Config {
	cfg := core.DefaultConfig()
	cfg.Sim.CacheSize = 10
	cfg.Sim.Timestamp = 1000
	cfg.Sim.DurationSecs = 5
	cfg.App.PipelineSize = 4
	cfg.App.SegmentSize = 100
	cfg.App.Freshness = 10000
	return cfg
}

func TestScenarioCachesAtEdge(t *testing.T) {
	defer goleak.VerifyNone(t)

	s, err := NewScenario(scenarioConfig(), lineTopology(), []string{"S"}, []string{client})
	require.NoError(t, err)
	assert.NotNil(t, s.Producer("S"))
	assert.NotNil(t, s.Consumer(client))
	assert.Nil(t, s.Consumer("R"))

	s.Schedule(client, []app.TraceRequest{
		{Object: "a.nc", Size: 250, Timestamp: 1000},
		{Object: "a.nc", Size: 250, Timestamp: 1001},
	})
	report := s.Run()

	assert.Equal(t, "/cmip5/app", report.Prefix)
	assert.Equal(t, "closer-site", report.Strategy)
	assert.Equal(t, 5*time.Second, report.Duration)
	assert.Equal(t, 2, report.Summary.Objects)
	assert.Equal(t, 2, report.Summary.Completed)
	assert.Equal(t, 6, report.Summary.Segments)
	assert.Equal(t, 6, report.Summary.Received)
	assert.Zero(t, report.Summary.Failed)
	assert.Greater(t, report.Summary.MeanFetchTime, time.Duration(0))

	// The second fetch is served by the client's own cache
	assert.Equal(t, uint64(3), report.Summary.CsHits)
	require.Len(t, report.Producers, 1)
	assert.Equal(t, uint64(3), report.Producers[0].Stats.NData)

	require.Len(t, report.Nodes, 3)
	for _, node := range report.Nodes {
		switch node.Name {
		case client:
			assert.Equal(t, uint64(3), node.Forwarding.NCsHits)
			assert.Equal(t, 3, node.CsEntries)
			assert.Len(t, node.Faces, 2)
		case "R":
			assert.Zero(t, node.CsEntries)
			assert.Equal(t, uint64(3), node.Forwarding.NSatisfiedInterests)
		}
		assert.Zero(t, node.PitEntries)
	}

	require.Len(t, report.Consumers, 1)
	objects := report.Consumers[0].Objects
	require.Len(t, objects, 2)
	assert.Less(t, objects[1].Duration(), objects[0].Duration())
}

func TestScenarioProducerOdds(t *testing.T) {
	cfg := scenarioConfig()
	cfg.Sim.Odds = 100
	cfg.App.InterestLifetime = 1000
	cfg.App.MaxRetries = 1
	s, err := NewScenario(cfg, lineTopology(), []string{"S"}, []string{client})
	require.NoError(t, err)

	s.Schedule(client, []app.TraceRequest{{Object: "b.nc", Size: 50, Timestamp: 1000}})
	report := s.Run()
	assert.Equal(t, 1, report.Summary.Objects)
	assert.Zero(t, report.Summary.Completed)
	assert.Equal(t, 1, report.Summary.Failed)
	assert.Equal(t, 1, report.Summary.Retransmissions)
	assert.Equal(t, uint64(2), report.Producers[0].Stats.NDropped)
	assert.Zero(t, report.Summary.MeanFetchTime)
}

func TestScenarioErrors(t *testing.T) {
	_, err := NewScenario(scenarioConfig(), lineTopology(), []string{"S"}, []string{"10.9.9.9"})
	assert.ErrorIs(t, err, ErrUnknownNode)

	cfg := scenarioConfig()
	cfg.Sim.Strategy = "fastest"
	_, err = NewScenario(cfg, lineTopology(), []string{"S"}, []string{client})
	assert.ErrorIs(t, err, fw.ErrUnknownStrategy)

	cfg = scenarioConfig()
	cfg.Sim.Prefix = "cmip5"
	_, err = NewScenario(cfg, lineTopology(), []string{"S"}, []string{client})
	assert.ErrorIs(t, err, core.ErrConfigInvalid)
}

func TestLoadNodeList(t *testing.T) {
	file := filepath.Join(t.TempDir(), "nodes.txt")
	require.NoError(t, os.WriteFile(file, []byte("# servers\nS1\n\n  S2  \n"), 0o644))
	nodes, err := LoadNodeList(file)
	require.NoError(t, err)
	assert.Equal(t, []string{"S1", "S2"}, nodes)

	_, err = LoadNodeList(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func traceLine(ip string, object string, timestamp string, size string) string {
	parts := make([]string, 16)
	for i := range parts {
		parts[i] = "-"
	}
	parts[1] = ip
	parts[3] = object
	parts[9] = timestamp
	parts[14] = size
	return strings.Join(parts, "\t")
}

func TestLoadScenario(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	write := func(name string, text string) string {
		file := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(file, []byte(text), 0o644))
		return file
	}

	cfg := scenarioConfig()
	cfg.Sim.Routing = "best"
	cfg.Sim.Topology = write("topo.txt", "router\n"+client+"\nR\nS\nlink\n"+client+" R 1Gbps 1 5ms\nR S 1Gbps 1 5ms\n")
	cfg.Sim.Servers = write("servers.txt", "S\n")
	cfg.Sim.Clients = write("clients.txt", client+"\n")
	cfg.Sim.TraceDir = dir
	write(client+".client.txt", strings.Join([]string{
		traceLine(client, "/cmip5/output1/a.nc", "1000", "120"),
		traceLine("10.0.0.2", "/cmip5/output1/b.nc", "1000", "120"),
	}, "\n"))
	cfg.Sim.Report = filepath.Join(dir, "report.yaml")

	s, err := LoadScenario(cfg)
	require.NoError(t, err)
	report := s.Run()
	assert.Equal(t, "best", report.Routing)
	assert.Equal(t, 1, report.Summary.Objects)
	assert.Equal(t, 1, report.Summary.Completed)
	assert.Equal(t, 2, report.Summary.Segments)

	require.NoError(t, report.WriteFile(cfg.Sim.Report))
	out, err := os.ReadFile(cfg.Sim.Report)
	require.NoError(t, err)
	assert.Contains(t, string(out), "completed: 1")
	assert.Contains(t, string(out), "/cmip5/app/cmip5/output1/a.nc")
	assert.Contains(t, string(out), "cs_hits: 0")

	cfg.Sim.Clients = write("clients.txt", "10.0.0.3\n")
	_, err = LoadScenario(cfg)
	assert.ErrorIs(t, err, ErrUnknownNode)
}
