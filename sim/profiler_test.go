package sim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfiler(t *testing.T) {
	dir := t.TempDir()
	config := ProfilerConfig{
		CpuProfile:   filepath.Join(dir, "cpu.pprof"),
		MemProfile:   filepath.Join(dir, "mem.pprof"),
		BlockProfile: filepath.Join(dir, "block.pprof"),
	}
	p := NewProfiler(config)
	require.NoError(t, p.Start())

	s, err := NewScenario(scenarioConfig(), lineTopology(), []string{"S"}, []string{client})
	require.NoError(t, err)
	s.Run()

	require.NoError(t, p.Stop())
	for _, file := range []string{config.CpuProfile, config.MemProfile, config.BlockProfile} {
		info, err := os.Stat(file)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
}

func TestProfilerDisabled(t *testing.T) {
	p := NewProfiler(ProfilerConfig{})
	require.NoError(t, p.Start())
	assert.NoError(t, p.Stop())
}
