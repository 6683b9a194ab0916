package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()
	require.NoError(t, c.Validate())
	assert.Equal(t, "/cmip5/app", c.Sim.Prefix)
	assert.Equal(t, "closer-site", c.Sim.Strategy)
	assert.Equal(t, 64, c.App.PipelineSize)
	assert.Equal(t, int64(100000000), c.App.SegmentSize)
	assert.Equal(t, 16000, c.Fw.CloserSite.ExtendLifetime)
	assert.Equal(t, 100, c.Fw.StragglerTime)
}

func TestLoadConfigString(t *testing.T) {
	defer SetConfig(DefaultConfig())

	err := LoadConfigString(`
[core]
log_level = "DEBUG"

[tables.content_store]
capacity = 10
admit = false

[fw.closer_site]
epoch = 2000

[sim]
ncache = 500
odds = 20
timestamp = 1443689480
`)
	require.NoError(t, err)
	c := GetConfig()
	assert.Equal(t, "DEBUG", c.Core.LogLevel)
	assert.Equal(t, 10, c.Tables.ContentStore.Capacity)
	assert.False(t, c.Tables.ContentStore.Admit)
	assert.True(t, c.Tables.ContentStore.Serve)
	assert.Equal(t, 2000, c.Fw.CloserSite.Epoch)
	assert.Equal(t, 500, c.Sim.CacheSize)
	assert.Equal(t, 20, c.Sim.Odds)
	assert.Equal(t, int64(1443689480), c.Sim.Timestamp)
	// Untouched keys keep their defaults
	assert.Equal(t, 64, c.App.PipelineSize)
}

func TestLoadConfigFile(t *testing.T) {
	defer SetConfig(DefaultConfig())

	file := filepath.Join(t.TempDir(), "sim.toml")
	require.NoError(t, os.WriteFile(file, []byte("[app]\npipeline_size = 8\n"), 0o644))
	require.NoError(t, LoadConfig(file))
	assert.Equal(t, 8, GetConfig().App.PipelineSize)

	err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, ErrConfigMissing)
}

func TestValidateCollectsAllErrors(t *testing.T) {
	defer SetConfig(DefaultConfig())

	err := LoadConfigString(`
[sim]
odds = 150
prefix = "cmip5"

[app]
pipeline_size = 0
`)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfigInvalid)
	assert.Len(t, multierr.Errors(err), 3)

	// A rejected file leaves the previous configuration active
	assert.Equal(t, 64, GetConfig().App.PipelineSize)
}
