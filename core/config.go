/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package core

import (
	"math"
	"os"
	"strings"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Config is the complete simulator configuration.
// Durations are given in milliseconds unless the field name says otherwise.
type Config struct {
	Core struct {
		LogLevel string `toml:"log_level"`
		LogFile  string `toml:"log_file"`
	} `toml:"core"`

	Tables struct {
		DeadNonceList struct {
			Lifetime int `toml:"lifetime"`
		} `toml:"dead_nonce_list"`

		ContentStore struct {
			Capacity          int    `toml:"capacity"`
			Admit             bool   `toml:"admit"`
			Serve             bool   `toml:"serve"`
			ReplacementPolicy string `toml:"replacement_policy"`
		} `toml:"content_store"`

		Measurements struct {
			Lifetime int `toml:"lifetime"`
		} `toml:"measurements"`
	} `toml:"tables"`

	Faces struct {
		QueueSize int `toml:"queue_size"`

		Link struct {
			Bandwidth int64 `toml:"bandwidth"`
			MTU       int   `toml:"mtu"`
			Delay     int   `toml:"delay"`
		} `toml:"link"`
	} `toml:"faces"`

	Fw struct {
		DefaultStrategy string `toml:"default_strategy"`
		StragglerTime   int    `toml:"straggler_time"`

		CloserSite struct {
			ExtendLifetime int `toml:"extend_lifetime"`
			Epoch          int `toml:"epoch"`
		} `toml:"closer_site"`
	} `toml:"fw"`

	Sim struct {
		Topology     string `toml:"topology"`
		Servers      string `toml:"servers"`
		Clients      string `toml:"clients"`
		TraceDir     string `toml:"trace_dir"`
		Timestamp    int64  `toml:"timestamp"`
		Prefix       string `toml:"prefix"`
		Strategy     string `toml:"strategy"`
		Routing      string `toml:"routing"`
		CacheSize    int    `toml:"ncache"`
		DurationSecs int64  `toml:"duration"`
		Seed         int64  `toml:"seed"`
		Odds         int    `toml:"odds"`
		Report       string `toml:"report"`
	} `toml:"sim"`

	App struct {
		PipelineSize     int   `toml:"pipeline_size"`
		SegmentSize      int64 `toml:"segment_size"`
		PayloadSize      int   `toml:"payload_size"`
		Freshness        int   `toml:"freshness"`
		InterestLifetime int64 `toml:"interest_lifetime"`
		RetryLifetime    int   `toml:"retry_lifetime"`
		RetryDelay       int   `toml:"retry_delay"`
		MaxRetries       int   `toml:"max_retries"`
	} `toml:"app"`
}

var config *toml.Tree
var parsed = DefaultConfig()

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	c := new(Config)
	c.Core.LogLevel = "INFO"

	c.Tables.DeadNonceList.Lifetime = 6000
	c.Tables.ContentStore.Capacity = 1024
	c.Tables.ContentStore.Admit = true
	c.Tables.ContentStore.Serve = true
	c.Tables.ContentStore.ReplacementPolicy = "lru"
	c.Tables.Measurements.Lifetime = 4000

	c.Faces.QueueSize = 1024
	c.Faces.Link.Bandwidth = 10000000000
	c.Faces.Link.MTU = 1500
	c.Faces.Link.Delay = 1

	c.Fw.DefaultStrategy = "best-route"
	c.Fw.StragglerTime = 100
	c.Fw.CloserSite.ExtendLifetime = 16000
	c.Fw.CloserSite.Epoch = 0

	c.Sim.Prefix = "/cmip5/app"
	c.Sim.Strategy = "closer-site"
	c.Sim.Routing = "all"
	c.Sim.CacheSize = 0
	c.Sim.DurationSecs = 1000
	c.Sim.Seed = 1

	c.App.PipelineSize = 64
	c.App.SegmentSize = 100000000
	c.App.PayloadSize = 1
	c.App.Freshness = 1000
	c.App.InterestLifetime = 100000000
	c.App.RetryLifetime = 1000
	c.App.RetryDelay = 1000
	c.App.MaxRetries = 0
	return c
}

// LoadConfig loads the configuration from the specified file on top of the defaults.
func LoadConfig(file string) error {
	if _, err := os.Stat(file); err != nil {
		return errors.Wrapf(ErrConfigMissing, "%s", file)
	}
	tree, err := toml.LoadFile(file)
	if err != nil {
		return errors.Wrapf(err, "unable to load configuration file %s", file)
	}
	return loadConfigTree(tree)
}

// LoadConfigString loads the configuration from TOML text on top of the defaults.
func LoadConfigString(text string) error {
	tree, err := toml.Load(text)
	if err != nil {
		return errors.Wrap(err, "unable to parse configuration")
	}
	return loadConfigTree(tree)
}

func loadConfigTree(tree *toml.Tree) error {
	prev := config
	config = tree
	c := DefaultConfig()

	c.Core.LogLevel = GetConfigStringDefault("core.log_level", c.Core.LogLevel)
	c.Core.LogFile = GetConfigStringDefault("core.log_file", c.Core.LogFile)

	c.Tables.DeadNonceList.Lifetime = GetConfigIntDefault("tables.dead_nonce_list.lifetime", c.Tables.DeadNonceList.Lifetime)
	c.Tables.ContentStore.Capacity = GetConfigIntDefault("tables.content_store.capacity", c.Tables.ContentStore.Capacity)
	c.Tables.ContentStore.Admit = GetConfigBoolDefault("tables.content_store.admit", c.Tables.ContentStore.Admit)
	c.Tables.ContentStore.Serve = GetConfigBoolDefault("tables.content_store.serve", c.Tables.ContentStore.Serve)
	c.Tables.ContentStore.ReplacementPolicy = GetConfigStringDefault("tables.content_store.replacement_policy", c.Tables.ContentStore.ReplacementPolicy)
	c.Tables.Measurements.Lifetime = GetConfigIntDefault("tables.measurements.lifetime", c.Tables.Measurements.Lifetime)

	c.Faces.QueueSize = GetConfigIntDefault("faces.queue_size", c.Faces.QueueSize)
	c.Faces.Link.Bandwidth = GetConfigInt64Default("faces.link.bandwidth", c.Faces.Link.Bandwidth)
	c.Faces.Link.MTU = GetConfigIntDefault("faces.link.mtu", c.Faces.Link.MTU)
	c.Faces.Link.Delay = GetConfigIntDefault("faces.link.delay", c.Faces.Link.Delay)

	c.Fw.DefaultStrategy = GetConfigStringDefault("fw.default_strategy", c.Fw.DefaultStrategy)
	c.Fw.StragglerTime = GetConfigIntDefault("fw.straggler_time", c.Fw.StragglerTime)
	c.Fw.CloserSite.ExtendLifetime = GetConfigIntDefault("fw.closer_site.extend_lifetime", c.Fw.CloserSite.ExtendLifetime)
	c.Fw.CloserSite.Epoch = GetConfigIntDefault("fw.closer_site.epoch", c.Fw.CloserSite.Epoch)

	c.Sim.Topology = GetConfigStringDefault("sim.topology", c.Sim.Topology)
	c.Sim.Servers = GetConfigStringDefault("sim.servers", c.Sim.Servers)
	c.Sim.Clients = GetConfigStringDefault("sim.clients", c.Sim.Clients)
	c.Sim.TraceDir = GetConfigStringDefault("sim.trace_dir", c.Sim.TraceDir)
	c.Sim.Timestamp = GetConfigInt64Default("sim.timestamp", c.Sim.Timestamp)
	c.Sim.Prefix = GetConfigStringDefault("sim.prefix", c.Sim.Prefix)
	c.Sim.Strategy = GetConfigStringDefault("sim.strategy", c.Sim.Strategy)
	c.Sim.Routing = GetConfigStringDefault("sim.routing", c.Sim.Routing)
	c.Sim.CacheSize = GetConfigIntDefault("sim.ncache", c.Sim.CacheSize)
	c.Sim.DurationSecs = GetConfigInt64Default("sim.duration", c.Sim.DurationSecs)
	c.Sim.Seed = GetConfigInt64Default("sim.seed", c.Sim.Seed)
	c.Sim.Odds = GetConfigIntDefault("sim.odds", c.Sim.Odds)
	c.Sim.Report = GetConfigStringDefault("sim.report", c.Sim.Report)

	c.App.PipelineSize = GetConfigIntDefault("app.pipeline_size", c.App.PipelineSize)
	c.App.SegmentSize = GetConfigInt64Default("app.segment_size", c.App.SegmentSize)
	c.App.PayloadSize = GetConfigIntDefault("app.payload_size", c.App.PayloadSize)
	c.App.Freshness = GetConfigIntDefault("app.freshness", c.App.Freshness)
	c.App.InterestLifetime = GetConfigInt64Default("app.interest_lifetime", c.App.InterestLifetime)
	c.App.RetryLifetime = GetConfigIntDefault("app.retry_lifetime", c.App.RetryLifetime)
	c.App.RetryDelay = GetConfigIntDefault("app.retry_delay", c.App.RetryDelay)
	c.App.MaxRetries = GetConfigIntDefault("app.max_retries", c.App.MaxRetries)

	if err := c.Validate(); err != nil {
		config = prev
		return err
	}
	parsed = c
	return nil
}

// SetConfig replaces the active configuration.
func SetConfig(c *Config) {
	parsed = c
}

// GetConfig returns the active configuration.
func GetConfig() *Config {
	return parsed
}

// Validate reports every out-of-range value in the configuration.
func (c *Config) Validate() error {
	var err error
	check := func(ok bool, field string) {
		if !ok {
			err = multierr.Append(err, errors.Wrap(ErrConfigInvalid, field))
		}
	}
	check(c.Tables.DeadNonceList.Lifetime > 0, "tables.dead_nonce_list.lifetime must be positive")
	check(c.Tables.ContentStore.Capacity >= 0, "tables.content_store.capacity must not be negative")
	check(c.Tables.ContentStore.ReplacementPolicy == "lru", "tables.content_store.replacement_policy must be lru")
	check(c.Tables.Measurements.Lifetime > 0, "tables.measurements.lifetime must be positive")
	check(c.Faces.QueueSize > 0, "faces.queue_size must be positive")
	check(c.Faces.Link.Bandwidth > 0, "faces.link.bandwidth must be positive")
	check(c.Faces.Link.MTU > 0, "faces.link.mtu must be positive")
	check(c.Faces.Link.Delay >= 0, "faces.link.delay must not be negative")
	check(c.Fw.StragglerTime >= 0, "fw.straggler_time must not be negative")
	check(c.Fw.CloserSite.ExtendLifetime > 0, "fw.closer_site.extend_lifetime must be positive")
	check(c.Fw.CloserSite.Epoch >= 0, "fw.closer_site.epoch must not be negative")
	check(strings.HasPrefix(c.Sim.Prefix, "/"), "sim.prefix must be an absolute name")
	check(c.Sim.Routing == "all" || c.Sim.Routing == "best", "sim.routing must be all or best")
	check(c.Sim.CacheSize >= 0, "sim.ncache must not be negative")
	check(c.Sim.DurationSecs > 0, "sim.duration must be positive")
	check(c.Sim.Odds >= 0 && c.Sim.Odds <= 100, "sim.odds must be a percentage")
	check(c.App.PipelineSize >= 1, "app.pipeline_size must be at least 1")
	check(c.App.SegmentSize > 0, "app.segment_size must be positive")
	check(c.App.PayloadSize >= 0, "app.payload_size must not be negative")
	check(c.App.Freshness >= 0, "app.freshness must not be negative")
	check(c.App.InterestLifetime > 0, "app.interest_lifetime must be positive")
	check(c.App.RetryLifetime > 0, "app.retry_lifetime must be positive")
	check(c.App.RetryDelay >= 0, "app.retry_delay must not be negative")
	check(c.App.MaxRetries >= 0, "app.max_retries must not be negative")
	return err
}

// GetConfigIntDefault returns the integer configuration value at the specified key or the specified default value if it does not exist.
func GetConfigIntDefault(key string, def int) int {
	if config == nil {
		return def
	}
	valRaw := config.Get(key)
	if valRaw == nil {
		return def
	}
	val, ok := valRaw.(int64)
	if ok && val >= math.MinInt32 && val <= math.MaxInt32 {
		return int(val)
	}
	return def
}

// GetConfigInt64Default returns the 64-bit integer configuration value at the specified key or the specified default value if it does not exist.
func GetConfigInt64Default(key string, def int64) int64 {
	if config == nil {
		return def
	}
	if val, ok := config.Get(key).(int64); ok {
		return val
	}
	return def
}

// GetConfigBoolDefault returns the boolean configuration value at the specified key or the specified default value if it does not exist.
func GetConfigBoolDefault(key string, def bool) bool {
	if config == nil {
		return def
	}
	if val, ok := config.Get(key).(bool); ok {
		return val
	}
	return def
}

// GetConfigStringDefault returns the string configuration value at the specified key or the specified default value if it does not exist.
func GetConfigStringDefault(key string, def string) string {
	if config == nil {
		return def
	}
	if val, ok := config.Get(key).(string); ok {
		return val
	}
	return def
}
