/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package app

import (
	"math/rand"
	"time"

	"github.com/named-data/closersite/core"
	"github.com/named-data/closersite/ndn"
)

// ProducerConfig describes the Data served by a Producer.
type ProducerConfig struct {
	Prefix      ndn.Name
	PayloadSize int
	Freshness   time.Duration
	// Odds is the percentage of Interests that are silently dropped.
	Odds int
}

// ProducerStats counts the work of a Producer.
type ProducerStats struct {
	NInterests uint64 `yaml:"interests"`
	NData      uint64 `yaml:"data"`
	NDropped   uint64 `yaml:"dropped"`
}

// Producer answers every Interest under its prefix with a Data packet.
type Producer struct {
	engine  *Engine
	config  ProducerConfig
	rng     *rand.Rand
	payload []byte
	stats   ProducerStats
}

// NewProducer creates a producer on engine. rng is only used when Odds is set.
func NewProducer(engine *Engine, config ProducerConfig, rng *rand.Rand) *Producer {
	return &Producer{
		engine:  engine,
		config:  config,
		rng:     rng,
		payload: make([]byte, config.PayloadSize),
	}
}

func (p *Producer) String() string {
	return "Producer-" + p.engine.thread.GetID()
}

// Start attaches the producer to its prefix.
func (p *Producer) Start() error {
	core.LogInfo(p, "Serving Prefix=", p.config.Prefix)
	return p.engine.AttachHandler(p.config.Prefix, p.onInterest)
}

// Stats returns a copy of the producer counters.
func (p *Producer) Stats() ProducerStats {
	return p.stats
}

func (p *Producer) onInterest(interest *ndn.Interest, reply func(data *ndn.Data)) {
	p.stats.NInterests++
	if p.config.Odds > 0 && p.rng != nil && p.rng.Intn(100) < p.config.Odds {
		core.LogDebug(p, "Dropping Interest=", interest.Name())
		p.stats.NDropped++
		return
	}
	p.stats.NData++
	reply(&ndn.Data{
		NameV:      interest.Name(),
		ContentV:   p.payload,
		FreshnessV: p.config.Freshness,
	})
}
