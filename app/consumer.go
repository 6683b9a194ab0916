/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package app

import (
	"math"
	"time"

	"github.com/named-data/closersite/core"
	"github.com/named-data/closersite/ndn"
	"github.com/named-data/closersite/utils/comparison"
)

// ConsumerConfig describes how a Consumer fetches objects.
type ConsumerConfig struct {
	Prefix ndn.Name
	// PipelineSize is the number of segments of an object in flight at once.
	PipelineSize int
	// SegmentSize is the number of object octets carried by one segment.
	SegmentSize      int64
	InterestLifetime time.Duration
	RetryLifetime    time.Duration
	RetryDelay       time.Duration
	// MaxRetries bounds the retransmissions of one segment. Zero retries forever.
	MaxRetries int
}

// ObjectStats is the fetch record of one object.
type ObjectStats struct {
	Name            string    `yaml:"name"`
	Segments        int       `yaml:"segments"`
	Received        int       `yaml:"received"`
	Failed          int       `yaml:"failed"`
	Retransmissions int       `yaml:"retransmissions"`
	Nacks           int       `yaml:"nacks"`
	Start           time.Time `yaml:"start"`
	Finish          time.Time `yaml:"finish,omitempty"`
	Complete        bool      `yaml:"complete"`
}

// Duration returns how long the fetch took, or zero if it did not finish.
func (s *ObjectStats) Duration() time.Duration {
	if s.Finish.IsZero() {
		return 0
	}
	return s.Finish.Sub(s.Start)
}

// fetchState tracks the segments of one object.
type fetchState struct {
	name    ndn.Name // /prefix/object/seg=max
	next    int
	retries map[int]int
	stats   *ObjectStats
}

func (f *fetchState) finished() bool {
	return f.stats.Received+f.stats.Failed >= f.stats.Segments
}

// Consumer fetches segmented objects with a fixed pipeline per object.
type Consumer struct {
	engine  *Engine
	config  ConsumerConfig
	objects []*ObjectStats
}

// NewConsumer creates a consumer on engine.
func NewConsumer(engine *Engine, config ConsumerConfig) *Consumer {
	return &Consumer{engine: engine, config: config}
}

func (c *Consumer) String() string {
	return "Consumer-" + c.engine.thread.GetID()
}

// Objects returns the fetch records in request order.
func (c *Consumer) Objects() []*ObjectStats {
	return c.objects
}

// SegmentCount returns the number of segments of an object of size octets.
func SegmentCount(size float64, segmentSize int64) int {
	return comparison.Max(int(math.Ceil(size/float64(segmentSize))), 1)
}

// Schedule fetches every request at its timestamp relative to base.
// Requests older than base start immediately.
func (c *Consumer) Schedule(requests []TraceRequest, base int64) {
	for _, request := range requests {
		request := request
		delay := time.Duration(request.Timestamp-base) * time.Second
		c.engine.timer.Schedule(delay, func() {
			c.Fetch(request)
		})
	}
}

// Fetch starts retrieving the object of request.
func (c *Consumer) Fetch(request TraceRequest) *ObjectStats {
	segments := SegmentCount(request.Size, c.config.SegmentSize)
	objectName, err := ndn.NameFromStr("/" + request.Object)
	if err != nil {
		core.LogWarn(c, "Invalid object name ", request.Object, ": ", err)
		return nil
	}
	name := c.config.Prefix.Append(objectName...).Append(ndn.NewSegmentComponent(uint64(segments)))

	state := &fetchState{
		name:    name,
		retries: make(map[int]int),
		stats: &ObjectStats{
			Name:     name.Prefix(-1).String(),
			Segments: segments,
			Start:    c.engine.timer.Now(),
		},
	}
	c.objects = append(c.objects, state.stats)

	pipeline := comparison.Min(segments, c.config.PipelineSize)
	core.LogDebug(c, "Fetching Object=", state.stats.Name, " Segments=", segments, " Pipeline=", pipeline)
	for i := 0; i < pipeline; i++ {
		c.requestNext(state)
	}
	return state.stats
}

func (c *Consumer) requestNext(state *fetchState) {
	if state.next >= state.stats.Segments {
		return
	}
	seg := state.next
	state.next++
	c.express(state, seg, c.config.InterestLifetime)
}

func (c *Consumer) express(state *fetchState, seg int, lifetime time.Duration) {
	interest := ndn.NewInterest(state.name.Append(ndn.NewSegmentComponent(uint64(seg))), c.engine.timer.Nonce())
	interest.MustBeFreshV = true
	interest.LifetimeV = lifetime
	if err := c.engine.Express(interest, func(args ExpressCallbackArgs) {
		c.onResult(state, seg, args)
	}); err != nil {
		// Nonce collision, try again with another one
		core.LogDebug(c, "Unable to express Interest=", interest.Name(), ": ", err)
		c.express(state, seg, lifetime)
	}
}

func (c *Consumer) onResult(state *fetchState, seg int, args ExpressCallbackArgs) {
	switch args.Result {
	case InterestResultData:
		core.LogTrace(c, "Data=", args.Data.Name())
		state.stats.Received++
		if state.finished() {
			c.finish(state)
			return
		}
		c.requestNext(state)
	case InterestResultNack:
		core.LogInfo(c, "Received Nack with reason ", args.NackReason, " for Interest=", args.Interest.Name())
		state.stats.Nacks++
		c.retry(state, seg)
	case InterestResultTimeout:
		core.LogDebug(c, "Timeout for Interest=", args.Interest.Name())
		c.retry(state, seg)
	}
}

func (c *Consumer) retry(state *fetchState, seg int) {
	state.retries[seg]++
	if c.config.MaxRetries > 0 && state.retries[seg] > c.config.MaxRetries {
		core.LogWarn(c, "Giving up on segment ", seg, " of Object=", state.stats.Name)
		state.stats.Failed++
		if state.finished() {
			c.finish(state)
			return
		}
		c.requestNext(state)
		return
	}
	state.stats.Retransmissions++
	c.engine.timer.Schedule(c.config.RetryDelay, func() {
		c.express(state, seg, c.config.RetryLifetime)
	})
}

func (c *Consumer) finish(state *fetchState) {
	state.stats.Finish = c.engine.timer.Now()
	state.stats.Complete = state.stats.Failed == 0
	core.LogInfo(c, "Fetched Object=", state.stats.Name, " in ", state.stats.Duration(),
		" Received=", state.stats.Received, " Failed=", state.stats.Failed)
}
