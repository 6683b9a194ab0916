/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package sim

import (
	"bufio"
	"os"
	"strings"
	"time"

	"github.com/named-data/closersite/app"
	"github.com/named-data/closersite/core"
	"github.com/named-data/closersite/engine/dummy"
	"github.com/named-data/closersite/ndn"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Scenario is one simulation run: a network with producers on the server
// nodes and trace-driven consumers on the client nodes.
type Scenario struct {
	config    *core.Config
	timer     *dummy.Timer
	network   *Network
	prefix    ndn.Name
	servers   []string
	clients   []string
	producers map[string]*app.Producer
	consumers map[string]*app.Consumer
	start     time.Time
}

// LoadNodeList reads one node name per line. Blank lines and lines starting with # are skipped.
func LoadNodeList(file string) ([]string, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open node list %s", file)
	}
	defer f.Close()

	nodes := make([]string, 0)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		nodes = append(nodes, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "unable to read node list %s", file)
	}
	return nodes, nil
}

// LoadScenario builds the scenario described by the sim section of cfg and
// schedules every client's trace.
func LoadScenario(cfg *core.Config) (*Scenario, error) {
	topo, err := LoadTopology(cfg.Sim.Topology)
	if err != nil {
		return nil, err
	}
	servers, err := LoadNodeList(cfg.Sim.Servers)
	if err != nil {
		return nil, err
	}
	clients, err := LoadNodeList(cfg.Sim.Clients)
	if err != nil {
		return nil, err
	}

	s, err := NewScenario(cfg, topo, servers, clients)
	if err != nil {
		return nil, err
	}
	for _, client := range clients {
		requests, err := app.LoadTrace(cfg.Sim.TraceDir, client)
		if err != nil {
			return nil, err
		}
		s.Schedule(client, requests)
	}
	return s, nil
}

// NewScenario builds the network of topo with producers on servers and
// consumers on clients, chooses the strategy of the prefix and installs routes.
func NewScenario(cfg *core.Config, topo *Topology, servers []string, clients []string) (*Scenario, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	prefix, err := ndn.NameFromStr(cfg.Sim.Prefix)
	if err != nil {
		return nil, errors.Wrapf(err, "prefix %s", cfg.Sim.Prefix)
	}
	var missing error
	for _, node := range append(append([]string{}, servers...), clients...) {
		if !topo.HasRouter(node) {
			missing = multierr.Append(missing, errors.Wrapf(ErrUnknownNode, "%s", node))
		}
	}
	if missing != nil {
		return nil, missing
	}

	s := &Scenario{
		config:    cfg,
		timer:     dummy.NewTimer(cfg.Sim.Seed),
		prefix:    prefix,
		servers:   servers,
		clients:   clients,
		producers: make(map[string]*app.Producer),
		consumers: make(map[string]*app.Consumer),
	}
	s.start = s.timer.Now()

	// Caches only at the edge
	edge := make(map[string]bool, len(clients))
	for _, client := range clients {
		edge[client] = true
	}
	s.network = NewNetwork(s.timer, topo, func(node string) int {
		if edge[node] {
			return cfg.Sim.CacheSize
		}
		return 0
	})

	if err := s.network.SetStrategy(prefix, cfg.Sim.Strategy); err != nil {
		return nil, err
	}

	for _, server := range servers {
		if _, ok := s.producers[server]; ok {
			continue
		}
		engine := app.NewEngine(s.timer, s.network.Node(server).Thread, "producer")
		producer := app.NewProducer(engine, app.ProducerConfig{
			Prefix:      prefix,
			PayloadSize: cfg.App.PayloadSize,
			Freshness:   time.Duration(cfg.App.Freshness) * time.Millisecond,
			Odds:        cfg.Sim.Odds,
		}, s.timer.Rand())
		if err := producer.Start(); err != nil {
			return nil, err
		}
		s.producers[server] = producer
		if err := s.network.AddOrigin(prefix, server); err != nil {
			return nil, err
		}
	}

	consumerConfig := app.ConsumerConfig{
		Prefix:           prefix,
		PipelineSize:     cfg.App.PipelineSize,
		SegmentSize:      cfg.App.SegmentSize,
		InterestLifetime: time.Duration(cfg.App.InterestLifetime) * time.Millisecond,
		RetryLifetime:    time.Duration(cfg.App.RetryLifetime) * time.Millisecond,
		RetryDelay:       time.Duration(cfg.App.RetryDelay) * time.Millisecond,
		MaxRetries:       cfg.App.MaxRetries,
	}
	for _, client := range clients {
		if _, ok := s.consumers[client]; ok {
			continue
		}
		engine := app.NewEngine(s.timer, s.network.Node(client).Thread, "consumer")
		s.consumers[client] = app.NewConsumer(engine, consumerConfig)
	}

	if cfg.Sim.Routing == "best" {
		s.network.CalculateRoutes()
	} else {
		s.network.CalculateAllPossibleRoutes()
	}
	return s, nil
}

func (s *Scenario) String() string {
	return "Scenario"
}

// Network returns the simulated network.
func (s *Scenario) Network() *Network {
	return s.network
}

// Consumer returns the consumer of a client node, or nil.
func (s *Scenario) Consumer(node string) *app.Consumer {
	return s.consumers[node]
}

// Producer returns the producer of a server node, or nil.
func (s *Scenario) Producer(node string) *app.Producer {
	return s.producers[node]
}

// Schedule queues the requests of a client relative to the trace timestamp base.
func (s *Scenario) Schedule(client string, requests []app.TraceRequest) {
	consumer := s.consumers[client]
	if consumer == nil {
		core.LogWarn(s, "No consumer on Node=", client)
		return
	}
	core.LogInfo(s, "Scheduling ", len(requests), " requests on Node=", client)
	consumer.Schedule(requests, s.config.Sim.Timestamp)
}

// Run executes the simulation for the configured duration and reports the outcome.
func (s *Scenario) Run() *Report {
	duration := time.Duration(s.config.Sim.DurationSecs) * time.Second
	core.LogInfo(s, "Running for ", duration)
	s.timer.RunUntil(s.start.Add(duration))
	core.LogInfo(s, "Finished after ", s.timer.EventsRun(), " events")
	return s.report(duration)
}
