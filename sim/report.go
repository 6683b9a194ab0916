/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package sim

import (
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/named-data/closersite/app"
	"github.com/named-data/closersite/face"
	"github.com/named-data/closersite/fw"
	"github.com/pkg/errors"
)

// FaceReport holds the counters of one face.
type FaceReport struct {
	FaceID   uint64        `yaml:"face_id"`
	Remote   string        `yaml:"remote"`
	Counters face.Counters `yaml:"counters"`
}

// NodeReport holds the forwarder state of one node at the end of a run.
type NodeReport struct {
	Name       string       `yaml:"name"`
	Forwarding fw.Counters  `yaml:"forwarding"`
	PitEntries int          `yaml:"pit_entries"`
	CsEntries  int          `yaml:"cs_entries"`
	Faces      []FaceReport `yaml:"faces"`
}

// ProducerReport holds the counters of a producer.
type ProducerReport struct {
	Node  string            `yaml:"node"`
	Stats app.ProducerStats `yaml:"stats"`
}

// ConsumerReport holds the fetch records of a consumer.
type ConsumerReport struct {
	Node    string             `yaml:"node"`
	Objects []*app.ObjectStats `yaml:"objects"`
}

// Summary aggregates the consumer records of a run.
type Summary struct {
	Objects         int           `yaml:"objects"`
	Completed       int           `yaml:"completed"`
	Segments        int           `yaml:"segments"`
	Received        int           `yaml:"received"`
	Failed          int           `yaml:"failed"`
	Retransmissions int           `yaml:"retransmissions"`
	Nacks           int           `yaml:"nacks"`
	MeanFetchTime   time.Duration `yaml:"mean_fetch_time"`
	CsHits          uint64        `yaml:"cs_hits"`
}

// Report is the outcome of a scenario run.
type Report struct {
	Prefix    string           `yaml:"prefix"`
	Strategy  string           `yaml:"strategy"`
	Routing   string           `yaml:"routing"`
	Duration  time.Duration    `yaml:"duration"`
	EventsRun uint64           `yaml:"events_run"`
	Summary   Summary          `yaml:"summary"`
	Nodes     []NodeReport     `yaml:"nodes"`
	Producers []ProducerReport `yaml:"producers"`
	Consumers []ConsumerReport `yaml:"consumers"`
}

func (s *Scenario) report(duration time.Duration) *Report {
	r := &Report{
		Prefix:    s.prefix.String(),
		Strategy:  s.config.Sim.Strategy,
		Routing:   s.config.Sim.Routing,
		Duration:  duration,
		EventsRun: s.timer.EventsRun(),
	}

	for _, name := range s.network.NodeNames() {
		thread := s.network.Node(name).Thread
		node := NodeReport{
			Name:       name,
			Forwarding: thread.Counters(),
			PitEntries: thread.GetNumPitEntries(),
			CsEntries:  thread.GetNumCsEntries(),
		}
		for _, f := range thread.Faces().GetAll() {
			node.Faces = append(node.Faces, FaceReport{
				FaceID:   f.FaceID(),
				Remote:   f.RemoteURI().String(),
				Counters: f.Counters(),
			})
		}
		r.Summary.CsHits += node.Forwarding.NCsHits
		r.Nodes = append(r.Nodes, node)
	}

	for _, name := range s.network.NodeNames() {
		if p := s.producers[name]; p != nil {
			r.Producers = append(r.Producers, ProducerReport{Node: name, Stats: p.Stats()})
		}
	}

	var fetchTime time.Duration
	for _, name := range s.network.NodeNames() {
		c := s.consumers[name]
		if c == nil {
			continue
		}
		objects := c.Objects()
		r.Consumers = append(r.Consumers, ConsumerReport{Node: name, Objects: objects})
		for _, o := range objects {
			r.Summary.Objects++
			r.Summary.Segments += o.Segments
			r.Summary.Received += o.Received
			r.Summary.Failed += o.Failed
			r.Summary.Retransmissions += o.Retransmissions
			r.Summary.Nacks += o.Nacks
			if o.Complete {
				r.Summary.Completed++
				fetchTime += o.Duration()
			}
		}
	}
	if r.Summary.Completed > 0 {
		r.Summary.MeanFetchTime = fetchTime / time.Duration(r.Summary.Completed)
	}
	return r
}

// Encode returns the report as YAML.
func (r *Report) Encode() ([]byte, error) {
	out, err := yaml.Marshal(r)
	if err != nil {
		return nil, errors.Wrap(err, "unable to encode report")
	}
	return out, nil
}

// WriteFile writes the report as YAML to file.
func (r *Report) WriteFile(file string) error {
	out, err := r.Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(file, out, 0o644); err != nil {
		return errors.Wrapf(err, "unable to write report %s", file)
	}
	return nil
}
