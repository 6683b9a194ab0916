/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package sim

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/named-data/closersite/face"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Router is a node of the topology.
type Router struct {
	Name    string  `yaml:"name"`
	Comment string  `yaml:"comment,omitempty"`
	Y       float64 `yaml:"y,omitempty"`
	X       float64 `yaml:"x,omitempty"`
}

// Link is a bidirectional point-to-point link.
type Link struct {
	Src       string
	Dst       string
	Bandwidth int64 // bits per second
	Metric    uint64
	Delay     time.Duration
	Queue     int
}

// Topology is the set of routers and links of a simulation.
type Topology struct {
	Routers []Router
	Links   []Link
}

type yamlLink struct {
	Src       string `yaml:"src"`
	Dst       string `yaml:"dst"`
	Bandwidth string `yaml:"bandwidth,omitempty"`
	Metric    uint64 `yaml:"metric,omitempty"`
	Delay     string `yaml:"delay,omitempty"`
	Queue     int    `yaml:"queue,omitempty"`
}

type yamlTopology struct {
	Routers []Router   `yaml:"routers"`
	Links   []yamlLink `yaml:"links"`
}

// defaultLink returns the parameters of a link without annotations.
func defaultLink(src string, dst string) Link {
	params := face.DefaultLinkParams()
	return Link{
		Src:       src,
		Dst:       dst,
		Bandwidth: params.Bandwidth,
		Metric:    1,
		Delay:     params.Delay,
		Queue:     params.QueueSize,
	}
}

// LoadTopology reads a topology file. Files ending in .yaml or .yml are read
// as YAML, anything else in the annotated text format.
func LoadTopology(file string) (*Topology, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open topology %s", file)
	}
	defer f.Close()

	var topo *Topology
	switch strings.ToLower(filepath.Ext(file)) {
	case ".yaml", ".yml":
		topo, err = ParseYAMLTopology(f)
	default:
		topo, err = ParseAnnotatedTopology(f)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "topology %s", file)
	}
	if err = topo.Validate(); err != nil {
		return nil, errors.Wrapf(err, "topology %s", file)
	}
	return topo, nil
}

// ParseAnnotatedTopology reads the annotated text format:
//
//	router
//	# name  comment  yPos  xPos
//	A       NA       1     2
//	link
//	# src  dst  bandwidth  metric  delay  queue
//	A      B    10Gbps     1       10ms   100
//
// Every column after the node names is optional.
func ParseAnnotatedTopology(r io.Reader) (*Topology, error) {
	topo := new(Topology)
	section := ""
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) == 1 && (fields[0] == "router" || fields[0] == "link") {
			section = fields[0]
			continue
		}

		switch section {
		case "router":
			router, err := parseRouter(fields)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", lineNum)
			}
			topo.Routers = append(topo.Routers, router)
		case "link":
			link, err := parseLink(fields)
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", lineNum)
			}
			topo.Links = append(topo.Links, link)
		default:
			return nil, errors.Wrapf(ErrTopologyFormat, "line %d: entry outside of a router or link section", lineNum)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "unable to read topology")
	}
	return topo, nil
}

func parseRouter(fields []string) (Router, error) {
	router := Router{Name: fields[0]}
	if len(fields) > 1 {
		router.Comment = fields[1]
	}
	var err error
	if len(fields) > 2 {
		if router.Y, err = strconv.ParseFloat(fields[2], 64); err != nil {
			return router, errors.Wrapf(ErrTopologyFormat, "router %s: y position %q", router.Name, fields[2])
		}
	}
	if len(fields) > 3 {
		if router.X, err = strconv.ParseFloat(fields[3], 64); err != nil {
			return router, errors.Wrapf(ErrTopologyFormat, "router %s: x position %q", router.Name, fields[3])
		}
	}
	return router, nil
}

func parseLink(fields []string) (Link, error) {
	if len(fields) < 2 {
		return Link{}, errors.Wrap(ErrTopologyFormat, "link needs a source and a destination")
	}
	link := defaultLink(fields[0], fields[1])
	var err error
	if len(fields) > 2 {
		if link.Bandwidth, err = ParseBandwidth(fields[2]); err != nil {
			return link, err
		}
	}
	if len(fields) > 3 {
		if link.Metric, err = strconv.ParseUint(fields[3], 10, 64); err != nil {
			return link, errors.Wrapf(ErrTopologyFormat, "link %s-%s: metric %q", link.Src, link.Dst, fields[3])
		}
	}
	if len(fields) > 4 {
		if link.Delay, err = ParseDelay(fields[4]); err != nil {
			return link, err
		}
	}
	if len(fields) > 5 {
		if link.Queue, err = strconv.Atoi(fields[5]); err != nil {
			return link, errors.Wrapf(ErrTopologyFormat, "link %s-%s: queue %q", link.Src, link.Dst, fields[5])
		}
	}
	return link, nil
}

// ParseYAMLTopology reads a topology in YAML. Unknown keys are rejected.
func ParseYAMLTopology(r io.Reader) (*Topology, error) {
	var raw yamlTopology
	if err := yaml.NewDecoder(r, yaml.Strict()).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "unable to parse topology")
	}

	topo := &Topology{Routers: raw.Routers}
	for _, l := range raw.Links {
		link := defaultLink(l.Src, l.Dst)
		var err error
		if l.Bandwidth != "" {
			if link.Bandwidth, err = ParseBandwidth(l.Bandwidth); err != nil {
				return nil, err
			}
		}
		if l.Metric != 0 {
			link.Metric = l.Metric
		}
		if l.Delay != "" {
			if link.Delay, err = ParseDelay(l.Delay); err != nil {
				return nil, err
			}
		}
		if l.Queue != 0 {
			link.Queue = l.Queue
		}
		topo.Links = append(topo.Links, link)
	}
	return topo, nil
}

// EncodeYAML encodes the topology in the format read by ParseYAMLTopology.
func (t *Topology) EncodeYAML() ([]byte, error) {
	raw := yamlTopology{Routers: t.Routers}
	for _, l := range t.Links {
		raw.Links = append(raw.Links, yamlLink{
			Src:       l.Src,
			Dst:       l.Dst,
			Bandwidth: strconv.FormatInt(l.Bandwidth, 10) + "bps",
			Metric:    l.Metric,
			Delay:     l.Delay.String(),
			Queue:     l.Queue,
		})
	}
	return yaml.Marshal(raw)
}

var bandwidthUnits = []struct {
	suffix string
	scale  int64
}{
	{"gbps", 1_000_000_000},
	{"mbps", 1_000_000},
	{"kbps", 1_000},
	{"bps", 1},
}

// ParseBandwidth parses a data rate such as "10Gbps" into bits per second.
// A bare number is in bits per second.
func ParseBandwidth(s string) (int64, error) {
	lower := strings.ToLower(strings.TrimSpace(s))
	scale := int64(1)
	for _, unit := range bandwidthUnits {
		if strings.HasSuffix(lower, unit.suffix) {
			lower = strings.TrimSuffix(lower, unit.suffix)
			scale = unit.scale
			break
		}
	}
	value, err := strconv.ParseFloat(lower, 64)
	if err != nil || value <= 0 {
		return 0, errors.Wrapf(ErrTopologyFormat, "bandwidth %q", s)
	}
	return int64(value * float64(scale)), nil
}

// ParseDelay parses a delay such as "10ms". A bare number is in seconds.
func ParseDelay(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if seconds, err := strconv.ParseFloat(s, 64); err == nil {
		if seconds < 0 {
			return 0, errors.Wrapf(ErrTopologyFormat, "delay %q", s)
		}
		return time.Duration(seconds * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, errors.Wrapf(ErrTopologyFormat, "delay %q", s)
	}
	return d, nil
}

// HasRouter reports whether the topology has a router with the given name.
func (t *Topology) HasRouter(name string) bool {
	for _, r := range t.Routers {
		if r.Name == name {
			return true
		}
	}
	return false
}

// Validate reports every inconsistency of the topology.
func (t *Topology) Validate() error {
	var err error
	seen := make(map[string]bool, len(t.Routers))
	for _, r := range t.Routers {
		if r.Name == "" {
			err = multierr.Append(err, errors.Wrap(ErrTopologyInvalid, "router without name"))
			continue
		}
		if seen[r.Name] {
			err = multierr.Append(err, errors.Wrapf(ErrTopologyInvalid, "duplicate router %s", r.Name))
		}
		seen[r.Name] = true
	}
	for _, l := range t.Links {
		if !seen[l.Src] || !seen[l.Dst] {
			err = multierr.Append(err, errors.Wrapf(ErrTopologyInvalid, "link %s-%s has an unknown end", l.Src, l.Dst))
		}
		if l.Src == l.Dst {
			err = multierr.Append(err, errors.Wrapf(ErrTopologyInvalid, "link %s-%s is a loop", l.Src, l.Dst))
		}
		if l.Metric == 0 {
			err = multierr.Append(err, errors.Wrapf(ErrTopologyInvalid, "link %s-%s has no metric", l.Src, l.Dst))
		}
	}
	return err
}
