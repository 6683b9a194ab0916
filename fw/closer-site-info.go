/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2026 The closersite authors.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package fw

import (
	"math"
	"time"

	"github.com/named-data/closersite/table"
	"github.com/named-data/closersite/utils/optional"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// UnmeasuredDelay is the delay of a link that has not returned any Data yet.
// It is larger than any measurable delay.
const UnmeasuredDelay = time.Duration(math.MaxInt64)

// LinkWeight is the delay measurement of one egress face under a prefix.
type LinkWeight struct {
	FaceID    uint64
	LastDelay time.Duration
	// Weight is (UnmeasuredDelay - LastDelay) / UnmeasuredDelay, in [0, 1].
	Weight float64
	// Updated is set once the link has been measured since it (re)joined the candidate set.
	Updated    bool
	LastUpdate time.Time
}

func newLinkWeight(faceID uint64) *LinkWeight {
	l := &LinkWeight{FaceID: faceID}
	l.setDelay(UnmeasuredDelay)
	return l
}

func (l *LinkWeight) setDelay(delay time.Duration) {
	if delay < 0 {
		delay = 0
	}
	l.LastDelay = delay
	l.Weight = float64(UnmeasuredDelay-delay) / float64(UnmeasuredDelay)
}

// less orders links by delay, then by face ID.
func (l *LinkWeight) less(rhs *LinkWeight) bool {
	if l.LastDelay == rhs.LastDelay {
		return l.FaceID < rhs.FaceID
	}
	return l.LastDelay < rhs.LastDelay
}

// LinkMeasurementTable holds the LinkWeights of the candidate faces of one prefix.
// Links are indexed by face ID and, lazily, ordered by delay.
type LinkMeasurementTable struct {
	links   map[uint64]*LinkWeight
	byDelay []*LinkWeight
	sorted  bool
}

// NewLinkMeasurementTable creates an empty table.
func NewLinkMeasurementTable() *LinkMeasurementTable {
	return &LinkMeasurementTable{links: make(map[uint64]*LinkWeight), sorted: true}
}

// Len returns the number of links in the table.
func (t *LinkMeasurementTable) Len() int {
	return len(t.links)
}

// Get returns a copy of the link of faceID.
func (t *LinkMeasurementTable) Get(faceID uint64) (LinkWeight, bool) {
	if l, ok := t.links[faceID]; ok {
		return *l, true
	}
	return LinkWeight{}, false
}

// IsLinkUpdated reports whether the link of faceID exists and has been measured.
func (t *LinkMeasurementTable) IsLinkUpdated(faceID uint64) bool {
	l, ok := t.links[faceID]
	return ok && l.Updated
}

// Links returns copies of all links ordered by delay, ties broken by face ID.
func (t *LinkMeasurementTable) Links() []LinkWeight {
	if !t.sorted {
		t.byDelay = maps.Values(t.links)
		slices.SortFunc(t.byDelay, func(a, b *LinkWeight) bool { return a.less(b) })
		t.sorted = true
	}
	links := make([]LinkWeight, len(t.byDelay))
	for i, l := range t.byDelay {
		links[i] = *l
	}
	return links
}

// UpdateLinkDelay records the delay of the link of faceID and marks it updated.
// Links that are missing or already updated are left alone; the return value
// reports whether anything changed.
func (t *LinkMeasurementTable) UpdateLinkDelay(faceID uint64, delay time.Duration, now time.Time) bool {
	l, ok := t.links[faceID]
	if !ok || l.Updated {
		return false
	}
	l.setDelay(delay)
	l.Updated = true
	l.LastUpdate = now
	t.sorted = false
	return true
}

// UpdateStoredNextHops reconciles the table with the current nexthops of the FIB entry.
// Links still present keep their measurements, new links start unmeasured and links
// no longer present are dropped. It returns the updated link with the lowest delay
// (ties broken by face ID), or nothing if no candidate has been measured.
//
// If epoch is positive, carried links whose last measurement is at least epoch old
// lose their Updated flag so that they are measured again.
func (t *LinkMeasurementTable) UpdateStoredNextHops(
	nexthops []*table.FibNextHopEntry,
	now time.Time,
	epoch time.Duration,
) optional.Optional[uint64] {
	links := make(map[uint64]*LinkWeight, len(nexthops))
	var best *LinkWeight
	for _, nexthop := range nexthops {
		if _, dup := links[nexthop.Nexthop]; dup {
			continue
		}
		l, ok := t.links[nexthop.Nexthop]
		if !ok {
			links[nexthop.Nexthop] = newLinkWeight(nexthop.Nexthop)
			continue
		}
		carried := *l
		if epoch > 0 && carried.Updated && now.Sub(carried.LastUpdate) >= epoch {
			carried.Updated = false
		}
		links[nexthop.Nexthop] = &carried
		if carried.Updated && (best == nil || carried.less(best)) {
			best = &carried
		}
	}

	t.links = links
	t.sorted = false
	if best == nil {
		return optional.None[uint64]()
	}
	return optional.Some(best.FaceID)
}

// PendingRequestInfo is attached to a PIT entry when the closer-site strategy
// first forwards its Interest.
type PendingRequestInfo struct {
	CreationTime time.Time
}
