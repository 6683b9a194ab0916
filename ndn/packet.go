/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package ndn

import (
	"strconv"
	"time"
)

// DefaultInterestLifetime is used when an Interest carries no lifetime.
const DefaultInterestLifetime = 4 * time.Second

// Interest represents an NDN Interest packet.
type Interest struct {
	NameV        Name
	CanBePrefixV bool
	MustBeFreshV bool
	NonceV       uint32
	LifetimeV    time.Duration
	HopLimitV    *uint8
}

// NewInterest creates an Interest with the default lifetime.
func NewInterest(name Name, nonce uint32) *Interest {
	return &Interest{
		NameV:     name,
		NonceV:    nonce,
		LifetimeV: DefaultInterestLifetime,
	}
}

// Name returns the name of the Interest.
func (i *Interest) Name() Name {
	return i.NameV
}

// Nonce returns the nonce of the Interest.
func (i *Interest) Nonce() uint32 {
	return i.NonceV
}

// Lifetime returns the lifetime of the Interest, falling back to the default.
func (i *Interest) Lifetime() time.Duration {
	if i.LifetimeV <= 0 {
		return DefaultInterestLifetime
	}
	return i.LifetimeV
}

// CanBePrefix returns the CanBePrefix flag.
func (i *Interest) CanBePrefix() bool {
	return i.CanBePrefixV
}

// MustBeFresh returns the MustBeFresh flag.
func (i *Interest) MustBeFresh() bool {
	return i.MustBeFreshV
}

// Clone returns a shallow copy suitable for forwarding on another hop.
func (i *Interest) Clone() *Interest {
	ret := *i
	if i.HopLimitV != nil {
		hl := *i.HopLimitV
		ret.HopLimitV = &hl
	}
	return &ret
}

func (i *Interest) String() string {
	return "Interest(" + i.NameV.String() + ", nonce=" + strconv.FormatUint(uint64(i.NonceV), 16) + ")"
}

// Data represents an NDN Data packet.
type Data struct {
	NameV         Name
	ContentV      []byte
	FreshnessV    time.Duration
	FinalBlockIDV *Component
}

// Name returns the name of the Data.
func (d *Data) Name() Name {
	return d.NameV
}

// Content returns the payload of the Data.
func (d *Data) Content() []byte {
	return d.ContentV
}

// Freshness returns the FreshnessPeriod of the Data.
func (d *Data) Freshness() time.Duration {
	return d.FreshnessV
}

// Size returns the payload length in octets.
func (d *Data) Size() int {
	return len(d.ContentV)
}

func (d *Data) String() string {
	return "Data(" + d.NameV.String() + ")"
}

// CanSatisfy reports whether the Data matches the Interest name constraints.
func (d *Data) CanSatisfy(interest *Interest) bool {
	if interest.CanBePrefix() {
		return interest.Name().IsPrefix(d.NameV)
	}
	return interest.Name().Equal(d.NameV)
}

// NackReason is the reason code of a network Nack.
type NackReason uint64

// Nack reasons.
const (
	NackReasonNone       NackReason = 0
	NackReasonCongestion NackReason = 50
	NackReasonDuplicate  NackReason = 100
	NackReasonNoRoute    NackReason = 150
)

func (r NackReason) String() string {
	switch r {
	case NackReasonCongestion:
		return "Congestion"
	case NackReasonDuplicate:
		return "Duplicate"
	case NackReasonNoRoute:
		return "NoRoute"
	case NackReasonNone:
		return "None"
	default:
		return "Unknown(" + strconv.FormatUint(uint64(r), 10) + ")"
	}
}

// Nack is a network Nack carrying the rejected Interest.
type Nack struct {
	Reason   NackReason
	Interest *Interest
}

// Name returns the name of the Nacked Interest.
func (n *Nack) Name() Name {
	return n.Interest.Name()
}

func (n *Nack) String() string {
	return "Nack(" + n.Interest.Name().String() + ", " + n.Reason.String() + ")"
}

// Packet is the unit handed between faces and forwarders. Exactly one field is set.
type Packet struct {
	Interest *Interest
	Data     *Data
	Nack     *Nack
}

// Name returns the name of whichever packet is carried.
func (p *Packet) Name() Name {
	switch {
	case p.Interest != nil:
		return p.Interest.Name()
	case p.Data != nil:
		return p.Data.Name()
	case p.Nack != nil:
		return p.Nack.Name()
	}
	return nil
}

// WireSize estimates the encoded size of the packet in octets.
func (p *Packet) WireSize() int {
	nameLen := 0
	for _, c := range p.Name() {
		nameLen += 2 + len(c.Val)
	}
	switch {
	case p.Data != nil:
		return nameLen + len(p.Data.ContentV) + 16
	case p.Nack != nil:
		return nameLen + 24
	default:
		return nameLen + 16
	}
}
