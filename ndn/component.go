/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package ndn

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash"
	"strconv"
	"strings"
	"unicode"
)

// TLNum is a TLV type number.
type TLNum uint64

// Name component types.
const (
	TypeGenericNameComponent TLNum = 0x08
	TypeKeywordNameComponent TLNum = 0x20
	TypeSegmentNameComponent TLNum = 0x32
	TypeVersionNameComponent TLNum = 0x36
)

type componentConvention struct {
	typ     TLNum
	name    string
	decimal bool
}

var compConvByType = map[TLNum]*componentConvention{
	TypeSegmentNameComponent: {TypeSegmentNameComponent, "seg", true},
	TypeVersionNameComponent: {TypeVersionNameComponent, "v", true},
}

var compConvByStr map[string]*componentConvention

func init() {
	compConvByStr = make(map[string]*componentConvention, len(compConvByType))
	for _, c := range compConvByType {
		compConvByStr[c.name] = c
	}
}

// Component is a single name component.
type Component struct {
	Typ TLNum
	Val []byte
}

// NewGenericComponent creates a generic name component from text.
func NewGenericComponent(s string) Component {
	return Component{Typ: TypeGenericNameComponent, Val: []byte(s)}
}

// NewSegmentComponent creates a segment number component.
func NewSegmentComponent(seg uint64) Component {
	return Component{Typ: TypeSegmentNameComponent, Val: encodeNat(seg)}
}

// NewVersionComponent creates a version number component.
func NewVersionComponent(v uint64) Component {
	return Component{Typ: TypeVersionNameComponent, Val: encodeNat(v)}
}

// encodeNat encodes a NonNegativeInteger in the shortest of 1, 2, 4 or 8 octets.
func encodeNat(x uint64) []byte {
	switch {
	case x <= 0xff:
		return []byte{byte(x)}
	case x <= 0xffff:
		buf := make([]byte, 2)
		binary.BigEndian.PutUint16(buf, uint16(x))
		return buf
	case x <= 0xffffffff:
		buf := make([]byte, 4)
		binary.BigEndian.PutUint32(buf, uint32(x))
		return buf
	default:
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, x)
		return buf
	}
}

// NumberVal decodes the component value as a NonNegativeInteger.
func (c Component) NumberVal() uint64 {
	x := uint64(0)
	for _, b := range c.Val {
		x = (x << 8) | uint64(b)
	}
	return x
}

// IsSegment reports whether the component is a segment number.
func (c Component) IsSegment() bool {
	return c.Typ == TypeSegmentNameComponent
}

func isLegalCompText(b byte) bool {
	return unicode.IsLetter(rune(b)) || unicode.IsDigit(rune(b)) || b == '-' || b == '_' || b == '.' || b == '~'
}

func (c Component) String() string {
	conv, known := compConvByType[c.Typ]
	var prefix string
	if known {
		prefix = conv.name + "="
	} else if c.Typ != TypeGenericNameComponent {
		prefix = strconv.FormatUint(uint64(c.Typ), 10) + "="
	}
	if known && conv.decimal {
		return prefix + strconv.FormatUint(c.NumberVal(), 10)
	}
	var vText strings.Builder
	vText.WriteString(prefix)
	for _, b := range c.Val {
		if isLegalCompText(b) {
			vText.WriteByte(b)
		} else {
			fmt.Fprintf(&vText, "%%%02X", b)
		}
	}
	return vText.String()
}

// Clone returns a deep copy of the component.
func (c Component) Clone() Component {
	return Component{Typ: c.Typ, Val: append([]byte(nil), c.Val...)}
}

// Compare orders components by type, then length, then value.
func (c Component) Compare(rhs Component) int {
	if c.Typ != rhs.Typ {
		if c.Typ < rhs.Typ {
			return -1
		}
		return 1
	}
	if len(c.Val) != len(rhs.Val) {
		if len(c.Val) < len(rhs.Val) {
			return -1
		}
		return 1
	}
	return bytes.Compare(c.Val, rhs.Val)
}

// Equal reports whether two components are identical.
func (c Component) Equal(rhs Component) bool {
	return c.Typ == rhs.Typ && bytes.Equal(c.Val, rhs.Val)
}

// HashInto feeds the component into a running hash.
func (c Component) HashInto(h hash.Hash64) {
	var typ [8]byte
	binary.BigEndian.PutUint64(typ[:], uint64(c.Typ))
	h.Write(typ[:])
	var l [8]byte
	binary.BigEndian.PutUint64(l[:], uint64(len(c.Val)))
	h.Write(l[:])
	h.Write(c.Val)
}

func unescapeText(s string) ([]byte, error) {
	ret := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			ret = append(ret, s[i])
			continue
		}
		if i+2 >= len(s) {
			return nil, ErrFormat
		}
		b, err := strconv.ParseUint(s[i+1:i+3], 16, 8)
		if err != nil {
			return nil, ErrFormat
		}
		ret = append(ret, byte(b))
		i += 2
	}
	return ret, nil
}

// ComponentFromStr parses the URI representation of a component.
func ComponentFromStr(s string) (Component, error) {
	typStr, valStr, hasTyp := strings.Cut(s, "=")
	if !hasTyp {
		val, err := unescapeText(s)
		if err != nil {
			return Component{}, err
		}
		return Component{Typ: TypeGenericNameComponent, Val: val}, nil
	}

	if conv, ok := compConvByStr[typStr]; ok {
		if conv.decimal {
			x, err := strconv.ParseUint(valStr, 10, 64)
			if err != nil {
				return Component{}, ErrFormat
			}
			return Component{Typ: conv.typ, Val: encodeNat(x)}, nil
		}
		val, err := unescapeText(valStr)
		if err != nil {
			return Component{}, err
		}
		return Component{Typ: conv.typ, Val: val}, nil
	}

	typ, err := strconv.ParseUint(typStr, 10, 16)
	if err != nil || typ == 0 {
		return Component{}, ErrFormat
	}
	val, err := unescapeText(valStr)
	if err != nil {
		return Component{}, err
	}
	return Component{Typ: TLNum(typ), Val: val}, nil
}
