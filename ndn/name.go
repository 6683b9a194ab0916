/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package ndn

import (
	"strings"

	"github.com/cespare/xxhash"
)

// Name is an NDN name.
type Name []Component

// NameFromStr parses a name from its URI representation.
func NameFromStr(s string) (Name, error) {
	s = strings.TrimPrefix(s, "ndn:")
	strs := strings.Split(s, "/")
	// Removing leading and trailing empty strings given by /
	if strs[0] == "" {
		strs = strs[1:]
	}
	if len(strs) > 0 && strs[len(strs)-1] == "" {
		strs = strs[:len(strs)-1]
	}
	ret := make(Name, 0, len(strs))
	for _, str := range strs {
		if str == "" {
			continue
		}
		c, err := ComponentFromStr(str)
		if err != nil {
			return nil, err
		}
		ret = append(ret, c)
	}
	return ret, nil
}

// MustNameFromStr is NameFromStr for names known to be valid.
func MustNameFromStr(s string) Name {
	n, err := NameFromStr(s)
	if err != nil {
		panic("invalid name " + s + ": " + err.Error())
	}
	return n
}

func (n Name) String() string {
	if len(n) == 0 {
		return "/"
	}
	var ret strings.Builder
	for _, c := range n {
		ret.WriteByte('/')
		ret.WriteString(c.String())
	}
	return ret.String()
}

// Size returns the number of components.
func (n Name) Size() int {
	return len(n)
}

// At returns the component at index i. Negative indices count from the end.
func (n Name) At(i int) Component {
	if i < 0 {
		i += len(n)
	}
	if i < 0 || i >= len(n) {
		return Component{}
	}
	return n[i]
}

// Prefix returns the first i components. Negative i drops components from the end.
func (n Name) Prefix(i int) Name {
	if i < 0 {
		i += len(n)
	}
	if i <= 0 {
		return Name{}
	}
	if i >= len(n) {
		return n
	}
	return n[:i]
}

// Append returns a new name with the components added. The receiver is not modified.
func (n Name) Append(comps ...Component) Name {
	ret := make(Name, len(n), len(n)+len(comps))
	copy(ret, n)
	return append(ret, comps...)
}

// Clone returns a deep copy of the name.
func (n Name) Clone() Name {
	ret := make(Name, len(n))
	for i, c := range n {
		ret[i] = c.Clone()
	}
	return ret
}

// Hash returns the hash of the name.
func (n Name) Hash() uint64 {
	h := xxhash.New()
	for _, c := range n {
		c.HashInto(h)
	}
	return h.Sum64()
}

// PrefixHash returns the hash value of all prefixes of the name.
// ret[i] is the hash of the prefix of length i.
func (n Name) PrefixHash() []uint64 {
	h := xxhash.New()
	ret := make([]uint64, len(n)+1)
	ret[0] = h.Sum64()
	for i, c := range n {
		c.HashInto(h)
		ret[i+1] = h.Sum64()
	}
	return ret
}

func (n Name) Compare(rhs Name) int {
	for i := 0; i < len(n) && i < len(rhs); i++ {
		if ret := n[i].Compare(rhs[i]); ret != 0 {
			return ret
		}
	}
	switch {
	case len(n) < len(rhs):
		return -1
	case len(n) > len(rhs):
		return 1
	default:
		return 0
	}
}

func (n Name) Equal(rhs Name) bool {
	if len(n) != len(rhs) {
		return false
	}
	for i := 0; i < len(n); i++ {
		if !n[i].Equal(rhs[i]) {
			return false
		}
	}
	return true
}

// IsPrefix reports whether n is a prefix of rhs.
func (n Name) IsPrefix(rhs Name) bool {
	if len(n) > len(rhs) {
		return false
	}
	for i := 0; i < len(n); i++ {
		if !n[i].Equal(rhs[i]) {
			return false
		}
	}
	return true
}

// IsLocalhost reports whether the name is under /localhost.
func (n Name) IsLocalhost() bool {
	return len(n) > 0 && n[0].Typ == TypeGenericNameComponent && string(n[0].Val) == "localhost"
}

// IsLocalhop reports whether the name is under /localhop.
func (n Name) IsLocalhop() bool {
	return len(n) > 0 && n[0].Typ == TypeGenericNameComponent && string(n[0].Val) == "localhop"
}
