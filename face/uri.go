/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package face

import (
	"regexp"
	"strings"
)

// URIType represents the type of the URI
type uriType int

const nodePattern = "^[A-Za-z0-9_.:-]+$"

const (
	nullURI uriType = iota
	simURI  uriType = iota
	appURI  uriType = iota
)

var nodeRegexp = regexp.MustCompile(nodePattern)

// URI represents a URI for a face
type URI struct {
	uriType uriType
	scheme  string
	path    string
}

// NewNullFaceURI constructs an empty face URI
func NewNullFaceURI() URI {
	return URI{nullURI, "null", ""}
}

// NewSimFaceURI constructs a URI for the end of a simulated link at a node
func NewSimFaceURI(node string) URI {
	return URI{simURI, "sim", node}
}

// NewAppFaceURI constructs a URI for an application attached to a node
func NewAppFaceURI(app string) URI {
	return URI{appURI, "app", app}
}

// DecodeURIString decodes a URI from a string.
func DecodeURIString(str string) URI {
	scheme, path, ok := strings.Cut(str, "://")
	if !ok {
		return NewNullFaceURI()
	}
	switch scheme {
	case "sim":
		return NewSimFaceURI(path)
	case "app":
		return NewAppFaceURI(path)
	}
	return NewNullFaceURI()
}

// Scheme returns the scheme of the face URI
func (u URI) Scheme() string {
	return u.scheme
}

// Path returns the path of the face URI
func (u URI) Path() string {
	return u.path
}

// IsCanonical returns whether the face URI is canonical
func (u URI) IsCanonical() bool {
	switch u.uriType {
	case nullURI:
		return u.scheme == "null" && u.path == ""
	case simURI:
		return u.scheme == "sim" && nodeRegexp.MatchString(u.path)
	case appURI:
		return u.scheme == "app" && nodeRegexp.MatchString(u.path)
	default:
		return false
	}
}

func (u URI) String() string {
	if u.uriType == nullURI {
		return "null://"
	}
	return u.scheme + "://" + u.path
}
