package sim

import "errors"

var (
	ErrTopologyFormat  = errors.New("malformed topology")
	ErrTopologyInvalid = errors.New("invalid topology")
	ErrUnknownNode     = errors.New("unknown node")
)
