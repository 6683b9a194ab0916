package app

import "errors"

var (
	ErrDuplicateNonce = errors.New("interest with this nonce is already pending")
	ErrHandlerExists  = errors.New("handler already attached")
	ErrTraceFormat    = errors.New("malformed trace line")
)
