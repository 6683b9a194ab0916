/* YaNFD - Yet another NDN Forwarding Daemon
 *
 * Copyright (C) 2020-2021 Eric Newberry.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package ndn

import "errors"

// Error definitions
var (
	ErrFormat     = errors.New("invalid name or component format")
	ErrOutOfRange = errors.New("value outside of allowed range")
)
